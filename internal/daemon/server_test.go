package daemon

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
	"github.com/JhihJian/SUMM-Daemon/internal/multiplexer"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
	"github.com/JhihJian/SUMM-Daemon/internal/registry"
)

func TestServerServesOneRequestPerConnection(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "daemon.sock")

	h := &Handler{
		FS:       fsys.NewFake(),
		Mux:      multiplexer.NewFake(),
		Registry: registry.New(),
		Config:   &config.DaemonConfig{SessionsDir: "/base/sessions", MultiplexerPrefix: "summ-"},
		Log:      discardLogger(),
		Base:     "/base",
	}
	s := &Server{SocketPath: sockPath, Handler: h, Log: discardLogger()}
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	var resp protocol.Response
	var err error
	for i := 0; i < 20; i++ {
		resp, err = dial(t, sockPath, protocol.Request{Type: protocol.ReqDaemonStatus})
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.Type != "Success" {
		t.Fatalf("response = %+v, want Success", resp)
	}

	cancel()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestServerClosesConnectionAfterRequestTimeout(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "daemon.sock")

	h := &Handler{
		FS:       fsys.NewFake(),
		Mux:      multiplexer.NewFake(),
		Registry: registry.New(),
		Config:   &config.DaemonConfig{SessionsDir: "/base/sessions", MultiplexerPrefix: "summ-"},
		Log:      discardLogger(),
		Base:     "/base",
	}
	s := &Server{SocketPath: sockPath, Handler: h, Log: discardLogger(), RequestTimeout: 50 * time.Millisecond}
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Serve(ctx) }()
	defer s.Close()

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Never write a frame; the server's read deadline should fire and
	// close its side of the connection instead of hanging forever.
	buf := make([]byte, 1)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Read(buf); err == nil {
		t.Fatal("expected the connection to be closed after the request timeout, got no error")
	}
}

func TestServerRemovesStaleSocketBeforeListening(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "daemon.sock")

	first := &Server{SocketPath: sockPath, Log: discardLogger()}
	if err := first.Listen(); err != nil {
		t.Fatalf("first Listen: %v", err)
	}
	// Simulate a crash: the socket file is left behind, but nothing is
	// accepting on it anymore. A Go unix listener unlinks its socket file
	// on Close by default, so that is switched off first.
	first.listener.(*net.UnixListener).SetUnlinkOnClose(false)
	_ = first.listener.Close()

	second := &Server{SocketPath: sockPath, Log: discardLogger()}
	if err := second.Listen(); err != nil {
		t.Fatalf("second Listen should remove the stale socket, got: %v", err)
	}
	_ = second.Close()
}

func dial(t *testing.T, sockPath string, req protocol.Request) (protocol.Response, error) {
	t.Helper()
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return protocol.Response{}, err
	}
	defer conn.Close()

	if err := protocol.WriteFrame(conn, req); err != nil {
		return protocol.Response{}, err
	}
	var resp protocol.Response
	if err := protocol.ReadFrame(conn, &resp); err != nil {
		return protocol.Response{}, err
	}
	return resp, nil
}
