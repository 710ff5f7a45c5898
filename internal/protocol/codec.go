package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize is the hard cap on a single frame's JSON payload.
const MaxFrameSize = 16 * 1024 * 1024 // 16 MiB

// WriteFrame encodes v as JSON and writes it as a length-prefixed
// frame: a big-endian uint32 byte count followed by the JSON bytes.
// It returns a *protocol.Error (code E007) if the encoded payload
// exceeds MaxFrameSize, since oversize frames are a framing-layer
// concern, not a caller bug.
func WriteFrame(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling frame payload: %w", err)
	}
	if len(payload) == 0 || len(payload) > MaxFrameSize {
		return NewError(ErrDaemonUnavailable, fmt.Sprintf("frame size %d out of bounds", len(payload)))
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r and unmarshals its
// JSON payload into v. A zero-length frame or a frame exceeding
// MaxFrameSize returns a *protocol.Error (code E007).
func ReadFrame(r io.Reader, v any) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("reading frame header: %w", err)
	}
	n := binary.BigEndian.Uint32(header[:])
	if n == 0 {
		return NewError(ErrDaemonUnavailable, "zero-length frame")
	}
	if n > MaxFrameSize {
		return NewError(ErrDaemonUnavailable, fmt.Sprintf("frame size %d exceeds maximum %d", n, MaxFrameSize))
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("reading frame payload: %w", err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("unmarshaling frame payload: %w", err)
	}
	return nil
}
