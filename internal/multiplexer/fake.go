package multiplexer

import (
	"fmt"
	"sort"
	"strings"
)

// Fake is an in-memory [Multiplexer] for testing. It records calls
// (spy) and simulates multiplexer state (fake). Pre-populate Sessions
// and Errors before exercising code under test.
type Fake struct {
	Available bool // CheckAvailable result when AvailableErr is nil
	AvailableErr error

	Sessions map[string]*fakeSession // name -> session
	Errors   map[string]error        // method -> injected error
	Calls    []Call
}

type fakeSession struct {
	Workdir string
	Command string
	PanePID int
	Pane    string
	Log     string
}

// Call records a single method invocation on [Fake].
type Call struct {
	Method string
	Name   string
}

// NewFake returns a ready-to-use [Fake] reporting the multiplexer as available.
func NewFake() *Fake {
	return &Fake{
		Available: true,
		Sessions:  make(map[string]*fakeSession),
		Errors:    make(map[string]error),
	}
}

func (f *Fake) record(method, name string) error {
	f.Calls = append(f.Calls, Call{Method: method, Name: name})
	return f.Errors[method]
}

func (f *Fake) CheckAvailable() error {
	f.Calls = append(f.Calls, Call{Method: "CheckAvailable"})
	if f.AvailableErr != nil {
		return f.AvailableErr
	}
	if !f.Available {
		return fmt.Errorf("fake multiplexer unavailable")
	}
	return nil
}

func (f *Fake) CreateSession(name, workdir, command string) error {
	if err := f.record("CreateSession", name); err != nil {
		return err
	}
	if _, exists := f.Sessions[name]; exists {
		return fmt.Errorf("session %s already exists", name)
	}
	f.Sessions[name] = &fakeSession{Workdir: workdir, Command: command, PanePID: 1000 + len(f.Sessions)}
	return nil
}

func (f *Fake) SessionExists(name string) bool {
	f.Calls = append(f.Calls, Call{Method: "SessionExists", Name: name})
	_, ok := f.Sessions[name]
	return ok
}

func (f *Fake) GetPanePID(name string) (int, bool) {
	f.Calls = append(f.Calls, Call{Method: "GetPanePID", Name: name})
	s, ok := f.Sessions[name]
	if !ok {
		return 0, false
	}
	return s.PanePID, true
}

func (f *Fake) SendKeys(name, text string, pressEnter bool) error {
	if err := f.record("SendKeys", name); err != nil {
		return err
	}
	s, ok := f.Sessions[name]
	if !ok {
		return fmt.Errorf("session %s does not exist", name)
	}
	s.Pane += text
	if pressEnter {
		s.Pane += "\n"
	}
	return nil
}

func (f *Fake) KillSession(name string) error {
	if err := f.record("KillSession", name); err != nil {
		return err
	}
	delete(f.Sessions, name)
	return nil
}

func (f *Fake) ListSessionsWithPrefix(prefix string) ([]string, error) {
	if err := f.record("ListSessionsWithPrefix", prefix); err != nil {
		return nil, err
	}
	var names []string
	for name := range f.Sessions {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *Fake) EnableLogging(name, logPath string) error {
	if err := f.record("EnableLogging", name); err != nil {
		return err
	}
	if s, ok := f.Sessions[name]; ok {
		s.Log = logPath
	}
	return nil
}

func (f *Fake) CapturePane(name string, lines int) (string, error) {
	if err := f.record("CapturePane", name); err != nil {
		return "", err
	}
	s, ok := f.Sessions[name]
	if !ok {
		return "", fmt.Errorf("session %s does not exist", name)
	}
	return s.Pane, nil
}
