package multiplexer

import "testing"

func TestShellQuote(t *testing.T) {
	cases := map[string]string{
		"/tmp/foo.log":     `'/tmp/foo.log'`,
		"it's a path":      `'it'\''s a path'`,
		"":                 `''`,
	}
	for in, want := range cases {
		if got := shellQuote(in); got != want {
			t.Errorf("shellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVersionRegexTrailingLetter(t *testing.T) {
	// tmux -V output looks like "tmux 3.3a"; the trailing letter on the
	// minor component must not prevent extraction of the numeric prefix.
	m := versionRe.FindStringSubmatch("tmux 3.3a")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m[1] != "3" || m[2] != "3" {
		t.Errorf("got major=%q minor=%q, want 3, 3", m[1], m[2])
	}
}
