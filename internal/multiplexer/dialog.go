package multiplexer

import (
	"fmt"
	"strings"
	"time"
)

// DismissStartupDialogs dismisses interactive startup dialogs that a CLI
// assistant may print on first launch and that would otherwise block an
// unattended session. Handles, in order:
//  1. Workspace trust dialog ("Quick safety check" / "trust this folder")
//  2. Bypass-permissions warning ("Bypass Permissions mode") — requires Down+Enter
//
// peek and sendKeys are bound to a specific multiplexer session by the
// caller. Idempotent: safe to call against a session with no dialogs.
func DismissStartupDialogs(peek func(lines int) (string, error), sendKeys func(keys ...string) error) error {
	if err := dismissWorkspaceTrust(peek, sendKeys); err != nil {
		return fmt.Errorf("workspace trust dialog: %w", err)
	}
	if err := dismissBypassPermissions(peek, sendKeys); err != nil {
		return fmt.Errorf("bypass permissions warning: %w", err)
	}
	return nil
}

func dismissWorkspaceTrust(peek func(lines int) (string, error), sendKeys func(keys ...string) error) error {
	time.Sleep(1 * time.Second)

	content, err := peek(30)
	if err != nil {
		return err
	}
	if !strings.Contains(content, "trust this folder") && !strings.Contains(content, "Quick safety check") {
		return nil
	}
	if err := sendKeys("Enter"); err != nil {
		return err
	}
	time.Sleep(500 * time.Millisecond)
	return nil
}

func dismissBypassPermissions(peek func(lines int) (string, error), sendKeys func(keys ...string) error) error {
	time.Sleep(1 * time.Second)

	content, err := peek(30)
	if err != nil {
		return err
	}
	if !strings.Contains(content, "Bypass Permissions mode") {
		return nil
	}
	if err := sendKeys("Down"); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)
	return sendKeys("Enter")
}
