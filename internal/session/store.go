package session

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
)

// Save writes s as pretty JSON to workdir/meta.json. Not atomic in the
// strict sense (no rename-over); a reader that races a concurrent Save
// may observe a partially-written file and should retry.
func Save(fs fsys.FS, workdir string, s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session metadata: %w", err)
	}
	path := filepath.Join(workdir, "meta.json")
	if err := fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Load reads and parses workdir/meta.json.
func Load(fs fsys.FS, workdir string) (*Session, error) {
	path := filepath.Join(workdir, "meta.json")
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// LoadStatus reads and parses a session's hook-written status.json. A
// missing file is not an error: it returns (nil, nil), matching the
// "no signal" branch of [EffectiveStatus].
func LoadStatus(fs fsys.FS, statusPath string) (*CliStatus, error) {
	data, err := fs.ReadFile(statusPath)
	if err != nil {
		return nil, nil //nolint:nilerr // absence of a status file is not an error
	}
	var cli CliStatus
	if err := json.Unmarshal(data, &cli); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", statusPath, err)
	}
	return &cli, nil
}
