package main

import (
	"encoding/json"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

// decodeResponse unmarshals a Success response's Data payload into v.
func decodeResponse(resp protocol.Response, v any) error {
	return json.Unmarshal(resp.Data, v)
}

// resolveConfig loads the daemon config the same way resolveSocketPath
// does, for subcommands that need more than just the socket path (the
// multiplexer prefix, for attach).
func resolveConfig() (*config.DaemonConfig, error) {
	base, err := config.BaseDir()
	if err != nil {
		return nil, err
	}
	return config.Load(base)
}
