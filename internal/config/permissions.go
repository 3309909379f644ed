// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

//go:build !windows

package config

import (
	"log/slog"
	"os"
)

// WarnInsecurePermissions logs a warning when the config file at path is
// readable by group or others. The file can hold an upstream api_key, so it
// should be private to the owner. Best-effort: startup never fails on this.
func WarnInsecurePermissions(path string) {
	if path == "" {
		// Running on built-in defaults, no file to inspect.
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}

	// Any read bit outside the owner triple (0o040 group, 0o004 other).
	if info.Mode().Perm()&0o044 != 0 {
		slog.Warn(
			"config file has insecure permissions, api_key may be exposed to other users",
			"path", path,
			"mode", info.Mode(),
			"recommended", "0600",
		)
	}
}
