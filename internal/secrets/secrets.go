// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the file name is the key and the trimmed
// contents are the value.
//
// Known keys: casemap-api-token (bearer token required by casemap serve).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/casemap/internal/logging"
)

// APIToken is the key of the bearer token that protects the HTTP API.
const APIToken = "casemap-api-token"

// Secrets maps key names to values.
type Secrets map[string]string

// Get returns the value for key, or "" when absent.
func (s Secrets) Get(key string) string {
	return s[key]
}

// Keys returns the loaded key names without their values, for logging.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Load reads every file in dir. A missing directory yields an empty set.
// Unreadable files and files readable by group or others are logged and,
// in the first case, skipped.
func Load(dir string, log *logging.Logger) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("could not read secret", "key", name, "error", err)
			continue
		}
		if info, err := entry.Info(); err == nil && info.Mode().Perm()&0o077 != 0 {
			log.Warn("secret file is readable by other users", "path", path, "mode", info.Mode().Perm().String())
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}
