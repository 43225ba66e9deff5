// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fsutil writes files so that readers only ever see complete
// content under the final name.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// chmod is replaced in tests.
var chmod = (*os.File).Chmod

// WriteFile writes data to path with mode perm. The data goes to a temp
// file next to path, which gets its final mode before it is renamed over
// path. On any failure path is left as it was and the temp file is
// removed. The parent directory is created when missing.
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = chmod(f, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = atomic.ReplaceFile(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
