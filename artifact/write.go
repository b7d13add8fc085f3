package artifact

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// Write stores content at path unless the file already holds exactly
// content, and reports whether it wrote. Parent directories are created as
// needed.
//
// The content is synced to a temporary file in the destination directory
// and renamed over path, so a failed write leaves any existing file intact.
func Write(path string, content []byte) (bool, error) {
	fail := func(op string, err error) (bool, error) {
		return false, ErrArtifactWrite.With(
			slog.String("path", path),
			slog.String("op", op),
		).Wrap(err)
	}

	old, err := os.ReadFile(path)

	switch {
	case err == nil:
		if bytes.Equal(old, content) {
			return false, nil
		}

	case !errors.Is(err, fs.ErrNotExist):
		return fail("read", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fail("mkdir", err)
	}

	if err := renameio.WriteFile(path, content, fileMode, renameio.WithTempDir(dir)); err != nil {
		return fail("write", err)
	}

	return true, nil
}
