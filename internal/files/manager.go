package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"spotcli/internal/errors"
)

// Manager stages uploaded workbooks into a working directory before the
// batch layers read them.
type Manager struct {
	uploadsDir string
	maxBytes   int64
}

// NewManager creates a manager staging into uploadsDir. maxBytes caps a
// single staged file; zero means no cap.
func NewManager(uploadsDir string, maxBytes int64) *Manager {
	return &Manager{uploadsDir: uploadsDir, maxBytes: maxBytes}
}

// UploadsDir returns the staging directory.
func (m *Manager) UploadsDir() string {
	return m.uploadsDir
}

// StageUpload writes an uploaded workbook under the staging directory
// and returns its path. The name is reduced to its base to keep uploads
// inside the staging directory, and only Excel extensions are accepted.
func (m *Manager) StageUpload(name string, r io.Reader) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", errors.NewAppValidationError("empty upload file name")
	}

	lower := strings.ToLower(base)
	if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
		return "", errors.NewAppValidationError(fmt.Sprintf("unsupported upload type: %s", base))
	}

	if err := os.MkdirAll(m.uploadsDir, 0755); err != nil {
		return "", errors.NewStorageError("failed to create uploads directory", err)
	}

	path := filepath.Join(m.uploadsDir, base)
	dst, err := os.Create(path)
	if err != nil {
		return "", errors.NewStorageError(fmt.Sprintf("failed to create %s", base), err)
	}
	defer dst.Close()

	src := r
	if m.maxBytes > 0 {
		src = io.LimitReader(r, m.maxBytes+1)
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", errors.NewStorageError(fmt.Sprintf("failed to write %s", base), err)
	}
	if m.maxBytes > 0 && n > m.maxBytes {
		os.Remove(path)
		return "", errors.NewAppValidationError(fmt.Sprintf("upload %s exceeds size limit", base))
	}

	return path, nil
}

// RemoveStaged deletes a previously staged file. Removing a file that is
// already gone is not an error.
func (m *Manager) RemoveStaged(path string) error {
	if filepath.Dir(path) != filepath.Clean(m.uploadsDir) {
		return errors.NewAppValidationError("path is outside the staging directory")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewStorageError("failed to remove staged file", err)
	}
	return nil
}

// ClearStaged removes every staged workbook.
func (m *Manager) ClearStaged() error {
	entries, err := os.ReadDir(m.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewStorageError("failed to read uploads directory", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(m.uploadsDir, entry.Name())); err != nil {
			return errors.NewStorageError("failed to clear staged file", err)
		}
	}
	return nil
}
