package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Storage keeps JSON documents in a local directory.
type Storage struct {
	Path string
}

type StorageAdapter interface {
	Load(filePath string, entry interface{}) (bool, error)
	Save(filePath string, entry interface{}) error
}

func New(dirPath string, log *zap.Logger) (*Storage, error) {
	if _, err := os.Stat(dirPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return nil, err
		}
	}

	log.Debug("using local storage", zap.String("path", dirPath))

	return &Storage{
		Path: dirPath,
	}, nil
}

// Load decodes filePath into entry. A missing file is created from entry's
// current value and exists is reported false.
func (s *Storage) Load(filePath string, entry interface{}) (bool, error) {
	exists := false
	if _, err := os.Stat(s.path(filePath)); errors.Is(err, fs.ErrNotExist) {
		if err := s.Save(filePath, entry); err != nil {
			return false, err
		}
	} else if err == nil {
		exists = true
	}

	b, err := os.ReadFile(s.path(filePath))
	if err != nil {
		return exists, err
	}
	if err := json.Unmarshal(b, entry); err != nil {
		return exists, err
	}
	return exists, nil
}

// Save encodes entry to filePath. The file is replaced only once the new
// content is fully written.
func (s *Storage) Save(filePath string, entry interface{}) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Path, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(filePath))
}

func (s *Storage) path(filePath string) string {
	return filepath.Join(s.Path, filePath)
}
