package kvstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/web-analyzer-client/internal/errors"
)

// fileStore keeps every key in one JSON object on disk. Writes go to a temp
// file that is renamed over the original so readers never see a partial file.
type fileStore struct {
	path   string
	lock   sync.Mutex
	closed bool
}

// NewFile returns a store backed by the JSON file at path. The parent
// directory is created on demand.
func NewFile(path string) (Storage, error) {
	if path == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMissingConfig, "[kvstore NewFile] path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, apperrors.Wrapf(err, "[kvstore NewFile] create directory")
	}
	return &fileStore{path: path}, nil
}

func (f *fileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.closed {
		return "", false, apperrors.ErrStorageClosed
	}
	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *fileStore) Set(_ context.Context, key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.closed {
		return apperrors.ErrStorageClosed
	}
	values, err := f.read()
	if err != nil {
		// An unreadable file is replaced rather than blocking new writes.
		values = make(map[string]string)
	}
	values[key] = value
	return f.write(values)
}

func (f *fileStore) Remove(_ context.Context, key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.closed {
		return apperrors.ErrStorageClosed
	}
	values, err := f.read()
	if err != nil {
		values = make(map[string]string)
	}
	if _, ok := values[key]; !ok && err == nil {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

func (f *fileStore) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.closed = true
	return nil
}

func (f *fileStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, apperrors.Wrapf(err, "[kvstore file] read %s", f.path)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, apperrors.Wrapf(err, "[kvstore file] decode %s", f.path)
	}
	return values, nil
}

func (f *fileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return apperrors.Wrapf(err, "[kvstore file] encode")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return apperrors.Wrapf(err, "[kvstore file] create temp")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.Wrapf(err, "[kvstore file] write temp")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return apperrors.Wrapf(err, "[kvstore file] chmod temp")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrapf(err, "[kvstore file] close temp")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return apperrors.Wrapf(err, "[kvstore file] rename")
	}
	return nil
}
