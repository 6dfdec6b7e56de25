package repofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/web-analyzer-client/kvstore"
)

var _ kvstore.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-memory kvstore.Storage that records calls and can be
// told to fail.
type FakeStorage struct {
	values map[string]string
	lock   sync.RWMutex

	GetErr    error
	SetErr    error
	RemoveErr error

	Gets    int
	Sets    int
	Removes int
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{values: make(map[string]string)}
}

func (fs *FakeStorage) Get(_ context.Context, key string) (string, bool, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.Gets++
	if fs.GetErr != nil {
		return "", false, fs.GetErr
	}
	v, ok := fs.values[key]
	return v, ok, nil
}

func (fs *FakeStorage) Set(_ context.Context, key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.Sets++
	if fs.SetErr != nil {
		return fs.SetErr
	}
	fs.values[key] = value
	return nil
}

func (fs *FakeStorage) Remove(_ context.Context, key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.Removes++
	if fs.RemoveErr != nil {
		return fs.RemoveErr
	}
	delete(fs.values, key)
	return nil
}

func (fs *FakeStorage) Close() error {
	return nil
}

// Put writes a raw value without counting it as a Set, for seeding tests.
func (fs *FakeStorage) Put(key, value string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.values[key] = value
}

// Raw returns the stored value without counting it as a Get.
func (fs *FakeStorage) Raw(key string) (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	v, ok := fs.values[key]
	return v, ok
}
