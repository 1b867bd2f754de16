package storefake

import (
	"context"
	"errors"

	"github.com/gsem/gradebot/store"
)

var _ store.Store = (*FakeStore)(nil)

// FakeStore keeps both tables in memory. Failed updates are rolled back.
type FakeStore struct {
	tables *store.Tables
	lock   store.Lock

	// FailWith, when set, is returned by every View and Update
	FailWith error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		tables: store.NewTables(),
		lock:   store.NewLock(),
	}
}

func (fs *FakeStore) View(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := fs.lock.Acquire(ctx); err != nil {
		return err
	}
	defer fs.lock.Release()

	if fs.FailWith != nil {
		return fs.FailWith
	}
	return fn(fs.tables.Clone())
}

func (fs *FakeStore) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := fs.lock.Acquire(ctx); err != nil {
		return err
	}
	defer fs.lock.Release()

	if fs.FailWith != nil {
		return fs.FailWith
	}
	working := fs.tables.Clone()
	if err := fn(working); err != nil {
		return err
	}
	fs.tables = working
	return nil
}

// Seed stores records directly, bypassing the lock. Test setup only.
func (fs *FakeStore) Seed(fn func(tx store.Tx) error) {
	if err := fn(fs.tables); err != nil {
		panic(errors.Join(errors.New("storefake seed"), err))
	}
}
