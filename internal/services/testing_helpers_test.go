package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/dentclinic/internal/store"
)

var fixedNow = time.Date(2026, time.March, 9, 15, 4, 5, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newLocalStore() *store.Local {
	return store.NewLocal(store.NewMemoryKV(), quietLogger())
}

// failingStore fails every call with a backend error and counts the calls made.
type failingStore struct {
	calls int
}

func (failing *failingStore) fail(op string, collection store.Collection) error {
	failing.calls++
	return &store.BackendError{Op: op, Collection: collection, Err: errors.New("connection refused")}
}

func (failing *failingStore) List(_ context.Context, collection store.Collection, _ store.Query, _ any) error {
	return failing.fail("list", collection)
}

func (failing *failingStore) Insert(_ context.Context, collection store.Collection, _ any) error {
	return failing.fail("insert", collection)
}

func (failing *failingStore) Update(_ context.Context, collection store.Collection, _ string, _ map[string]any) error {
	return failing.fail("update", collection)
}

func (failing *failingStore) Remove(_ context.Context, collection store.Collection, _ string) error {
	return failing.fail("remove", collection)
}

// racingStore reports every slot as free and rejects inserts as duplicates, the way
// the remote unique index answers a booking that lost a race.
type racingStore struct {
	store.Persistence
}

func (racing racingStore) List(context.Context, store.Collection, store.Query, any) error {
	return nil
}

func (racing racingStore) Insert(_ context.Context, collection store.Collection, _ any) error {
	return &store.BackendError{Op: "insert", Collection: collection, Err: store.ErrDuplicate}
}
