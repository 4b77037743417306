package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "data"))
	if err := s.EnsureFile(); err != nil {
		t.Fatalf("ensure file: %v", err)
	}
	return s
}

func TestEnsureFileInitializesEmptyDocument(t *testing.T) {
	s := newTestStore(t)
	users, err := s.Load()
	if err != nil {
		t.Fatalf("load fresh document: %v", err)
	}
	if len(users.Users) != 0 {
		t.Fatalf("fresh document not empty: %+v", users.Users)
	}

	// A second EnsureFile must not wipe existing records.
	users.Upsert(User{UserID: 7, Model: "gpt-4"})
	if err := s.Persist(users); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := s.EnsureFile(); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	again, err := s.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Users) != 1 {
		t.Fatalf("ensure overwrote existing document")
	}
}

func TestLoadMissing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nowhere"))
	if _, err := s.Load(); !errors.Is(err, ErrMissing) {
		t.Fatalf("want ErrMissing, got %v", err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("\xff\xff not cbor"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got %v", err)
	}
}

func TestRoundTripIdentity(t *testing.T) {
	s := newTestStore(t)
	want := &Users{Users: []User{
		{UserID: 1, Model: "gpt-3.5-turbo"},
		{UserID: 42, Model: "gpt-4"},
		{UserID: 18446744073709551615, Model: "yandexgpt"},
	}}
	if err := s.Persist(want); err != nil {
		t.Fatalf("persist: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// persist(load()) must be a no-op.
	if err := s.Persist(loaded); err != nil {
		t.Fatalf("re-persist: %v", err)
	}
	again, err := s.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(want, again) {
		t.Fatalf("round trip lost fields:\nwant %+v\ngot  %+v", want, again)
	}
}

func TestUpsertKeepsOneRecordPerUser(t *testing.T) {
	users := &Users{}
	if res := users.Upsert(User{UserID: 5, Model: "gpt-3.5-turbo"}); res != Inserted {
		t.Fatalf("first upsert should insert")
	}
	if res := users.Upsert(User{UserID: 5, Model: "gpt-4"}); res != Updated {
		t.Fatalf("second upsert should update")
	}
	users.Upsert(User{UserID: 5, Model: "gpt-3.5-turbo"})
	users.Upsert(User{UserID: 9, Model: "gpt-4"})

	count := 0
	for _, u := range users.Users {
		if u.UserID == 5 {
			count++
			if u.Model != "gpt-3.5-turbo" {
				t.Fatalf("model not last-upserted value: %q", u.Model)
			}
		}
	}
	if count != 1 {
		t.Fatalf("want exactly one record for user 5, got %d", count)
	}
}

func TestFindByUser(t *testing.T) {
	empty := &Users{}
	if got := empty.FindByUser(1); got != nil {
		t.Fatalf("find on empty store: %+v", got)
	}

	users := &Users{Users: []User{
		{UserID: 2, Model: "gpt-4"},
		{UserID: 3, Model: "gpt-3.5-turbo"},
	}}
	got := users.FindByUser(3)
	if got == nil || got.UserID != 3 || got.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected match: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	users := &Users{Users: []User{{UserID: 1, Model: "gpt-4"}}}
	if !users.Delete(1) {
		t.Fatalf("delete existing record returned false")
	}
	if users.Delete(1) {
		t.Fatalf("delete absent record returned true")
	}
	if len(users.Users) != 0 {
		t.Fatalf("record not removed")
	}
}

func TestUserLockSerializesSameUser(t *testing.T) {
	s := newTestStore(t)

	// Run many load→mutate→persist rounds for the same user concurrently;
	// with the per-user lock held no update may be lost.
	const rounds = 20
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.LockUser(1)
			defer s.UnlockUser(1)
			users, err := s.Load()
			if err != nil {
				t.Errorf("load: %v", err)
				return
			}
			users.Upsert(User{UserID: 1, Model: "gpt-4"})
			users.Users = append(users.Users, User{UserID: uint64(100 + len(users.Users)), Model: "gpt-3.5-turbo"})
			if err := s.Persist(users); err != nil {
				t.Errorf("persist: %v", err)
			}
		}()
	}
	wg.Wait()

	users, err := s.Load()
	if err != nil {
		t.Fatalf("final load: %v", err)
	}
	// One record for user 1 plus one appended filler per round.
	if len(users.Users) != rounds+1 {
		t.Fatalf("lost updates: want %d records, got %d", rounds+1, len(users.Users))
	}
}
