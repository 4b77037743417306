package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

const fileName = "users.cbor"

var (
	// ErrMissing means the preference document does not exist on disk.
	ErrMissing = errors.New("preference document missing")
	// ErrCorrupt means the on-disk bytes do not parse as a document.
	ErrCorrupt = errors.New("preference document corrupt")
)

// User is one preference record: which completion engine a user selected.
// At most one record per UserID exists in a document.
type User struct {
	UserID uint64 `cbor:"user_id"`
	Model  string `cbor:"model"`
}

// Users is a point-in-time snapshot of the full preference document. A
// caller loads it, mutates it and persists the same snapshot back; nothing
// merges concurrent snapshots.
type Users struct {
	Users []User `cbor:"users"`
}

// FindByUser returns the record for the given id, or nil.
func (u *Users) FindByUser(userID uint64) *User {
	for i := range u.Users {
		if u.Users[i].UserID == userID {
			return &u.Users[i]
		}
	}
	return nil
}

type UpsertResult int

const (
	Inserted UpsertResult = iota
	Updated
)

// Upsert replaces the model of an existing record or appends a new one,
// keeping the one-record-per-user invariant.
func (u *Users) Upsert(user User) UpsertResult {
	for i := range u.Users {
		if u.Users[i].UserID == user.UserID {
			u.Users[i].Model = user.Model
			return Updated
		}
	}
	u.Users = append(u.Users, user)
	return Inserted
}

// Delete removes the record for the given id. Not wired to any command;
// kept as a store capability.
func (u *Users) Delete(userID uint64) bool {
	for i := range u.Users {
		if u.Users[i].UserID == userID {
			u.Users = append(u.Users[:i], u.Users[i+1:]...)
			return true
		}
	}
	return false
}

// Store reads and writes the preference document at a fixed path.
type Store struct {
	path  string
	locks userLocks
}

func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// EnsureFile creates the data directory and initializes an empty document
// if none exists. Called once at startup.
func (s *Store) EnsureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	return s.Persist(&Users{Users: []User{}})
}

// Load reads and decodes the full document.
func (s *Store) Load() (*Users, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, s.path)
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var users Users
	if err := cbor.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &users, nil
}

// Persist overwrites the document with the given snapshot. The new bytes
// are written to a temp file and renamed over the old one, so a concurrent
// Load sees either version in full, never a partial write.
func (s *Store) Persist(users *Users) error {
	raw, err := cbor.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), fileName+".tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
