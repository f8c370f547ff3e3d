// Package store is an on-device stand-in for the real backend: three record
// collections (users, notes, current session), each serialized as one JSON
// blob under a fixed key of an injected key-value Backend.
//
// Absence is communicated through return values, never through errors:
// lookups that miss return nil or a false applied flag, and a missing or
// unparsable blob reads as the empty collection. The only errors the store
// ever returns come from the underlying medium failing a write.
package store

import (
	"encoding/json"
	"time"

	"noteboard-server/internal/domain"

	"github.com/google/uuid"
)

const (
	usersKey   = "app_users"
	notesKey   = "app_notes"
	sessionKey = "app_current_user"
)

// Fixed record the user collection is seeded with on first use.
const (
	SeedAdminID       = "1"
	SeedAdminUsername = "admin"
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "password123"
)

type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Seed populates absent collections with their defaults: a single fixed
// admin user and an empty note list. It checks only for absence of the
// top-level keys and never overwrites existing data.
func (s *Store) Seed() error {
	if _, present, _ := s.backend.Get(usersKey); !present {
		admin := domain.User{
			ID:       SeedAdminID,
			Username: SeedAdminUsername,
			Email:    SeedAdminEmail,
			Role:     domain.RoleAdmin,
			Password: SeedAdminPassword,
		}
		if err := s.writeUsers([]domain.User{admin}); err != nil {
			return err
		}
	}

	if _, present, _ := s.backend.Get(notesKey); !present {
		if err := s.writeNotes([]domain.Note{}); err != nil {
			return err
		}
	}

	return nil
}

// Users returns all user records in insertion order. An absent or corrupt
// collection reads as empty.
func (s *Store) Users() []domain.User {
	var users []domain.User
	s.readJSON(usersKey, &users)
	return users
}

// AddUser assigns a fresh identifier, appends the record and persists the
// collection. No uniqueness checks beyond the generated identifier are made.
func (s *Store) AddUser(user domain.User) (domain.User, error) {
	users := s.Users()
	user.ID = uuid.New().String()
	users = append(users, user)

	if err := s.writeUsers(users); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UpdateUser replaces the record with a matching identifier in place and
// reports whether a record was found. When the updated user is the current
// session user, the session record is refreshed with the password stripped.
func (s *Store) UpdateUser(user domain.User) (bool, error) {
	users := s.Users()

	index := -1
	for i := range users {
		if users[i].ID == user.ID {
			index = i
			break
		}
	}
	if index == -1 {
		return false, nil
	}

	users[index] = user
	if err := s.writeUsers(users); err != nil {
		return false, err
	}

	if current := s.CurrentUser(); current != nil && current.ID == user.ID {
		if err := s.writeSession(user.Redacted()); err != nil {
			return false, err
		}
	}

	return true, nil
}

// DeleteUser removes the record with the given identifier and reports
// whether one was present. Notes owned by the user and the session record
// are deliberately left untouched.
func (s *Store) DeleteUser(id string) (bool, error) {
	users := s.Users()

	filtered := users[:0:0]
	for _, u := range users {
		if u.ID != id {
			filtered = append(filtered, u)
		}
	}

	if err := s.writeUsers(filtered); err != nil {
		return false, err
	}
	return len(filtered) < len(users), nil
}

// Login scans for a user whose email and password both match exactly. On a
// match the redacted user becomes the session record and is returned; on no
// match it returns nil and leaves any existing session untouched.
func (s *Store) Login(email, password string) (*domain.User, error) {
	for _, u := range s.Users() {
		if u.Email == email && u.Password == password {
			safe := u.Redacted()
			if err := s.writeSession(safe); err != nil {
				return nil, err
			}
			return &safe, nil
		}
	}
	return nil, nil
}

// Logout clears the session slot. Calling it with no active session is a
// no-op.
func (s *Store) Logout() error {
	return s.backend.Delete(sessionKey)
}

// CurrentUser returns the session record, or nil when no session exists.
func (s *Store) CurrentUser() *domain.User {
	var user domain.User
	if !s.readJSON(sessionKey, &user) {
		return nil
	}
	return &user
}

// Notes returns all note records in insertion order.
func (s *Store) Notes() []domain.Note {
	var notes []domain.Note
	s.readJSON(notesKey, &notes)
	return notes
}

// NoteInput carries the fields of a note save. Nil Title or Content means
// "leave the stored value alone" on update; a missing ID requests creation.
type NoteInput struct {
	ID      string
	UserID  string
	Title   *string
	Content *string
}

// SaveNote merges the input over the stored record when the identifier is
// found, refreshing only the updated timestamp. Otherwise it creates a new
// record with a fresh identifier and both timestamps set to now; an unknown
// input identifier is discarded rather than carried onto the new record.
func (s *Store) SaveNote(input NoteInput) (domain.Note, error) {
	notes := s.Notes()
	now := time.Now().UTC()

	if input.ID != "" {
		for i := range notes {
			if notes[i].ID != input.ID {
				continue
			}

			merged := notes[i]
			if input.UserID != "" {
				merged.UserID = input.UserID
			}
			if input.Title != nil {
				merged.Title = *input.Title
			}
			if input.Content != nil {
				merged.Content = *input.Content
			}
			merged.UpdatedAt = now

			notes[i] = merged
			if err := s.writeNotes(notes); err != nil {
				return domain.Note{}, err
			}
			return merged, nil
		}
	}

	note := domain.Note{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}

	notes = append(notes, note)
	if err := s.writeNotes(notes); err != nil {
		return domain.Note{}, err
	}
	return note, nil
}

// DeleteNote removes the record with the given identifier and reports
// whether one was present.
func (s *Store) DeleteNote(id string) (bool, error) {
	notes := s.Notes()

	filtered := notes[:0:0]
	for _, n := range notes {
		if n.ID != id {
			filtered = append(filtered, n)
		}
	}

	if err := s.writeNotes(filtered); err != nil {
		return false, err
	}
	return len(filtered) < len(notes), nil
}

func (s *Store) readJSON(key string, out interface{}) bool {
	value, present, err := s.backend.Get(key)
	if err != nil || !present {
		return false
	}
	return json.Unmarshal(value, out) == nil
}

func (s *Store) writeUsers(users []domain.User) error {
	return s.writeJSON(usersKey, users)
}

func (s *Store) writeNotes(notes []domain.Note) error {
	return s.writeJSON(notesKey, notes)
}

func (s *Store) writeSession(user domain.User) error {
	return s.writeJSON(sessionKey, user)
}

func (s *Store) writeJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.backend.Put(key, data)
}
