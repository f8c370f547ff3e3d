package repository

import (
	"noteboard-server/internal/domain"
	"noteboard-server/internal/store"
)

// Store-backed implementations of the repository interfaces, used when the
// server runs against the local persistence store instead of CouchDB. The
// store hands out its own identifiers and timestamps, so Create copies them
// back onto the caller's record.

type storeUserRepository struct {
	store *store.Store
}

func NewStoreUserRepository(s *store.Store) UserRepository {
	return &storeUserRepository{store: s}
}

func (r *storeUserRepository) Create(user *domain.User) error {
	created, err := r.store.AddUser(*user)
	if err != nil {
		return err
	}
	user.ID = created.ID
	return nil
}

func (r *storeUserRepository) FindByID(id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *storeUserRepository) FindByEmail(email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *storeUserRepository) FindByUsername(username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *storeUserRepository) find(match func(domain.User) bool) (*domain.User, error) {
	for _, u := range r.store.Users() {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *storeUserRepository) List() ([]*domain.User, error) {
	stored := r.store.Users()

	users := make([]*domain.User, 0, len(stored))
	for i := range stored {
		users = append(users, &stored[i])
	}
	return users, nil
}

func (r *storeUserRepository) Update(user *domain.User) error {
	applied, err := r.store.UpdateUser(*user)
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (r *storeUserRepository) Delete(id string) error {
	removed, err := r.store.DeleteUser(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (r *storeUserRepository) EmailExists(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *storeUserRepository) UsernameExists(username string) (bool, error) {
	_, err := r.FindByUsername(username)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

type storeNoteRepository struct {
	store *store.Store
}

func NewStoreNoteRepository(s *store.Store) NoteRepository {
	return &storeNoteRepository{store: s}
}

func (r *storeNoteRepository) Create(note *domain.Note) error {
	created, err := r.store.SaveNote(store.NoteInput{
		UserID:  note.UserID,
		Title:   &note.Title,
		Content: &note.Content,
	})
	if err != nil {
		return err
	}

	note.ID = created.ID
	note.CreatedAt = created.CreatedAt
	note.UpdatedAt = created.UpdatedAt
	return nil
}

func (r *storeNoteRepository) FindByID(id string) (*domain.Note, error) {
	for _, n := range r.store.Notes() {
		if n.ID == id {
			found := n
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *storeNoteRepository) List(userID string) ([]*domain.Note, error) {
	var notes []*domain.Note
	for _, n := range r.store.Notes() {
		if n.UserID == userID {
			note := n
			notes = append(notes, &note)
		}
	}
	return notes, nil
}

func (r *storeNoteRepository) Update(note *domain.Note) error {
	// SaveNote falls back to creation for unknown identifiers; the repository
	// contract wants not-found instead, so check presence first.
	if _, err := r.FindByID(note.ID); err != nil {
		return err
	}

	saved, err := r.store.SaveNote(store.NoteInput{
		ID:      note.ID,
		Title:   &note.Title,
		Content: &note.Content,
	})
	if err != nil {
		return err
	}

	note.UpdatedAt = saved.UpdatedAt
	return nil
}

func (r *storeNoteRepository) Delete(id string) error {
	removed, err := r.store.DeleteNote(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
