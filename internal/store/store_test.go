package store

import (
	"encoding/json"
	"strings"
	"testing"

	"noteboard-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(NewMemoryBackend())
	if err := s.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return s
}

func strptr(s string) *string { return &s }

func TestSeed(t *testing.T) {
	s := newTestStore(t)

	users := s.Users()
	if len(users) != 1 {
		t.Fatalf("expected 1 seeded user, got %d", len(users))
	}

	admin := users[0]
	if admin.ID != SeedAdminID {
		t.Errorf("seed ID = %q, want %q", admin.ID, SeedAdminID)
	}
	if admin.Email != SeedAdminEmail {
		t.Errorf("seed email = %q, want %q", admin.Email, SeedAdminEmail)
	}
	if admin.Role != domain.RoleAdmin {
		t.Errorf("seed role = %q, want ADMIN", admin.Role)
	}

	if notes := s.Notes(); len(notes) != 0 {
		t.Errorf("expected empty note collection, got %d notes", len(notes))
	}
}

func TestSeedIdempotent(t *testing.T) {
	s := newTestStore(t)

	added, err := s.AddUser(domain.User{Username: "bob", Email: "bob@x.com", Role: domain.RoleUser, Password: "pw"})
	if err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}

	if err := s.Seed(); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	users := s.Users()
	if len(users) != 2 {
		t.Fatalf("reseeding changed the collection, got %d users", len(users))
	}
	if users[1].ID != added.ID {
		t.Errorf("expected added user to survive reseed")
	}
}

func TestAddUserAssignsUniqueIDs(t *testing.T) {
	s := newTestStore(t)

	seen := map[string]bool{SeedAdminID: true}
	for i := 0; i < 20; i++ {
		u, err := s.AddUser(domain.User{Username: "u", Email: "u@x.com", Role: domain.RoleUser})
		if err != nil {
			t.Fatalf("AddUser() error = %v", err)
		}
		if u.ID == "" {
			t.Fatal("AddUser() returned empty ID")
		}
		if seen[u.ID] {
			t.Fatalf("duplicate ID %q", u.ID)
		}
		seen[u.ID] = true
	}

	if got := len(s.Users()); got != 21 {
		t.Errorf("Users() length = %d, want 21", got)
	}
}

func TestAddThenDeleteRestoresCollection(t *testing.T) {
	s := newTestStore(t)
	before := s.Users()

	added, err := s.AddUser(domain.User{Username: "bob", Email: "bob@x.com", Role: domain.RoleUser, Password: "pw"})
	if err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}

	removed, err := s.DeleteUser(added.ID)
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if !removed {
		t.Error("DeleteUser() applied = false, want true")
	}

	after := s.Users()
	if len(after) != len(before) {
		t.Fatalf("Users() length = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("user %d: ID = %q, want %q", i, after[i].ID, before[i].ID)
		}
	}
}

func TestDeleteUserMissingIsNoOp(t *testing.T) {
	s := newTestStore(t)
	before := s.Users()

	removed, err := s.DeleteUser("does-not-exist")
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if removed {
		t.Error("DeleteUser() applied = true for missing ID")
	}

	if got := s.Users(); len(got) != len(before) {
		t.Errorf("Users() length changed from %d to %d", len(before), len(got))
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"seeded credentials", SeedAdminEmail, SeedAdminPassword, true},
		{"wrong password", SeedAdminEmail, "nope", false},
		{"unknown email", "ghost@example.com", SeedAdminPassword, false},
		{"case sensitive email", strings.ToUpper(SeedAdminEmail), SeedAdminPassword, false},
		{"case sensitive password", SeedAdminEmail, strings.ToUpper(SeedAdminPassword), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)

			user, err := s.Login(tt.email, tt.password)
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}

			if !tt.want {
				if user != nil {
					t.Errorf("Login() = %+v, want nil", user)
				}
				if s.CurrentUser() != nil {
					t.Error("failed login wrote a session")
				}
				return
			}

			if user == nil {
				t.Fatal("Login() = nil, want user")
			}
			if user.Password != "" {
				t.Error("Login() result carries a password")
			}
			if user.Role != domain.RoleAdmin {
				t.Errorf("Login() role = %q, want ADMIN", user.Role)
			}
		})
	}
}

func TestFailedLoginKeepsExistingSession(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Login(SeedAdminEmail, SeedAdminPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := s.Login(SeedAdminEmail, "wrong"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	current := s.CurrentUser()
	if current == nil || current.ID != SeedAdminID {
		t.Errorf("existing session was disturbed by a failed login: %+v", current)
	}
}

func TestSessionNeverSerializesPassword(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend)
	if err := s.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	if _, err := s.Login(SeedAdminEmail, SeedAdminPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	raw, present, err := backend.Get("app_current_user")
	if err != nil || !present {
		t.Fatalf("session blob missing: present=%v err=%v", present, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("session blob unparsable: %v", err)
	}
	if _, ok := fields["password"]; ok {
		t.Error("session blob contains a password field")
	}
}

func TestLogout(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Login(SeedAdminEmail, SeedAdminPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if s.CurrentUser() == nil {
		t.Fatal("expected active session after login")
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if s.CurrentUser() != nil {
		t.Error("session survived logout")
	}

	// Idempotent with no active session.
	if err := s.Logout(); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestUpdateUserSyncsSession(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Login(SeedAdminEmail, SeedAdminPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	updated := domain.User{
		ID:       SeedAdminID,
		Username: "root",
		Email:    "root@example.com",
		Role:     domain.RoleAdmin,
		Password: "newpass456",
	}
	applied, err := s.UpdateUser(updated)
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if !applied {
		t.Fatal("UpdateUser() applied = false")
	}

	current := s.CurrentUser()
	if current == nil {
		t.Fatal("session disappeared after update")
	}
	if current.Username != "root" || current.Email != "root@example.com" {
		t.Errorf("session not synchronized: %+v", current)
	}
	if current.Password != "" {
		t.Error("session carries a password after update")
	}
}

func TestUpdateUserMissingIsNoOp(t *testing.T) {
	s := newTestStore(t)

	applied, err := s.UpdateUser(domain.User{ID: "ghost", Username: "g", Email: "g@x.com"})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if applied {
		t.Error("UpdateUser() applied = true for missing ID")
	}
}

func TestUpdateUserKeepsPosition(t *testing.T) {
	s := newTestStore(t)

	first, _ := s.AddUser(domain.User{Username: "a", Email: "a@x.com", Role: domain.RoleUser})
	s.AddUser(domain.User{Username: "b", Email: "b@x.com", Role: domain.RoleUser})

	first.Username = "renamed"
	if _, err := s.UpdateUser(first); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	users := s.Users()
	if users[1].ID != first.ID || users[1].Username != "renamed" {
		t.Errorf("updated record moved or lost changes: %+v", users[1])
	}
}

func TestDeleteUserLeavesNotesAndSession(t *testing.T) {
	s := newTestStore(t)

	victim, _ := s.AddUser(domain.User{Username: "bob", Email: "bob@x.com", Role: domain.RoleUser, Password: "pw"})
	if _, err := s.SaveNote(NoteInput{UserID: victim.ID, Title: strptr("orphan"), Content: strptr("body")}); err != nil {
		t.Fatalf("SaveNote() error = %v", err)
	}
	if _, err := s.Login("bob@x.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := s.DeleteUser(victim.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if len(s.Notes()) != 1 {
		t.Error("deleting a user cascaded to notes")
	}
	if s.CurrentUser() == nil {
		t.Error("deleting the session user cleared the session")
	}
}

func TestSaveNoteCreateThenMerge(t *testing.T) {
	s := newTestStore(t)

	created, err := s.SaveNote(NoteInput{UserID: "1", Title: strptr("A"), Content: strptr("B")})
	if err != nil {
		t.Fatalf("SaveNote() error = %v", err)
	}

	if created.ID == "" {
		t.Fatal("SaveNote() did not assign an ID")
	}
	if created.Title != "A" || created.Content != "B" {
		t.Errorf("created note = %+v", created)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("fresh note timestamps differ: %v vs %v", created.CreatedAt, created.UpdatedAt)
	}

	merged, err := s.SaveNote(NoteInput{ID: created.ID, Content: strptr("C")})
	if err != nil {
		t.Fatalf("SaveNote() error = %v", err)
	}

	if merged.Title != "A" {
		t.Errorf("merge lost title, got %q", merged.Title)
	}
	if merged.Content != "C" {
		t.Errorf("merge content = %q, want C", merged.Content)
	}
	if !merged.CreatedAt.Equal(created.CreatedAt) {
		t.Error("merge changed the created timestamp")
	}
	if merged.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("merge did not advance the updated timestamp")
	}

	if got := len(s.Notes()); got != 1 {
		t.Errorf("Notes() length = %d, want 1", got)
	}
}

func TestSaveNoteUnknownIDCreatesFresh(t *testing.T) {
	s := newTestStore(t)

	note, err := s.SaveNote(NoteInput{ID: "stale-id", UserID: "1", Title: strptr("T"), Content: strptr("C")})
	if err != nil {
		t.Fatalf("SaveNote() error = %v", err)
	}

	if note.ID == "stale-id" {
		t.Error("stale identifier was carried onto the created record")
	}
	if note.ID == "" {
		t.Error("created record has no identifier")
	}
}

func TestDeleteNote(t *testing.T) {
	s := newTestStore(t)

	note, _ := s.SaveNote(NoteInput{UserID: "1", Title: strptr("T"), Content: strptr("C")})

	removed, err := s.DeleteNote(note.ID)
	if err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	if !removed {
		t.Error("DeleteNote() applied = false")
	}
	if len(s.Notes()) != 0 {
		t.Error("note survived deletion")
	}

	removed, err = s.DeleteNote(note.ID)
	if err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	if removed {
		t.Error("DeleteNote() applied = true for missing ID")
	}
}

func TestCorruptBlobReadsAsEmpty(t *testing.T) {
	backend := NewMemoryBackend()
	backend.Put("app_users", []byte("{not json"))
	backend.Put("app_notes", []byte("42"))

	s := New(backend)

	if got := s.Users(); len(got) != 0 {
		t.Errorf("corrupt users blob read as %d records", len(got))
	}
	if got := s.Notes(); len(got) != 0 {
		t.Errorf("corrupt notes blob read as %d records", len(got))
	}
}

func TestFileBackendSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	s := New(backend)
	if err := s.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	added, err := s.AddUser(domain.User{Username: "bob", Email: "bob@x.com", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}

	reopened, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend() reopen error = %v", err)
	}

	s2 := New(reopened)
	users := s2.Users()
	if len(users) != 2 {
		t.Fatalf("reopened store has %d users, want 2", len(users))
	}
	if users[1].ID != added.ID {
		t.Errorf("reopened store lost the added user")
	}
}
