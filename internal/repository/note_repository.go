package repository

import (
	"context"
	"fmt"
	"time"

	"noteboard-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type NoteRepository interface {
	Create(note *domain.Note) error
	FindByID(id string) (*domain.Note, error)
	List(userID string) ([]*domain.Note, error)
	Update(note *domain.Note) error
	Delete(id string) error
}

type noteRepository struct {
	client *kivik.Client
	dbName string
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *noteRepository) Create(note *domain.Note) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("note:%s", note.ID)
	_, err := db.Put(context.Background(), docID, note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *noteRepository) FindByID(id string) (*domain.Note, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("note:%s", id)
	row := db.Get(context.Background(), docID)

	var note domain.Note
	if err := row.ScanDoc(&note); err != nil {
		return nil, ErrNotFound
	}

	return &note, nil
}

func (r *noteRepository) List(userID string) ([]*domain.Note, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"user_id": userID,
			"title":   map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var note domain.Note
		if err := rows.ScanDoc(&note); err != nil {
			continue
		}
		notes = append(notes, &note)
	}

	return notes, nil
}

func (r *noteRepository) Update(note *domain.Note) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("note:%s", note.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return ErrNotFound
	}

	existingDoc["title"] = note.Title
	existingDoc["content"] = note.Content
	existingDoc["updated_at"] = time.Now().UTC()

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *noteRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("note:%s", id)

	row := db.Get(context.Background(), docID)

	var existingDoc map[string]interface{}
	if err := row.ScanDoc(&existingDoc); err != nil {
		return ErrNotFound
	}

	rev, _ := existingDoc["_rev"].(string)
	if _, err := db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
