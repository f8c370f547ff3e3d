package service

import (
	"errors"
	"fmt"
	"time"

	"noteboard-server/internal/domain"
	"noteboard-server/internal/repository"

	"github.com/google/uuid"
)

type NoteService struct {
	repo repository.NoteRepository
}

func NewNoteService(repo repository.NoteRepository) *NoteService {
	return &NoteService{
		repo: repo,
	}
}

func (s *NoteService) Create(userID string, req *domain.CreateNoteRequest) (*domain.Note, error) {
	now := time.Now().UTC()

	note := &domain.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return note, nil
}

func (s *NoteService) List(userID string) ([]*domain.Note, error) {
	notes, err := s.repo.List(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

func (s *NoteService) Update(userID, noteID string, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	note, err := s.fetchOwned(userID, noteID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	note.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return note, nil
}

func (s *NoteService) Delete(userID, noteID string) error {
	if _, err := s.fetchOwned(userID, noteID); err != nil {
		return err
	}

	if err := s.repo.Delete(noteID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func (s *NoteService) fetchOwned(userID, noteID string) (*domain.Note, error) {
	note, err := s.repo.FindByID(noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to look up note: %w", err)
	}

	if note.UserID != userID {
		return nil, ErrNotOwner
	}

	return note, nil
}
