package service

import (
	"errors"
	"fmt"
	"time"

	"noteboard-server/internal/domain"
	"noteboard-server/internal/repository"
	"noteboard-server/pkg/hash"

	"github.com/google/uuid"
)

// UserService covers the admin user-management surface and self-service
// profile updates. Every user it returns is redacted.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

func (s *UserService) GetByID(id string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	safe := user.Redacted()
	return &safe, nil
}

func (s *UserService) List() ([]*domain.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	safe := make([]*domain.User, 0, len(users))
	for _, u := range users {
		redacted := u.Redacted()
		safe = append(safe, &redacted)
	}
	return safe, nil
}

func (s *UserService) Create(req *domain.CreateUserRequest) (*domain.User, error) {
	if err := s.checkUnique(req.Email, req.Username, ""); err != nil {
		return nil, err
	}

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	safe := user.Redacted()
	return &safe, nil
}

func (s *UserService) Update(id string, req *domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.checkUnique(req.Email, req.Username, id); err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.Email = req.Email
	user.Role = req.Role
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.UpdatedAt = time.Now()

	if req.Password != "" {
		hashedPassword, err := hash.Hash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashedPassword
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	safe := user.Redacted()
	return &safe, nil
}

// Delete refuses to remove the acting admin's own account and the last
// remaining administrator.
func (s *UserService) Delete(actorID, id string) error {
	if actorID == id {
		return ErrSelfDelete
	}

	target, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if target.Role == domain.RoleAdmin {
		admins, err := s.countAdmins()
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UpdateProfile lets an authenticated user change their own record. Role is
// not touchable from here.
func (s *UserService) UpdateProfile(userID string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.checkUnique(req.Email, req.Username, userID); err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.UpdatedAt = time.Now()

	if req.Password != "" {
		hashedPassword, err := hash.Hash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashedPassword
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	safe := user.Redacted()
	return &safe, nil
}

// checkUnique rejects an email or username already held by a different user.
// selfID exempts the record being updated.
func (s *UserService) checkUnique(email, username, selfID string) error {
	if existing, err := s.userRepo.FindByEmail(email); err == nil {
		if existing.ID != selfID {
			return ErrEmailTaken
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if existing, err := s.userRepo.FindByUsername(username); err == nil {
		if existing.ID != selfID {
			return ErrUsernameTaken
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	return nil
}

func (s *UserService) countAdmins() (int, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	count := 0
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			count++
		}
	}
	return count, nil
}
