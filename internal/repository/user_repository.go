package repository

import (
	"context"
	"errors"
	"fmt"

	"noteboard-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id string) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	List() ([]*domain.User, error)
	Update(user *domain.User) error
	Delete(id string) error
	EmailExists(email string) (bool, error)
	UsernameExists(username string) (bool, error)
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *userRepository) Create(user *domain.User) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("user:%s", user.ID)
	_, err := db.Put(context.Background(), docID, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByID(id string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("user:%s", id)
	row := db.Get(context.Background(), docID)

	var user domain.User
	if err := row.ScanDoc(&user); err != nil {
		return nil, ErrNotFound
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	return r.findOne(map[string]interface{}{"email": email})
}

func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	return r.findOne(map[string]interface{}{"username": username})
}

func (r *userRepository) findOne(selector map[string]interface{}) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": selector,
		"limit":    1,
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var user domain.User
	if err := rows.ScanDoc(&user); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) List() ([]*domain.User, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"username": map[string]interface{}{"$exists": true},
			"email":    map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.ScanDoc(&user); err != nil {
			continue
		}
		users = append(users, &user)
	}

	return users, nil
}

func (r *userRepository) Update(user *domain.User) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("user:%s", user.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return ErrNotFound
	}

	existingDoc["username"] = user.Username
	existingDoc["email"] = user.Email
	existingDoc["role"] = user.Role
	existingDoc["firstName"] = user.FirstName
	existingDoc["lastName"] = user.LastName
	existingDoc["password"] = user.Password
	existingDoc["updated_at"] = user.UpdatedAt

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *userRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("user:%s", id)

	row := db.Get(context.Background(), docID)

	var existingDoc map[string]interface{}
	if err := row.ScanDoc(&existingDoc); err != nil {
		return ErrNotFound
	}

	rev, _ := existingDoc["_rev"].(string)
	if _, err := db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func (r *userRepository) EmailExists(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *userRepository) UsernameExists(username string) (bool, error) {
	_, err := r.FindByUsername(username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
