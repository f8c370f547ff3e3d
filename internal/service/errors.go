package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrNotOwner           = errors.New("note does not belong to user")
	ErrSelfDelete         = errors.New("cannot delete own account")
	ErrLastAdmin          = errors.New("cannot remove the last administrator")
)
