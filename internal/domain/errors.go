package domain

import "errors"

var (
	// ErrEmptySubmission is returned when a quiz is submitted with no answers.
	ErrEmptySubmission = errors.New("submission contains no answers")
	// ErrUserNotFound indicates the requested user row does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)
