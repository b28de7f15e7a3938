package services

import "errors"

// ErrNotFound covers every lookup miss, including rows that exist but belong
// to another user. Handlers map it to 404 without distinguishing the two.
var ErrNotFound = errors.New("resource not found")

// ErrValidation marks client mistakes that map to a 400.
var ErrValidation = errors.New("validation failed")
