package repositories

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateURI  = errors.New("a question for this uri already exists")
	ErrAlreadyExists = errors.New("already exists")
	ErrReparented    = errors.New("category parent cannot change")
)
