package domain

import "errors"

var (
	ErrInvalidRecord = errors.New("invalid job record")
	ErrMissingID     = errors.New("job record is missing an identifier")
	ErrRender        = errors.New("render failure")
	ErrNotFound      = errors.New("not found")
)
