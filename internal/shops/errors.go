package shops

import "errors"

var (
	ErrNotFound     = errors.New("shop not found")
	ErrInvalidInput = errors.New("invalid input")
)
