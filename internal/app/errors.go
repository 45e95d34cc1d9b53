package app

import "errors"

var (
	ErrNotFound = errors.New("not found")
)
