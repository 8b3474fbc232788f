package domain

import "errors"

var (
	ErrNotFound       = errors.New("project not found")
	ErrForbidden      = errors.New("not the project owner")
	ErrInvalidProject = errors.New("invalid project")
	ErrInvalidView    = errors.New("invalid view")
	ErrNoFile         = errors.New("project has no file")
)
