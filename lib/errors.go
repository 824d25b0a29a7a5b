package bbox_lib

import "errors"

// Error kinds, wrapped with %w so callers can match with errors.Is.
var (
	ErrInvalidName    = errors.New("invalid target name")
	ErrAlreadyExists  = errors.New("target already exists")
	ErrNotFound       = errors.New("not found")
	ErrMount          = errors.New("mount helper failed")
	ErrBootstrap      = errors.New("bootstrap failed")
	ErrSpecParse      = errors.New("package spec error")
	ErrUnsafeDeletion = errors.New("unsafe to delete")
	ErrConfig         = errors.New("configuration error")
	ErrProvision      = errors.New("provisioning failed")
)
