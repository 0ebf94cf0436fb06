package resources

import "errors"

var (
	ErrFileNotFound         = errors.New("resource file not found")
	ErrNameTaken            = errors.New("resource name already taken")
	ErrNotFound             = errors.New("resource not found")
	ErrResourceResident     = errors.New("resource is resident in GPU memory")
	ErrNotResident          = errors.New("resource is not resident in GPU memory")
	ErrUnknownBuiltinShader = errors.New("unknown built-in shader program")
	ErrMissingCapability    = errors.New("missing resource capability")
	ErrBuiltinResource      = errors.New("built-in resource cannot be removed")
)
