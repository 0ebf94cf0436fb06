package core

import (
	"errors"
)

var (
	ErrNotRenderThread = errors.New("operation requires the render thread")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknown         = errors.New("unknown")
)
