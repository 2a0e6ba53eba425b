package control

import "errors"

var (
	ErrAxisOutOfRange   = errors.New("snapshot has no value for bound axis")
	ErrButtonOutOfRange = errors.New("snapshot has no value for bound button")
	ErrUnknownChannel   = errors.New("unknown velocity channel")
	ErrUnknownAction    = errors.New("unknown action")
	ErrMissingChannel   = errors.New("velocity channel is not bound")
	ErrNegativeID       = errors.New("binding id must not be negative")
	ErrDuplicateButton  = errors.New("button is bound to more than one action")
)
