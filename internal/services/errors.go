package services

import (
	"errors"

	"wagerd/internal/models"
)

var (
	ErrNotFound       = errors.New("commitment not found")
	ErrStateMismatch  = errors.New("commitment is not active")
	ErrEmptySlip      = errors.New("slip has no drafts")
	ErrTooManyReaders = errors.New("reader limit reached")
	ErrUnknownKind    = errors.New("unknown commitment kind")
	ErrCannotAdvance  = models.ErrCannotAdvance
)
