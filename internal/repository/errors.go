package repository

import "errors"

// ErrInvalidTransition means a lifecycle update found the record in an
// unexpected state and changed nothing
var ErrInvalidTransition = errors.New("invalid email state transition")
