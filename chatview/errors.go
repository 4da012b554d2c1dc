package chatview

import "errors"

var (
	ErrNoTransport    = errors.New("chatview: no transport")
	ErrAlreadyMounted = errors.New("chatview: view already mounted")
	ErrUnmounted      = errors.New("chatview: view unmounted")
)
