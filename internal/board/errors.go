package board

import "errors"

var (
	// ErrMalformedFEN is returned when a FEN string cannot be parsed into a
	// valid position.
	ErrMalformedFEN = errors.New("malformed FEN")

	// ErrIllegalMove is returned when a requested move is not legal in the
	// current position.
	ErrIllegalMove = errors.New("illegal move")

	// ErrEmptyHistory is the panic value of UnmakeMove on an empty undo stack.
	ErrEmptyHistory = errors.New("unmake with empty history")
)
