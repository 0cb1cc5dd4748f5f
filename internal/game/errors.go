package game

import "errors"

var (
	ErrNotContainer = errors.New("object cannot hold contents")
	ErrCircularMove = errors.New("object cannot contain itself")
	ErrBadPath      = errors.New("malformed object path")
	ErrPlayerExists = errors.New("player is already in the world")
)
