package service

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidRoomCode = errors.New("invalid room code")
	ErrInternalServer  = errors.New("internal server error")
)
