package services

import "errors"

var (
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserBanned         = errors.New("account is banned")

	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInsufficientCanes  = errors.New("insufficient canes")

	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyInRoom  = errors.New("already in the room")
	ErrNotHost        = errors.New("only the host can start the game")
	ErrRoomNotWaiting = errors.New("room is not accepting players")
	ErrRoomNotPlaying = errors.New("round is not running")
	ErrNotInRoom      = errors.New("not in a room")
)
