package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrEmptyNickname  = errors.New("nickname must not be empty")

	// Matchmaking errors
	ErrAlreadyQueued = errors.New("nickname is already in the queue")
	ErrSamePlayer    = errors.New("a game requires two distinct players")

	// Game errors
	ErrGameNotFound   = errors.New("game not found")
	ErrNotParticipant = errors.New("player is not in this game")
	ErrGameFinished   = errors.New("game is already finished")
	ErrInvalidMove    = errors.New("move is not allowed")
)
