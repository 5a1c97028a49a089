package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Flow errors
	ErrInvalidEvent       = errors.New("event is not valid for the current step")
	ErrUnknownOption      = errors.New("unknown option")
	ErrInputNotAccepted   = errors.New("free-text input is not accepted right now")
	ErrGenerationPending  = errors.New("a generation request is already in flight")
	ErrNoGeneratedResult  = errors.New("no generated result exists yet")
	ErrFollowUpNotOpened  = errors.New("follow-up panel is not open")

	// Upload errors
	ErrUnknownImageSlot = errors.New("unknown image slot")
)
