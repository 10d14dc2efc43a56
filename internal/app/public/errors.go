package public

import (
	"errors"

	"nexus-points/internal/store"
	"nexus-points/internal/wager"
)

var ErrInvalidRequest = errors.New("invalid_request")

// UserMessage renders a typed engine failure as chat-facing text. Internal
// identifiers and storage details never leak through here; anything
// unrecognized collapses to a generic failure line.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		return "You don't have enough points for that."
	case errors.Is(err, store.ErrInvalidState):
		return "That wager isn't accepting this action right now."
	case errors.Is(err, wager.ErrInvalidOutcome):
		return "The named winner isn't part of that wager."
	case errors.Is(err, store.ErrConflict):
		return "You've already joined that wager."
	case errors.Is(err, store.ErrNotFound):
		return "No such wager."
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, wager.ErrInvalidRequest), errors.Is(err, store.ErrInvalidAmount):
		return "That request doesn't look right."
	default:
		return "Something went wrong, try again in a moment."
	}
}
