package models

import "errors"

// ErrInvalidRating reports a rating outside the four-valued enum. This is a
// contract violation by the caller, not a recoverable scheduling condition.
var ErrInvalidRating = errors.New("invalid rating")

// ErrWrongMode reports a scheduling call against a card in the other mode.
var ErrWrongMode = errors.New("card is in the wrong mode for this operation")
