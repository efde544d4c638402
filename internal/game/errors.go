package game

import "errors"

var (
	// ErrWrongPhase is returned when an operation is invoked outside the
	// phase it belongs to.
	ErrWrongPhase = errors.New("wrong phase")
	// ErrInsufficientFunds is returned when a bet, double, split or
	// insurance wager exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrIllegalAction is returned when an action's availability flag is
	// not set.
	ErrIllegalAction = errors.New("illegal action")
	// ErrInvalidBet is returned for non-positive bets or bets outside the
	// table limits.
	ErrInvalidBet = errors.New("invalid bet")
	// ErrUnknownAction is returned for an action or command kind the
	// engine does not recognise.
	ErrUnknownAction = errors.New("unknown action")
)
