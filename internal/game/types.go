package game

import (
	"fmt"
	"strings"
)

// Phase is the stage of a round.
type Phase string

const (
	PhaseBetting    Phase = "betting"
	PhaseDealing    Phase = "dealing"
	PhasePlayerTurn Phase = "player-turn"
	PhaseDealerTurn Phase = "dealer-turn"
	PhaseGameOver   Phase = "game-over"
)

func (p Phase) String() string { return string(p) }

// Action is a player decision.
type Action string

const (
	Hit        Action = "hit"
	Stand      Action = "stand"
	DoubleDown Action = "double-down"
	Split      Action = "split"
	Surrender  Action = "surrender"
	Insurance  Action = "insurance"
)

// Actions lists every player action.
var Actions = []Action{Hit, Stand, DoubleDown, Split, Surrender, Insurance}

func (a Action) String() string { return string(a) }

// Label returns the upper-case display name, e.g. "DOUBLE DOWN".
func (a Action) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(a), "-", " "))
}

// ParseAction accepts action names and the usual short forms.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit", "h":
		return Hit, nil
	case "stand", "s", "stay":
		return Stand, nil
	case "double-down", "double", "d", "dd":
		return DoubleDown, nil
	case "split", "p":
		return Split, nil
	case "surrender", "r":
		return Surrender, nil
	case "insurance", "i", "insure":
		return Insurance, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Result is the outcome of a hand.
type Result string

const (
	NoResult        Result = ""
	PlayerWins      Result = "player-wins"
	DealerWins      Result = "dealer-wins"
	Push            Result = "push"
	PlayerBlackjack Result = "player-blackjack"
	DealerBlackjack Result = "dealer-blackjack"
)

func (r Result) String() string {
	if r == NoResult {
		return "none"
	}
	return string(r)
}

// IsWin reports whether the player won the hand.
func (r Result) IsWin() bool { return r == PlayerWins || r == PlayerBlackjack }

// IsLoss reports whether the player lost the hand.
func (r Result) IsLoss() bool { return r == DealerWins || r == DealerBlackjack }
