package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

// SplitHand is one of the hands created by splitting.
type SplitHand struct {
	Hand       deck.Hand
	Bet        int
	Doubled    bool
	IsComplete bool
	Result     Result
}

// HandOutcome records how one wagered hand settled.
type HandOutcome struct {
	Bet    int
	Result Result
	Payout int
}

// Settlement describes the money movement of a finished round. It is set
// whenever a round reaches game-over and cleared by the next PlaceBet.
type Settlement struct {
	// PreviousBalance is the balance immediately before payouts were credited.
	PreviousBalance int
	// TotalWagered includes doubles, split hands and insurance.
	TotalWagered int
	// TotalReturned is everything credited back, insurance included.
	TotalReturned     int
	InsuranceBet      int
	InsuranceReturned int
	// LastHandWinnings is the net result: TotalReturned - TotalWagered.
	LastHandWinnings int
	Hands            []HandOutcome
}

// GameState is the complete state of a round. Treat it as a value: every
// operation in this package returns a new GameState and leaves its input
// untouched.
type GameState struct {
	Phase Phase
	Rules Rules

	Deck       deck.Shoe
	PlayerHand deck.Hand
	DealerHand deck.Hand

	PlayerScore  int
	CurrentBet   int
	InsuranceBet int
	Doubled      bool
	IsGameActive bool

	CanDoubleDown    bool
	CanSplit         bool
	CanSurrender     bool
	CanTakeInsurance bool

	Result Result

	IsSplit              bool
	SplitHands           []SplitHand
	ActiveSplitHandIndex int

	Settlement *Settlement
}

// Option configures InitializeGame.
type Option func(*gameConfig)

type gameConfig struct {
	rules Rules
}

// WithRules overrides DefaultRules.
func WithRules(r Rules) Option {
	return func(c *gameConfig) {
		c.rules = r
	}
}

// InitializeGame creates a betting-phase state over shoe with the given
// balance.
func InitializeGame(shoe deck.Shoe, balance int, opts ...Option) (GameState, error) {
	cfg := &gameConfig{rules: DefaultRules()}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.rules.Validate(); err != nil {
		return GameState{}, fmt.Errorf("invalid rules: %w", err)
	}
	if balance < 0 {
		return GameState{}, fmt.Errorf("balance must be non-negative, got %d", balance)
	}
	return GameState{
		Phase:       PhaseBetting,
		Rules:       cfg.rules,
		Deck:        shoe.Clone(),
		PlayerScore: balance,
	}, nil
}

// Clone returns a copy that shares no mutable data with s.
func (s GameState) Clone() GameState {
	out := s
	out.PlayerHand = s.PlayerHand.Clone()
	out.DealerHand = s.DealerHand.Clone()
	if s.SplitHands != nil {
		out.SplitHands = make([]SplitHand, len(s.SplitHands))
		for i, sh := range s.SplitHands {
			sh.Hand = sh.Hand.Clone()
			out.SplitHands[i] = sh
		}
	}
	if s.Settlement != nil {
		st := *s.Settlement
		st.Hands = append([]HandOutcome(nil), s.Settlement.Hands...)
		out.Settlement = &st
	}
	return out
}

// ActiveHand returns the hand the player is currently acting on.
func (s GameState) ActiveHand() deck.Hand {
	if s.IsSplit && s.ActiveSplitHandIndex < len(s.SplitHands) {
		return s.SplitHands[s.ActiveSplitHandIndex].Hand
	}
	return s.PlayerHand
}

// ActiveBet returns the wager on the active hand.
func (s GameState) ActiveBet() int {
	if s.IsSplit && s.ActiveSplitHandIndex < len(s.SplitHands) {
		return s.SplitHands[s.ActiveSplitHandIndex].Bet
	}
	return s.CurrentBet
}

// DealerUpcard returns the dealer's visible card.
func (s GameState) DealerUpcard() (deck.Card, bool) {
	if len(s.DealerHand.Cards) == 0 {
		return deck.Card{}, false
	}
	return s.DealerHand.Cards[0], true
}

// TotalAtRisk is the sum of all wagers on the table.
func (s GameState) TotalAtRisk() int {
	total := s.InsuranceBet
	if s.IsSplit {
		for _, sh := range s.SplitHands {
			total += sh.Bet
		}
		return total
	}
	return total + s.CurrentBet
}

// AvailableActions lists the actions legal in the current state.
func (s GameState) AvailableActions() []Action {
	if s.Phase != PhasePlayerTurn {
		return nil
	}
	actions := []Action{Hit, Stand}
	if s.CanDoubleDown {
		actions = append(actions, DoubleDown)
	}
	if s.CanSplit {
		actions = append(actions, Split)
	}
	if s.CanSurrender {
		actions = append(actions, Surrender)
	}
	if s.CanTakeInsurance {
		actions = append(actions, Insurance)
	}
	return actions
}

// CanAct reports whether a is currently legal.
func (s GameState) CanAct(a Action) bool {
	for _, x := range s.AvailableActions() {
		if x == a {
			return true
		}
	}
	return false
}

func (s *GameState) setActiveHand(h deck.Hand) {
	if s.IsSplit {
		s.SplitHands[s.ActiveSplitHandIndex].Hand = h
	}
	s.PlayerHand = h
}

func (s *GameState) clearFlags() {
	s.CanDoubleDown = false
	s.CanSplit = false
	s.CanSurrender = false
	s.CanTakeInsurance = false
}
