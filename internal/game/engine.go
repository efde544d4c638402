package game

import (
	"fmt"
	"slices"

	"github.com/lox/blackjack/internal/deck"
)

// PlaceBet moves money from the balance to the table and starts a round.
func PlaceBet(s GameState, amount int) (GameState, error) {
	if s.Phase != PhaseBetting {
		return s, fmt.Errorf("place bet: %w: phase is %s", ErrWrongPhase, s.Phase)
	}
	if amount <= 0 {
		return s, fmt.Errorf("place bet: %w: amount %d must be positive", ErrInvalidBet, amount)
	}
	if amount > s.PlayerScore {
		return s, fmt.Errorf("place bet: %w: bet %d exceeds balance %d", ErrInsufficientFunds, amount, s.PlayerScore)
	}
	if amount < s.Rules.MinBet || amount > s.Rules.MaxBet {
		return s, fmt.Errorf("place bet: %w: %d outside table limits [%d,%d]", ErrInvalidBet, amount, s.Rules.MinBet, s.Rules.MaxBet)
	}

	next := s.Clone()
	next.PlayerScore -= amount
	next.CurrentBet = amount
	next.Phase = PhaseDealing
	next.IsGameActive = true
	next.Settlement = nil
	next.Result = NoResult
	return next, nil
}

// DealInitialCards deals two cards each to player and dealer, alternating
// and starting with the player, then computes the action flags. A nil
// policy deals from the front of the shoe.
func DealInitialCards(s GameState, policy DealingPolicy) (GameState, error) {
	if s.Phase != PhaseDealing {
		return s, fmt.Errorf("deal: %w: phase is %s", ErrWrongPhase, s.Phase)
	}
	if policy == nil {
		policy = RandomPolicy{}
	}

	next := s.Clone()
	shoe := policy.Arrange(next.Deck)
	player, dealer := deck.Hand{}, deck.Hand{}
	for i := 0; i < 4; i++ {
		c, rest, err := deck.DealOne(shoe)
		if err != nil {
			return s, fmt.Errorf("deal: %w", err)
		}
		shoe = rest
		if i%2 == 0 {
			player = deck.AddCard(player, c)
		} else {
			dealer = deck.AddCard(dealer, c)
		}
	}

	next.Deck = shoe
	next.PlayerHand = player
	next.DealerHand = dealer
	next.CanDoubleDown = player.Len() == 2 && !player.IsBusted
	next.CanSplit = player.IsSplittable()
	next.CanSurrender = s.Rules.AllowSurrender && player.Len() == 2 && !player.IsBusted
	next.CanTakeInsurance = s.Rules.AllowInsurance && dealer.Cards[0].IsAce()
	next.Phase = PhasePlayerTurn
	return next, nil
}

// ExecutePlayerAction applies a player decision to the active hand.
func ExecutePlayerAction(s GameState, action Action) (GameState, error) {
	if s.Phase != PhasePlayerTurn {
		return s, fmt.Errorf("%s: %w: phase is %s", action, ErrWrongPhase, s.Phase)
	}
	switch action {
	case Hit:
		return hit(s)
	case Stand:
		return stand(s)
	case DoubleDown:
		return doubleDown(s)
	case Split:
		return split(s)
	case Surrender:
		return surrender(s)
	case Insurance:
		return insurance(s)
	}
	return s, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

func hit(s GameState) (GameState, error) {
	next := s.Clone()
	c, rest, err := deck.DealOne(next.Deck)
	if err != nil {
		return s, fmt.Errorf("hit: %w", err)
	}
	next.Deck = rest
	h := deck.AddCard(next.ActiveHand(), c)
	next.setActiveHand(h)
	next.clearFlags()

	if !h.IsBusted {
		return next, nil
	}
	if next.IsSplit {
		next.SplitHands[next.ActiveSplitHandIndex].Result = DealerWins
		return completeActiveHand(next), nil
	}
	return finishRound(next, []HandOutcome{{Bet: next.CurrentBet, Result: DealerWins}}, DealerWins), nil
}

func stand(s GameState) (GameState, error) {
	next := s.Clone()
	next.clearFlags()
	if next.IsSplit {
		return completeActiveHand(next), nil
	}
	next.Phase = PhaseDealerTurn
	return next, nil
}

func doubleDown(s GameState) (GameState, error) {
	if !s.CanDoubleDown {
		return s, fmt.Errorf("double-down: %w: hand has %d cards", ErrIllegalAction, s.ActiveHand().Len())
	}
	bet := s.ActiveBet()
	if bet > s.PlayerScore {
		return s, fmt.Errorf("double-down: %w: need %d, have %d", ErrInsufficientFunds, bet, s.PlayerScore)
	}

	next := s.Clone()
	c, rest, err := deck.DealOne(next.Deck)
	if err != nil {
		return s, fmt.Errorf("double-down: %w", err)
	}
	next.Deck = rest
	next.PlayerScore -= bet
	h := deck.AddCard(next.ActiveHand(), c)
	next.setActiveHand(h)
	next.clearFlags()

	if next.IsSplit {
		sh := &next.SplitHands[next.ActiveSplitHandIndex]
		sh.Bet += bet
		sh.Doubled = true
		if h.IsBusted {
			sh.Result = DealerWins
		}
		return completeActiveHand(next), nil
	}

	next.CurrentBet += bet
	next.Doubled = true
	if h.IsBusted {
		return finishRound(next, []HandOutcome{{Bet: next.CurrentBet, Result: DealerWins}}, DealerWins), nil
	}
	next.Phase = PhaseDealerTurn
	return next, nil
}

func split(s GameState) (GameState, error) {
	if !s.CanSplit {
		return s, fmt.Errorf("split: %w: hand is not a splittable pair", ErrIllegalAction)
	}
	bet := s.ActiveBet()
	if bet > s.PlayerScore {
		return s, fmt.Errorf("split: %w: need %d, have %d", ErrInsufficientFunds, bet, s.PlayerScore)
	}

	next := s.Clone()
	pair := next.ActiveHand().Cards
	first, second := deck.NewHand(pair[0]), deck.NewHand(pair[1])
	for _, h := range []*deck.Hand{&first, &second} {
		c, rest, err := deck.DealOne(next.Deck)
		if err != nil {
			return s, fmt.Errorf("split: %w", err)
		}
		next.Deck = rest
		*h = deck.AddCard(*h, c)
	}
	next.PlayerScore -= bet

	hands := []SplitHand{{Hand: first, Bet: bet}, {Hand: second, Bet: bet}}
	if !next.IsSplit {
		next.IsSplit = true
		next.SplitHands = hands
		next.ActiveSplitHandIndex = 0
	} else {
		i := next.ActiveSplitHandIndex
		rebuilt := make([]SplitHand, 0, len(next.SplitHands)+1)
		rebuilt = append(rebuilt, next.SplitHands[:i]...)
		rebuilt = append(rebuilt, hands...)
		rebuilt = append(rebuilt, next.SplitHands[i+1:]...)
		next.SplitHands = rebuilt
	}
	next.PlayerHand = next.SplitHands[next.ActiveSplitHandIndex].Hand
	next.clearFlags()

	if next.PlayerHand.IsBusted {
		next.SplitHands[next.ActiveSplitHandIndex].Result = DealerWins
		return completeActiveHand(next), nil
	}
	next.setSplitFlags()
	return next, nil
}

func surrender(s GameState) (GameState, error) {
	if !s.CanSurrender {
		return s, fmt.Errorf("surrender: %w: only allowed on the first two cards", ErrIllegalAction)
	}
	next := s.Clone()
	next.clearFlags()
	refund := next.CurrentBet / 2
	next = finishRound(next, []HandOutcome{{Bet: next.CurrentBet, Result: DealerWins, Payout: refund}}, DealerWins)
	next.CurrentBet = 0
	return next, nil
}

func insurance(s GameState) (GameState, error) {
	if !s.CanTakeInsurance {
		return s, fmt.Errorf("insurance: %w: dealer is not showing an ace", ErrIllegalAction)
	}
	cost := s.CurrentBet / 2
	if cost > s.PlayerScore {
		return s, fmt.Errorf("insurance: %w: need %d, have %d", ErrInsufficientFunds, cost, s.PlayerScore)
	}
	next := s.Clone()
	next.PlayerScore -= cost
	next.InsuranceBet = cost
	next.CanTakeInsurance = false
	return next, nil
}

// completeActiveHand marks the active split hand complete and moves to the
// next incomplete hand. When none remain the round goes to the dealer, or
// straight to settlement if every split hand busted.
func completeActiveHand(s GameState) GameState {
	s.SplitHands[s.ActiveSplitHandIndex].IsComplete = true
	for j := s.ActiveSplitHandIndex + 1; j < len(s.SplitHands); j++ {
		if s.SplitHands[j].IsComplete {
			continue
		}
		s.ActiveSplitHandIndex = j
		s.PlayerHand = s.SplitHands[j].Hand
		s.clearFlags()
		s.setSplitFlags()
		return s
	}

	s.clearFlags()
	for _, sh := range s.SplitHands {
		if !sh.Hand.IsBusted {
			s.Phase = PhaseDealerTurn
			return s
		}
	}
	return settleSplitHands(s)
}

func (s *GameState) setSplitFlags() {
	h := s.ActiveHand()
	s.CanDoubleDown = s.Rules.DoubleAfterSplit && h.Len() == 2 && !h.IsBusted
	s.CanSplit = h.IsSplittable() &&
		len(s.SplitHands) < s.Rules.MaxSplitHands &&
		(!h.Cards[0].IsAce() || s.Rules.ResplitAces)
}

// ResetRound clears the table and returns to betting. Balance, shoe and the
// last settlement carry over. Resetting an in-progress round is refused.
func ResetRound(s GameState) (GameState, error) {
	switch s.Phase {
	case PhaseGameOver, PhaseBetting:
	default:
		return s, fmt.Errorf("reset: %w: round still in progress (%s)", ErrWrongPhase, s.Phase)
	}
	next := s.Clone()
	next.Phase = PhaseBetting
	next.PlayerHand = deck.Hand{}
	next.DealerHand = deck.Hand{}
	next.CurrentBet = 0
	next.InsuranceBet = 0
	next.Doubled = false
	next.IsGameActive = false
	next.clearFlags()
	next.Result = NoResult
	next.IsSplit = false
	next.SplitHands = nil
	next.ActiveSplitHandIndex = 0
	return next, nil
}

// Reshuffle replaces the shoe between rounds.
func Reshuffle(s GameState, shoe deck.Shoe) (GameState, error) {
	if s.Phase != PhaseBetting {
		return s, fmt.Errorf("reshuffle: %w: phase is %s", ErrWrongPhase, s.Phase)
	}
	next := s.Clone()
	next.Deck = shoe.Clone()
	return next, nil
}

// Replenish places shoe behind the cards still to be dealt. Unlike
// Reshuffle it is allowed mid-round, for a round that outlasts the shoe.
func Replenish(s GameState, shoe deck.Shoe) GameState {
	next := s.Clone()
	next.Deck = slices.Concat(s.Deck, shoe)
	return next
}

// MinShoeCards is the fewest cards a round may start with.
const MinShoeCards = 15

// NeedsReshuffle reports whether the cut card has been reached: fewer than
// MinShoeCards remain, or more than penetration of the full shoe has been
// dealt. A penetration outside (0, 1) only applies the minimum.
func (s GameState) NeedsReshuffle(penetration float64) bool {
	if len(s.Deck) < MinShoeCards {
		return true
	}
	if penetration <= 0 || penetration >= 1 {
		return false
	}
	full := s.Rules.DeckCount * deck.CardsPerDeck
	return float64(len(s.Deck)) < float64(full)*(1-penetration)
}
