package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

// DealerShouldHit reports whether the dealer draws on h. The dealer hits
// below 17, and on soft 17 only when the rules say so.
func DealerShouldHit(h deck.Hand, rules Rules) bool {
	if h.Total < 17 {
		return true
	}
	return h.Total == 17 && h.IsSoft && rules.DealerHitsSoft17
}

// PlayDealerHand draws dealer cards per the rules and settles every live
// hand against the result.
func PlayDealerHand(s GameState) (GameState, error) {
	if s.Phase != PhaseDealerTurn {
		return s, fmt.Errorf("dealer play: %w: phase is %s", ErrWrongPhase, s.Phase)
	}

	next := s.Clone()
	for DealerShouldHit(next.DealerHand, next.Rules) {
		c, rest, err := deck.DealOne(next.Deck)
		if err != nil {
			return s, fmt.Errorf("dealer play: %w", err)
		}
		next.Deck = rest
		next.DealerHand = deck.AddCard(next.DealerHand, c)
	}

	if next.IsSplit {
		return settleSplitHands(next), nil
	}
	result := DetermineResult(next.PlayerHand, next.DealerHand)
	outcome := HandOutcome{
		Bet:    next.CurrentBet,
		Result: result,
		Payout: CalculateWinnings(next.CurrentBet, result),
	}
	return finishRound(next, []HandOutcome{outcome}, result), nil
}

// DetermineResult compares a finished player hand with the dealer's.
// First match wins: player bust, dealer bust, player blackjack, dealer
// blackjack, then totals. Two blackjacks push.
func DetermineResult(player, dealer deck.Hand) Result {
	switch {
	case player.IsBusted:
		return DealerWins
	case dealer.IsBusted:
		return PlayerWins
	case player.IsBlackjack && !dealer.IsBlackjack:
		return PlayerBlackjack
	case dealer.IsBlackjack && !player.IsBlackjack:
		return DealerBlackjack
	case player.Total > dealer.Total:
		return PlayerWins
	case dealer.Total > player.Total:
		return DealerWins
	default:
		return Push
	}
}

// CalculateWinnings returns the total amount credited back for a hand,
// stake included. Blackjack pays 3:2 rounded down.
func CalculateWinnings(bet int, result Result) int {
	switch result {
	case PlayerWins:
		return 2 * bet
	case PlayerBlackjack:
		return bet * 5 / 2
	case Push:
		return bet
	default:
		return 0
	}
}

// settleSplitHands resolves each split hand. A two-card 21 on a split hand
// is an ordinary 21, not a natural.
func settleSplitHands(s GameState) GameState {
	outcomes := make([]HandOutcome, len(s.SplitHands))
	wagered, returned := 0, 0
	for i := range s.SplitHands {
		sh := &s.SplitHands[i]
		h := sh.Hand
		h.IsBlackjack = false
		sh.Result = DetermineResult(h, s.DealerHand)
		sh.IsComplete = true
		outcomes[i] = HandOutcome{Bet: sh.Bet, Result: sh.Result, Payout: CalculateWinnings(sh.Bet, sh.Result)}
		wagered += sh.Bet
		returned += outcomes[i].Payout
	}

	overall := Push
	switch {
	case returned > wagered:
		overall = PlayerWins
	case returned < wagered:
		overall = DealerWins
	}
	return finishRound(s, outcomes, overall)
}

// finishRound credits payouts, resolves insurance against the dealer's
// hand, records the settlement and moves to game-over. Insurance pays 2:1.
func finishRound(s GameState, outcomes []HandOutcome, result Result) GameState {
	st := &Settlement{
		PreviousBalance: s.PlayerScore,
		InsuranceBet:    s.InsuranceBet,
		Hands:           outcomes,
	}
	for _, o := range outcomes {
		st.TotalWagered += o.Bet
		st.TotalReturned += o.Payout
	}
	if s.InsuranceBet > 0 {
		st.TotalWagered += s.InsuranceBet
		if s.DealerHand.IsBlackjack {
			st.InsuranceReturned = 3 * s.InsuranceBet
			st.TotalReturned += st.InsuranceReturned
		}
	}
	st.LastHandWinnings = st.TotalReturned - st.TotalWagered

	s.PlayerScore += st.TotalReturned
	s.Settlement = st
	s.Result = result
	s.Phase = PhaseGameOver
	s.IsGameActive = false
	s.clearFlags()
	return s
}
