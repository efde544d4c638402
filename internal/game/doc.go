// Package game implements the blackjack round state machine.
//
// The central type is GameState, a value that every operation takes and
// returns. Operations never modify their input, so any state can be kept,
// replayed or compared:
//
//	state, _ := game.InitializeGame(shoe, 1000)
//	state, _ = game.PlaceBet(state, 50)
//	state, _ = game.DealInitialCards(state, game.RandomPolicy{})
//	state, _ = game.ExecutePlayerAction(state, game.Stand)
//	state, _ = game.PlayDealerHand(state)
//	fmt.Println(state.Result, state.Settlement.LastHandWinnings)
//	state, _ = game.ResetRound(state)
//
// Phases move betting → dealing → player-turn → dealer-turn → game-over and
// back to betting via ResetRound. Failures are reported with the sentinel
// errors in errors.go and can be tested with errors.Is.
package game
