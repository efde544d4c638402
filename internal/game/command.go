package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

// CommandKind enumerates the state transitions Apply understands.
type CommandKind int

const (
	CommandPlaceBet CommandKind = iota
	CommandDeal
	CommandPlayerAction
	CommandDealerPlay
	CommandReset
	CommandReshuffle
)

func (k CommandKind) String() string {
	switch k {
	case CommandPlaceBet:
		return "place-bet"
	case CommandDeal:
		return "deal"
	case CommandPlayerAction:
		return "player-action"
	case CommandDealerPlay:
		return "dealer-play"
	case CommandReset:
		return "reset"
	case CommandReshuffle:
		return "reshuffle"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is a single input to the state machine. Only the fields relevant
// to Kind are read.
type Command struct {
	Kind   CommandKind
	Amount int
	Action Action
	Policy DealingPolicy
	Shoe   deck.Shoe
}

func PlaceBetCommand(amount int) Command { return Command{Kind: CommandPlaceBet, Amount: amount} }
func DealCommand(p DealingPolicy) Command { return Command{Kind: CommandDeal, Policy: p} }
func ActionCommand(a Action) Command { return Command{Kind: CommandPlayerAction, Action: a} }
func DealerPlayCommand() Command { return Command{Kind: CommandDealerPlay} }
func ResetCommand() Command { return Command{Kind: CommandReset} }
func ReshuffleCommand(shoe deck.Shoe) Command {
	return Command{Kind: CommandReshuffle, Shoe: shoe}
}

// Apply dispatches cmd to the matching operation.
func Apply(s GameState, cmd Command) (GameState, error) {
	switch cmd.Kind {
	case CommandPlaceBet:
		return PlaceBet(s, cmd.Amount)
	case CommandDeal:
		return DealInitialCards(s, cmd.Policy)
	case CommandPlayerAction:
		return ExecutePlayerAction(s, cmd.Action)
	case CommandDealerPlay:
		return PlayDealerHand(s)
	case CommandReset:
		return ResetRound(s)
	case CommandReshuffle:
		return Reshuffle(s, cmd.Shoe)
	}
	return s, fmt.Errorf("%w: command %s", ErrUnknownAction, cmd.Kind)
}

// Replay applies cmds in order, stopping at the first error.
func Replay(s GameState, cmds ...Command) (GameState, error) {
	for i, cmd := range cmds {
		next, err := Apply(s, cmd)
		if err != nil {
			return s, fmt.Errorf("command %d (%s): %w", i, cmd.Kind, err)
		}
		s = next
	}
	return s, nil
}
