package strategy

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// TrainingMode is the action a player is practising.
type TrainingMode string

const (
	TrainingNone   TrainingMode = "none"
	TrainingDouble TrainingMode = "double-down"
	TrainingHit    TrainingMode = "hit"
	TrainingStand  TrainingMode = "stand"
	TrainingSplit  TrainingMode = "split"
)

// TrainingModes lists the valid modes.
var TrainingModes = []TrainingMode{TrainingNone, TrainingDouble, TrainingHit, TrainingStand, TrainingSplit}

// ParseTrainingMode accepts a mode name; the empty string means none.
func ParseTrainingMode(v string) (TrainingMode, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "off" {
		return TrainingNone, nil
	}
	if v == "double" {
		return TrainingDouble, nil
	}
	for _, m := range TrainingModes {
		if string(m) == v {
			return m, nil
		}
	}
	return TrainingNone, fmt.Errorf("unknown training mode %q", v)
}

// Target returns the action the mode practises.
func (m TrainingMode) Target() (game.Action, bool) {
	switch m {
	case TrainingDouble:
		return game.DoubleDown, true
	case TrainingHit:
		return game.Hit, true
	case TrainingStand:
		return game.Stand, true
	case TrainingSplit:
		return game.Split, true
	}
	return "", false
}

// Scenario returns the dealing scenario that sets up practice hands.
func (m TrainingMode) Scenario() game.Scenario {
	switch m {
	case TrainingDouble:
		return game.ScenarioDouble
	case TrainingHit:
		return game.ScenarioHit
	case TrainingStand:
		return game.ScenarioStand
	case TrainingSplit:
		return game.ScenarioSplit
	}
	return game.ScenarioNone
}

// Policy returns the dealing policy for the mode.
func (m TrainingMode) Policy() game.DealingPolicy {
	if sc := m.Scenario(); sc != game.ScenarioNone {
		return game.ScenarioPolicy{Scenario: sc}
	}
	return game.RandomPolicy{}
}

// WithTrainingNote appends a note to rec's reasoning when its action is not
// the one being practised. The action itself is never changed.
func WithTrainingNote(rec Recommendation, mode TrainingMode) Recommendation {
	target, ok := mode.Target()
	if !ok || rec.Action == target {
		return rec
	}
	rec.Reasoning = fmt.Sprintf("%s\n\nTraining Note: this is not a %s opportunity. The correct play is %s.",
		rec.Reasoning, target.Label(), rec.Action.Label())
	return rec
}

// Advice is the full hint for a position.
type Advice struct {
	Primary Recommendation
	All     []Recommendation
}

// Advise returns the primary recommendation, annotated for mode, together
// with every alternative. ok is false when no action is possible.
func Advise(hand deck.Hand, upcard deck.Card, mode TrainingMode) (Advice, bool) {
	all := Recommend(hand, upcard)
	primary, ok := Primary(all)
	if !ok {
		return Advice{}, false
	}
	return Advice{Primary: WithTrainingNote(primary, mode), All: all}, true
}
