package game

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPolicyDealsFromFront(t *testing.T) {
	shoe := stacked("2s3s4s5s6s")
	assert.Equal(t, shoe, RandomPolicy{}.Arrange(shoe))
}

func TestScenarioPolicy(t *testing.T) {
	tests := []struct {
		scenario Scenario
		check    func(t *testing.T, s GameState)
	}{
		{ScenarioSplit, func(t *testing.T, s GameState) {
			assert.True(t, s.PlayerHand.IsPair())
			assert.True(t, s.CanSplit)
			up, _ := s.DealerUpcard()
			assert.True(t, up.Value() >= 2 && up.Value() <= 6)
		}},
		{ScenarioDouble, func(t *testing.T, s GameState) {
			assert.Equal(t, 11, s.PlayerHand.Total)
			assert.False(t, s.PlayerHand.IsSoft)
		}},
		{ScenarioHit, func(t *testing.T, s GameState) {
			assert.GreaterOrEqual(t, s.PlayerHand.Total, 12)
			assert.LessOrEqual(t, s.PlayerHand.Total, 16)
			up, _ := s.DealerUpcard()
			assert.GreaterOrEqual(t, up.Value(), 7)
		}},
		{ScenarioStand, func(t *testing.T, s GameState) {
			assert.GreaterOrEqual(t, s.PlayerHand.Total, 17)
			assert.LessOrEqual(t, s.PlayerHand.Total, 20)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.scenario), func(t *testing.T) {
			for seed := int64(0); seed < 20; seed++ {
				shoe, err := deck.NewShuffledShoe(6, randutil.New(seed))
				require.NoError(t, err)
				s, err := InitializeGame(shoe, 1000)
				require.NoError(t, err)
				s, err = PlaceBet(s, 10)
				require.NoError(t, err)
				s, err = DealInitialCards(s, ScenarioPolicy{Scenario: tt.scenario})
				require.NoError(t, err)
				tt.check(t, s)
				assert.Equal(t, len(shoe)-4, s.Deck.Remaining())
			}
		})
	}
}

func TestScenarioPolicyFallsBack(t *testing.T) {
	shoe := stacked("2s3s4s5s6s7s")
	assert.Equal(t, shoe, ScenarioPolicy{Scenario: ScenarioSplit}.Arrange(shoe))
	assert.Equal(t, shoe, ScenarioPolicy{Scenario: ScenarioNone}.Arrange(shoe))
	assert.Equal(t, stacked("2s"), ScenarioPolicy{Scenario: ScenarioStand}.Arrange(stacked("2s")))
}

func TestScenarioPolicyKeepsCardsIntact(t *testing.T) {
	shoe, err := deck.NewShuffledShoe(2, randutil.New(3))
	require.NoError(t, err)
	arranged := ScenarioPolicy{Scenario: ScenarioDouble}.Arrange(shoe)
	assert.ElementsMatch(t, shoe, arranged)
}
