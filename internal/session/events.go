package session

import (
	"sync"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
)

// EventType identifies a session event.
type EventType string

const (
	EventTypeRoundStarted EventType = "round_started"
	EventTypeActionTaken  EventType = "action_taken"
	EventTypeDealerPlayed EventType = "dealer_played"
	EventTypeRoundSettled EventType = "round_settled"
	EventTypeReshuffled   EventType = "reshuffled"
	EventTypeRunComplete  EventType = "run_complete"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything published on the session's bus.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartedEvent is published once the initial cards are dealt.
type RoundStartedEvent struct {
	Bet        int
	PlayerHand deck.Hand
	Upcard     deck.Card
	timestamp  time.Time
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Timestamp() time.Time { return e.timestamp }

// ActionTakenEvent is published after each player action. Recommended is
// empty when no recommendation applied to the position.
type ActionTakenEvent struct {
	Action      game.Action
	Recommended game.Action
	Hand        deck.Hand
	Phase       game.Phase
	timestamp   time.Time
}

func (e ActionTakenEvent) EventType() EventType { return EventTypeActionTaken }
func (e ActionTakenEvent) Timestamp() time.Time { return e.timestamp }

// Correct reports whether the action matched the recommendation.
func (e ActionTakenEvent) Correct() bool {
	return e.Recommended == "" || e.Action == e.Recommended
}

// DealerPlayedEvent is published when the dealer has finished drawing.
type DealerPlayedEvent struct {
	DealerHand deck.Hand
	timestamp  time.Time
}

func (e DealerPlayedEvent) EventType() EventType { return EventTypeDealerPlayed }
func (e DealerPlayedEvent) Timestamp() time.Time { return e.timestamp }

// RoundSettledEvent is published when a round reaches game-over.
type RoundSettledEvent struct {
	Round      statistics.Round
	Settlement game.Settlement
	timestamp  time.Time
}

func (e RoundSettledEvent) EventType() EventType { return EventTypeRoundSettled }
func (e RoundSettledEvent) Timestamp() time.Time { return e.timestamp }

// ReshuffledEvent is published when a fresh shoe replaces the old one.
type ReshuffledEvent struct {
	Cards     int
	timestamp time.Time
}

func (e ReshuffledEvent) EventType() EventType { return EventTypeReshuffled }
func (e ReshuffledEvent) Timestamp() time.Time { return e.timestamp }

// RunCompleteEvent is published when the bankroll can no longer cover the
// minimum bet.
type RunCompleteEvent struct {
	Run       statistics.Run
	timestamp time.Time
}

func (e RunCompleteEvent) EventType() EventType { return EventTypeRunComplete }
func (e RunCompleteEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives session events.
type EventSubscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnEvent(event Event) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus delivers events synchronously, in subscription order.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes the first registration of subscriber. SubscriberFunc
// values are not comparable and are ignored.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if _, ok := subscriber.(SubscriberFunc); ok {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if _, ok := sub.(SubscriberFunc); ok {
			continue
		}
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i:i], bus.subscribers[i+1:]...)
			return
		}
	}
}

func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := append([]EventSubscriber(nil), bus.subscribers...)
	bus.mu.RUnlock()

	for _, sub := range subs {
		sub.OnEvent(event)
	}
}
