package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// EventType labels what happened.
type EventType string

const (
	EventOpExecuted  EventType = "op_executed"
	EventTokenMinted EventType = "token_minted"
	EventTokenBought EventType = "token_bought"
	EventTokenSold   EventType = "token_sold"
	EventTransfer    EventType = "transfer"
	EventPayment     EventType = "payment"
)

// Event carries a typed payload emitted after a state change.
type Event struct {
	Type EventType      `json:"type"`
	OpID string         `json:"op_id"`
	Data map[string]any `json:"data"`
}

// Handler is a callback invoked for matching events.
type Handler func(Event)

// Emitter is a simple pub/sub broker. Subscribe before Emit.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	log      zerolog.Logger
}

// NewEmitter creates an Emitter with no subscribers.
func NewEmitter(log zerolog.Logger) *Emitter {
	return &Emitter{handlers: make(map[EventType][]Handler), log: log}
}

// Subscribe registers h to be called whenever typ is emitted.
func (e *Emitter) Subscribe(typ EventType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[typ] = append(e.handlers[typ], h)
}

// Emit delivers ev to all subscribers for ev.Type synchronously.
// Each handler is guarded by panic recovery so a misbehaving subscriber
// cannot crash the daemon or abort operation settlement.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	handlers := e.handlers[ev.Type]
	e.mu.RUnlock()
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.log.Error().
						Str("event", string(ev.Type)).
						Any("panic", r).
						Msg("event handler panicked")
				}
			}()
			h(ev)
		}()
	}
}
