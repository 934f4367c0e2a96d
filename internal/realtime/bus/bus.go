package bus

import (
	"context"

	"github.com/MAximeXX/AIEval/internal/realtime"
)

// Envelope is one event addressed to one scope, as carried between
// processes.
type Envelope struct {
	Scope realtime.Scope `json:"scope"`
	Event realtime.Event `json:"event"`
}

type Bus interface {
	Publish(ctx context.Context, env Envelope) error
	StartForwarder(ctx context.Context, onMsg func(env Envelope)) error
	Close() error
}

// Forward delivers envelopes received from the bus into the local hub.
func Forward(hub *realtime.Hub) func(env Envelope) {
	return func(env Envelope) {
		hub.Publish(env.Scope, env.Event)
	}
}
