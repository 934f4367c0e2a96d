package services

import (
	"context"
	"time"

	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/realtime"
	"github.com/MAximeXX/AIEval/internal/realtime/bus"
)

const emitTimeout = 3 * time.Second

// Emitter hands one event to the live channel. Implementations never block
// the caller on subscribers and report transport failures as
// *ChannelUnavailableError.
type Emitter interface {
	Emit(ctx context.Context, scope realtime.Scope, ev realtime.Event) error
}

type HubEmitter struct{ Hub *realtime.Hub }

func (e *HubEmitter) Emit(ctx context.Context, scope realtime.Scope, ev realtime.Event) error {
	if e == nil || e.Hub == nil {
		return &domainerrs.ChannelUnavailableError{Scope: string(scope), Err: realtime.ErrHubClosed}
	}
	e.Hub.Publish(scope, ev)
	return nil
}

// BusEmitter publishes through the cross-process bus. Delivery to local
// subscribers happens when the forwarder echoes the envelope back, so on a
// publish failure the event goes straight to the local hub instead.
type BusEmitter struct {
	Bus bus.Bus
	Hub *realtime.Hub
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, scope realtime.Scope, ev realtime.Event) error {
	ctx, cancel := ctxutil.Detached(ctx, emitTimeout)
	defer cancel()
	err := e.Bus.Publish(ctx, bus.Envelope{Scope: scope, Event: ev})
	if err == nil {
		return nil
	}
	if e.Hub != nil {
		e.Hub.Publish(scope, ev)
	}
	return &domainerrs.ChannelUnavailableError{Scope: string(scope), Err: err}
}
