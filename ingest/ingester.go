package ingest

import (
	"context"

	"github.com/apostrophe-corp/daohub/store"
	"github.com/apostrophe-corp/daohub/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const defaultQueueSize = 256

// Sink receives decoded notifications after they have been applied to the
// store. Used to keep secondary read models (the mirror) in step.
type Sink interface {
	OnCreated(ev types.EventCreated)
	OnResolved(ev types.EventResolution)
}

type event struct {
	created    *types.EventCreated
	resolution *types.EventResolution
}

// Ingester decodes notification payloads pushed by governing contracts and
// applies them to the proposal store through a single consumer loop, so
// application order is exactly arrival order. Malformed payloads and
// unrecognized resolution tags are dropped without touching state; the
// ledger is the only legitimate emitter, so an unknown tag means a protocol
// version mismatch, not a local fault.
type Ingester struct {
	logger cmtlog.Logger
	store  *store.ProposalStore
	queue  chan event
	sinks  []Sink
}

func New(logger cmtlog.Logger, st *store.ProposalStore) *Ingester {
	return &Ingester{
		logger: logger.With("module", "ingest"),
		store:  st,
		queue:  make(chan event, defaultQueueSize),
	}
}

// WithSink registers a sink. Must be called before Start.
func (ing *Ingester) WithSink(s Sink) *Ingester {
	ing.sinks = append(ing.sinks, s)
	return ing
}

// Created accepts a raw creation record. Safe to pass as a subscription
// callback.
func (ing *Ingester) Created(payload []byte) {
	ev, err := types.DecodeEventCreated(payload)
	if err != nil {
		ing.logger.Debug("drop creation record", "err", err)
		return
	}
	ing.queue <- event{created: ev}
}

// Resolved accepts a raw resolution record. Safe to pass as a subscription
// callback.
func (ing *Ingester) Resolved(payload []byte) {
	ev, err := types.DecodeEventResolution(payload)
	if err != nil {
		ing.logger.Debug("drop resolution record", "err", err)
		return
	}
	ing.queue <- event{resolution: ev}
}

// Start runs the consumer loop until ctx is cancelled.
func (ing *Ingester) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ing.queue:
			ing.apply(ev)
		}
	}
}

func (ing *Ingester) apply(ev event) {
	switch {
	case ev.created != nil:
		ing.applyCreated(*ev.created)
	case ev.resolution != nil:
		ing.applyResolution(*ev.resolution)
	}
}

func (ing *Ingester) applyCreated(ev types.EventCreated) {
	ing.logger.Info("proposal created", "id", ev.Id, "title", ev.Title)
	ing.store.Put(types.Proposal{
		Id:          ev.Id,
		Title:       ev.Title,
		Link:        ev.Link,
		Description: ev.Description,
		Owner:       ev.Owner,
		ContractRef: ev.ContractRef,
	})
	for _, s := range ing.sinks {
		s.OnCreated(ev)
	}
}

func (ing *Ingester) applyResolution(ev types.EventResolution) {
	ing.logger.Info("proposal resolved", "id", ev.Id, "outcome", ev.Outcome.String())
	ing.store.Resolve(ev.Id, ev.Outcome)
	for _, s := range ing.sinks {
		s.OnResolved(ev)
	}
}
