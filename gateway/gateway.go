// Package gateway routes voting actions to the governing contract and
// reconciles the local record with whatever counter the contract reports.
// It never increments locally; the remote value is the only truth.
package gateway

import (
	"context"
	"fmt"

	"github.com/apostrophe-corp/daohub/ledger"
	"github.com/apostrophe-corp/daohub/store"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// CounterSink receives the reconciled counters after every successful
// remote call. Secondary read models hang off this.
type CounterSink interface {
	SetCounters(id, upvotes, downvotes, contributions uint64)
}

type Gateway struct {
	logger   cmtlog.Logger
	ledger   ledger.Ledger
	store    *store.ProposalStore
	counters CounterSink
}

func New(logger cmtlog.Logger, l ledger.Ledger, st *store.ProposalStore) *Gateway {
	return &Gateway{
		logger: logger.With("module", "gateway"),
		ledger: l,
		store:  st,
	}
}

// WithCounterSink registers an optional sink for reconciled counters.
func (g *Gateway) WithCounterSink(sink CounterSink) *Gateway {
	g.counters = sink
	return g
}

func (g *Gateway) publishCounters(id uint64) {
	if g.counters == nil {
		return
	}
	if p, ok := g.store.Get(id); ok {
		g.counters.SetCounters(p.Id, p.Upvotes, p.Downvotes, p.Contributions)
	}
}

func (g *Gateway) attach(ctx context.Context, id uint64) (ledger.Handle, error) {
	p, ok := g.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("proposal %d not found", id)
	}
	h, err := g.ledger.Attach(ctx, p.ContractRef)
	if err != nil {
		return nil, fmt.Errorf("attach to proposal %d: %w", id, err)
	}
	return h, nil
}

// Upvote casts an up vote on the proposal's contract and stores the counter
// the contract returns. On failure the local record is left untouched.
func (g *Gateway) Upvote(ctx context.Context, id uint64) (uint64, error) {
	h, err := g.attach(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := h.Upvote(ctx)
	if err != nil {
		return 0, fmt.Errorf("upvote proposal %d: %w", id, err)
	}
	g.store.SetUpvotes(id, n)
	g.publishCounters(id)
	return n, nil
}

func (g *Gateway) Downvote(ctx context.Context, id uint64) (uint64, error) {
	h, err := g.attach(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := h.Downvote(ctx)
	if err != nil {
		return 0, fmt.Errorf("downvote proposal %d: %w", id, err)
	}
	g.store.SetDownvotes(id, n)
	g.publishCounters(id)
	return n, nil
}

// Contribute sends amount to the proposal's contract and stores the running
// total of contributions the contract reports back.
func (g *Gateway) Contribute(ctx context.Context, id uint64, amount uint64) (uint64, error) {
	h, err := g.attach(ctx, id)
	if err != nil {
		return 0, err
	}
	total, err := h.Contribute(ctx, amount)
	if err != nil {
		return 0, fmt.Errorf("contribute to proposal %d: %w", id, err)
	}
	g.store.SetContributions(id, total)
	g.publishCounters(id)
	return total, nil
}

// ClaimRefund asks the contract to return the caller's contribution to a
// timed-out proposal. A false result means there was nothing to refund; it
// is not an error.
func (g *Gateway) ClaimRefund(ctx context.Context, id uint64) (bool, error) {
	h, err := g.attach(ctx, id)
	if err != nil {
		return false, err
	}
	ok, err := h.ClaimRefund(ctx)
	if err != nil {
		return false, fmt.Errorf("claim refund on proposal %d: %w", id, err)
	}
	if !ok {
		g.logger.Debug("no refund due", "proposal", id)
	}
	return ok, nil
}
