package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apostrophe-corp/daohub/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// DevnetLedger simulates the governing contracts in-process so the console
// can run without a node. Deployed proposals resolve after a fixed delay:
// passed when upvotes beat downvotes, failed otherwise. Every subscriber
// sees every contract's notifications, mirroring the hub-wide event feed.
type DevnetLedger struct {
	mtx           sync.Mutex
	logger        cmtlog.Logger
	resolveAfter  time.Duration
	nextIndex     int
	contracts     map[string]*devContract
	createdSubs   []func([]byte)
	resolutionSub []func([]byte)
}

type devContract struct {
	prop        types.InitialProposal
	ref         string
	upvotes     uint64
	downvotes   uint64
	contributed uint64
	refunded    bool
	resolved    types.Outcome
}

func NewDevnetLedger(logger cmtlog.Logger, resolveAfter time.Duration) *DevnetLedger {
	return &DevnetLedger{
		logger:       logger.With("module", "devnet"),
		resolveAfter: resolveAfter,
		contracts:    make(map[string]*devContract),
	}
}

func (l *DevnetLedger) Deploy(ctx context.Context, p types.InitialProposal) (string, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.nextIndex++
	ref := fmt.Sprintf(`{"index":%d}`, l.nextIndex)
	c := &devContract{prop: p, ref: ref}
	l.contracts[ref] = c
	l.logger.Info("deployed", "ref", ref, "proposal", p.IsProposal)
	if p.IsProposal {
		l.emitCreatedLocked(c)
		if l.resolveAfter > 0 {
			time.AfterFunc(l.resolveAfter, func() { l.timeout(ref) })
		}
	}
	return ref, nil
}

func (l *DevnetLedger) Attach(ctx context.Context, contractRef string) (Handle, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	c, ok := l.contracts[contractRef]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadContractRef, contractRef)
	}
	return &devHandle{ledger: l, contract: c}, nil
}

// Withdraw takes a proposal down, emitting the corresponding resolution.
func (l *DevnetLedger) Withdraw(contractRef string) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	c, ok := l.contracts[contractRef]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBadContractRef, contractRef)
	}
	if c.resolved != types.OutcomeUnknown {
		return ErrClosed
	}
	c.resolved = types.OutcomeWithdrawn
	l.emitResolutionLocked(c, types.OutcomeWithdrawn)
	return nil
}

func (l *DevnetLedger) timeout(ref string) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	c, ok := l.contracts[ref]
	if !ok || c.resolved != types.OutcomeUnknown {
		return
	}
	if c.upvotes > c.downvotes {
		c.resolved = types.OutcomePassed
	} else {
		c.resolved = types.OutcomeFailed
	}
	l.emitResolutionLocked(c, c.resolved)
}

func (l *DevnetLedger) emitCreatedLocked(c *devContract) {
	rec, err := types.EncodeEventCreated(&types.EventCreated{
		Id:          c.prop.Id,
		Title:       c.prop.Title,
		Link:        c.prop.Link,
		Description: c.prop.Description,
		Owner:       c.prop.Owner,
		ContractRef: c.ref,
	})
	if err != nil {
		l.logger.Error("encode creation record", "err", err)
		return
	}
	for _, fn := range l.createdSubs {
		go fn(rec)
	}
}

func (l *DevnetLedger) emitResolutionLocked(c *devContract, outcome types.Outcome) {
	l.logger.Info("resolved", "ref", c.ref, "outcome", outcome.String())
	rec, err := types.EncodeEventResolution(&types.EventResolution{Outcome: outcome, Id: c.prop.Id})
	if err != nil {
		l.logger.Error("encode resolution record", "err", err)
		return
	}
	for _, fn := range l.resolutionSub {
		go fn(rec)
	}
}

type devHandle struct {
	ledger   *DevnetLedger
	contract *devContract
}

func (h *devHandle) Upvote(ctx context.Context) (uint64, error) {
	h.ledger.mtx.Lock()
	defer h.ledger.mtx.Unlock()
	if h.contract.resolved != types.OutcomeUnknown {
		return 0, ErrClosed
	}
	h.contract.upvotes++
	return h.contract.upvotes, nil
}

func (h *devHandle) Downvote(ctx context.Context) (uint64, error) {
	h.ledger.mtx.Lock()
	defer h.ledger.mtx.Unlock()
	if h.contract.resolved != types.OutcomeUnknown {
		return 0, ErrClosed
	}
	h.contract.downvotes++
	return h.contract.downvotes, nil
}

func (h *devHandle) Contribute(ctx context.Context, amount uint64) (uint64, error) {
	h.ledger.mtx.Lock()
	defer h.ledger.mtx.Unlock()
	if h.contract.resolved != types.OutcomeUnknown {
		return 0, ErrClosed
	}
	h.contract.contributed += amount
	return h.contract.contributed, nil
}

func (h *devHandle) ClaimRefund(ctx context.Context) (bool, error) {
	h.ledger.mtx.Lock()
	defer h.ledger.mtx.Unlock()
	if h.contract.resolved != types.OutcomeFailed || h.contract.refunded || h.contract.contributed == 0 {
		return false, nil
	}
	h.contract.refunded = true
	return true, nil
}

func (h *devHandle) SubscribeCreated(ctx context.Context, fn func(payload []byte)) error {
	h.ledger.mtx.Lock()
	defer h.ledger.mtx.Unlock()
	h.ledger.createdSubs = append(h.ledger.createdSubs, fn)
	// replay this contract's own creation so late subscribers converge
	if h.contract.prop.IsProposal {
		l := h.ledger
		c := h.contract
		rec, err := types.EncodeEventCreated(&types.EventCreated{
			Id:          c.prop.Id,
			Title:       c.prop.Title,
			Link:        c.prop.Link,
			Description: c.prop.Description,
			Owner:       c.prop.Owner,
			ContractRef: c.ref,
		})
		if err != nil {
			l.logger.Error("encode creation record", "err", err)
			return nil
		}
		go fn(rec)
	}
	return nil
}

func (h *devHandle) SubscribeResolutions(ctx context.Context, fn func(payload []byte)) error {
	h.ledger.mtx.Lock()
	defer h.ledger.mtx.Unlock()
	h.ledger.resolutionSub = append(h.ledger.resolutionSub, fn)
	return nil
}
