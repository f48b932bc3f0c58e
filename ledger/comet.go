package ledger

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/apostrophe-corp/daohub/tx"
	"github.com/apostrophe-corp/daohub/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/ethereum/go-ethereum/common"
)

// ErrDevnetOnly is returned by operations the public network does not
// support, such as faucet-funded account creation.
var ErrDevnetOnly = errors.New("only available on devnet")

// CometLedger drives governing contracts over a chain node's RPC endpoint.
// Mutating calls broadcast a signed tx and wait for commit; the
// authoritative counter comes back in the tx result. Notifications arrive
// over the node's websocket event subscriptions.
type CometLedger struct {
	logger  cmtlog.Logger
	url     string
	cli     *comethttp.HTTP
	chainId string
	acct    *Account
	nonce   atomic.Uint64
	subSeq  atomic.Uint64
}

func NewCometLedger(logger cmtlog.Logger, url string) (*CometLedger, error) {
	cli, err := comethttp.New(url, "/websocket")
	if err != nil {
		return nil, err
	}
	if err := cli.Start(); err != nil {
		return nil, fmt.Errorf("start event client: %w", err)
	}
	gres, err := cli.Genesis(context.Background())
	if err != nil {
		return nil, fmt.Errorf("get chain genesis: %w", err)
	}
	return &CometLedger{
		logger:  logger.With("module", "ledger"),
		url:     url,
		cli:     cli,
		chainId: gres.Genesis.ChainID,
	}, nil
}

// BindAccount sets the signing identity for subsequent broadcasts.
func (l *CometLedger) BindAccount(acct *Account) {
	l.acct = acct
}

func (l *CometLedger) Stop() error {
	return l.cli.Stop()
}

func (l *CometLedger) broadcast(ctx context.Context, t tx.DAOTxType, inner any) (*coretypes.ResultBroadcastTxCommit, error) {
	if l.acct == nil {
		return nil, ErrUnknownAccount
	}
	btx, err := tx.NewDAOTx(t, l.nonce.Add(1), l.acct.Address, inner)
	if err != nil {
		return nil, err
	}
	dat, err := btx.SigData([]byte(l.chainId))
	if err != nil {
		return nil, err
	}
	sig, err := l.acct.Sign(dat)
	if err != nil {
		return nil, err
	}
	btx.Sig = [][]byte{sig}
	raw, err := tx.Marshal(btx)
	if err != nil {
		return nil, err
	}
	res, err := l.cli.BroadcastTxCommit(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("broadcast tx: %w", err)
	}
	if res.CheckTx.Code != 0 {
		return nil, fmt.Errorf("tx rejected: %s", res.CheckTx.Log)
	}
	if res.TxResult.Code != 0 {
		return nil, fmt.Errorf("%w: %s", ErrClosed, res.TxResult.Log)
	}
	return res, nil
}

func (l *CometLedger) Deploy(ctx context.Context, p types.InitialProposal) (string, error) {
	res, err := l.broadcast(ctx, tx.DAOTxTypeDeploy, tx.DeployTx{
		Id:          p.Id,
		Title:       p.Title,
		Link:        p.Link,
		Description: p.Description,
		Owner:       p.Owner,
		Deadline:    p.Deadline,
		IsProposal:  p.IsProposal,
	})
	if err != nil {
		return "", err
	}
	ref := string(res.TxResult.Data)
	if ref == "" {
		return "", fmt.Errorf("%w: deploy returned no reference", ErrBadContractRef)
	}
	l.logger.Info("deployed", "ref", ref)
	return ref, nil
}

func (l *CometLedger) Attach(ctx context.Context, contractRef string) (Handle, error) {
	if contractRef == "" {
		return nil, ErrBadContractRef
	}
	res, err := l.cli.ABCIQuery(ctx, "/contracts/", []byte(contractRef))
	if err != nil {
		return nil, fmt.Errorf("query contract: %w", err)
	}
	if res.Response.Code != 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadContractRef, contractRef)
	}
	return &cometHandle{ledger: l, ref: contractRef}, nil
}

type cometHandle struct {
	ledger *CometLedger
	ref    string
}

func (h *cometHandle) vote(ctx context.Context, up bool) (uint64, error) {
	res, err := h.ledger.broadcast(ctx, tx.DAOTxTypeVote, tx.VoteTx{Ref: h.ref, Up: up})
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(res.TxResult.Data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse vote count: %w", err)
	}
	return n, nil
}

func (h *cometHandle) Upvote(ctx context.Context) (uint64, error) {
	return h.vote(ctx, true)
}

func (h *cometHandle) Downvote(ctx context.Context) (uint64, error) {
	return h.vote(ctx, false)
}

func (h *cometHandle) Contribute(ctx context.Context, amount uint64) (uint64, error) {
	res, err := h.ledger.broadcast(ctx, tx.DAOTxTypeContribute, tx.ContributeTx{Ref: h.ref, Amount: amount})
	if err != nil {
		return 0, err
	}
	total, err := strconv.ParseUint(string(res.TxResult.Data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse contribution total: %w", err)
	}
	return total, nil
}

func (h *cometHandle) ClaimRefund(ctx context.Context) (bool, error) {
	res, err := h.ledger.broadcast(ctx, tx.DAOTxTypeRefund, tx.RefundTx{Ref: h.ref})
	if err != nil {
		return false, err
	}
	ok, err := strconv.ParseBool(string(res.TxResult.Data))
	if err != nil {
		return false, fmt.Errorf("parse refund result: %w", err)
	}
	return ok, nil
}

func (h *cometHandle) SubscribeCreated(ctx context.Context, fn func(payload []byte)) error {
	return h.subscribe(ctx, types.EventCreatedType, fn)
}

func (h *cometHandle) SubscribeResolutions(ctx context.Context, fn func(payload []byte)) error {
	return h.subscribe(ctx, types.EventResolutionType, fn)
}

// subscribe listens for the contract's notifications of one kind and feeds
// the hex payload attribute to fn in arrival order.
func (h *cometHandle) subscribe(ctx context.Context, kind string, fn func(payload []byte)) error {
	l := h.ledger
	subscriber := fmt.Sprintf("daohub-%s-%d", kind, l.subSeq.Add(1))
	query := fmt.Sprintf("tm.event='Tx' AND %s.ref='%s'", kind, h.ref)
	ch, err := l.cli.Subscribe(ctx, subscriber, query, 64)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", kind, err)
	}
	payloadKey := kind + ".payload"
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = l.cli.Unsubscribe(context.Background(), subscriber, query)
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				for _, v := range ev.Events[payloadKey] {
					payload, err := hex.DecodeString(v)
					if err != nil {
						l.logger.Debug("drop notification", "kind", kind, "err", err)
						continue
					}
					fn(payload)
				}
			}
		}
	}()
	return nil
}

// CometWallet resolves balances against the chain. Account creation needs a
// faucet, so it is a devnet-only affordance.
type CometWallet struct {
	logger cmtlog.Logger
	cli    *comethttp.HTTP
}

func NewCometWallet(logger cmtlog.Logger, url string) (*CometWallet, error) {
	cli, err := comethttp.New(url, "/websocket")
	if err != nil {
		return nil, err
	}
	return &CometWallet{logger: logger.With("module", "wallet"), cli: cli}, nil
}

func (w *CometWallet) NewAccount(ctx context.Context, initialBalance uint64) (*Account, error) {
	return nil, ErrDevnetOnly
}

func (w *CometWallet) ImportAccount(ctx context.Context, secret string) (*Account, error) {
	return accountFromSecret(secret)
}

func (w *CometWallet) Balance(ctx context.Context, acct *Account) (uint64, error) {
	if acct == nil {
		return 0, ErrUnknownAccount
	}
	res, err := w.cli.ABCIQuery(ctx, "/balances/", common.HexToAddress(acct.Address).Bytes())
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	if res.Response.Code != 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAccount, acct.Address)
	}
	if len(res.Response.Value) == 0 {
		return 0, nil
	}
	bal, err := strconv.ParseUint(string(res.Response.Value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance: %w", err)
	}
	return bal, nil
}
