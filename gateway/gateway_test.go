package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/apostrophe-corp/daohub/ledger"
	"github.com/apostrophe-corp/daohub/store"
	"github.com/apostrophe-corp/daohub/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) (*Gateway, *store.ProposalStore, *ledger.DevnetLedger) {
	t.Helper()
	l := ledger.NewDevnetLedger(cmtlog.NewNopLogger(), time.Hour)
	st := store.New()
	return New(cmtlog.NewNopLogger(), l, st), st, l
}

func deployProposal(t *testing.T, l *ledger.DevnetLedger, st *store.ProposalStore) uint64 {
	t.Helper()
	ref, err := l.Deploy(context.Background(), types.InitialProposal{
		Id:         st.NextID(),
		Title:      "Test proposal",
		Owner:      "0xabc",
		Deadline:   10,
		IsProposal: true,
	})
	require.NoError(t, err)
	return st.Create(types.Proposal{Title: "Test proposal", Owner: "0xabc", ContractRef: ref})
}

func TestVotesStoreRemoteCounter(t *testing.T) {
	g, st, l := newTestGateway(t)
	id := deployProposal(t, l, st)

	n, err := g.Upvote(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)

	n, err = g.Upvote(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	n, err = g.Downvote(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)

	p, ok := st.Get(id)
	require.True(t, ok)
	require.Equal(t, uint64(2), p.Upvotes)
	require.Equal(t, uint64(1), p.Downvotes)
}

func TestContributeStoresRunningTotal(t *testing.T) {
	g, st, l := newTestGateway(t)
	id := deployProposal(t, l, st)

	total, err := g.Contribute(context.Background(), id, 50)
	require.NoError(t, err)
	require.Equal(t, uint64(50), total)

	total, err = g.Contribute(context.Background(), id, 70)
	require.NoError(t, err)
	require.Equal(t, uint64(120), total)

	p, ok := st.Get(id)
	require.True(t, ok)
	require.Equal(t, uint64(120), p.Contributions)
}

func TestUnknownProposalLeavesStoreUntouched(t *testing.T) {
	g, st, _ := newTestGateway(t)

	_, err := g.Upvote(context.Background(), 42)
	require.Error(t, err)
	require.Empty(t, st.ListActive())
}

func TestBadContractRefWrapped(t *testing.T) {
	g, st, _ := newTestGateway(t)
	id := st.Create(types.Proposal{Title: "dangling", ContractRef: "no-such-ref"})

	_, err := g.Downvote(context.Background(), id)
	require.ErrorIs(t, err, ledger.ErrBadContractRef)

	p, ok := st.Get(id)
	require.True(t, ok)
	require.Zero(t, p.Downvotes)
}

func TestClaimRefundFalseIsNotAnError(t *testing.T) {
	g, st, l := newTestGateway(t)
	id := deployProposal(t, l, st)

	// Nothing contributed and the proposal is still live, so there is
	// nothing to give back.
	ok, err := g.ClaimRefund(context.Background(), id)
	require.NoError(t, err)
	require.False(t, ok)
}
