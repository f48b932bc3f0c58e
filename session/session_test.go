package session

import (
	"context"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/apostrophe-corp/daohub/gateway"
	"github.com/apostrophe-corp/daohub/ingest"
	"github.com/apostrophe-corp/daohub/ledger"
	"github.com/apostrophe-corp/daohub/store"
	"github.com/apostrophe-corp/daohub/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

// scriptPrompt feeds a fixed sequence of answers and records everything the
// session says. Running out of answers reads as closed input.
type scriptPrompt struct {
	answers []string
	out     []string
}

func (p *scriptPrompt) Say(text string) {
	p.out = append(p.out, text)
}

func (p *scriptPrompt) next() (string, error) {
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptPrompt) Ask(string) (string, error) {
	return p.next()
}

func (p *scriptPrompt) AskInt(string) (int, error) {
	a, err := p.next()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(a)
}

func (p *scriptPrompt) AskYesNo(string) (bool, error) {
	a, err := p.next()
	if err != nil {
		return false, err
	}
	return a == "y", nil
}

func (p *scriptPrompt) said(substr string) bool {
	for _, line := range p.out {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

type fixture struct {
	prompt   *scriptPrompt
	ledger   *ledger.DevnetLedger
	store    *store.ProposalStore
	session  *Session
	ingester *ingest.Ingester
}

func newFixture(t *testing.T, resolveAfter time.Duration, answers ...string) *fixture {
	t.Helper()
	logger := cmtlog.NewNopLogger()
	prompt := &scriptPrompt{answers: answers}
	l := ledger.NewDevnetLedger(logger, resolveAfter)
	st := store.New()
	ing := ingest.New(logger, st)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go ing.Start(ctx)

	s := New(logger, prompt, ledger.NewDevnetWallet(), l, st, gateway.New(logger, l, st), ing, Options{
		PageSize:       3,
		DeadlineBlocks: 15,
		FaucetBalance:  1000 * types.AtomicPerUnit,
		Sleep:          func(time.Duration) {},
	})
	return &fixture{prompt: prompt, ledger: l, store: st, session: s, ingester: ing}
}

func TestDeployerMakesAndUpvotesProposal(t *testing.T) {
	f := newFixture(t, time.Hour,
		"y",      // create a devnet account
		"y", "y", // admin, proceed to deployment
		"1",                                         // info center -> proposals
		"1",                                         // make a proposal
		"Fix the bridge", "https://example.com/fix", // title, link
		"Repair the cross-chain bridge", "y", // description, satisfied
		"2",      // select an active proposal
		"1", "2", // pick it, up vote
		"0", "y", // exit, confirmed
	)

	require.NoError(t, f.session.Run(context.Background()))

	active := f.store.ListActive()
	require.Len(t, active, 1)
	require.Equal(t, "Fix the bridge", active[0].Title)
	require.Equal(t, uint64(1), active[0].Upvotes)
	require.True(t, f.prompt.said("[+] Deployed"))
}

func TestAttachFailureReturnsToSelectRole(t *testing.T) {
	f := newFixture(t, time.Hour,
		"y",            // create account
		"n",            // not the admin
		"no-such-ref",  // bad contract information
		"y", "y",       // back at role selection: admin, deploy
		"0", "y",       // exit from info center, confirmed
	)

	require.NoError(t, f.session.Run(context.Background()))
	require.True(t, f.prompt.said("invalid contract reference"))
	require.True(t, f.prompt.said("Welcome Admin!"))
}

func TestSavedKeyOffered(t *testing.T) {
	f := newFixture(t, time.Hour,
		"n", // don't create an account
		"y", // use the saved key
	)
	acct, err := ledger.NewRandomAccount()
	require.NoError(t, err)
	f.session.opts.KeySecret = acct.Secret()

	next, err := f.session.connectAccount(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateSelectRole, next)
	require.Equal(t, acct.Address, f.session.acct.Address)
}

func TestUnconfirmedExitStaysInMenu(t *testing.T) {
	f := newFixture(t, time.Hour,
		"y", "y", "y", // account, admin, deploy
		"0", "n", // exit, not confirmed: back to info center
		"0", "y", // exit, confirmed
	)

	require.NoError(t, f.session.Run(context.Background()))
}

func seedActive(st *store.ProposalStore, n int) {
	for i := 0; i < n; i++ {
		st.Create(types.Proposal{Title: "p" + strconv.Itoa(i+1)})
	}
}

func TestActiveListPaging(t *testing.T) {
	f := newFixture(t, time.Hour,
		"99", // page 2
		"99", // rejected, page 2 has no successor
		"88", // back to page 1
		"0",  // leave the list
	)
	seedActive(f.store, 5)

	next, err := f.session.selectActiveProposal(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateProposalsView, next)
	require.True(t, f.prompt.said("[!] ID not found"))
	require.True(t, f.prompt.said("Title: p4"))
}

func TestSelectOutsideWindowReportsNotFound(t *testing.T) {
	f := newFixture(t, time.Hour,
		"3", // only two items on the single page
		"0",
	)
	seedActive(f.store, 2)

	next, err := f.session.selectActiveProposal(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateProposalsView, next)
	require.True(t, f.prompt.said("[!] ID not found"))
}

func TestEmptyListShortCircuits(t *testing.T) {
	f := newFixture(t, time.Hour, "anything")

	next, err := f.session.selectActiveBounty(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateBountiesView, next)
	require.True(t, f.prompt.said("[+] None at the moment."))
}

func TestRefundWithoutContributionIsInformational(t *testing.T) {
	f := newFixture(t, time.Hour, "1")
	ref, err := f.ledger.Deploy(context.Background(), types.InitialProposal{
		Id: f.store.NextID(), Title: "stalled", IsProposal: true, Deadline: 15,
	})
	require.NoError(t, err)
	id := f.store.Create(types.Proposal{Title: "stalled", ContractRef: ref})
	f.store.Resolve(id, types.OutcomeFailed)

	next, err := f.session.selectTimedOutProposal(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateProposalsView, next)
	require.True(t, f.prompt.said("don't have funds to claim"))

	// the record itself is untouched
	timedOut := f.store.ListTimedOut()
	require.Len(t, timedOut, 1)
	require.Zero(t, timedOut[0].Contributions)
}

func TestUpvotedProposalPassesIntoBounty(t *testing.T) {
	f := newFixture(t, 50*time.Millisecond,
		"y", "y", "y", // account, admin, deploy
		"1",                             // proposals
		"1", "t", "l", "d", "y",         // make a proposal
		"2", "1", "2", // select it, up vote
		"0", "y", // exit
	)

	require.NoError(t, f.session.Run(context.Background()))

	require.Eventually(t, func() bool {
		return len(f.store.ListBounties()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Empty(t, f.store.ListActive())

	b := f.store.ListBounties()[0]
	require.Equal(t, "t", b.Title)
	require.Equal(t, types.GrandPrize, b.Reward)
}
