package mirror

import (
	"path/filepath"
	"testing"

	"github.com/apostrophe-corp/daohub/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

func openTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := Open(cmtlog.NewNopLogger(), filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, m.Close()) })
	return m
}

func created(id uint64, title string) types.EventCreated {
	return types.EventCreated{
		Id:          id,
		Title:       title,
		Link:        "https://example.com",
		Description: "d",
		Owner:       "0xabc",
		ContractRef: `{"index":1}`,
	}
}

func TestCreatedUpsert(t *testing.T) {
	m := openTestMirror(t)
	m.OnCreated(created(1, "first"))
	m.OnCreated(created(1, "first"))

	proposals, total, err := m.getProposals(false, 1, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
	require.Len(t, proposals, 1)
	require.Equal(t, "first", proposals[0].Title)
}

func TestPassedMovesRowToBounties(t *testing.T) {
	m := openTestMirror(t)
	m.OnCreated(created(1, "winner"))
	m.OnResolved(types.EventResolution{Outcome: types.OutcomePassed, Id: 1})

	_, total, err := m.getProposals(false, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)

	bounties, total, err := m.getBounties(1, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
	require.Equal(t, "winner", bounties[0].Title)
	require.Equal(t, types.GrandPrize, bounties[0].Reward)

	// replaying the resolution must not duplicate the bounty
	m.OnResolved(types.EventResolution{Outcome: types.OutcomePassed, Id: 1})
	_, total, err = m.getBounties(1, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
}

func TestFailedMarksTimedOut(t *testing.T) {
	m := openTestMirror(t)
	m.OnCreated(created(1, "stalled"))
	m.OnResolved(types.EventResolution{Outcome: types.OutcomeFailed, Id: 1})

	_, total, err := m.getProposals(false, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)

	timedOut, total, err := m.getProposals(true, 1, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
	require.True(t, timedOut[0].TimedOut)
}

func TestWithdrawnDeletesRow(t *testing.T) {
	m := openTestMirror(t)
	m.OnCreated(created(1, "gone"))
	m.OnResolved(types.EventResolution{Outcome: types.OutcomeWithdrawn, Id: 1})

	_, total, err := m.getProposals(false, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
	_, total, err = m.getProposals(true, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestPaging(t *testing.T) {
	m := openTestMirror(t)
	for i := uint64(1); i <= 5; i++ {
		m.OnCreated(created(i, "p"))
	}

	proposals, total, err := m.getProposals(false, 2, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(5), total)
	require.Len(t, proposals, 2)
	require.Equal(t, uint64(4), proposals[0].Id)
}
