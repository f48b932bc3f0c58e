package tx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	btx, err := NewDAOTx(DAOTxTypeVote, 7, "0xabc", VoteTx{Ref: `{"index":3}`, Up: true})
	require.NoError(t, err)
	btx.Sig = [][]byte{{1, 2, 3}}

	raw, err := Marshal(btx)
	require.NoError(t, err)

	got, err := Unmarshal(raw)
	require.NoError(t, err)
	require.Equal(t, btx, got)

	inner, err := Inner(got)
	require.NoError(t, err)
	vote, ok := inner.(*VoteTx)
	require.True(t, ok)
	require.True(t, vote.Up)
	require.Equal(t, `{"index":3}`, vote.Ref)
}

func TestUnmarshalGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not rlp"))
	require.ErrorIs(t, err, ErrInvalidTx)
}

func TestInnerUnknownType(t *testing.T) {
	btx := &DAOTx{Version: DAOTxVersion1, Type: DAOTxType(99), Payload: []byte("{}")}
	_, err := Inner(btx)
	require.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestSigDataCommitsToChainId(t *testing.T) {
	btx, err := NewDAOTx(DAOTxTypeRefund, 1, "0xabc", RefundTx{Ref: "r"})
	require.NoError(t, err)

	a, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	b, err := btx.SigData([]byte("chain-b"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	// signing data is independent of any signature already attached
	btx.Sig = [][]byte{{9}}
	a2, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	require.Equal(t, a, a2)
}
