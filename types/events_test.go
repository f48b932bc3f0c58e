package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCreatedRoundTrip(t *testing.T) {
	ev := &EventCreated{
		Id:          7,
		Title:       "Fund the docs rewrite",
		Link:        "https://example.org/specs/42",
		Description: "Rewrite the onboarding docs",
		Owner:       "0x52908400098527886E0F7030069857D2E4169EE7",
		ContractRef: `{"index":731}`,
	}
	rec, err := EncodeEventCreated(ev)
	require.NoError(t, err)
	require.Len(t, rec, CreatedRecordLen)

	got, err := DecodeEventCreated(rec)
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestEventCreatedTrimsPadding(t *testing.T) {
	rec, err := EncodeEventCreated(&EventCreated{Id: 1, Title: "short"})
	require.NoError(t, err)
	got, err := DecodeEventCreated(rec)
	require.NoError(t, err)
	assert.Equal(t, "short", got.Title)
	assert.Equal(t, "", got.Link)
}

func TestEventCreatedFieldTooLong(t *testing.T) {
	long := make([]byte, TitleWidth+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := EncodeEventCreated(&EventCreated{Id: 1, Title: string(long)})
	assert.ErrorIs(t, err, ErrFieldTooLong)
}

func TestEventCreatedShortRecord(t *testing.T) {
	_, err := DecodeEventCreated(make([]byte, CreatedRecordLen-1))
	assert.ErrorIs(t, err, ErrShortRecord)
}

func TestEventResolutionRoundTrip(t *testing.T) {
	for _, outcome := range []Outcome{OutcomePassed, OutcomeFailed, OutcomeWithdrawn} {
		rec, err := EncodeEventResolution(&EventResolution{Outcome: outcome, Id: 12})
		require.NoError(t, err)
		got, err := DecodeEventResolution(rec)
		require.NoError(t, err)
		assert.Equal(t, outcome, got.Outcome)
		assert.Equal(t, uint64(12), got.Id)
	}
}

func TestEventResolutionUnknownTag(t *testing.T) {
	rec := make([]byte, ResolutionRecordLen)
	copy(rec, "unknown")
	_, err := DecodeEventResolution(rec)
	assert.ErrorIs(t, err, ErrUnknownTag)
}

// A tag that is a prefix of a known tag must not match it: comparison runs
// on the padded form.
func TestEventResolutionPrefixTagRejected(t *testing.T) {
	rec := make([]byte, ResolutionRecordLen)
	copy(rec, "pass")
	_, err := DecodeEventResolution(rec)
	assert.ErrorIs(t, err, ErrUnknownTag)

	copy(rec, "passedX")
	_, err = DecodeEventResolution(rec)
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestEventResolutionShortRecord(t *testing.T) {
	_, err := DecodeEventResolution([]byte(TagPassed))
	assert.ErrorIs(t, err, ErrShortRecord)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"1", AtomicPerUnit},
		{"12.5", 12*AtomicPerUnit + 500_000},
		{"0.0001", 100},
		{".25", 250_000},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
	_, err := ParseAmount("12,5")
	assert.Error(t, err)
	_, err = ParseAmount("abc")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000.0000", FormatAmount(1000*AtomicPerUnit))
	assert.Equal(t, "12.5000", FormatAmount(12*AtomicPerUnit+500_000))
	assert.Equal(t, "0.0001", FormatAmount(100))
}
