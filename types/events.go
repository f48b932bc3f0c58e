package types

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Notification kinds pushed by a governing contract.
const (
	EventCreatedType    = "created"
	EventResolutionType = "log"
)

// Field widths of the fixed-width records a governing contract emits. Text
// fields are right-padded with NUL bytes; decoding trims at the first NUL.
const (
	IdWidth          = 8
	TitleWidth       = TitleMaxLen
	LinkWidth        = LinkMaxLen
	DescriptionWidth = DescriptionMaxLen
	OwnerWidth       = 42
	ContractRefWidth = 128
	TagWidth         = 20

	CreatedRecordLen    = IdWidth + TitleWidth + LinkWidth + DescriptionWidth + OwnerWidth + ContractRefWidth
	ResolutionRecordLen = TagWidth + IdWidth
)

// Resolution tags as emitted on the wire, before padding.
const (
	TagPassed = "passed"
	TagFailed = "failed"
	TagDown   = "down"
)

var (
	ErrShortRecord  = errors.New("record too short")
	ErrFieldTooLong = errors.New("field exceeds wire width")
	ErrUnknownTag   = errors.New("unknown resolution tag")
)

// EventCreated announces a deployed proposal. Id is the remote-assigned
// identifier and overrides any provisional local assignment.
type EventCreated struct {
	Id          uint64 `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	ContractRef string `json:"contractRef"`
}

// EventResolution announces a proposal's terminal outcome.
type EventResolution struct {
	Outcome Outcome `json:"outcome"`
	Id      uint64  `json:"id"`
}

func padField(dst []byte, s string) error {
	if len(s) > len(dst) {
		return ErrFieldTooLong
	}
	copy(dst, s)
	return nil
}

func trimField(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// padTag returns the padded wire form of a resolution tag. Tag matching is
// done on this form, never on trimmed strings, so a tag that happens to be a
// prefix of another can never match it.
func padTag(tag string) []byte {
	b := make([]byte, TagWidth)
	copy(b, tag)
	return b
}

func EncodeEventCreated(ev *EventCreated) ([]byte, error) {
	rec := make([]byte, CreatedRecordLen)
	binary.BigEndian.PutUint64(rec[:IdWidth], ev.Id)
	off := IdWidth
	for _, f := range []struct {
		width int
		value string
	}{
		{TitleWidth, ev.Title},
		{LinkWidth, ev.Link},
		{DescriptionWidth, ev.Description},
		{OwnerWidth, ev.Owner},
		{ContractRefWidth, ev.ContractRef},
	} {
		if err := padField(rec[off:off+f.width], f.value); err != nil {
			return nil, err
		}
		off += f.width
	}
	return rec, nil
}

func DecodeEventCreated(rec []byte) (*EventCreated, error) {
	if len(rec) < CreatedRecordLen {
		return nil, ErrShortRecord
	}
	ev := &EventCreated{Id: binary.BigEndian.Uint64(rec[:IdWidth])}
	off := IdWidth
	ev.Title = trimField(rec[off : off+TitleWidth])
	off += TitleWidth
	ev.Link = trimField(rec[off : off+LinkWidth])
	off += LinkWidth
	ev.Description = trimField(rec[off : off+DescriptionWidth])
	off += DescriptionWidth
	ev.Owner = trimField(rec[off : off+OwnerWidth])
	off += OwnerWidth
	ev.ContractRef = trimField(rec[off : off+ContractRefWidth])
	return ev, nil
}

func EncodeEventResolution(ev *EventResolution) ([]byte, error) {
	var tag string
	switch ev.Outcome {
	case OutcomePassed:
		tag = TagPassed
	case OutcomeFailed:
		tag = TagFailed
	case OutcomeWithdrawn:
		tag = TagDown
	default:
		return nil, ErrUnknownTag
	}
	rec := make([]byte, ResolutionRecordLen)
	copy(rec, padTag(tag))
	binary.BigEndian.PutUint64(rec[TagWidth:], ev.Id)
	return rec, nil
}

func DecodeEventResolution(rec []byte) (*EventResolution, error) {
	if len(rec) < ResolutionRecordLen {
		return nil, ErrShortRecord
	}
	ev := &EventResolution{Id: binary.BigEndian.Uint64(rec[TagWidth:ResolutionRecordLen])}
	tag := rec[:TagWidth]
	switch {
	case bytes.Equal(tag, padTag(TagPassed)):
		ev.Outcome = OutcomePassed
	case bytes.Equal(tag, padTag(TagFailed)):
		ev.Outcome = OutcomeFailed
	case bytes.Equal(tag, padTag(TagDown)):
		ev.Outcome = OutcomeWithdrawn
	default:
		return nil, ErrUnknownTag
	}
	return ev, nil
}
