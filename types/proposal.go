package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Bounds enforced on member-submitted proposal text. Longer input is
// truncated at submission time, matching the governing contract's storage.
const (
	TitleMaxLen       = 25
	LinkMaxLen        = 150
	DescriptionMaxLen = 180
)

// GrandPrize is the reward attached to every bounty, 99999 standard units
// expressed in atomic units. The governing contract fixes it; it is not
// derived from the proposal's contribution total.
const GrandPrize uint64 = 99999 * AtomicPerUnit

// AtomicPerUnit is the number of atomic ledger units per standard currency
// unit. All amounts cross the wire in atomic units.
const AtomicPerUnit uint64 = 1_000_000

// Proposal mirrors a member-submitted proposal tracked by a governing
// contract instance. Upvotes, Downvotes and Contributions are caches of
// remote-returned values and are never advanced locally.
type Proposal struct {
	Id            uint64 `json:"id"`
	Title         string `json:"title"`
	Link          string `json:"link"`
	Description   string `json:"description"`
	Owner         string `json:"owner"`
	ContractRef   string `json:"contractRef"`
	Upvotes       uint64 `json:"upvotes"`
	Downvotes     uint64 `json:"downvotes"`
	Contributions uint64 `json:"contributions"`
	TimedOut      bool   `json:"timedOut"`
	DidPass       bool   `json:"didPass"`
	IsDown        bool   `json:"isDown"`
}

// Bounty is a passed proposal frozen into an immutable public quest.
type Bounty struct {
	Id          uint64 `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	ContractRef string `json:"contractRef"`
	Reward      uint64 `json:"reward"`
}

// InitialProposal is the deployment payload for a governing contract
// instance. IsProposal distinguishes a member proposal from the hub's
// bootstrap deployment.
type InitialProposal struct {
	Id          uint64 `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Deadline    uint64 `json:"deadline"`
	IsProposal  bool   `json:"isProposal"`
}

// BootstrapProposal is the payload the admin deploys the hub contract with.
func BootstrapProposal(owner string) InitialProposal {
	return InitialProposal{
		Id:          1,
		Title:       "DAO Hub",
		Link:        "https://github.com/apostrophe-corp/daohub/blob/main/README.md",
		Description: "A hub for Web3 developers",
		Owner:       owner,
		Deadline:    0,
		IsProposal:  false,
	}
}

// Outcome is the terminal resolution the ledger assigns to a proposal.
type Outcome uint8

const (
	OutcomeUnknown Outcome = iota
	OutcomePassed
	OutcomeFailed
	OutcomeWithdrawn
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	case OutcomeWithdrawn:
		return "withdrawn"
	default:
		return "unknown"
	}
}

// Truncate cuts s to at most max bytes.
func Truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// FormatAmount renders an atomic amount in standard units with four decimal
// places, the precision the console displays balances with.
func FormatAmount(atomic uint64) string {
	whole := atomic / AtomicPerUnit
	frac := atomic % AtomicPerUnit
	return fmt.Sprintf("%d.%04d", whole, frac/100)
}

// ParseAmount parses a standard-unit decimal string into atomic units.
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if len(frac) > 6 {
		frac = frac[:6]
	}
	f := uint64(0)
	if frac != "" {
		f, err = strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		for i := len(frac); i < 6; i++ {
			f *= 10
		}
	}
	return w*AtomicPerUnit + f, nil
}
