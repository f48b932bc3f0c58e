package tx

import "errors"

type DAOTxType uint8

const (
	DAOTxTypeUnknown    DAOTxType = 0
	DAOTxTypeDeploy     DAOTxType = 1
	DAOTxTypeVote       DAOTxType = 2
	DAOTxTypeContribute DAOTxType = 3
	DAOTxTypeRefund     DAOTxType = 4
)

const (
	DAOTxVersion0 uint8 = 0
	DAOTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
)

// DeployTx deploys a governing contract instance with its initial proposal
// payload.
type DeployTx struct {
	Id          uint64 `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Deadline    uint64 `json:"deadline"`
	IsProposal  bool   `json:"isProposal"`
}

// VoteTx casts a vote on an attached contract. Up false is a downvote.
type VoteTx struct {
	Ref string `json:"ref"`
	Up  bool   `json:"up"`
}

// ContributeTx adds Amount atomic units to the contract's escrow.
type ContributeTx struct {
	Ref    string `json:"ref"`
	Amount uint64 `json:"amount"`
}

// RefundTx claims the sender's refundable contribution on a failed
// proposal.
type RefundTx struct {
	Ref string `json:"ref"`
}
