package mirror

// sqlite models

type Proposal struct {
	Id            uint64 `gorm:"primaryKey" json:"id"`
	Title         string `json:"title"`
	Link          string `json:"link"`
	Description   string `json:"description"`
	Owner         string `json:"owner"`
	ContractRef   string `json:"contract_ref"`
	Upvotes       uint64 `json:"upvotes"`
	Downvotes     uint64 `json:"downvotes"`
	Contributions uint64 `json:"contributions"`
	TimedOut      bool   `json:"timed_out"`
}

type Bounty struct {
	Id          uint64 `gorm:"primaryKey" json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Reward      uint64 `json:"reward"`
}
