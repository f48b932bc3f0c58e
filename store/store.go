package store

import (
	"sync"

	"github.com/apostrophe-corp/daohub/types"
)

// ProposalStore is the authoritative local mapping of proposal id to record,
// plus the bounty sequence passed proposals migrate into. Counters held here
// are caches of remote-returned values; the store never advances them on its
// own. The console runs on one logical thread, but the ingest loop writes
// concurrently with menu reads, so every operation takes the lock.
type ProposalStore struct {
	mtx      sync.RWMutex
	byId     map[uint64]*types.Proposal
	order    []uint64
	bounties []types.Bounty
}

func New() *ProposalStore {
	return &ProposalStore{
		byId: make(map[uint64]*types.Proposal),
	}
}

// NextID returns max(existing ids)+1, or 1 for an empty store.
func (s *ProposalStore) NextID() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.nextIDLocked()
}

func (s *ProposalStore) nextIDLocked() uint64 {
	var max uint64
	for id := range s.byId {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// Create inserts a new record under the next id, with counters zeroed and
// flags cleared, and returns the assigned id.
func (s *ProposalStore) Create(p types.Proposal) uint64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	p.Id = s.nextIDLocked()
	p.Upvotes, p.Downvotes, p.Contributions = 0, 0, 0
	p.TimedOut, p.DidPass, p.IsDown = false, false, false
	s.byId[p.Id] = &p
	s.order = append(s.order, p.Id)
	return p.Id
}

// Put inserts a record under its own id, or replaces an existing record in
// place. The remote creation notification goes through here so the
// remote-assigned id reconciles any provisional local insert without
// producing a duplicate.
func (s *ProposalStore) Put(p types.Proposal) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if _, ok := s.byId[p.Id]; !ok {
		s.order = append(s.order, p.Id)
	}
	s.byId[p.Id] = &p
}

// Get returns a copy of the record for id.
func (s *ProposalStore) Get(id uint64) (types.Proposal, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	p, ok := s.byId[id]
	if !ok {
		return types.Proposal{}, false
	}
	return *p, true
}

// SetUpvotes overwrites the upvote counter with a remote-returned value.
// Absent ids are ignored.
func (s *ProposalStore) SetUpvotes(id, upvotes uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if p, ok := s.byId[id]; ok {
		p.Upvotes = upvotes
	}
}

// SetDownvotes overwrites the downvote counter with a remote-returned value.
func (s *ProposalStore) SetDownvotes(id, downvotes uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if p, ok := s.byId[id]; ok {
		p.Downvotes = downvotes
	}
}

// SetContributions overwrites the contribution total with a remote-returned
// value. The value is the new total, not a delta.
func (s *ProposalStore) SetContributions(id, total uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if p, ok := s.byId[id]; ok {
		p.Contributions = total
	}
}

// Resolve applies a terminal outcome. Passed removes the record and appends
// a bounty; Failed marks the record timed out; Withdrawn removes it
// entirely. Unknown ids and unknown outcomes are no-ops, so replayed or
// out-of-order notifications cannot corrupt the store.
func (s *ProposalStore) Resolve(id uint64, outcome types.Outcome) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	p, ok := s.byId[id]
	if !ok {
		return
	}
	switch outcome {
	case types.OutcomePassed:
		p.DidPass = true
		s.bounties = append(s.bounties, types.Bounty{
			Id:          p.Id,
			Title:       p.Title,
			Link:        p.Link,
			Description: p.Description,
			Owner:       p.Owner,
			ContractRef: p.ContractRef,
			Reward:      types.GrandPrize,
		})
		s.removeLocked(id)
	case types.OutcomeFailed:
		p.TimedOut = true
		p.DidPass = false
	case types.OutcomeWithdrawn:
		p.IsDown = true
		s.removeLocked(id)
	}
}

func (s *ProposalStore) removeLocked(id uint64) {
	delete(s.byId, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ListActive returns records not yet timed out, in insertion order.
func (s *ProposalStore) ListActive() []types.Proposal {
	return s.list(func(p *types.Proposal) bool { return !p.TimedOut })
}

// ListTimedOut returns failed records, in insertion order.
func (s *ProposalStore) ListTimedOut() []types.Proposal {
	return s.list(func(p *types.Proposal) bool { return p.TimedOut })
}

func (s *ProposalStore) list(keep func(*types.Proposal) bool) []types.Proposal {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	out := make([]types.Proposal, 0, len(s.order))
	for _, id := range s.order {
		if p := s.byId[id]; keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

// ListBounties returns bounties in migration order.
func (s *ProposalStore) ListBounties() []types.Bounty {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	out := make([]types.Bounty, len(s.bounties))
	copy(out, s.bounties)
	return out
}
