// Package mirror maintains a queryable sqlite copy of the proposal and
// bounty listings, fed by the same decoded notifications that drive the
// in-memory store. It exists so other tools can read the hub's state over
// HTTP without replaying the event stream themselves.
package mirror

import (
	"github.com/apostrophe-corp/daohub/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

type Mirror struct {
	logger cmtlog.Logger
	db     *gorm.DB
}

func Open(logger cmtlog.Logger, dbPath string) (*Mirror, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Proposal{}, &Bounty{}).Error; err != nil {
		return nil, err
	}
	return &Mirror{
		logger: logger.With("module", "mirror"),
		db:     db,
	}, nil
}

func (m *Mirror) Close() error {
	return m.db.Close()
}

// OnCreated upserts the proposal row. Replayed creation records overwrite
// with identical data, so delivery retries are harmless.
func (m *Mirror) OnCreated(ev types.EventCreated) {
	p := Proposal{
		Id:          ev.Id,
		Title:       ev.Title,
		Link:        ev.Link,
		Description: ev.Description,
		Owner:       ev.Owner,
		ContractRef: ev.ContractRef,
	}
	if err := m.db.Save(&p).Error; err != nil {
		m.logger.Error("save proposal", "id", ev.Id, "err", err)
	}
}

func (m *Mirror) OnResolved(ev types.EventResolution) {
	switch ev.Outcome {
	case types.OutcomePassed:
		var p Proposal
		if err := m.db.First(&p, "id = ?", ev.Id).Error; err != nil {
			if !gorm.IsRecordNotFoundError(err) {
				m.logger.Error("load proposal", "id", ev.Id, "err", err)
			}
			return
		}
		b := Bounty{
			Id:          p.Id,
			Title:       p.Title,
			Link:        p.Link,
			Description: p.Description,
			Owner:       p.Owner,
			Reward:      types.GrandPrize,
		}
		if err := m.db.Save(&b).Error; err != nil {
			m.logger.Error("save bounty", "id", ev.Id, "err", err)
			return
		}
		if err := m.db.Delete(&Proposal{}, "id = ?", ev.Id).Error; err != nil {
			m.logger.Error("delete passed proposal", "id", ev.Id, "err", err)
		}
	case types.OutcomeFailed:
		if err := m.db.Model(&Proposal{}).Where("id = ?", ev.Id).Update("timed_out", true).Error; err != nil {
			m.logger.Error("mark proposal timed out", "id", ev.Id, "err", err)
		}
	case types.OutcomeWithdrawn:
		if err := m.db.Delete(&Proposal{}, "id = ?", ev.Id).Error; err != nil {
			m.logger.Error("delete withdrawn proposal", "id", ev.Id, "err", err)
		}
	}
}

// SetCounters refreshes a proposal row with remote-returned counters.
func (m *Mirror) SetCounters(id, upvotes, downvotes, contributions uint64) {
	updates := map[string]interface{}{
		"upvotes":       upvotes,
		"downvotes":     downvotes,
		"contributions": contributions,
	}
	if err := m.db.Model(&Proposal{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		m.logger.Error("update counters", "id", id, "err", err)
	}
}

func (m *Mirror) getProposals(timedOut bool, page int, pageSize int) ([]Proposal, uint64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	var total uint64
	if err := m.db.Model(&Proposal{}).Where("timed_out = ?", timedOut).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var proposals []Proposal
	err := m.db.Where("timed_out = ?", timedOut).
		Order("id asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (m *Mirror) getBounties(page int, pageSize int) ([]Bounty, uint64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	var total uint64
	if err := m.db.Model(&Bounty{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bounties []Bounty
	err := m.db.Order("id asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&bounties).Error
	if err != nil {
		return nil, 0, err
	}
	return bounties, total, nil
}
