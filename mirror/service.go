package mirror

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Service struct {
	engine     *gin.Engine
	mirror     *Mirror
	listenAddr string
}

func NewService(listenAddr string, m *Mirror) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		mirror:     m,
		listenAddr: listenAddr,
	}
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getTimedOut", s.handleGetTimedOut)
	s.engine.POST("/getBounties", s.handleGetBounties)
	return s
}

func (s *Service) Start() error {
	return s.engine.Run(s.listenAddr)
}

type GetProposalsReq struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type GetProposalsResponse struct {
	Proposals []Proposal `json:"proposals"`
	Total     uint64     `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	s.proposals(c, false)
}

func (s *Service) handleGetTimedOut(c *gin.Context) {
	s.proposals(c, true)
}

func (s *Service) proposals(c *gin.Context, timedOut bool) {
	var response GetProposalsResponse
	response.Proposals = make([]Proposal, 0)
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	proposals, total, err := s.mirror.getProposals(timedOut, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Proposals = proposals
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetBountiesReq struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type GetBountiesResponse struct {
	Bounties []Bounty `json:"bounties"`
	Total    uint64   `json:"total"`
}

func (s *Service) handleGetBounties(c *gin.Context) {
	var response GetBountiesResponse
	response.Bounties = make([]Bounty, 0)
	var requestData GetBountiesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bounties, total, err := s.mirror.getBounties(requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Bounties = bounties
	response.Total = total
	c.JSON(http.StatusOK, response)
}
