// Package session drives the interactive governance console: one state
// machine walking a member from account connection through role selection
// into the proposal and bounty views. Exactly one decision is pending at any
// time; every remote call is awaited before the next prompt.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/apostrophe-corp/daohub/gateway"
	"github.com/apostrophe-corp/daohub/ingest"
	"github.com/apostrophe-corp/daohub/ledger"
	"github.com/apostrophe-corp/daohub/refbook"
	"github.com/apostrophe-corp/daohub/store"
	"github.com/apostrophe-corp/daohub/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type State int

const (
	StateConnectAccount State = iota
	StateSelectRole
	StateDeployerFlow
	StateAttacherFlow
	StateInfoCenter
	StateProposalsView
	StateBountiesView
	StateMakeProposal
	StateSelectActiveProposal
	StateSelectTimedOutProposal
	StateSelectActiveBounty
	StateExit
)

const banner = "DAO Hub"

// accountBinder is implemented by ledger bindings that sign with the
// connected account.
type accountBinder interface {
	BindAccount(*ledger.Account)
}

type Options struct {
	PageSize       int
	DeadlineBlocks uint64
	FaucetBalance  uint64
	KeySecret      string              // saved account secret, offered at connect time
	Refs           *refbook.Book       // optional
	Sleep          func(time.Duration) // defaults to time.Sleep
}

// Session owns the console state machine. All mutation of the proposal
// store flows through the gateway (direct remote returns) or the ingester
// (pushed notifications); the session itself only reads.
type Session struct {
	logger   cmtlog.Logger
	prompt   Prompt
	wallet   ledger.Wallet
	ledger   ledger.Ledger
	store    *store.ProposalStore
	gateway  *gateway.Gateway
	ingester *ingest.Ingester
	opts     Options

	acct        *ledger.Account
	contractRef string
}

func New(logger cmtlog.Logger, prompt Prompt, w ledger.Wallet, l ledger.Ledger,
	st *store.ProposalStore, gw *gateway.Gateway, ing *ingest.Ingester, opts Options) *Session {
	if opts.PageSize < 1 {
		opts.PageSize = 3
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Session{
		logger:   logger.With("module", "session"),
		prompt:   prompt,
		wallet:   w,
		ledger:   l,
		store:    st,
		gateway:  gw,
		ingester: ing,
		opts:     opts,
	}
}

// Run walks the state machine until a confirmed exit. Errors from the
// prompt (closed input) are the only way out besides StateExit.
func (s *Session) Run(ctx context.Context) error {
	st := StateConnectAccount
	for st != StateExit {
		next, err := s.step(ctx, st)
		if err != nil {
			return err
		}
		st = next
	}
	s.prompt.Say("[+] Goodbye")
	return nil
}

func (s *Session) step(ctx context.Context, st State) (State, error) {
	switch st {
	case StateConnectAccount:
		return s.connectAccount(ctx)
	case StateSelectRole:
		return s.selectRole(ctx)
	case StateDeployerFlow:
		return s.deployerFlow(ctx)
	case StateAttacherFlow:
		return s.attacherFlow(ctx)
	case StateInfoCenter:
		return s.infoCenter(ctx)
	case StateProposalsView:
		return s.proposalsView(ctx)
	case StateBountiesView:
		return s.bountiesView(ctx)
	case StateMakeProposal:
		return s.makeProposal(ctx)
	case StateSelectActiveProposal:
		return s.selectActiveProposal(ctx)
	case StateSelectTimedOutProposal:
		return s.selectTimedOutProposal(ctx)
	case StateSelectActiveBounty:
		return s.selectActiveBounty(ctx)
	default:
		return StateExit, fmt.Errorf("unknown session state %d", st)
	}
}

// header renders the banner, wallet balance and current contract reference
// above every view.
func (s *Session) header(ctx context.Context) {
	s.prompt.Say(banner)
	if s.acct != nil {
		if bal, err := s.wallet.Balance(ctx, s.acct); err == nil {
			s.prompt.Say("Wallet Balance: " + types.FormatAmount(bal))
		} else {
			s.logger.Error("read balance", "err", err)
			s.prompt.Say("Wallet Balance: unavailable")
		}
	}
	if s.contractRef != "" {
		s.prompt.Say(s.contractRef)
	}
	s.prompt.Say("")
}

func (s *Session) connectAccount(ctx context.Context) (State, error) {
	s.header(ctx)
	s.prompt.Say("Connect Account")

	create, err := s.prompt.AskYesNo("Would you like to create an account? (Only available on DevNet) [y/n]")
	if err != nil {
		return StateExit, err
	}
	if create {
		acct, err := s.wallet.NewAccount(ctx, s.opts.FaucetBalance)
		if err != nil {
			s.prompt.Say("[!] " + err.Error())
			return StateConnectAccount, nil
		}
		s.bindAccount(acct)
		return StateSelectRole, nil
	}
	var secret string
	if s.opts.KeySecret != "" {
		useSaved, err := s.prompt.AskYesNo("Use the saved account key? [y/n]")
		if err != nil {
			return StateExit, err
		}
		if useSaved {
			secret = s.opts.KeySecret
		}
	}
	if secret == "" {
		var err error
		secret, err = s.prompt.Ask("What is your account secret?")
		if err != nil {
			return StateExit, err
		}
	}
	acct, err := s.wallet.ImportAccount(ctx, secret)
	if err != nil {
		s.prompt.Say("[!] " + err.Error())
		return StateConnectAccount, nil
	}
	s.bindAccount(acct)
	return StateSelectRole, nil
}

func (s *Session) bindAccount(acct *ledger.Account) {
	s.acct = acct
	if b, ok := s.ledger.(accountBinder); ok {
		b.BindAccount(acct)
	}
	s.logger.Info("account connected", "address", acct.Address)
}

func (s *Session) selectRole(ctx context.Context) (State, error) {
	s.contractRef = ""
	s.header(ctx)
	s.prompt.Say("Select Role")

	isDeployer, err := s.prompt.AskYesNo("Are you the Admin? [y/n]")
	if err != nil {
		return StateExit, err
	}
	if !isDeployer {
		return StateAttacherFlow, nil
	}
	s.header(ctx)
	s.prompt.Say("Welcome Admin!")
	proceed, err := s.prompt.AskYesNo("Proceed to deployment? [y/n]")
	if err != nil {
		return StateExit, err
	}
	if !proceed {
		return StateSelectRole, nil
	}
	return StateDeployerFlow, nil
}

func (s *Session) deployerFlow(ctx context.Context) (State, error) {
	s.header(ctx)
	s.prompt.Say("[..] Deploying")

	ref, err := s.ledger.Deploy(ctx, types.BootstrapProposal(s.acct.Address))
	if err != nil {
		s.prompt.Say("[!] Deployment failed: " + err.Error())
		return StateSelectRole, nil
	}
	if err := s.useContract(ctx, ref); err != nil {
		s.prompt.Say("[!] " + err.Error())
		return StateSelectRole, nil
	}
	s.header(ctx)
	s.prompt.Say("[+] Deployed")
	s.prompt.Say("Here is the contract information")
	s.prompt.Say(ref)
	s.opts.Sleep(5 * time.Second)
	return StateInfoCenter, nil
}

func (s *Session) attacherFlow(ctx context.Context) (State, error) {
	s.header(ctx)
	s.prompt.Say("Hello Attacher!")
	if s.opts.Refs != nil {
		if last, ok, err := s.opts.Refs.Last(); err == nil && ok {
			s.prompt.Say("Last known contract: " + last)
		}
	}
	ref, err := s.prompt.Ask("Please enter the contract information")
	if err != nil {
		return StateExit, err
	}
	s.prompt.Say("[..] Attaching")
	if err := s.useContract(ctx, ref); err != nil {
		s.prompt.Say("[!] " + err.Error())
		return StateSelectRole, nil
	}
	return StateInfoCenter, nil
}

// useContract attaches to ref, routes its notifications into the ingester
// and records the reference for later sessions.
func (s *Session) useContract(ctx context.Context, ref string) error {
	h, err := s.ledger.Attach(ctx, ref)
	if err != nil {
		return err
	}
	if err := h.SubscribeCreated(ctx, s.ingester.Created); err != nil {
		return fmt.Errorf("subscribe creations: %w", err)
	}
	if err := h.SubscribeResolutions(ctx, s.ingester.Resolved); err != nil {
		return fmt.Errorf("subscribe resolutions: %w", err)
	}
	s.contractRef = ref
	if s.opts.Refs != nil {
		if err := s.opts.Refs.SetLast(ref); err != nil {
			s.logger.Error("record contract reference", "err", err)
		}
	}
	return nil
}

func (s *Session) infoCenter(ctx context.Context) (State, error) {
	s.header(ctx)
	s.prompt.Say("Info Center")
	s.prompt.Say("Welcome! To the new Hub!")

	choice, err := s.prompt.AskInt(`[+] Console Menu
  1. View Proposals
  2. View Bounties
  3. Back to Select Roles
  0. Exit`)
	if err != nil {
		return StateExit, err
	}
	switch choice {
	case 1:
		return StateProposalsView, nil
	case 2:
		return StateBountiesView, nil
	case 3:
		return StateSelectRole, nil
	case 0:
		return s.confirmExit(StateInfoCenter)
	default:
		return StateInfoCenter, nil
	}
}

func (s *Session) proposalsView(ctx context.Context) (State, error) {
	s.header(ctx)
	s.prompt.Say("Proposals")
	s.prompt.Say("Get the chance to bring your ideas to life!")

	choice, err := s.prompt.AskInt(`[+] Console Menu
  1. Make a Proposal
  2. Select an Active Proposal
  3. Select a Timed Out Proposal
  4. View Bounties
  5. View Info Center
  6. Back to Select Roles
  0. Exit`)
	if err != nil {
		return StateExit, err
	}
	switch choice {
	case 1:
		return StateMakeProposal, nil
	case 2:
		return StateSelectActiveProposal, nil
	case 3:
		return StateSelectTimedOutProposal, nil
	case 4:
		return StateBountiesView, nil
	case 5:
		return StateInfoCenter, nil
	case 6:
		return StateSelectRole, nil
	case 0:
		return s.confirmExit(StateProposalsView)
	default:
		return StateProposalsView, nil
	}
}

func (s *Session) bountiesView(ctx context.Context) (State, error) {
	s.header(ctx)
	s.prompt.Say("Bounties")
	s.prompt.Say("Lets Hack and claim the Bounty...")

	choice, err := s.prompt.AskInt(`[+] Console Menu
  1. Select an Active Bounty
  2. View Info Center
  3. View Proposals
  4. Back to Select Roles
  0. Exit`)
	if err != nil {
		return StateExit, err
	}
	switch choice {
	case 1:
		return StateSelectActiveBounty, nil
	case 2:
		return StateInfoCenter, nil
	case 3:
		return StateProposalsView, nil
	case 4:
		return StateSelectRole, nil
	case 0:
		return s.confirmExit(StateBountiesView)
	default:
		return StateBountiesView, nil
	}
}

func (s *Session) confirmExit(back State) (State, error) {
	confirmed, err := s.prompt.AskYesNo("[!] Confirm exit [y/n]")
	if err != nil {
		return StateExit, err
	}
	if confirmed {
		return StateExit, nil
	}
	return back, nil
}

// makeProposal collects the proposal fields, then deploys a governing
// instance for it and inserts a provisional record under the next local id.
// The creation notification reconciles the record once the ledger echoes it
// back.
func (s *Session) makeProposal(ctx context.Context) (State, error) {
	var title, link, description string
	for {
		var err error
		title, err = s.prompt.Ask(fmt.Sprintf("[+] Enter the Proposal's Title (Max %d)", types.TitleMaxLen))
		if err != nil {
			return StateExit, err
		}
		title = types.Truncate(title, types.TitleMaxLen)

		link, err = s.prompt.Ask(fmt.Sprintf("[+] Enter the Link to the Proposal's details (Max %d)", types.LinkMaxLen))
		if err != nil {
			return StateExit, err
		}
		link = types.Truncate(link, types.LinkMaxLen)

		description, err = s.prompt.Ask(fmt.Sprintf("[+] Enter a brief description of the Proposal (Max %d)", types.DescriptionMaxLen))
		if err != nil {
			return StateExit, err
		}
		description = types.Truncate(description, types.DescriptionMaxLen)

		satisfied, err := s.prompt.AskYesNo(fmt.Sprintf(`Are you satisfied with these details? [y/n]
  Title: %s
  Link: %s
  Description: %s`, title, link, description))
		if err != nil {
			return StateExit, err
		}
		if satisfied {
			break
		}
	}

	s.prompt.Say("[..] Creating proposal")
	id := s.store.NextID()
	ref, err := s.ledger.Deploy(ctx, types.InitialProposal{
		Id:          id,
		Title:       title,
		Link:        link,
		Description: description,
		Owner:       s.acct.Address,
		Deadline:    s.opts.DeadlineBlocks,
		IsProposal:  true,
	})
	if err != nil {
		s.prompt.Say("[!] Proposal deployment failed: " + err.Error())
		return StateProposalsView, nil
	}
	s.store.Put(types.Proposal{
		Id:          id,
		Title:       title,
		Link:        link,
		Description: description,
		Owner:       s.acct.Address,
		ContractRef: ref,
	})
	if s.opts.Refs != nil {
		if err := s.opts.Refs.Put(ref); err != nil {
			s.logger.Error("record contract reference", "err", err)
		}
	}
	h, err := s.ledger.Attach(ctx, ref)
	if err != nil {
		s.prompt.Say("[!] " + err.Error())
		return StateProposalsView, nil
	}
	if err := h.SubscribeCreated(ctx, s.ingester.Created); err != nil {
		s.logger.Error("subscribe creations", "err", err)
	}
	if err := h.SubscribeResolutions(ctx, s.ingester.Resolved); err != nil {
		s.logger.Error("subscribe resolutions", "err", err)
	}
	return StateProposalsView, nil
}

func (s *Session) selectActiveProposal(ctx context.Context) (State, error) {
	page := 1
	for {
		pager := NewPager(s.store.ListActive(), s.opts.PageSize)
		pager.Seek(page)
		page = pager.Page()

		s.prompt.Say("Active Proposals")
		if pager.Empty() {
			s.prompt.Say("[+] None at the moment.")
			if _, err := s.prompt.Ask("[+] Enter any key to exit"); err != nil {
				return StateExit, err
			}
			return StateProposalsView, nil
		}
		for i, p := range pager.Window() {
			s.prompt.Say(fmt.Sprintf(`ID: %d
Title: %s
Description: %s
Owner: %s
Link: %s
Contributions: %s
Up_Votes: %d
Down_Votes: %d
`, i+1, p.Title, p.Description, p.Owner, p.Link, types.FormatAmount(p.Contributions), p.Upvotes, p.Downvotes))
		}

		cmd, err := s.prompt.AskInt(s.listMenu("[+] Enter the Proposal's ID of interest", pager.HasNext(), pager.HasPrev()))
		if err != nil {
			return StateExit, err
		}
		switch {
		case cmd == CmdExit:
			return StateProposalsView, nil
		case cmd == CmdNextPage && pager.HasNext():
			page++
		case cmd == CmdPrevPage && pager.HasPrev():
			page--
		default:
			p, ok := pager.Select(cmd)
			if !ok {
				s.notFound()
				continue
			}
			next, acted, err := s.proposalActions(ctx, p)
			if err != nil {
				return StateExit, err
			}
			if acted {
				return next, nil
			}
		}
	}
}

// proposalActions runs the item-level sub-menu. acted reports whether a
// mutating action ran, which sends the caller back to a full re-render of
// the proposals view; cancel keeps the list loop on the same page.
func (s *Session) proposalActions(ctx context.Context, p types.Proposal) (State, bool, error) {
	action, err := s.prompt.AskInt(`What would you like to do?
  1. Contribute
  2. Up vote
  3. Down vote
  0. Cancel`)
	if err != nil {
		return StateExit, false, err
	}
	switch action {
	case 1:
		raw, err := s.prompt.Ask("Please enter the amount")
		if err != nil {
			return StateExit, false, err
		}
		amount, err := types.ParseAmount(raw)
		if err != nil {
			s.prompt.Say("[!] " + err.Error())
			return StateProposalsView, true, nil
		}
		s.prompt.Say("[..] Processing contribution")
		if _, err := s.gateway.Contribute(ctx, p.Id, amount); err != nil {
			s.prompt.Say("[!] This proposal is currently not open to transactions")
			s.logger.Info("contribute failed", "proposal", p.Id, "err", err)
		}
		return StateProposalsView, true, nil
	case 2:
		s.prompt.Say("[..] Processing up vote")
		if _, err := s.gateway.Upvote(ctx, p.Id); err != nil {
			s.prompt.Say("[!] This proposal is currently not open to transactions")
			s.logger.Info("upvote failed", "proposal", p.Id, "err", err)
		}
		return StateProposalsView, true, nil
	case 3:
		s.prompt.Say("[..] Processing down vote")
		if _, err := s.gateway.Downvote(ctx, p.Id); err != nil {
			s.prompt.Say("[!] This proposal is currently not open to transactions")
			s.logger.Info("downvote failed", "proposal", p.Id, "err", err)
		}
		return StateProposalsView, true, nil
	default:
		return StateProposalsView, false, nil
	}
}

func (s *Session) selectTimedOutProposal(ctx context.Context) (State, error) {
	page := 1
	for {
		pager := NewPager(s.store.ListTimedOut(), s.opts.PageSize)
		pager.Seek(page)
		page = pager.Page()

		s.prompt.Say("Timed Out Proposals")
		if pager.Empty() {
			s.prompt.Say("[+] None at the moment.")
			if _, err := s.prompt.Ask("[+] Enter any key to exit"); err != nil {
				return StateExit, err
			}
			return StateProposalsView, nil
		}
		for i, p := range pager.Window() {
			s.prompt.Say(fmt.Sprintf(`ID: %d
Title: %s
Description: %s
Owner: %s
Link: %s
`, i+1, p.Title, p.Description, p.Owner, p.Link))
		}

		cmd, err := s.prompt.AskInt(s.listMenu("[+] Enter the Proposal's ID to claim a refund", pager.HasNext(), pager.HasPrev()))
		if err != nil {
			return StateExit, err
		}
		switch {
		case cmd == CmdExit:
			return StateProposalsView, nil
		case cmd == CmdNextPage && pager.HasNext():
			page++
		case cmd == CmdPrevPage && pager.HasPrev():
			page--
		default:
			p, ok := pager.Select(cmd)
			if !ok {
				s.notFound()
				continue
			}
			refunded, err := s.gateway.ClaimRefund(ctx, p.Id)
			if err != nil {
				s.prompt.Say("[!] " + err.Error())
			} else if refunded {
				s.prompt.Say("[+] Refund Success")
			} else {
				s.prompt.Say("[!] It seems you don't have funds to claim, did you contribute to this proposal?")
			}
			return StateProposalsView, nil
		}
	}
}

func (s *Session) selectActiveBounty(ctx context.Context) (State, error) {
	page := 1
	for {
		pager := NewPager(s.store.ListBounties(), s.opts.PageSize)
		pager.Seek(page)
		page = pager.Page()

		s.prompt.Say("Active Bounties")
		if pager.Empty() {
			s.prompt.Say("[+] None at the moment.")
			if _, err := s.prompt.Ask("[+] Enter any key to exit"); err != nil {
				return StateExit, err
			}
			return StateBountiesView, nil
		}
		for i, b := range pager.Window() {
			s.prompt.Say(fmt.Sprintf(`ID: %d
Title: %s
Description: %s
Owner: %s
Link: %s
Grand_Prize: %s
`, i+1, b.Title, b.Description, b.Owner, b.Link, types.FormatAmount(b.Reward)))
		}

		cmd, err := s.prompt.AskInt(s.listMenu("[+] Enter the Bounty's ID of interest", pager.HasNext(), pager.HasPrev()))
		if err != nil {
			return StateExit, err
		}
		switch {
		case cmd == CmdExit:
			return StateBountiesView, nil
		case cmd == CmdNextPage && pager.HasNext():
			page++
		case cmd == CmdPrevPage && pager.HasPrev():
			page--
		default:
			if _, ok := pager.Select(cmd); !ok {
				s.notFound()
				continue
			}
			s.prompt.Say(`[+] Thanks for showing your interest in this quest.
  Stick around a while and our Guild would be fully operational.
  Until then, get your weapons, armor and, party members ready!!!`)
			s.opts.Sleep(5 * time.Second)
			return StateBountiesView, nil
		}
	}
}

func (s *Session) listMenu(lead string, hasNext, hasPrev bool) string {
	menu := lead
	if hasNext {
		menu += "\n  Enter 99 to view the next list"
	}
	if hasPrev {
		menu += "\n  Enter 88 to view the previous list"
	}
	menu += "\n  Or enter 0 to exit"
	return menu
}

func (s *Session) notFound() {
	s.prompt.Say("[!] ID not found")
	s.opts.Sleep(2 * time.Second)
}
