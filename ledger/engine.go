package ledger

import (
	"fmt"
	"sync"
	"time"
)

// Instruction is the closed set of operations the program accepts. Each
// value carries its signer and typed arguments; dispatch is one exhaustive
// switch in Execute.
type Instruction interface {
	isInstruction()
}

type InitUserProfile struct {
	Authority Address
	Username  string
	Email     string
	IsHunter  bool
	IsClient  bool
}

type EditProfile struct {
	Authority Address
	Profile   Address
	Username  string
	Email     string
}

type DeleteProfile struct {
	Authority Address
	Profile   Address
}

type CreateBounty struct {
	Creator     Address
	Title       string
	Description string
	Reward      uint64
	Location    string
	TimeLimit   int64
}

type ClaimBounty struct {
	Hunter Address
	Bounty Address
}

type SubmitWork struct {
	Hunter         Address
	Bounty         Address
	SubmissionLink string
}

type SelectWinner struct {
	Creator Address
	Bounty  Address
	Winner  Address
}

func (InitUserProfile) isInstruction() {}
func (EditProfile) isInstruction()     {}
func (DeleteProfile) isInstruction()   {}
func (CreateBounty) isInstruction()    {}
func (ClaimBounty) isInstruction()     {}
func (SubmitWork) isInstruction()      {}
func (SelectWinner) isInstruction()    {}

// Receipt reports the record churn of a committed instruction.
type Receipt struct {
	NewAccounts    []Address
	ClosedAccounts []Address
}

// Engine executes instructions against a Store. Every instruction runs as a
// single atomic unit: stage, validate, commit — or abort with zero effects.
type Engine struct {
	store Store
	now   func() time.Time
	mu    sync.Mutex
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// NewEngineWithClock pins the authoritative clock, used by tests and by
// callers that already hold a trusted time source.
func NewEngineWithClock(store Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// Execute runs one instruction. The engine serializes the whole
// snapshot-execute-commit window, standing in for the per-account locking
// the surrounding environment guarantees.
func (e *Engine) Execute(inst Instruction) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := newTxn(e.store, e.now())
	var err error
	switch in := inst.(type) {
	case InitUserProfile:
		err = e.initUserProfile(t, in)
	case EditProfile:
		err = e.editProfile(t, in)
	case DeleteProfile:
		err = e.deleteProfile(t, in)
	case CreateBounty:
		err = e.createBounty(t, in)
	case ClaimBounty:
		err = e.claimBounty(t, in)
	case SubmitWork:
		err = e.submitWork(t, in)
	case SelectWinner:
		err = e.selectWinner(t, in)
	default:
		return nil, fmt.Errorf("ledger: unknown instruction %T", inst)
	}
	if err != nil {
		return nil, err
	}

	cs := t.changeSet()
	if err := e.store.Commit(cs); err != nil {
		return nil, err
	}

	r := &Receipt{ClosedAccounts: cs.Closes}
	for _, acc := range cs.Creates {
		r.NewAccounts = append(r.NewAccounts, acc.Address)
	}
	return r, nil
}

// Exclusive runs fn while instruction execution is held off. External
// wallet credits go through here: a credit landing inside another
// instruction's snapshot-commit window would be overwritten by that
// instruction's absolute balance write.
func (e *Engine) Exclusive(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}

func (e *Engine) initUserProfile(t *txn, in InitUserProfile) error {
	if len(in.Username) > MaxUsernameLen || len(in.Email) > MaxEmailLen {
		return ErrStringTooLong
	}

	addr, bump, err := ProfileAddress(in.Authority)
	if err != nil {
		return err
	}

	p := &Profile{
		Owner:    in.Authority,
		Username: in.Username,
		Email:    in.Email,
		Avatar:   deriveAvatar(in.Username),
		IsHunter: in.IsHunter,
		IsClient: in.IsClient,
		Bump:     bump,
	}
	_, err = t.create(addr, KindProfile, in.Authority, p.Encode())
	return err
}

func (e *Engine) editProfile(t *txn, in EditProfile) error {
	if len(in.Username) > MaxUsernameLen || len(in.Email) > MaxEmailLen {
		return ErrStringTooLong
	}

	acc, err := t.loadKind(in.Profile, KindProfile)
	if err != nil {
		return err
	}
	p, err := DecodeProfile(acc.Data)
	if err != nil {
		return err
	}
	if p.Owner != in.Authority {
		return ErrUnauthorized
	}

	p.Username = in.Username
	p.Email = in.Email
	p.Avatar = deriveAvatar(in.Username)
	acc.Data = p.Encode()
	return nil
}

func (e *Engine) deleteProfile(t *txn, in DeleteProfile) error {
	acc, err := t.loadKind(in.Profile, KindProfile)
	if err != nil {
		return err
	}
	p, err := DecodeProfile(acc.Data)
	if err != nil {
		return err
	}
	if p.Owner != in.Authority {
		return ErrUnauthorized
	}
	// No outstanding-bounty check: closing a profile with open obligations
	// is the caller's responsibility.
	return t.close(in.Profile, in.Authority)
}

func (e *Engine) createBounty(t *txn, in CreateBounty) error {
	if in.Reward == 0 {
		return ErrInvalidReward
	}
	if in.TimeLimit <= t.now.Unix() {
		return ErrInvalidTimeLimit
	}
	if len(in.Title) > MaxTitleLen || len(in.Description) > MaxDescriptionLen || len(in.Location) > MaxLocationLen {
		return ErrStringTooLong
	}

	profAddr, _, err := ProfileAddress(in.Creator)
	if err != nil {
		return err
	}
	profAcc, err := t.loadKind(profAddr, KindProfile)
	if err != nil {
		return err
	}
	p, err := DecodeProfile(profAcc.Data)
	if err != nil {
		return err
	}
	if !p.IsClient {
		return ErrNotAClient
	}

	bountyAddr, bump, err := BountyAddress(in.Creator, in.Title)
	if err != nil {
		return err
	}
	b := &Bounty{
		Creator:     in.Creator,
		Title:       in.Title,
		Description: in.Description,
		Reward:      in.Reward,
		Location:    in.Location,
		TimeLimit:   in.TimeLimit,
		Status:      StatusOpen,
		CreatedAt:   t.now.Unix(),
		Bump:        bump,
	}
	if _, err := t.create(bountyAddr, KindBounty, in.Creator, b.Encode()); err != nil {
		return err
	}

	escrowAddr, _, err := EscrowAddress(bountyAddr)
	if err != nil {
		return err
	}
	if _, err := t.create(escrowAddr, KindEscrow, in.Creator, nil); err != nil {
		return err
	}
	if err := t.transfer(in.Creator, escrowAddr, in.Reward); err != nil {
		return err
	}

	if p.BountiesPosted, err = checkedAdd(p.BountiesPosted, 1); err != nil {
		return err
	}
	profAcc.Data = p.Encode()
	return nil
}

func (e *Engine) claimBounty(t *txn, in ClaimBounty) error {
	bAcc, err := t.loadKind(in.Bounty, KindBounty)
	if err != nil {
		return err
	}
	b, err := DecodeBounty(bAcc.Data)
	if err != nil {
		return err
	}
	if b.Status != StatusOpen {
		return ErrBountyNotOpen
	}

	profAddr, _, err := ProfileAddress(in.Hunter)
	if err != nil {
		return err
	}
	profAcc, err := t.loadKind(profAddr, KindProfile)
	if err != nil {
		return err
	}
	p, err := DecodeProfile(profAcc.Data)
	if err != nil {
		return err
	}
	if !p.IsHunter {
		return ErrNotAHunter
	}

	hunter := in.Hunter
	b.Status = StatusClaimed
	b.Hunter = &hunter
	bAcc.Data = b.Encode()

	// Claiming only reserves the right to submit; no funds move here.
	if p.BountiesApplied, err = checkedAdd(p.BountiesApplied, 1); err != nil {
		return err
	}
	profAcc.Data = p.Encode()
	return nil
}

func (e *Engine) submitWork(t *txn, in SubmitWork) error {
	if len(in.SubmissionLink) > MaxLinkLen {
		return ErrStringTooLong
	}

	bAcc, err := t.loadKind(in.Bounty, KindBounty)
	if err != nil {
		return err
	}
	b, err := DecodeBounty(bAcc.Data)
	if err != nil {
		return err
	}
	if b.Status != StatusClaimed {
		return ErrInvalidStatus
	}
	if t.now.Unix() > b.TimeLimit {
		return ErrPastDeadline
	}
	if b.Hunter == nil || *b.Hunter != in.Hunter {
		return ErrSubmissionMismatch
	}

	subAddr, _, err := SubmissionAddress(in.Bounty, in.Hunter)
	if err != nil {
		return err
	}
	s := &Submission{
		Bounty:      in.Bounty,
		Hunter:      in.Hunter,
		Link:        in.SubmissionLink,
		SubmittedAt: t.now.Unix(),
	}
	// A second submission for the same (bounty, hunter) pair collides on
	// this address and fails with ErrAccountExists.
	_, err = t.create(subAddr, KindSubmission, in.Hunter, s.Encode())
	return err
}

func (e *Engine) selectWinner(t *txn, in SelectWinner) error {
	bAcc, err := t.loadKind(in.Bounty, KindBounty)
	if err != nil {
		return err
	}
	b, err := DecodeBounty(bAcc.Data)
	if err != nil {
		return err
	}
	if b.Status != StatusClaimed {
		return ErrBountyNotClaimed
	}
	if b.Creator != in.Creator {
		return ErrUnauthorized
	}

	escrowAddr, _, err := EscrowAddress(in.Bounty)
	if err != nil {
		return err
	}
	escAcc, err := t.loadKind(escrowAddr, KindEscrow)
	if err != nil {
		return err
	}
	if escAcc.Lamports < b.Reward {
		return ErrInsufficientEscrow
	}

	clientProfAddr, _, err := ProfileAddress(in.Creator)
	if err != nil {
		return err
	}
	clientAcc, err := t.loadKind(clientProfAddr, KindProfile)
	if err != nil {
		return err
	}
	client, err := DecodeProfile(clientAcc.Data)
	if err != nil {
		return err
	}

	winnerProfAddr, _, err := ProfileAddress(in.Winner)
	if err != nil {
		return err
	}
	// Creator paying itself aliases the two profile accounts; reuse the
	// staged copy so neither update clobbers the other.
	winnerAcc, winner := clientAcc, client
	if winnerProfAddr != clientProfAddr {
		winnerAcc, err = t.loadKind(winnerProfAddr, KindProfile)
		if err != nil {
			return err
		}
		winner, err = DecodeProfile(winnerAcc.Data)
		if err != nil {
			return err
		}
	}

	// Mark the winner's submission when one exists; settlement does not
	// require it, matching the permissive original flow.
	subAddr, _, err := SubmissionAddress(in.Bounty, in.Winner)
	if err != nil {
		return err
	}
	if subAcc, err := t.loadKind(subAddr, KindSubmission); err == nil {
		sub, err := DecodeSubmission(subAcc.Data)
		if err != nil {
			return err
		}
		sub.Selected = true
		subAcc.Data = sub.Encode()
	}

	// Pay the winner from escrow, then close escrow back to the creator.
	if err := t.transfer(escrowAddr, in.Winner, b.Reward); err != nil {
		return err
	}
	if err := t.close(escrowAddr, in.Creator); err != nil {
		return err
	}

	b.Status = StatusCompleted
	bAcc.Data = b.Encode()

	if client.TotalSolSpent, err = checkedAdd(client.TotalSolSpent, b.Reward); err != nil {
		return err
	}
	if client.BountiesCompletedAsClient, err = checkedAdd(client.BountiesCompletedAsClient, 1); err != nil {
		return err
	}
	if client.BountiesRewarded, err = checkedAdd(client.BountiesRewarded, 1); err != nil {
		return err
	}
	clientAcc.Data = client.Encode()

	if winner.BountiesCompleted, err = checkedAdd(winner.BountiesCompleted, 1); err != nil {
		return err
	}
	if winner.TotalSolEarned, err = checkedAdd(winner.TotalSolEarned, b.Reward); err != nil {
		return err
	}
	if winner.BountiesApplied > 0 {
		winner.SuccessRate = float64(winner.BountiesCompleted) / float64(winner.BountiesApplied) * 100
	}
	winnerAcc.Data = winner.Encode()
	return nil
}
