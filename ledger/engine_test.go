package ledger

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	oneSol     = uint64(1_000_000_000)
	testFunds  = 100 * oneSol
	testReward = 2 * oneSol
)

type testClock struct {
	now time.Time
}

func (c *testClock) read() time.Time { return c.now }

func newTestEngine(t *testing.T) (*Engine, *MemStore, *testClock) {
	t.Helper()
	store := NewMemStore()
	clock := &testClock{now: time.Unix(1_800_000_000, 0)}
	return NewEngineWithClock(store, clock.read), store, clock
}

func fund(t *testing.T, store *MemStore, addr Address) {
	t.Helper()
	require.NoError(t, store.Credit(addr, testFunds))
}

func initProfile(t *testing.T, e *Engine, owner Address, isHunter, isClient bool) Address {
	t.Helper()
	_, err := e.Execute(InitUserProfile{
		Authority: owner,
		Username:  "user-" + owner.String()[:6],
		Email:     "user@example.com",
		IsHunter:  isHunter,
		IsClient:  isClient,
	})
	require.NoError(t, err)
	addr, _, err := ProfileAddress(owner)
	require.NoError(t, err)
	return addr
}

func readProfile(t *testing.T, store *MemStore, addr Address) *Profile {
	t.Helper()
	acc, err := store.Get(addr)
	require.NoError(t, err)
	p, err := DecodeProfile(acc.Data)
	require.NoError(t, err)
	return p
}

func readBounty(t *testing.T, store *MemStore, addr Address) *Bounty {
	t.Helper()
	acc, err := store.Get(addr)
	require.NoError(t, err)
	b, err := DecodeBounty(acc.Data)
	require.NoError(t, err)
	return b
}

func balance(t *testing.T, store *MemStore, addr Address) uint64 {
	t.Helper()
	acc, err := store.Get(addr)
	if err != nil {
		require.ErrorIs(t, err, ErrAccountNotFound)
		return 0
	}
	return acc.Lamports
}

// createFundedBounty sets up a client with a funded wallet and an open bounty.
func createFundedBounty(t *testing.T, e *Engine, store *MemStore, clock *testClock, creator Address, title string) Address {
	t.Helper()
	fund(t, store, creator)
	initProfile(t, e, creator, false, true)
	_, err := e.Execute(CreateBounty{
		Creator:     creator,
		Title:       title,
		Description: "a task",
		Reward:      testReward,
		Location:    "remote",
		TimeLimit:   clock.now.Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)
	addr, _, err := BountyAddress(creator, title)
	require.NoError(t, err)
	return addr
}

func TestInitUserProfile(t *testing.T) {
	e, store, _ := newTestEngine(t)
	owner := testAddr(0x01)
	fund(t, store, owner)

	receipt, err := e.Execute(InitUserProfile{
		Authority: owner,
		Username:  "Alice",
		Email:     "a@x.com",
		IsHunter:  false,
		IsClient:  true,
	})
	require.NoError(t, err)
	require.Len(t, receipt.NewAccounts, 1)

	addr, bump, err := ProfileAddress(owner)
	require.NoError(t, err)
	p := readProfile(t, store, addr)

	assert.Equal(t, owner, p.Owner)
	assert.Equal(t, "Alice", p.Username)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, "Al", p.Avatar)
	assert.False(t, p.IsHunter)
	assert.True(t, p.IsClient)
	assert.Equal(t, bump, p.Bump)
	assert.Zero(t, p.BountiesPosted)
	assert.Zero(t, p.BountiesApplied)
	assert.Zero(t, p.BountiesCompleted)
	assert.Zero(t, p.SuccessRate)

	// The profile holds its own rent reserve, debited from the owner.
	acc, err := store.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, RentExempt(len(acc.Data)), acc.Lamports)
	assert.Equal(t, testFunds-acc.Lamports, balance(t, store, owner))
}

func TestInitUserProfileDuplicate(t *testing.T) {
	e, store, _ := newTestEngine(t)
	owner := testAddr(0x01)
	fund(t, store, owner)
	initProfile(t, e, owner, true, false)

	_, err := e.Execute(InitUserProfile{Authority: owner, Username: "again", Email: "b@x.com"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestInitUserProfileValidation(t *testing.T) {
	e, store, _ := newTestEngine(t)
	owner := testAddr(0x01)
	fund(t, store, owner)

	long := make([]byte, MaxUsernameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := e.Execute(InitUserProfile{Authority: owner, Username: string(long), Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrStringTooLong)

	// An unfunded wallet cannot pay the rent reserve.
	broke := testAddr(0x02)
	_, err = e.Execute(InitUserProfile{Authority: broke, Username: "Bob", Email: "b@x.com"})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestEditProfileRoundTrip(t *testing.T) {
	e, store, _ := newTestEngine(t)
	owner := testAddr(0x01)
	fund(t, store, owner)

	_, err := e.Execute(InitUserProfile{Authority: owner, Username: "Alice", Email: "a@x.com", IsClient: true})
	require.NoError(t, err)
	addr, _, err := ProfileAddress(owner)
	require.NoError(t, err)

	_, err = e.Execute(EditProfile{Authority: owner, Profile: addr, Username: "Alice2", Email: "a2@x.com"})
	require.NoError(t, err)

	p := readProfile(t, store, addr)
	assert.Equal(t, "Alice2", p.Username)
	assert.Equal(t, "a2@x.com", p.Email)
	assert.Equal(t, "Al", p.Avatar)
	assert.Zero(t, p.BountiesPosted)
	assert.Zero(t, p.BountiesApplied)
	assert.True(t, p.IsClient)
}

func TestEditProfileUnauthorized(t *testing.T) {
	e, store, _ := newTestEngine(t)
	owner := testAddr(0x01)
	stranger := testAddr(0x02)
	fund(t, store, owner)
	addr := initProfile(t, e, owner, true, false)
	before := readProfile(t, store, addr)

	_, err := e.Execute(EditProfile{Authority: stranger, Profile: addr, Username: "Mallory", Email: "m@x.com"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, before, readProfile(t, store, addr))
}

func TestDeleteProfile(t *testing.T) {
	e, store, _ := newTestEngine(t)
	owner := testAddr(0x01)
	fund(t, store, owner)
	addr := initProfile(t, e, owner, true, false)

	rent := balance(t, store, addr)
	walletBefore := balance(t, store, owner)

	receipt, err := e.Execute(DeleteProfile{Authority: owner, Profile: addr})
	require.NoError(t, err)
	assert.Equal(t, []Address{addr}, receipt.ClosedAccounts)

	_, err = store.Get(addr)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, walletBefore+rent, balance(t, store, owner))
}

func TestDeleteProfileUnauthorized(t *testing.T) {
	e, store, _ := newTestEngine(t)
	owner := testAddr(0x01)
	fund(t, store, owner)
	addr := initProfile(t, e, owner, true, false)

	_, err := e.Execute(DeleteProfile{Authority: testAddr(0x02), Profile: addr})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = store.Get(addr)
	assert.NoError(t, err)
}

func TestCreateBounty(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)

	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")

	b := readBounty(t, store, bountyAddr)
	assert.Equal(t, StatusOpen, b.Status)
	assert.Equal(t, testReward, b.Reward)
	assert.Nil(t, b.Hunter)
	assert.Equal(t, creator, b.Creator)
	assert.Equal(t, clock.now.Unix(), b.CreatedAt)

	escrowAddr, _, err := EscrowAddress(bountyAddr)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, balance(t, store, escrowAddr), testReward)

	profAddr, _, err := ProfileAddress(creator)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), readProfile(t, store, profAddr).BountiesPosted)
}

func TestCreateBountyValidation(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	fund(t, store, creator)
	initProfile(t, e, creator, false, true)

	future := clock.now.Add(time.Hour).Unix()

	_, err := e.Execute(CreateBounty{Creator: creator, Title: "t", Reward: 0, TimeLimit: future})
	assert.ErrorIs(t, err, ErrInvalidReward)

	_, err = e.Execute(CreateBounty{Creator: creator, Title: "t", Reward: 1, TimeLimit: clock.now.Unix()})
	assert.ErrorIs(t, err, ErrInvalidTimeLimit)

	long := make([]byte, MaxTitleLen+1)
	for i := range long {
		long[i] = 't'
	}
	_, err = e.Execute(CreateBounty{Creator: creator, Title: string(long), Reward: 1, TimeLimit: future})
	assert.ErrorIs(t, err, ErrStringTooLong)
}

func TestCreateBountyRequiresClientRole(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	fund(t, store, creator)
	initProfile(t, e, creator, true, false) // hunter only

	_, err := e.Execute(CreateBounty{
		Creator:   creator,
		Title:     "t",
		Reward:    1,
		TimeLimit: clock.now.Add(time.Hour).Unix(),
	})
	assert.ErrorIs(t, err, ErrNotAClient)
}

func TestCreateBountyAtomicOnInsufficientFunds(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	fund(t, store, creator)
	initProfile(t, e, creator, false, true)

	_, err := e.Execute(CreateBounty{
		Creator:   creator,
		Title:     "too rich",
		Reward:    testFunds * 10,
		TimeLimit: clock.now.Add(time.Hour).Unix(),
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Nothing landed: no bounty, no escrow, counter untouched.
	bountyAddr, _, err := BountyAddress(creator, "too rich")
	require.NoError(t, err)
	_, err = store.Get(bountyAddr)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	profAddr, _, err := ProfileAddress(creator)
	require.NoError(t, err)
	assert.Zero(t, readProfile(t, store, profAddr).BountiesPosted)
}

func TestClaimBounty(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	hunter := testAddr(0x02)
	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")
	fund(t, store, hunter)
	hunterProf := initProfile(t, e, hunter, true, false)

	_, err := e.Execute(ClaimBounty{Hunter: hunter, Bounty: bountyAddr})
	require.NoError(t, err)

	b := readBounty(t, store, bountyAddr)
	assert.Equal(t, StatusClaimed, b.Status)
	require.NotNil(t, b.Hunter)
	assert.Equal(t, hunter, *b.Hunter)
	assert.Equal(t, uint64(1), readProfile(t, store, hunterProf).BountiesApplied)

	// Claiming moves no funds.
	escrowAddr, _, err := EscrowAddress(bountyAddr)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, balance(t, store, escrowAddr), testReward)

	// A second claim finds the bounty no longer open.
	_, err = e.Execute(ClaimBounty{Hunter: hunter, Bounty: bountyAddr})
	assert.ErrorIs(t, err, ErrBountyNotOpen)
}

func TestClaimBountyRequiresHunterRole(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	claimant := testAddr(0x02)
	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")
	fund(t, store, claimant)
	initProfile(t, e, claimant, false, true) // client only

	_, err := e.Execute(ClaimBounty{Hunter: claimant, Bounty: bountyAddr})
	assert.ErrorIs(t, err, ErrNotAHunter)
}

func TestSubmitWork(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	hunter := testAddr(0x02)
	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")
	fund(t, store, hunter)
	initProfile(t, e, hunter, true, false)

	// Submitting before any claim is an invalid status, not a mismatch.
	_, err := e.Execute(SubmitWork{Hunter: hunter, Bounty: bountyAddr, SubmissionLink: "https://x/y"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = e.Execute(ClaimBounty{Hunter: hunter, Bounty: bountyAddr})
	require.NoError(t, err)

	// A different signer than the claiming hunter is a mismatch.
	other := testAddr(0x03)
	fund(t, store, other)
	initProfile(t, e, other, true, false)
	_, err = e.Execute(SubmitWork{Hunter: other, Bounty: bountyAddr, SubmissionLink: "https://x/y"})
	assert.ErrorIs(t, err, ErrSubmissionMismatch)

	receipt, err := e.Execute(SubmitWork{Hunter: hunter, Bounty: bountyAddr, SubmissionLink: "https://x/y"})
	require.NoError(t, err)
	require.Len(t, receipt.NewAccounts, 1)

	subAddr, _, err := SubmissionAddress(bountyAddr, hunter)
	require.NoError(t, err)
	acc, err := store.Get(subAddr)
	require.NoError(t, err)
	sub, err := DecodeSubmission(acc.Data)
	require.NoError(t, err)
	assert.Equal(t, bountyAddr, sub.Bounty)
	assert.Equal(t, hunter, sub.Hunter)
	assert.Equal(t, "https://x/y", sub.Link)
	assert.False(t, sub.Selected)
	assert.Equal(t, clock.now.Unix(), sub.SubmittedAt)

	// The second submission collides on its derived address.
	_, err = e.Execute(SubmitWork{Hunter: hunter, Bounty: bountyAddr, SubmissionLink: "https://x/z"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSubmitWorkPastDeadline(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	hunter := testAddr(0x02)
	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")
	fund(t, store, hunter)
	initProfile(t, e, hunter, true, false)

	_, err := e.Execute(ClaimBounty{Hunter: hunter, Bounty: bountyAddr})
	require.NoError(t, err)

	clock.now = clock.now.Add(25 * time.Hour)
	_, err = e.Execute(SubmitWork{Hunter: hunter, Bounty: bountyAddr, SubmissionLink: "https://x/y"})
	assert.ErrorIs(t, err, ErrPastDeadline)
}

func TestSelectWinner(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	hunter := testAddr(0x02)
	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")
	fund(t, store, hunter)
	hunterProf := initProfile(t, e, hunter, true, false)

	_, err := e.Execute(ClaimBounty{Hunter: hunter, Bounty: bountyAddr})
	require.NoError(t, err)
	_, err = e.Execute(SubmitWork{Hunter: hunter, Bounty: bountyAddr, SubmissionLink: "https://x/y"})
	require.NoError(t, err)

	escrowAddr, _, err := EscrowAddress(bountyAddr)
	require.NoError(t, err)
	escrowResidual := balance(t, store, escrowAddr) - testReward
	hunterBefore := balance(t, store, hunter)
	creatorBefore := balance(t, store, creator)

	_, err = e.Execute(SelectWinner{Creator: creator, Bounty: bountyAddr, Winner: hunter})
	require.NoError(t, err)

	// The winner gains exactly the reward; the creator gets the residual
	// reserve back; the escrow account ceases to exist.
	assert.Equal(t, hunterBefore+testReward, balance(t, store, hunter))
	assert.Equal(t, creatorBefore+escrowResidual, balance(t, store, creator))
	_, err = store.Get(escrowAddr)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	assert.Equal(t, StatusCompleted, readBounty(t, store, bountyAddr).Status)

	hp := readProfile(t, store, hunterProf)
	assert.Equal(t, uint64(1), hp.BountiesCompleted)
	assert.Equal(t, testReward, hp.TotalSolEarned)
	assert.Equal(t, float64(100), hp.SuccessRate)

	clientProf, _, err := ProfileAddress(creator)
	require.NoError(t, err)
	cp := readProfile(t, store, clientProf)
	assert.Equal(t, testReward, cp.TotalSolSpent)
	assert.Equal(t, uint64(1), cp.BountiesCompletedAsClient)
	assert.Equal(t, uint64(1), cp.BountiesRewarded)

	// The winner's submission is marked selected.
	subAddr, _, err := SubmissionAddress(bountyAddr, hunter)
	require.NoError(t, err)
	acc, err := store.Get(subAddr)
	require.NoError(t, err)
	sub, err := DecodeSubmission(acc.Data)
	require.NoError(t, err)
	assert.True(t, sub.Selected)

	// Settlement is exactly-once.
	_, err = e.Execute(SelectWinner{Creator: creator, Bounty: bountyAddr, Winner: hunter})
	assert.ErrorIs(t, err, ErrBountyNotClaimed)
}

func TestSelectWinnerUnauthorized(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	hunter := testAddr(0x02)
	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")
	fund(t, store, hunter)
	initProfile(t, e, hunter, true, false)
	_, err := e.Execute(ClaimBounty{Hunter: hunter, Bounty: bountyAddr})
	require.NoError(t, err)

	_, err = e.Execute(SelectWinner{Creator: hunter, Bounty: bountyAddr, Winner: hunter})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSelectWinnerInsufficientEscrow(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	hunter := testAddr(0x02)
	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")
	fund(t, store, hunter)
	initProfile(t, e, hunter, true, false)
	_, err := e.Execute(ClaimBounty{Hunter: hunter, Bounty: bountyAddr})
	require.NoError(t, err)

	// Drain the escrow below the payout from outside the instruction path.
	escrowAddr, _, err := EscrowAddress(bountyAddr)
	require.NoError(t, err)
	acc, err := store.Get(escrowAddr)
	require.NoError(t, err)
	acc.Lamports = testReward - 1
	require.NoError(t, store.Commit(&ChangeSet{Writes: []*Account{acc}}))

	_, err = e.Execute(SelectWinner{Creator: creator, Bounty: bountyAddr, Winner: hunter})
	assert.ErrorIs(t, err, ErrInsufficientEscrow)
}

func TestSelectWinnerOverflowAbortsWhole(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	hunter := testAddr(0x02)
	bountyAddr := createFundedBounty(t, e, store, clock, creator, "fix the parser")
	fund(t, store, hunter)
	hunterProf := initProfile(t, e, hunter, true, false)
	_, err := e.Execute(ClaimBounty{Hunter: hunter, Bounty: bountyAddr})
	require.NoError(t, err)

	// Push the winner's earned total to the numeric ceiling so the payout
	// arithmetic must overflow.
	acc, err := store.Get(hunterProf)
	require.NoError(t, err)
	p, err := DecodeProfile(acc.Data)
	require.NoError(t, err)
	p.TotalSolEarned = math.MaxUint64
	acc.Data = p.Encode()
	require.NoError(t, store.Commit(&ChangeSet{Writes: []*Account{acc}}))

	escrowAddr, _, err := EscrowAddress(bountyAddr)
	require.NoError(t, err)
	escrowBefore := balance(t, store, escrowAddr)
	hunterBefore := balance(t, store, hunter)

	_, err = e.Execute(SelectWinner{Creator: creator, Bounty: bountyAddr, Winner: hunter})
	require.ErrorIs(t, err, ErrMathOverflow)

	// No partial effects: balances, escrow and status all unchanged.
	assert.Equal(t, escrowBefore, balance(t, store, escrowAddr))
	assert.Equal(t, hunterBefore, balance(t, store, hunter))
	assert.Equal(t, StatusClaimed, readBounty(t, store, bountyAddr).Status)
	assert.Equal(t, uint64(math.MaxUint64), readProfile(t, store, hunterProf).TotalSolEarned)
}

func TestSuccessRateLaw(t *testing.T) {
	e, store, clock := newTestEngine(t)
	creator := testAddr(0x01)
	hunter := testAddr(0x02)
	fund(t, store, creator)
	fund(t, store, hunter)
	initProfile(t, e, creator, false, true)
	hunterProf := initProfile(t, e, hunter, true, false)

	titles := []string{"first", "second"}
	deadline := clock.now.Add(24 * time.Hour).Unix()
	for _, title := range titles {
		_, err := e.Execute(CreateBounty{
			Creator: creator, Title: title, Description: "a task",
			Reward: testReward, Location: "remote", TimeLimit: deadline,
		})
		require.NoError(t, err)
		addr, _, err := BountyAddress(creator, title)
		require.NoError(t, err)
		_, err = e.Execute(ClaimBounty{Hunter: hunter, Bounty: addr})
		require.NoError(t, err)
	}

	// applied = 2, completed = 0 until a settlement lands.
	assert.Zero(t, readProfile(t, store, hunterProf).SuccessRate)

	first, _, err := BountyAddress(creator, "first")
	require.NoError(t, err)
	_, err = e.Execute(SelectWinner{Creator: creator, Bounty: first, Winner: hunter})
	require.NoError(t, err)

	p := readProfile(t, store, hunterProf)
	assert.Equal(t, uint64(1), p.BountiesCompleted)
	assert.Equal(t, uint64(2), p.BountiesApplied)
	assert.Equal(t, float64(1)/float64(2)*100, p.SuccessRate)
}

// gatedStore blocks the first Commit until released, holding an instruction
// open inside its snapshot-commit window.
type gatedStore struct {
	*MemStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Commit(cs *ChangeSet) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.MemStore.Commit(cs)
}

func TestDepositCreditNotLostDuringExecute(t *testing.T) {
	store := NewMemStore()
	clock := &testClock{now: time.Unix(1_800_000_000, 0)}
	gate := &gatedStore{MemStore: store, entered: make(chan struct{}), release: make(chan struct{})}
	e := NewEngineWithClock(gate, clock.read)

	owner := testAddr(0x01)
	require.NoError(t, store.Credit(owner, testFunds))

	done := make(chan error, 1)
	go func() {
		_, err := e.Execute(InitUserProfile{Authority: owner, Username: "Alice", Email: "a@x.com"})
		done <- err
	}()
	<-gate.entered // the instruction has staged its wallet debit

	credited := make(chan error, 1)
	go func() {
		credited <- e.Exclusive(func() error { return store.Credit(owner, oneSol) })
	}()

	// The credit must wait for the instruction to finish; landing now would
	// be erased by the staged absolute balance.
	select {
	case <-credited:
		t.Fatal("deposit credit ran inside an executing instruction's window")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	require.NoError(t, <-done)
	require.NoError(t, <-credited)

	profAddr, _, err := ProfileAddress(owner)
	require.NoError(t, err)
	rent := balance(t, store, profAddr)
	assert.Equal(t, testFunds-rent+oneSol, balance(t, store, owner))
}

func TestMemStoreCreditOverflow(t *testing.T) {
	store := NewMemStore()
	addr := testAddr(0x01)
	require.NoError(t, store.Credit(addr, math.MaxUint64))
	assert.ErrorIs(t, store.Credit(addr, 1), ErrMathOverflow)
}
