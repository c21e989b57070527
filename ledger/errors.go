package ledger

import (
	"errors"
	"fmt"
)

// Code numbers a caller-visible failure condition. Numbering starts at 6000
// so codes never collide with transport or store failures.
type Code uint32

const (
	CodeStringTooLong Code = 6000 + iota
	CodeInvalidTimeLimit
	CodeInvalidReward
	CodeNotAClient
	CodeNotAHunter
	CodeUnauthorized
	CodeInvalidStatus
	CodeSubmissionMismatch
	CodePastDeadline
	CodeMathOverflow
	CodeInsufficientEscrow
	CodeBountyNotOpen
	CodeBountyNotClaimed
)

// Error is a named, numbered instruction failure. Callers branch on the
// sentinel values below with errors.Is.
type Error struct {
	Code Code
	Name string
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.msg)
}

var (
	ErrStringTooLong      = &Error{CodeStringTooLong, "StringTooLong", "string too long for allocated space"}
	ErrInvalidTimeLimit   = &Error{CodeInvalidTimeLimit, "InvalidTimeLimit", "time limit must be in the future"}
	ErrInvalidReward      = &Error{CodeInvalidReward, "InvalidReward", "reward must be greater than zero"}
	ErrNotAClient         = &Error{CodeNotAClient, "NotAClient", "only the client role can perform this action"}
	ErrNotAHunter         = &Error{CodeNotAHunter, "NotAHunter", "only the hunter role can perform this action"}
	ErrUnauthorized       = &Error{CodeUnauthorized, "Unauthorized", "signer does not match the required authority"}
	ErrInvalidStatus      = &Error{CodeInvalidStatus, "InvalidStatus", "instruction not permitted from the current status"}
	ErrSubmissionMismatch = &Error{CodeSubmissionMismatch, "SubmissionMismatch", "submission does not match the bounty's hunter"}
	ErrPastDeadline       = &Error{CodePastDeadline, "PastDeadline", "submission past the bounty deadline"}
	ErrMathOverflow       = &Error{CodeMathOverflow, "MathOverflow", "arithmetic overflow"}
	ErrInsufficientEscrow = &Error{CodeInsufficientEscrow, "InsufficientEscrow", "escrow balance below required payout"}
	ErrBountyNotOpen      = &Error{CodeBountyNotOpen, "BountyNotOpen", "bounty is not open"}
	ErrBountyNotClaimed   = &Error{CodeBountyNotClaimed, "BountyNotClaimed", "bounty has not been claimed"}
)

// Store-level failures. These are not taxonomy codes: a duplicate submission,
// for example, surfaces as ErrAccountExists from the underlying record space.
var (
	ErrAccountNotFound   = errors.New("ledger: account not found")
	ErrAccountExists     = errors.New("ledger: account already exists")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	ErrWrongAccountKind  = errors.New("ledger: wrong account kind")
)
