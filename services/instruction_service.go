// services/instruction_service.go
package services

import (
	"errors"
	"log"

	"bounty-hunt-system/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// InstructionService maps the HTTP surface onto ledger instructions. Every
// handler reads the signer set by the middleware, builds one typed
// instruction and hands it to the engine; the engine either commits the
// whole effect set or returns a named failure.
type InstructionService struct {
	Engine *ledger.Engine
}

func NewInstructionService(engine *ledger.Engine) *InstructionService {
	return &InstructionService{Engine: engine}
}

// InitUserProfile creates the signer's profile account.
func (s *InstructionService) InitUserProfile(c *fiber.Ctx) error {
	signer, ok := signerAddress(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "signer address missing from context"})
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		IsHunter bool   `json:"is_hunter"`
		IsClient bool   `json:"is_client"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	receipt, err := s.Engine.Execute(ledger.InitUserProfile{
		Authority: signer,
		Username:  req.Username,
		Email:     req.Email,
		IsHunter:  req.IsHunter,
		IsClient:  req.IsClient,
	})
	if err != nil {
		return instructionError(c, err)
	}

	profileAddr, _, _ := ledger.ProfileAddress(signer)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"instruction_id": uuid.NewString(),
		"profile":        profileAddr.String(),
		"new_accounts":   addressStrings(receipt.NewAccounts),
	})
}

// EditProfile overwrites username/email on the signer's profile.
func (s *InstructionService) EditProfile(c *fiber.Ctx) error {
	signer, ok := signerAddress(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "signer address missing from context"})
	}
	profileAddr, err := ledger.ParseAddress(c.Params("address"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid profile address"})
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if _, err := s.Engine.Execute(ledger.EditProfile{
		Authority: signer,
		Profile:   profileAddr,
		Username:  req.Username,
		Email:     req.Email,
	}); err != nil {
		return instructionError(c, err)
	}

	return c.JSON(fiber.Map{
		"instruction_id": uuid.NewString(),
		"profile":        profileAddr.String(),
	})
}

// DeleteProfile closes the signer's profile and refunds its rent reserve.
func (s *InstructionService) DeleteProfile(c *fiber.Ctx) error {
	signer, ok := signerAddress(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "signer address missing from context"})
	}
	profileAddr, err := ledger.ParseAddress(c.Params("address"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid profile address"})
	}

	receipt, err := s.Engine.Execute(ledger.DeleteProfile{Authority: signer, Profile: profileAddr})
	if err != nil {
		return instructionError(c, err)
	}

	return c.JSON(fiber.Map{
		"instruction_id":  uuid.NewString(),
		"closed_accounts": addressStrings(receipt.ClosedAccounts),
	})
}

// CreateBounty opens a bounty and funds its escrow in one atomic step.
func (s *InstructionService) CreateBounty(c *fiber.Ctx) error {
	signer, ok := signerAddress(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "signer address missing from context"})
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Reward      uint64 `json:"reward"`
		Location    string `json:"location"`
		TimeLimit   int64  `json:"time_limit"` // unix seconds, absolute expiry
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	receipt, err := s.Engine.Execute(ledger.CreateBounty{
		Creator:     signer,
		Title:       req.Title,
		Description: req.Description,
		Reward:      req.Reward,
		Location:    req.Location,
		TimeLimit:   req.TimeLimit,
	})
	if err != nil {
		return instructionError(c, err)
	}

	bountyAddr, _, _ := ledger.BountyAddress(signer, req.Title)
	escrowAddr, _, _ := ledger.EscrowAddress(bountyAddr)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"instruction_id": uuid.NewString(),
		"bounty":         bountyAddr.String(),
		"escrow":         escrowAddr.String(),
		"new_accounts":   addressStrings(receipt.NewAccounts),
	})
}

// ClaimBounty reserves an open bounty for the signing hunter.
func (s *InstructionService) ClaimBounty(c *fiber.Ctx) error {
	signer, ok := signerAddress(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "signer address missing from context"})
	}
	bountyAddr, err := ledger.ParseAddress(c.Params("address"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty address"})
	}

	if _, err := s.Engine.Execute(ledger.ClaimBounty{Hunter: signer, Bounty: bountyAddr}); err != nil {
		return instructionError(c, err)
	}

	return c.JSON(fiber.Map{
		"instruction_id": uuid.NewString(),
		"bounty":         bountyAddr.String(),
		"hunter":         signer.String(),
	})
}

// SubmitWork records the hunter's work product for a claimed bounty.
func (s *InstructionService) SubmitWork(c *fiber.Ctx) error {
	signer, ok := signerAddress(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "signer address missing from context"})
	}
	bountyAddr, err := ledger.ParseAddress(c.Params("address"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty address"})
	}

	var req struct {
		SubmissionLink string `json:"submission_link"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	receipt, err := s.Engine.Execute(ledger.SubmitWork{
		Hunter:         signer,
		Bounty:         bountyAddr,
		SubmissionLink: req.SubmissionLink,
	})
	if err != nil {
		return instructionError(c, err)
	}

	submissionAddr, _, _ := ledger.SubmissionAddress(bountyAddr, signer)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"instruction_id": uuid.NewString(),
		"submission":     submissionAddr.String(),
		"new_accounts":   addressStrings(receipt.NewAccounts),
	})
}

// SelectWinner settles a claimed bounty: escrow pays the winner, the escrow
// account closes, both profiles take their counter updates.
func (s *InstructionService) SelectWinner(c *fiber.Ctx) error {
	signer, ok := signerAddress(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "signer address missing from context"})
	}
	bountyAddr, err := ledger.ParseAddress(c.Params("address"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty address"})
	}

	var req struct {
		Winner string `json:"winner"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	winner, err := ledger.ParseAddress(req.Winner)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid winner address"})
	}

	receipt, err := s.Engine.Execute(ledger.SelectWinner{
		Creator: signer,
		Bounty:  bountyAddr,
		Winner:  winner,
	})
	if err != nil {
		return instructionError(c, err)
	}

	return c.JSON(fiber.Map{
		"instruction_id":  uuid.NewString(),
		"bounty":          bountyAddr.String(),
		"winner":          winner.String(),
		"closed_accounts": addressStrings(receipt.ClosedAccounts),
	})
}

// signerAddress reads the signer identity placed in context by the
// middleware. Signature verification happens upstream of this service.
func signerAddress(c *fiber.Ctx) (ledger.Address, bool) {
	raw, _ := c.Locals("signer_address").(string)
	if raw == "" {
		return ledger.ZeroAddress, false
	}
	addr, err := ledger.ParseAddress(raw)
	if err != nil {
		return ledger.ZeroAddress, false
	}
	return addr, true
}

func addressStrings(addrs []ledger.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return out
}

// instructionError translates ledger failures into HTTP responses. Taxonomy
// errors keep their name and number so callers can branch on cause.
func instructionError(c *fiber.Ctx, err error) error {
	var lerr *ledger.Error
	if errors.As(err, &lerr) {
		status := fiber.StatusBadRequest
		switch lerr.Code {
		case ledger.CodeUnauthorized, ledger.CodeNotAClient, ledger.CodeNotAHunter, ledger.CodeSubmissionMismatch:
			status = fiber.StatusForbidden
		case ledger.CodeInvalidStatus, ledger.CodeBountyNotOpen, ledger.CodeBountyNotClaimed, ledger.CodePastDeadline:
			status = fiber.StatusConflict
		case ledger.CodeMathOverflow, ledger.CodeInsufficientEscrow:
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"error":   lerr.Name,
			"code":    lerr.Code,
			"message": lerr.Error(),
		})
	}

	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
	case errors.Is(err, ledger.ErrAccountExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "account already exists"})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "insufficient funds"})
	case errors.Is(err, ledger.ErrWrongAccountKind):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wrong account kind"})
	}

	log.Printf("❌ Instruction failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "instruction failed"})
}
