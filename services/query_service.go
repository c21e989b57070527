// services/query_service.go
package services

import (
	"errors"
	"log"
	"strconv"

	"bounty-hunt-system/ledger"
	"bounty-hunt-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// QueryService serves the read-only account surface: fetch by address and
// scan-with-filter. Reads decode the binary records mirrored into Postgres;
// they never go through the engine.
type QueryService struct {
	DB *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{DB: db}
}

type profileView struct {
	Address                   string  `json:"address"`
	Owner                     string  `json:"owner"`
	Username                  string  `json:"username"`
	Email                     string  `json:"email"`
	Avatar                    string  `json:"avatar"`
	IsHunter                  bool    `json:"is_hunter"`
	IsClient                  bool    `json:"is_client"`
	BountiesCompleted         uint64  `json:"bounties_completed"`
	BountiesApplied           uint64  `json:"bounties_applied"`
	TotalSolEarned            uint64  `json:"total_sol_earned"`
	SuccessRate               float64 `json:"success_rate"`
	BountiesPosted            uint64  `json:"bounties_posted"`
	TotalSolSpent             uint64  `json:"total_sol_spent"`
	BountiesCompletedAsClient uint64  `json:"bounties_completed_as_client"`
	BountiesRewarded          uint64  `json:"bounties_rewarded"`
	Bump                      uint8   `json:"bump"`
}

type bountyView struct {
	Address     string  `json:"address"`
	Creator     string  `json:"creator"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Reward      uint64  `json:"reward"`
	Location    string  `json:"location"`
	TimeLimit   int64   `json:"time_limit"`
	Status      string  `json:"status"`
	Hunter      *string `json:"hunter,omitempty"`
	CreatedAt   int64   `json:"created_at"`
	Bump        uint8   `json:"bump"`
	Escrow      string  `json:"escrow"`
}

type submissionView struct {
	Address        string `json:"address"`
	Bounty         string `json:"bounty"`
	Hunter         string `json:"hunter"`
	SubmissionLink string `json:"submission_link"`
	SubmittedAt    int64  `json:"submitted_at"`
	Selected       bool   `json:"selected"`
}

// GetAccount fetches a raw record by address: kind, lamports, payload.
func (s *QueryService) GetAccount(c *fiber.Ctx) error {
	row, ok, err := s.row(c, c.Params("address"))
	if !ok {
		return err
	}
	return c.JSON(row)
}

// GetProfile fetches and decodes a profile account.
func (s *QueryService) GetProfile(c *fiber.Ctx) error {
	row, ok, err := s.row(c, c.Params("address"))
	if !ok {
		return err
	}
	p, err := ledger.DecodeProfile(row.Data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "account is not a profile"})
	}
	return c.JSON(newProfileView(row.Address, p))
}

// GetProfileByOwner resolves the owner's derived profile address and fetches it.
func (s *QueryService) GetProfileByOwner(c *fiber.Ctx) error {
	owner, err := ledger.ParseAddress(c.Params("owner"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid owner address"})
	}
	profileAddr, _, err := ledger.ProfileAddress(owner)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	row, ok, err := s.row(c, profileAddr.String())
	if !ok {
		return err
	}
	p, err := ledger.DecodeProfile(row.Data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "account is not a profile"})
	}
	return c.JSON(newProfileView(row.Address, p))
}

// GetBounty fetches and decodes a bounty account.
func (s *QueryService) GetBounty(c *fiber.Ctx) error {
	row, ok, err := s.row(c, c.Params("address"))
	if !ok {
		return err
	}
	b, err := ledger.DecodeBounty(row.Data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "account is not a bounty"})
	}
	return c.JSON(newBountyView(row.Address, b))
}

// ListBounties scans bounty records with optional status/creator/hunter
// filters. Filters apply after decode since the payload is binary.
func (s *QueryService) ListBounties(c *fiber.Ctx) error {
	var statusFilter *ledger.BountyStatus
	if raw := c.Query("status"); raw != "" {
		status, ok := ledger.ParseBountyStatus(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
		statusFilter = &status
	}

	var creatorFilter, hunterFilter *ledger.Address
	if raw := c.Query("creator"); raw != "" {
		addr, err := ledger.ParseAddress(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid creator filter"})
		}
		creatorFilter = &addr
	}
	if raw := c.Query("hunter"); raw != "" {
		addr, err := ledger.ParseAddress(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid hunter filter"})
		}
		hunterFilter = &addr
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid limit parameter"})
		}
		limit = l
	}

	var rows []models.AccountRow
	if err := s.DB.Where("kind = ?", string(ledger.KindBounty)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		log.Printf("DB Error listing bounties: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list bounties"})
	}

	views := make([]bountyView, 0, len(rows))
	for _, row := range rows {
		b, err := ledger.DecodeBounty(row.Data)
		if err != nil {
			log.Printf("⚠️  Skipping undecodable bounty row %s: %v", row.Address, err)
			continue
		}
		if statusFilter != nil && b.Status != *statusFilter {
			continue
		}
		if creatorFilter != nil && b.Creator != *creatorFilter {
			continue
		}
		if hunterFilter != nil && (b.Hunter == nil || *b.Hunter != *hunterFilter) {
			continue
		}
		views = append(views, newBountyView(row.Address, b))
		if limit > 0 && len(views) >= limit {
			break
		}
	}
	return c.JSON(views)
}

// ListSubmissions returns every submission filed against one bounty.
func (s *QueryService) ListSubmissions(c *fiber.Ctx) error {
	bountyAddr, err := ledger.ParseAddress(c.Params("address"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bounty address"})
	}

	var rows []models.AccountRow
	if err := s.DB.Where("kind = ?", string(ledger.KindSubmission)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		log.Printf("DB Error listing submissions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list submissions"})
	}

	views := make([]submissionView, 0, len(rows))
	for _, row := range rows {
		sub, err := ledger.DecodeSubmission(row.Data)
		if err != nil {
			log.Printf("⚠️  Skipping undecodable submission row %s: %v", row.Address, err)
			continue
		}
		if sub.Bounty != bountyAddr {
			continue
		}
		views = append(views, newSubmissionView(row.Address, sub))
	}
	return c.JSON(views)
}

// GetSubmission fetches and decodes one submission account.
func (s *QueryService) GetSubmission(c *fiber.Ctx) error {
	row, ok, err := s.row(c, c.Params("address"))
	if !ok {
		return err
	}
	sub, err := ledger.DecodeSubmission(row.Data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "account is not a submission"})
	}
	return c.JSON(newSubmissionView(row.Address, sub))
}

// GetWallet returns the spendable lamport balance at an address. A vacant
// address reads as zero, the way the environment's transfer primitive sees it.
func (s *QueryService) GetWallet(c *fiber.Ctx) error {
	addr, err := ledger.ParseAddress(c.Params("address"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid wallet address"})
	}

	var row models.AccountRow
	if err := s.DB.First(&row, "address = ?", addr.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"address": addr.String(), "lamports": 0})
		}
		log.Printf("DB Error fetching wallet: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{"address": row.Address, "kind": row.Kind, "lamports": row.Lamports})
}

// row fetches one account row; on a miss or error it has already written the
// response and returns ok=false.
func (s *QueryService) row(c *fiber.Ctx, rawAddr string) (*models.AccountRow, bool, error) {
	addr, err := ledger.ParseAddress(rawAddr)
	if err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid address"})
	}
	var row models.AccountRow
	if err := s.DB.First(&row, "address = ?", addr.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
		}
		log.Printf("DB Error fetching account: %v", err)
		return nil, false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return &row, true, nil
}

func newProfileView(address string, p *ledger.Profile) profileView {
	return profileView{
		Address:                   address,
		Owner:                     p.Owner.String(),
		Username:                  p.Username,
		Email:                     p.Email,
		Avatar:                    p.Avatar,
		IsHunter:                  p.IsHunter,
		IsClient:                  p.IsClient,
		BountiesCompleted:         p.BountiesCompleted,
		BountiesApplied:           p.BountiesApplied,
		TotalSolEarned:            p.TotalSolEarned,
		SuccessRate:               p.SuccessRate,
		BountiesPosted:            p.BountiesPosted,
		TotalSolSpent:             p.TotalSolSpent,
		BountiesCompletedAsClient: p.BountiesCompletedAsClient,
		BountiesRewarded:          p.BountiesRewarded,
		Bump:                      p.Bump,
	}
}

func newBountyView(address string, b *ledger.Bounty) bountyView {
	v := bountyView{
		Address:     address,
		Creator:     b.Creator.String(),
		Title:       b.Title,
		Description: b.Description,
		Reward:      b.Reward,
		Location:    b.Location,
		TimeLimit:   b.TimeLimit,
		Status:      b.Status.String(),
		CreatedAt:   b.CreatedAt,
		Bump:        b.Bump,
	}
	if b.Hunter != nil {
		h := b.Hunter.String()
		v.Hunter = &h
	}
	if addr, err := ledger.ParseAddress(address); err == nil {
		if escrow, _, err := ledger.EscrowAddress(addr); err == nil {
			v.Escrow = escrow.String()
		}
	}
	return v
}

func newSubmissionView(address string, sub *ledger.Submission) submissionView {
	return submissionView{
		Address:        address,
		Bounty:         sub.Bounty.String(),
		Hunter:         sub.Hunter.String(),
		SubmissionLink: sub.Link,
		SubmittedAt:    sub.SubmittedAt,
		Selected:       sub.Selected,
	}
}
