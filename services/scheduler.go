// services/scheduler.go
package services

import (
	"log"
	"time"

	"bounty-hunt-system/ledger"
	"bounty-hunt-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartDeadlineSweep logs bounties whose deadline passed while still
// unsettled. There is no refund path in the instruction set, so expired
// escrow stays locked; this sweep exists purely so operators can see it.
func (s *QueryService) StartDeadlineSweep() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var rows []models.AccountRow
			if err := s.DB.Where("kind = ?", string(ledger.KindBounty)).Find(&rows).Error; err != nil {
				log.Printf("[Sweep] DB error: %v", err)
				return
			}

			now := time.Now().Unix()
			stuck := 0
			for _, row := range rows {
				b, err := ledger.DecodeBounty(row.Data)
				if err != nil {
					log.Printf("[Sweep] Undecodable bounty row %s: %v", row.Address, err)
					continue
				}
				if b.Status == ledger.StatusCompleted || b.TimeLimit > now {
					continue
				}
				stuck++
				log.Printf("⏰ Bounty %s (%q) expired at %d while %s — escrow of %d lamports is locked",
					row.Address, b.Title, b.TimeLimit, b.Status, b.Reward)
			}
			if stuck > 0 {
				log.Printf("[Sweep] %d expired unsettled bounty(ies)", stuck)
			}
		}),
	)
}
