// workers/deposit_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"bounty-hunt-system/ledger"
	"bounty-hunt-system/models"
	"bounty-hunt-system/storage"
	"bounty-hunt-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepositSyncClient polls the custody service for confirmed deposits and
// credits them to ledger wallet accounts. This is the only way spendable
// lamports enter the record space; instructions only move them around.
type DepositSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
	Store      *storage.AccountStore
	Engine     *ledger.Engine
}

func NewDepositSyncClient(db *gorm.DB, store *storage.AccountStore, engine *ledger.Engine) *DepositSyncClient {
	baseURL := os.Getenv("CUSTODY_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("CUSTODY_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("BOUNTY_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("BOUNTY_SERVICE_TOKEN environment variable is required for deposit sync")
	}

	return &DepositSyncClient{
		BaseURL:    baseURL,
		Token:      token,
		DB:         db,
		Store:      store,
		Engine:     engine,
		HTTPClient: utils.HTTPClient,
	}
}

// GetConfirmedDeposits fetches deposits confirmed since the given time.
func (c *DepositSyncClient) GetConfirmedDeposits(ctx context.Context, since time.Time) ([]models.DepositMirror, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/deposits", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call custody service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("custody service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Deposits []models.DepositMirror `json:"deposits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode custody service response: %w", err)
	}

	return response.Deposits, nil
}

// PollDeposits mirrors confirmed deposits and credits the uncredited ones.
func PollDeposits(ctx context.Context, client *DepositSyncClient, pollInterval time.Duration) {
	log.Println("Starting deposit polling (DB-backed)...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Deposit polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			deposits, err := client.GetConfirmedDeposits(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling deposits: %v", err)
				continue
			}

			if len(deposits) > 0 {
				log.Printf("📥 Received %d confirmed deposit(s) from custody service.", len(deposits))

				// Deposit ids are stable, so replays of the same window are
				// absorbed by DoNothing instead of double-mirroring.
				if err := client.DB.Clauses(
					clause.OnConflict{
						Columns:   []clause.Column{{Name: "id"}},
						DoNothing: true,
					},
				).Create(&deposits).Error; err != nil {
					log.Printf("❌ Failed to mirror %d deposit(s): %v", len(deposits), err)
					// Do NOT advance lastSyncTime on failure — retry same window next tick
					continue
				}
			}

			if err := client.creditPending(); err != nil {
				log.Printf("❌ Failed to credit pending deposits: %v", err)
				continue
			}

			lastSyncTime = logTime
		}
	}
}

// creditPending credits every mirrored-but-uncredited deposit to its wallet
// account, marking each row as it lands.
func (c *DepositSyncClient) creditPending() error {
	var pending []models.DepositMirror
	if err := c.DB.Where("credited = ?", false).
		Order("confirmed_at ASC").
		Find(&pending).Error; err != nil {
		return err
	}

	for _, dep := range pending {
		addr, err := ledger.ParseAddress(dep.WalletAddress)
		if err != nil {
			log.Printf("⚠️  Deposit %s has a malformed wallet address %q — skipping", dep.ID, dep.WalletAddress)
			continue
		}
		// The credit and the credited mark land in one DB transaction, and
		// the whole settle holds off instruction execution so an in-flight
		// instruction cannot snapshot the wallet pre-credit and overwrite
		// the balance on commit.
		err = c.Engine.Exclusive(func() error {
			return c.Store.CreditDeposit(addr, dep.Amount, dep.ID)
		})
		if err != nil {
			return fmt.Errorf("credit deposit %s: %w", dep.ID, err)
		}
		log.Printf("✅ Credited %d lamports to wallet %s (deposit %s)", dep.Amount, dep.WalletAddress, dep.ID)
	}
	return nil
}
