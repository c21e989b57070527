package handlers

import (
	"net/http"
	"strings"
	"testing"

	"bounty-hunt-system/ledger"
	"bounty-hunt-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp registers every route group in the same order main does, so the
// tests see the exact routing table the server runs.
func testApp(t *testing.T) (*fiber.App, *ledger.MemStore) {
	t.Helper()
	store := ledger.NewMemStore()
	engine := ledger.NewEngine(store)
	instructions := services.NewInstructionService(engine)
	queries := services.NewQueryService(nil)
	uploads := services.NewUploadService()

	app := fiber.New()
	SetupProfileRoutes(app, instructions, queries)
	SetupBountyRoutes(app, instructions, queries, uploads)
	SetupAccountRoutes(app, queries)
	return app, store
}

func walletAddr(b byte) ledger.Address {
	var a ledger.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// Read routes must answer without a signer header. Each request here fails
// address/filter validation inside the handler, so a 400 proves the handler
// ran; a signer-gated route would have answered 401 first.
func TestReadRoutesNeedNoSignerContext(t *testing.T) {
	app, _ := testApp(t)

	for _, path := range []string{
		"/profiles/not-an-address",
		"/profiles/owner/not-an-address",
		"/bounties/not-an-address",
		"/bounties/not-an-address/submissions",
		"/submissions/not-an-address",
		"/accounts/not-an-address",
		"/wallets/not-an-address",
		"/bounties?status=paused",
	} {
		req, err := http.NewRequest("GET", path, nil)
		require.NoError(t, err)
		resp, err := app.Test(req)
		require.NoError(t, err, path)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestInstructionRoutesRequireSignerContext(t *testing.T) {
	app, _ := testApp(t)
	addr := walletAddr(0x01).String()

	for _, r := range []struct{ method, path string }{
		{"POST", "/profiles"},
		{"PUT", "/profiles/" + addr},
		{"DELETE", "/profiles/" + addr},
		{"POST", "/bounties"},
		{"POST", "/bounties/" + addr + "/claim"},
		{"POST", "/bounties/" + addr + "/submissions"},
		{"POST", "/bounties/" + addr + "/winner"},
		{"POST", "/uploads/submissions"},
	} {
		req, err := http.NewRequest(r.method, r.path, nil)
		require.NoError(t, err)
		resp, err := app.Test(req)
		require.NoError(t, err, r.path)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, r.method+" "+r.path)
	}
}

func TestSignedInstructionReachesEngine(t *testing.T) {
	app, store := testApp(t)
	signer := walletAddr(0x01)
	require.NoError(t, store.Credit(signer, 10_000_000_000))

	body := strings.NewReader(`{"username":"Alice","email":"a@x.com","is_client":true}`)
	req, err := http.NewRequest("POST", "/profiles", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signer-Address", signer.String())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	profileAddr, _, err := ledger.ProfileAddress(signer)
	require.NoError(t, err)
	_, err = store.Get(profileAddr)
	assert.NoError(t, err)
}
