package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanledger/internal/directory"
	dirStore "scanledger/internal/directory/store"
	"scanledger/internal/ledger"
	ledgerStore "scanledger/internal/ledger/store"
	"scanledger/internal/scan"
	"scanledger/internal/token"
	tokenStore "scanledger/internal/token/store"
	id "scanledger/pkg/domain"
	"scanledger/pkg/testutil"
)

type fixture struct {
	router    chi.Router
	directory *directory.Service
	tokens    *token.Service
	registry  *scan.Registry
	fund      *directory.Group
	identity  *token.Issued
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := t.Context()

	dir := directory.NewService(dirStore.NewInMemoryDonorStore(), dirStore.NewInMemoryGroupStore())
	led := ledger.NewService(ledgerStore.NewInMemory(), dir)
	tokens := token.NewService(tokenStore.NewInMemory(), dir, led, "https://give.example.org")

	fund, err := dir.CreateGroup(ctx, "Tzedaka", directory.GroupTypeFund)
	require.NoError(t, err)
	identity, err := tokens.IssueIdentityToken(ctx, token.IdentityIssueRequest{
		Name: "Chani", ClassName: "Class 3A", GradeName: "Grade 3",
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := scan.NewFactory(tokens, led, scan.FactoryWithLogger(logger))
	registry := scan.NewRegistry()

	router := chi.NewRouter()
	New(factory, registry, logger).Register(router)
	return &fixture{router: router, directory: dir, tokens: tokens, registry: registry, fund: fund, identity: identity}
}

func (f *fixture) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(f.router, testutil.NewJSONRequest(t, method, path, payload))
}

func (f *fixture) openSession(t *testing.T, payload map[string]any) SessionResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/sessions", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	return testutil.UnmarshalResponse[SessionResponse](t, rec)
}

func TestNormalModeOverHTTP(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, map[string]any{"mode": "NORMAL"})
	assert.Equal(t, "IDLE", session.Step)

	rec := f.do(t, http.MethodPost, "/sessions/"+session.SessionID+"/scan",
		map[string]string{"value": f.identity.Token.Value})
	require.Equal(t, http.StatusOK, rec.Code)

	outcome := testutil.UnmarshalResponse[OutcomeResponse](t, rec)
	assert.Equal(t, "DONOR_CAPTURED", outcome.Outcome)
	assert.Equal(t, "Chani", outcome.DonorName)

	rec = f.do(t, http.MethodPost, "/sessions/"+session.SessionID+"/submit",
		map[string]any{"group_id": f.fund.ID.String(), "amount_cents": 500})
	require.Equal(t, http.StatusOK, rec.Code)

	outcome = testutil.UnmarshalResponse[OutcomeResponse](t, rec)
	assert.Equal(t, "RECORDED", outcome.Outcome)
	assert.Equal(t, int64(500), outcome.AmountCents)
	assert.Equal(t, "Tzedaka", outcome.GroupName)
}

func TestPresetModeOverHTTP(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, map[string]any{
		"mode": "PRESET", "group_id": f.fund.ID.String(), "amount_cents": 1800,
	})

	rec := f.do(t, http.MethodPost, "/sessions/"+session.SessionID+"/scan",
		map[string]string{"value": f.identity.Token.Value})
	require.Equal(t, http.StatusOK, rec.Code)

	outcome := testutil.UnmarshalResponse[OutcomeResponse](t, rec)
	assert.Equal(t, "RECORDED", outcome.Outcome)
	assert.Equal(t, int64(1800), outcome.AmountCents)
}

func TestOpenSessionCarriesOperator(t *testing.T) {
	f := newFixture(t)

	req := testutil.WithOperator(
		testutil.NewJSONRequest(t, http.MethodPost, "/sessions", map[string]any{"mode": "NORMAL"}),
		"station-7")
	rec := testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := testutil.UnmarshalResponse[SessionResponse](t, rec)
	sessionID, err := id.ParseSessionID(resp.SessionID)
	require.NoError(t, err)
	session, err := f.registry.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, "station-7", session.Operator)
}

func TestOpenSessionRejectsPresetWithoutGroup(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/sessions", map[string]any{"mode": "PRESET"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanUnknownSessionIs404(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/sessions/2f0c2a9e-5d80-4b39-9f3e-1a2b3c4d5e6f/scan",
		map[string]string{"value": "anything"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelAndClose(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, map[string]any{"mode": "NORMAL"})

	rec := f.do(t, http.MethodPost, "/sessions/"+session.SessionID+"/scan",
		map[string]string{"value": f.identity.Token.Value})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/sessions/"+session.SessionID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := testutil.UnmarshalResponse[SessionResponse](t, rec)
	assert.Equal(t, "IDLE", resp.Step)

	rec = f.do(t, http.MethodDelete, "/sessions/"+session.SessionID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/sessions/"+session.SessionID+"/scan",
		map[string]string{"value": f.identity.Token.Value})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
