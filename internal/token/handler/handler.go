package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scanledger/internal/token"
	dErrors "scanledger/pkg/domain-errors"
	"scanledger/pkg/platform/httputil"
	"scanledger/pkg/requestcontext"
)

// Service defines the token operations the transport needs.
type Service interface {
	IssueIdentityToken(ctx context.Context, req token.IdentityIssueRequest) (*token.Issued, error)
	IssuePresetToken(ctx context.Context, req token.PresetIssueRequest) (*token.Issued, error)
	IssueIdentityBatch(ctx context.Context, rows []token.IdentityIssueRequest) []token.BatchResult
	Validate(ctx context.Context, rawScan string, expectedKind *token.Kind) (*token.Resolved, error)
	SetTokenActive(ctx context.Context, value string, active bool) error
	DeleteToken(ctx context.Context, value string) error
	ListTokens(ctx context.Context) ([]*token.Token, error)
	RedeemURLFor(t *token.Token) string
}

// Handler wires token endpoints to the token service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a token handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts token endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/qr/generate", h.HandleGenerate)
	r.Post("/qr/generate/batch", h.HandleGenerateBatch)
	r.Get("/qr", h.HandleList)
	r.Patch("/qr/{value}", h.HandleSetActive)
	r.Delete("/qr/{value}", h.HandleDelete)
	r.Post("/scanner/validate", h.HandleValidate)
}

// HandleGenerate handles POST /qr/generate requests.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[GenerateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	kind, err := req.ParsedKind()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var issued *token.Issued
	switch kind {
	case token.KindIdentity:
		issued, err = h.service.IssueIdentityToken(ctx, token.IdentityIssueRequest{
			Name:      req.Name,
			ClassName: req.ClassName,
			GradeName: req.GradeName,
			Cohort:    req.Cohort,
			ImageRef:  req.ImageRef,
		})
	case token.KindPreset:
		groupID, parseErr := req.ParsedGroupID()
		if parseErr != nil {
			httputil.WriteError(w, parseErr)
			return
		}
		issued, err = h.service.IssuePresetToken(ctx, token.PresetIssueRequest{
			GroupID:     groupID,
			AmountCents: req.AmountCents,
			Label:       req.Label,
			ImageRef:    req.ImageRef,
		})
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "token generation failed",
			"request_id", requestID,
			"kind", kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token generated",
		"request_id", requestID,
		"kind", kind,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromIssued(issued))
}

// HandleGenerateBatch handles POST /qr/generate/batch requests. Rows succeed
// and fail independently; the response reports both.
func (h *Handler) HandleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchGenerateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rows := make([]token.IdentityIssueRequest, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = token.IdentityIssueRequest{
			Name:      row.Name,
			ClassName: row.ClassName,
			GradeName: row.GradeName,
			Cohort:    row.Cohort,
			ImageRef:  row.ImageRef,
		}
	}

	results := h.service.IssueIdentityBatch(ctx, rows)
	out := make([]BatchResultResponse, len(results))
	failures := 0
	for i, result := range results {
		out[i] = BatchResultResponse{Row: result.Row}
		if result.Err != nil {
			out[i].Error = result.Err.Error()
			failures++
			continue
		}
		issued := fromIssued(result.Issued)
		out[i].Issued = &issued
	}

	h.logger.InfoContext(ctx, "batch generation finished",
		"request_id", requestID,
		"rows", len(results),
		"failures", failures,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"results": out})
}

// HandleList handles GET /qr requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokens, err := h.service.ListTokens(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]TokenResponse, len(tokens))
	for i, t := range tokens {
		out[i] = fromToken(t, h.service.RedeemURLFor(t))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tokens": out})
}

// HandleSetActive handles PATCH /qr/{value} requests.
func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	value := chi.URLParam(r, "value")

	req, ok := httputil.DecodeAndPrepare[SetActiveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Active == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "active is required"))
		return
	}

	if err := h.service.SetTokenActive(ctx, value, *req.Active); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token active flag updated",
		"request_id", requestID,
		"active", *req.Active,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /qr/{value} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	value := chi.URLParam(r, "value")

	if err := h.service.DeleteToken(ctx, value); err != nil {
		h.logger.ErrorContext(ctx, "token deletion failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token deleted", "request_id", requestID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleValidate handles POST /scanner/validate requests.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	expected, err := req.ParsedExpectedKind()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resolved, err := h.service.Validate(ctx, req.Value, expected)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, fromResolved(resolved, h.service.RedeemURLFor(resolved.Token)))
}
