package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scanledger/internal/ledger"
	id "scanledger/pkg/domain"
	"scanledger/pkg/platform/httputil"
	"scanledger/pkg/requestcontext"
)

// Service defines the ledger operations the transport needs.
type Service interface {
	RecordDonation(ctx context.Context, donorID id.DonorID, groupID id.GroupID, amountCents int64) (*ledger.DonationSummary, error)
	RecordParticipation(ctx context.Context, donorID id.DonorID, groupID id.GroupID) (*ledger.ParticipationSummary, error)
}

// Handler wires ledger endpoints to the ledger service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a ledger handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts ledger endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/scanner/record-donation", h.HandleRecordDonation)
	r.Post("/scanner/record-participation", h.HandleRecordParticipation)
}

// RecordDonationRequest writes one donation row.
type RecordDonationRequest struct {
	DonorID     string `json:"donor_id"`
	GroupID     string `json:"group_id"`
	AmountCents int64  `json:"amount_cents"`
}

// RecordParticipationRequest joins a donor to a volunteer group.
type RecordParticipationRequest struct {
	DonorID string `json:"donor_id"`
	GroupID string `json:"group_id"`
}

// DonationResponse is the wire shape of a recorded donation.
type DonationResponse struct {
	DonationID  string `json:"donation_id"`
	DonorName   string `json:"donor_name"`
	GroupName   string `json:"group_name"`
	AmountCents int64  `json:"amount_cents"`
	RecordedAt  string `json:"recorded_at"`
}

// ParticipationResponse is the wire shape of a recorded participation.
type ParticipationResponse struct {
	ParticipationID string `json:"participation_id"`
	DonorName       string `json:"donor_name"`
	GroupName       string `json:"group_name"`
	RecordedAt      string `json:"recorded_at"`
}

// HandleRecordDonation handles POST /scanner/record-donation requests.
func (h *Handler) HandleRecordDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordDonationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donorID, err := id.ParseDonorID(req.DonorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	groupID, err := id.ParseGroupID(req.GroupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.service.RecordDonation(ctx, donorID, groupID, req.AmountCents)
	if err != nil {
		h.logger.ErrorContext(ctx, "donation recording failed",
			"request_id", requestID,
			"donor_id", req.DonorID,
			"group_id", req.GroupID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, DonationResponse{
		DonationID:  summary.DonationID.String(),
		DonorName:   summary.DonorName,
		GroupName:   summary.GroupName,
		AmountCents: summary.AmountCents,
		RecordedAt:  summary.RecordedAt.Format(time.RFC3339),
	})
}

// HandleRecordParticipation handles POST /scanner/record-participation requests.
func (h *Handler) HandleRecordParticipation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordParticipationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donorID, err := id.ParseDonorID(req.DonorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	groupID, err := id.ParseGroupID(req.GroupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.service.RecordParticipation(ctx, donorID, groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, ParticipationResponse{
		ParticipationID: summary.ParticipationID.String(),
		DonorName:       summary.DonorName,
		GroupName:       summary.GroupName,
		RecordedAt:      summary.RecordedAt.Format(time.RFC3339),
	})
}
