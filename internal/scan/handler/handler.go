package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scanledger/internal/scan"
	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
	"scanledger/pkg/platform/httputil"
	"scanledger/pkg/requestcontext"
)

// SessionFactory opens sessions with the process's wired collaborators.
type SessionFactory interface {
	Open(operator string, mode scan.Mode, preset *scan.PresetConfig) (*scan.Session, error)
}

// Handler wires session endpoints to the registry.
type Handler struct {
	factory  SessionFactory
	registry *scan.Registry
	logger   *slog.Logger
}

// New constructs a session handler with its dependencies.
func New(factory SessionFactory, registry *scan.Registry, logger *slog.Logger) *Handler {
	return &Handler{factory: factory, registry: registry, logger: logger}
}

// Register mounts session endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.HandleOpen)
	r.Post("/sessions/{id}/scan", h.HandleScan)
	r.Post("/sessions/{id}/submit", h.HandleSubmit)
	r.Post("/sessions/{id}/cancel", h.HandleCancel)
	r.Delete("/sessions/{id}", h.HandleClose)
}

// OpenRequest opens a scan session.
type OpenRequest struct {
	Mode string `json:"mode"`

	// Preset target for PRESET / PHYSICAL_PRESET modes.
	GroupID     string `json:"group_id,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
}

// ScanRequest feeds one raw scanner read into a session.
type ScanRequest struct {
	Value string `json:"value"`
}

// SubmitRequest completes a NORMAL-mode capture.
type SubmitRequest struct {
	GroupID     string `json:"group_id"`
	AmountCents int64  `json:"amount_cents"`
}

// SessionResponse is the wire shape of a session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
	Step      string `json:"step"`
}

// OutcomeResponse is the wire shape of a scan or submit outcome.
type OutcomeResponse struct {
	Outcome  string `json:"outcome"`
	NextStep string `json:"next_step"`

	DonorName string `json:"donor_name,omitempty"`
	ClassName string `json:"class_name,omitempty"`

	DonationID      string `json:"donation_id,omitempty"`
	ParticipationID string `json:"participation_id,omitempty"`
	GroupName       string `json:"group_name,omitempty"`
	AmountCents     int64  `json:"amount_cents,omitempty"`
}

func fromOutcome(o *scan.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		Outcome:  string(o.Kind),
		NextStep: string(o.NextStep),
	}
	if o.Donor != nil {
		resp.DonorName = o.Donor.Name
		resp.ClassName = o.Donor.ClassName
	}
	if o.Donation != nil {
		resp.DonationID = o.Donation.DonationID.String()
		resp.GroupName = o.Donation.GroupName
		resp.AmountCents = o.Donation.AmountCents
	}
	if o.Participation != nil {
		resp.ParticipationID = o.Participation.ParticipationID.String()
		resp.GroupName = o.Participation.GroupName
	}
	return resp
}

// HandleOpen handles POST /sessions requests.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	operator := requestcontext.Operator(ctx)

	req, ok := httputil.DecodeAndPrepare[OpenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	mode := scan.Mode(req.Mode)
	var preset *scan.PresetConfig
	if mode == scan.ModePreset || mode == scan.ModePhysicalPreset {
		groupID, err := id.ParseGroupID(req.GroupID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		preset = &scan.PresetConfig{GroupID: groupID, AmountCents: req.AmountCents}
	}

	session, err := h.factory.Open(operator, mode, preset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.registry.Add(session)

	h.logger.InfoContext(ctx, "session opened",
		"request_id", requestID,
		"session_id", session.ID,
		"mode", mode,
	)
	httputil.WriteJSON(w, http.StatusCreated, SessionResponse{
		SessionID: session.ID.String(),
		Mode:      string(session.Mode()),
		Step:      string(session.Step()),
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*scan.Session, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	session, err := h.registry.Get(sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return session, true
}

// HandleScan handles POST /sessions/{id}/scan requests.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ScanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Value == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "value is required"))
		return
	}

	outcome, err := session.HandleScan(ctx, req.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "scan rejected",
			"request_id", requestID,
			"session_id", session.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromOutcome(outcome))
}

// HandleSubmit handles POST /sessions/{id}/submit requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	groupID, err := id.ParseGroupID(req.GroupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := session.Submit(ctx, req.AmountCents, groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromOutcome(outcome))
}

// HandleCancel handles POST /sessions/{id}/cancel requests.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.Cancel(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SessionResponse{
		SessionID: session.ID.String(),
		Mode:      string(session.Mode()),
		Step:      string(session.Step()),
	})
}

// HandleClose handles DELETE /sessions/{id} requests.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.registry.Remove(session.ID)
	w.WriteHeader(http.StatusNoContent)
}
