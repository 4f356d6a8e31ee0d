package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scanledger/internal/directory"
	"scanledger/pkg/platform/httputil"
	"scanledger/pkg/requestcontext"
)

// Service defines the directory operations the transport needs.
type Service interface {
	ListDonors(ctx context.Context) ([]*directory.Donor, error)
	ListGroups(ctx context.Context) ([]*directory.Group, error)
	CreateGroup(ctx context.Context, name string, groupType directory.GroupType) (*directory.Group, error)
}

// Handler wires directory endpoints to the directory service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a directory handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts directory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/donors", h.HandleListDonors)
	r.Get("/groups", h.HandleListGroups)
	r.Post("/groups", h.HandleCreateGroup)
}

// DonorResponse is the wire shape of a donor.
type DonorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	GradeName string `json:"grade_name"`
	Cohort    string `json:"cohort,omitempty"`
}

// GroupResponse is the wire shape of a group.
type GroupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateGroupRequest adds a fund or volunteer group.
type CreateGroupRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// HandleListDonors handles GET /donors requests.
func (h *Handler) HandleListDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.service.ListDonors(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]DonorResponse, len(donors))
	for i, d := range donors {
		out[i] = DonorResponse{
			ID:        d.ID.String(),
			Name:      d.Name,
			ClassName: d.ClassName,
			GradeName: d.GradeName,
			Cohort:    d.Cohort,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"donors": out})
}

// HandleListGroups handles GET /groups requests.
func (h *Handler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]GroupResponse, len(groups))
	for i, g := range groups {
		out[i] = GroupResponse{ID: g.ID.String(), Name: g.Name, Type: string(g.Type)}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"groups": out})
}

// HandleCreateGroup handles POST /groups requests.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateGroupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	group, err := h.service.CreateGroup(ctx, req.Name, directory.GroupType(req.Type))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "group created",
		"request_id", requestID,
		"group_id", group.ID,
		"type", group.Type,
	)
	httputil.WriteJSON(w, http.StatusCreated, GroupResponse{
		ID:   group.ID.String(),
		Name: group.Name,
		Type: string(group.Type),
	})
}
