package handler

import (
	"time"

	"scanledger/internal/token"
)

// TokenResponse is the wire shape of a token.
type TokenResponse struct {
	Value     string    `json:"value"`
	Kind      string    `json:"kind"`
	Active    bool      `json:"active"`
	RedeemURL string    `json:"redeem_url"`
	ImageRef  string    `json:"image_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	DonorID string `json:"donor_id,omitempty"`

	GroupID     string `json:"group_id,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Label       string `json:"label,omitempty"`
}

// IssuedResponse is a freshly generated token with its resolved binding.
type IssuedResponse struct {
	Token     TokenResponse `json:"token"`
	DonorName string        `json:"donor_name,omitempty"`
	GroupName string        `json:"group_name,omitempty"`
}

// BatchResultResponse is one row's outcome in a batch generation.
type BatchResultResponse struct {
	Row    int             `json:"row"`
	Issued *IssuedResponse `json:"issued,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ValidateResponse is the resolved binding for a scanned value.
type ValidateResponse struct {
	Kind  string        `json:"kind"`
	Token TokenResponse `json:"token"`

	DonorID   string `json:"donor_id,omitempty"`
	DonorName string `json:"donor_name,omitempty"`
	ClassName string `json:"class_name,omitempty"`
	GradeName string `json:"grade_name,omitempty"`

	GroupID     string `json:"group_id,omitempty"`
	GroupName   string `json:"group_name,omitempty"`
	GroupType   string `json:"group_type,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Label       string `json:"label,omitempty"`
}

func fromToken(t *token.Token, redeemURL string) TokenResponse {
	resp := TokenResponse{
		Value:     t.Value,
		Kind:      string(t.Kind),
		Active:    t.IsActive,
		RedeemURL: redeemURL,
		ImageRef:  t.ImageRef,
		CreatedAt: t.CreatedAt,
	}
	if identity, ok := t.Identity(); ok {
		resp.DonorID = identity.DonorID.String()
	}
	if preset, ok := t.Preset(); ok {
		resp.GroupID = preset.GroupID.String()
		resp.AmountCents = preset.AmountCents
		resp.Label = preset.Label
	}
	return resp
}

func fromIssued(issued *token.Issued) IssuedResponse {
	resp := IssuedResponse{Token: fromToken(issued.Token, issued.RedeemURL)}
	if issued.Donor != nil {
		resp.DonorName = issued.Donor.Name
	}
	if issued.Group != nil {
		resp.GroupName = issued.Group.Name
	}
	return resp
}

func fromResolved(resolved *token.Resolved, redeemURL string) ValidateResponse {
	resp := ValidateResponse{
		Kind:  string(resolved.Kind),
		Token: fromToken(resolved.Token, redeemURL),
	}
	if resolved.Donor != nil {
		resp.DonorID = resolved.Donor.ID.String()
		resp.DonorName = resolved.Donor.Name
		resp.ClassName = resolved.Donor.ClassName
		resp.GradeName = resolved.Donor.GradeName
	}
	if resolved.Group != nil {
		resp.GroupID = resolved.Group.ID.String()
		resp.GroupName = resolved.Group.Name
		resp.GroupType = string(resolved.Group.Type)
		resp.AmountCents = resolved.AmountCents
		resp.Label = resolved.Label
	}
	return resp
}
