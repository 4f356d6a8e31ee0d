package handler

import (
	"strings"

	"scanledger/internal/token"
	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
)

// GenerateRequest covers both token kinds; Kind selects which fields apply.
type GenerateRequest struct {
	Kind string `json:"kind"`

	// Identity fields.
	Name      string `json:"name,omitempty"`
	ClassName string `json:"class_name,omitempty"`
	GradeName string `json:"grade_name,omitempty"`
	Cohort    string `json:"cohort,omitempty"`

	// Preset fields.
	GroupID     string `json:"group_id,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Label       string `json:"label,omitempty"`

	ImageRef string `json:"image_ref,omitempty"`
}

// ParsedKind validates the kind field.
func (r GenerateRequest) ParsedKind() (token.Kind, error) {
	switch token.Kind(strings.ToUpper(strings.TrimSpace(r.Kind))) {
	case token.KindIdentity:
		return token.KindIdentity, nil
	case token.KindPreset:
		return token.KindPreset, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "kind must be IDENTITY or PRESET")
}

// ParsedGroupID validates the preset group reference.
func (r GenerateRequest) ParsedGroupID() (id.GroupID, error) {
	return id.ParseGroupID(r.GroupID)
}

// BatchGenerateRequest is a roster of identity rows, one token each.
type BatchGenerateRequest struct {
	Rows []BatchRow `json:"rows"`
}

// BatchRow is one roster entry.
type BatchRow struct {
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	GradeName string `json:"grade_name"`
	Cohort    string `json:"cohort,omitempty"`
	ImageRef  string `json:"image_ref,omitempty"`
}

// SetActiveRequest toggles a token. Active is a pointer so a missing field is
// distinguishable from false.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// ValidateRequest resolves a raw scanned value.
type ValidateRequest struct {
	Value        string `json:"value"`
	ExpectedKind string `json:"expected_kind,omitempty"`
}

// ParsedExpectedKind returns the optional kind filter.
func (r ValidateRequest) ParsedExpectedKind() (*token.Kind, error) {
	raw := strings.ToUpper(strings.TrimSpace(r.ExpectedKind))
	if raw == "" {
		return nil, nil
	}
	switch token.Kind(raw) {
	case token.KindIdentity:
		k := token.KindIdentity
		return &k, nil
	case token.KindPreset:
		k := token.KindPreset
		return &k, nil
	}
	return nil, dErrors.New(dErrors.CodeInvalidInput, "expected_kind must be IDENTITY or PRESET")
}
