package token_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"scanledger/internal/directory"
	dirStore "scanledger/internal/directory/store"
	"scanledger/internal/token"
	tokenStore "scanledger/internal/token/store"
	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
	audit "scanledger/pkg/platform/audit"
)

// fakeLedgerRefs answers the delete cascade's "does the ledger still
// reference this donor" question from a settable map.
type fakeLedgerRefs struct {
	mu   sync.Mutex
	rows map[id.DonorID]bool
}

func newFakeLedgerRefs() *fakeLedgerRefs {
	return &fakeLedgerRefs{rows: make(map[id.DonorID]bool)}
}

func (f *fakeLedgerRefs) HasDonorRows(_ context.Context, donorID id.DonorID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[donorID], nil
}

// recordingAuditor captures emitted events for assertion.
type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAuditor) actions() []audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Action, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type TokenServiceSuite struct {
	suite.Suite
	tokens    *tokenStore.InMemory
	directory *directory.Service
	ledger    *fakeLedgerRefs
	auditor   *recordingAuditor
	service   *token.Service
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceSuite))
}

func (s *TokenServiceSuite) SetupTest() {
	s.tokens = tokenStore.NewInMemory()
	s.directory = directory.NewService(dirStore.NewInMemoryDonorStore(), dirStore.NewInMemoryGroupStore())
	s.ledger = newFakeLedgerRefs()
	s.auditor = &recordingAuditor{}
	s.service = token.NewService(s.tokens, s.directory, s.ledger, "https://give.example.org",
		token.WithAudit(s.auditor))
}

func (s *TokenServiceSuite) issueIdentity(name string) *token.Issued {
	issued, err := s.service.IssueIdentityToken(context.Background(), token.IdentityIssueRequest{
		Name:      name,
		ClassName: "Class 3A",
		GradeName: "Grade 3",
		Cohort:    "2025",
	})
	s.Require().NoError(err)
	return issued
}

func (s *TokenServiceSuite) createGroup(name string, groupType directory.GroupType) *directory.Group {
	group, err := s.directory.CreateGroup(context.Background(), name, groupType)
	s.Require().NoError(err)
	return group
}

// =============================================================================
// Issuance
// =============================================================================

func (s *TokenServiceSuite) TestIssueIdentityToken() {
	ctx := context.Background()

	s.Run("creates the donor and binds an active token", func() {
		issued := s.issueIdentity("Chani")
		s.Equal(token.KindIdentity, issued.Token.Kind)
		s.True(issued.Token.IsActive)
		s.Require().NotNil(issued.Donor)
		s.Equal("Chani", issued.Donor.Name)
		s.Contains(issued.RedeemURL, "/redeemQR/"+issued.Token.Value)

		identity, ok := issued.Token.Identity()
		s.Require().True(ok)
		s.Equal(issued.Donor.ID, identity.DonorID)
	})

	s.Run("reuses an existing donor with the same details", func() {
		first := s.issueIdentity("Rivka")
		second := s.issueIdentity("Rivka")
		s.Equal(first.Donor.ID, second.Donor.ID)
		s.NotEqual(first.Token.Value, second.Token.Value)
	})

	s.Run("rejects a blank name", func() {
		_, err := s.service.IssueIdentityToken(ctx, token.IdentityIssueRequest{
			ClassName: "Class 3A", GradeName: "Grade 3",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("emits an issued audit event", func() {
		s.issueIdentity("Dov")
		s.Contains(s.auditor.actions(), audit.ActionTokenIssued)
	})
}

func (s *TokenServiceSuite) TestIssuePresetToken() {
	ctx := context.Background()

	s.Run("binds a fund token with an amount", func() {
		fund := s.createGroup("Tzedaka", directory.GroupTypeFund)
		issued, err := s.service.IssuePresetToken(ctx, token.PresetIssueRequest{
			GroupID: fund.ID, AmountCents: 500, Label: "$5",
		})
		s.Require().NoError(err)
		s.Equal(token.KindPreset, issued.Token.Kind)
		s.Contains(issued.RedeemURL, "/redeemQR/preset/")

		preset, ok := issued.Token.Preset()
		s.Require().True(ok)
		s.Equal(int64(500), preset.AmountCents)
	})

	s.Run("fund token requires a positive amount", func() {
		fund := s.createGroup("Building Fund", directory.GroupTypeFund)
		_, err := s.service.IssuePresetToken(ctx, token.PresetIssueRequest{GroupID: fund.ID})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("volunteer token needs no amount", func() {
		group := s.createGroup("Lev Shulamis", directory.GroupTypeVolunteer)
		issued, err := s.service.IssuePresetToken(ctx, token.PresetIssueRequest{GroupID: group.ID})
		s.Require().NoError(err)
		s.Equal(token.KindPreset, issued.Token.Kind)
	})

	s.Run("unknown group is rejected", func() {
		_, err := s.service.IssuePresetToken(ctx, token.PresetIssueRequest{
			GroupID: id.NewGroupID(), AmountCents: 100,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *TokenServiceSuite) TestIssueIdentityBatch() {
	ctx := context.Background()

	s.Run("rows succeed and fail independently", func() {
		results := s.service.IssueIdentityBatch(ctx, []token.IdentityIssueRequest{
			{Name: "Chani", ClassName: "Class 3A", GradeName: "Grade 3"},
			{ClassName: "Class 3A", GradeName: "Grade 3"}, // missing name
			{Name: "Rivka", ClassName: "Class 3B", GradeName: "Grade 3"},
		})
		s.Require().Len(results, 3)
		s.NoError(results[0].Err)
		s.NotNil(results[0].Issued)
		s.Error(results[1].Err)
		s.Nil(results[1].Issued)
		s.NoError(results[2].Err)
		s.Equal(2, results[2].Row)
	})
}

// =============================================================================
// Validation
// =============================================================================

func (s *TokenServiceSuite) TestValidate() {
	ctx := context.Background()

	s.Run("resolves an identity token to its donor", func() {
		issued := s.issueIdentity("Chani")
		resolved, err := s.service.Validate(ctx, issued.Token.Value, nil)
		s.Require().NoError(err)
		s.Equal(token.KindIdentity, resolved.Kind)
		s.Require().NotNil(resolved.Donor)
		s.Equal("Chani", resolved.Donor.Name)
	})

	s.Run("resolves a redeem URL the same as a bare value", func() {
		issued := s.issueIdentity("Rivka")
		resolved, err := s.service.Validate(ctx, issued.RedeemURL, nil)
		s.Require().NoError(err)
		s.Equal(issued.Token.Value, resolved.Token.Value)
	})

	s.Run("resolves a preset token to its group and amount", func() {
		fund := s.createGroup("Tzedaka", directory.GroupTypeFund)
		issued, err := s.service.IssuePresetToken(ctx, token.PresetIssueRequest{
			GroupID: fund.ID, AmountCents: 1800, Label: "Chai",
		})
		s.Require().NoError(err)

		resolved, err := s.service.Validate(ctx, issued.Token.Value, nil)
		s.Require().NoError(err)
		s.Equal(token.KindPreset, resolved.Kind)
		s.Require().NotNil(resolved.Group)
		s.Equal("Tzedaka", resolved.Group.Name)
		s.Equal(int64(1800), resolved.AmountCents)
		s.Equal("Chai", resolved.Label)
	})

	s.Run("unknown value is not found", func() {
		_, err := s.service.Validate(ctx, "nope-not-a-token", nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("inactive token is rejected", func() {
		issued := s.issueIdentity("Dov")
		s.Require().NoError(s.service.SetTokenActive(ctx, issued.Token.Value, false))

		_, err := s.service.Validate(ctx, issued.Token.Value, nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("kind mismatch names the expected kind", func() {
		issued := s.issueIdentity("Miri")
		expected := token.KindPreset
		_, err := s.service.Validate(ctx, issued.Token.Value, &expected)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(dErrors.MessageOf(err), "PRESET")
	})

	s.Run("dangling donor reference is not found", func() {
		issued := s.issueIdentity("Orphaned")
		s.Require().NoError(s.directory.DeleteDonor(ctx, issued.Donor.ID))

		_, err := s.service.Validate(ctx, issued.Token.Value, nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *TokenServiceSuite) TestSetTokenActive() {
	ctx := context.Background()

	s.Run("deactivate then reactivate restores the binding", func() {
		issued := s.issueIdentity("Chani")

		s.Require().NoError(s.service.SetTokenActive(ctx, issued.Token.Value, false))
		_, err := s.service.Validate(ctx, issued.Token.Value, nil)
		s.Error(err)

		s.Require().NoError(s.service.SetTokenActive(ctx, issued.Token.Value, true))
		resolved, err := s.service.Validate(ctx, issued.Token.Value, nil)
		s.Require().NoError(err)
		s.Equal("Chani", resolved.Donor.Name)

		actions := s.auditor.actions()
		s.Contains(actions, audit.ActionTokenDeactivated)
		s.Contains(actions, audit.ActionTokenReactivated)
	})

	s.Run("unknown value is not found", func() {
		err := s.service.SetTokenActive(ctx, "missing", false)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *TokenServiceSuite) TestDeleteToken() {
	ctx := context.Background()

	s.Run("deleting the last token of an unreferenced donor removes the donor", func() {
		issued := s.issueIdentity("Chani")

		s.Require().NoError(s.service.DeleteToken(ctx, issued.Token.Value))

		_, err := s.directory.GetDonor(ctx, issued.Donor.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(s.auditor.actions(), audit.ActionTokenDeleted)
	})

	s.Run("donor with ledger history survives token deletion", func() {
		issued := s.issueIdentity("Rivka")
		s.ledger.rows[issued.Donor.ID] = true

		s.Require().NoError(s.service.DeleteToken(ctx, issued.Token.Value))

		donor, err := s.directory.GetDonor(ctx, issued.Donor.ID)
		s.Require().NoError(err)
		s.Equal("Rivka", donor.Name)
	})

	s.Run("donor with another token survives token deletion", func() {
		first := s.issueIdentity("Dov")
		second := s.issueIdentity("Dov")
		s.Equal(first.Donor.ID, second.Donor.ID)

		s.Require().NoError(s.service.DeleteToken(ctx, first.Token.Value))

		_, err := s.directory.GetDonor(ctx, first.Donor.ID)
		s.NoError(err)

		resolved, err := s.service.Validate(ctx, second.Token.Value, nil)
		s.Require().NoError(err)
		s.Equal("Dov", resolved.Donor.Name)
	})

	s.Run("preset token deletion never touches the directory", func() {
		fund := s.createGroup("Tzedaka", directory.GroupTypeFund)
		issued, err := s.service.IssuePresetToken(ctx, token.PresetIssueRequest{
			GroupID: fund.ID, AmountCents: 500,
		})
		s.Require().NoError(err)

		s.Require().NoError(s.service.DeleteToken(ctx, issued.Token.Value))

		group, err := s.directory.GetGroup(ctx, fund.ID)
		s.Require().NoError(err)
		s.Equal("Tzedaka", group.Name)
	})

	s.Run("unknown value is not found", func() {
		err := s.service.DeleteToken(ctx, "missing")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
