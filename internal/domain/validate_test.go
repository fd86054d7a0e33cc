package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-tracker/internal/domain"
)

func validCandidate() domain.Candidate {
	return domain.Candidate{
		FullName:  "Ada Lovelace",
		Position:  "Backend Engineer",
		Email:     "ada@example.com",
		AppliedOn: "2025-06-02",
		Status:    domain.StatusPending,
		Priority:  domain.PriorityMedium,
	}
}

func TestValidateCandidate_OK(t *testing.T) {
	require.NoError(t, domain.ValidateCandidate(validCandidate()))
}

func TestValidateCandidate_RequiredFields(t *testing.T) {
	c := validCandidate()
	c.FullName = "   "
	c.Position = ""

	err := domain.ValidateCandidate(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["FullName"])
	assert.True(t, fields["Position"])
	assert.Len(t, ve.Fields, 2)
}

func TestValidateCandidate_Email(t *testing.T) {
	c := validCandidate()
	c.Email = "not-an-email"
	err := domain.ValidateCandidate(c)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "invalid email format")
}

func TestValidateCandidate_DateAndEnums(t *testing.T) {
	c := validCandidate()
	c.AppliedOn = "02/06/2025"
	c.Status = "Hired"
	c.Priority = ""

	var ve *domain.ValidationError
	require.ErrorAs(t, domain.ValidateCandidate(c), &ve)
	assert.Len(t, ve.Fields, 3)
}

func TestFilterIsZero(t *testing.T) {
	assert.True(t, domain.Filter{}.IsZero())
	assert.True(t, domain.Filter{Name: "  "}.IsZero())
	assert.False(t, domain.Filter{Status: domain.StatusAccepted}.IsZero())
}
