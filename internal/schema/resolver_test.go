package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "investmentplanselected", NormalizeName("Investment_Plan Selected"))
	assert.Equal(t, "riskoptionselected", NormalizeName("RiskOptionSelected"))
	assert.Equal(t, "userid", NormalizeName("user-id"))
	assert.Equal(t, "", NormalizeName("___"))
	assert.Equal(t, "a1b2", NormalizeName("A1_B2"))
}

func TestResolve(t *testing.T) {
	t.Run("case_and_punctuation_insensitive", func(t *testing.T) {
		actual, ok := Resolve([]string{"Investment_Plan Selected"}, []string{"InvestmentPlanSelected"})
		require.True(t, ok)
		assert.Equal(t, "Investment_Plan Selected", actual)
	})

	t.Run("candidate_priority_order", func(t *testing.T) {
		available := []string{"registration_status", "Status"}
		actual, ok := Resolve(available, []string{"RegistrationStatus", "Status"})
		require.True(t, ok)
		// "RegistrationStatus" normalizes equal to "registration_status",
		// so the first candidate wins even though "Status" also matches.
		assert.Equal(t, "registration_status", actual)
	})

	t.Run("skips_unmatched_candidates", func(t *testing.T) {
		actual, ok := Resolve([]string{"Plan"}, []string{"InvestmentPlanSelected", "Plan"})
		require.True(t, ok)
		assert.Equal(t, "Plan", actual)
	})

	t.Run("not_found", func(t *testing.T) {
		_, ok := Resolve([]string{"Foo", "Bar"}, []string{"Status"})
		assert.False(t, ok)
	})

	t.Run("duplicate_normalized_columns_prefer_first", func(t *testing.T) {
		actual, ok := Resolve([]string{"User ID", "user_id"}, []string{"UserID"})
		require.True(t, ok)
		assert.Equal(t, "User ID", actual)
	})

	t.Run("empty_inputs", func(t *testing.T) {
		_, ok := Resolve(nil, []string{"Status"})
		assert.False(t, ok)
		_, ok = Resolve([]string{"Status"}, nil)
		assert.False(t, ok)
	})
}
