package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Semantic concepts the aggregation layer groups or filters by. Every call
// site resolves concepts through the shared alias table; no component embeds
// its own ad hoc alias list.
const (
	ConceptUserID             = "user_id"
	ConceptUsername           = "username"
	ConceptFullName           = "full_name"
	ConceptEmail              = "email"
	ConceptRegistrationStatus = "registration_status"
	ConceptEmailVerified      = "email_verified"
	ConceptPlan               = "plan"
	ConceptRisk               = "risk"
	ConceptTimestamp          = "timestamp"
	ConceptSubStatus          = "subscription_status"
	ConceptSubPlan            = "subscription_plan"
	ConceptBillingInterval    = "billing_interval"
)

// Aliases maps a concept to its ranked list of acceptable real-world header
// spellings, highest priority first.
type Aliases map[string][]string

// DefaultAliases returns the built-in alias table covering the header
// spellings observed in the source spreadsheets.
func DefaultAliases() Aliases {
	return Aliases{
		ConceptUserID:             {"TelegramUserID", "UserID", "user_id", "userid"},
		ConceptUsername:           {"TelegramUsername", "Username", "username"},
		ConceptFullName:           {"FullName", "Name", "full_name"},
		ConceptEmail:              {"Email", "EmailAddress", "email"},
		ConceptRegistrationStatus: {"RegistrationStatus", "Status", "registration_status"},
		ConceptEmailVerified:      {"EmailVerified", "Verified", "email_verified"},
		ConceptPlan:               {"InvestmentPlanSelected", "Plan", "plan"},
		ConceptRisk:               {"RiskOptionSelected", "Risk", "risk"},
		ConceptTimestamp:          {"Timestamp", "CreatedAt", "created_at"},
		ConceptSubStatus:          {"Status", "SubscriptionStatus", "subscription_status"},
		ConceptSubPlan:            {"Plan", "PlanName", "plan"},
		ConceptBillingInterval:    {"Interval", "BillingInterval", "billing_interval", "Period"},
	}
}

// LoadAliases returns the default table with per-concept overrides read from
// a YAML file of the form `concept: [Candidate, ...]`. A missing file is not
// an error; overrides replace the default list for that concept only.
func LoadAliases(path string) (Aliases, error) {
	table := DefaultAliases()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("read alias file %s: %w", path, err)
	}
	var overrides map[string][]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse alias file %s: %w", path, err)
	}
	for concept, candidates := range overrides {
		if len(candidates) > 0 {
			table[concept] = candidates
		}
	}
	return table, nil
}

// Resolve finds the actual column for a concept among the available columns.
func (a Aliases) Resolve(concept string, available []string) (string, bool) {
	return Resolve(available, a[concept])
}
