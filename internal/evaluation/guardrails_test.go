package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardrails_DefaultsDemandPerfectFilters(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	assert.Empty(t, g.Violations(&EvalSummary{K: 10, TotalQueries: 2, ExactMatches: 2, AvgRecallAtK: 1, AvgPrecisionAtK: 1}))

	violations := g.Violations(&EvalSummary{K: 10, TotalQueries: 2, AvgRecallAtK: 0.5, AvgPrecisionAtK: 1})
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "recall@10")
}

func TestGuardrails_ReportsEveryViolation(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{
		MinRecall:     0.9,
		MinPrecision:  0.8,
		MinExactRatio: 0.5,
	})

	violations := g.Violations(&EvalSummary{
		K:               10,
		TotalQueries:    4,
		FailedQueries:   1,
		ExactMatches:    1,
		AvgRecallAtK:    0.7,
		AvgPrecisionAtK: 0.6,
	})

	assert.Len(t, violations, 4)
}

func TestGuardrails_ToleratesConfiguredFailures(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinRecall: 0.5, MinPrecision: 0.5, MaxFailedQuery: 1})

	assert.Empty(t, g.Violations(&EvalSummary{TotalQueries: 3, FailedQueries: 1, AvgRecallAtK: 0.6, AvgPrecisionAtK: 0.6}))
}
