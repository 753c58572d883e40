package evaluation

import "fmt"

// GuardrailConfig holds the minimum quality a search backend must reach
type GuardrailConfig struct {
	MinRecall      float64
	MinPrecision   float64
	MinExactRatio  float64
	MaxFailedQuery int
}

type Guardrails struct {
	config GuardrailConfig
}

// NewGuardrails fills unset recall and precision floors with 1.0: boolean filters
// either return the right centres or they are wrong.
func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MinRecall <= 0 {
		config.MinRecall = 1.0
	}
	if config.MinPrecision <= 0 {
		config.MinPrecision = 1.0
	}
	return &Guardrails{config: config}
}

// Violations lists every threshold the summary misses; empty means it passes
func (g *Guardrails) Violations(s *EvalSummary) []string {
	var out []string
	if s.FailedQueries > g.config.MaxFailedQuery {
		out = append(out, fmt.Sprintf("%d queries failed (max %d)", s.FailedQueries, g.config.MaxFailedQuery))
	}
	if s.AvgRecallAtK < g.config.MinRecall {
		out = append(out, fmt.Sprintf("recall@%d %.3f below %.3f", s.K, s.AvgRecallAtK, g.config.MinRecall))
	}
	if s.AvgPrecisionAtK < g.config.MinPrecision {
		out = append(out, fmt.Sprintf("precision@%d %.3f below %.3f", s.K, s.AvgPrecisionAtK, g.config.MinPrecision))
	}
	if s.TotalQueries > 0 {
		ratio := float64(s.ExactMatches) / float64(s.TotalQueries)
		if ratio < g.config.MinExactRatio {
			out = append(out, fmt.Sprintf("exact match ratio %.3f below %.3f", ratio, g.config.MinExactRatio))
		}
	}
	return out
}
