package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

// DefaultK is the page size golden queries are evaluated at
const DefaultK = 10

// Searcher runs a directory search; CentreSearchService satisfies it
type Searcher interface {
	Search(ctx context.Context, filters entities.SearchFilters) (*entities.SearchResult, error)
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	searcher Searcher
	k        int
}

func NewRunner(searcher Searcher, k int) *Runner {
	if k <= 0 {
		k = DefaultK
	}
	return &Runner{searcher: searcher, k: k}
}

func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		K:            r.k,
		TotalQueries: len(queries),
		ByCategory:   make(map[Category]*CategorySummary),
		Results:      make([]EvalResult, 0, len(queries)),
	}

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := r.evaluate(ctx, gq)
		summary.Results = append(summary.Results, result)
		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) evaluate(ctx context.Context, gq GoldenQuery) EvalResult {
	result := EvalResult{QueryID: gq.ID, Category: gq.Category}

	start := time.Now()
	res, err := r.searcher.Search(ctx, entities.SearchFilters{
		Search:   gq.Search,
		Levels:   gq.Levels,
		Subjects: gq.Subjects,
		Page:     1,
		Limit:    r.k,
	})
	result.Latency = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Total = res.Pagination.Total
	result.Retrieved = make([]string, len(res.Data))
	for i, c := range res.Data {
		result.Retrieved[i] = c.Name
	}

	expected := topK(gq.ExpectedCentres, r.k)
	result.Exact = ExactMatch(expected, result.Retrieved) && result.Total == len(gq.ExpectedCentres)

	// A query expecting no centres scores perfectly when nothing comes back.
	if len(gq.ExpectedCentres) == 0 {
		if len(result.Retrieved) == 0 {
			result.RecallAtK, result.PrecisionAtK, result.MRRAtK = 1, 1, 1
		}
		return result
	}

	result.RecallAtK = RecallAtK(expected, result.Retrieved, r.k)
	result.PrecisionAtK = PrecisionAtK(gq.ExpectedCentres, result.Retrieved, r.k)
	result.MRRAtK = MRRAtK(gq.ExpectedCentres, result.Retrieved, r.k)
	return result
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	if res.Error != "" {
		s.FailedQueries++
	}
	if res.Exact {
		s.ExactMatches++
	}
	if len(res.Retrieved) > 0 {
		s.QueriesWithHits++
	}
	s.AvgRecallAtK += res.RecallAtK
	s.AvgPrecisionAtK += res.PrecisionAtK
	s.AvgMRRAtK += res.MRRAtK
	s.AvgLatency += res.Latency

	cs, ok := s.ByCategory[res.Category]
	if !ok {
		cs = &CategorySummary{}
		s.ByCategory[res.Category] = cs
	}
	cs.Count++
	if res.Exact {
		cs.ExactMatches++
	}
	cs.AvgRecallAtK += res.RecallAtK
	cs.AvgPrecisionAtK += res.PrecisionAtK
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.AvgRecallAtK /= n
		s.AvgPrecisionAtK /= n
		s.AvgMRRAtK /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, cs := range s.ByCategory {
		if cs.Count > 0 {
			n := float64(cs.Count)
			cs.AvgRecallAtK /= n
			cs.AvgPrecisionAtK /= n
		}
	}
}
