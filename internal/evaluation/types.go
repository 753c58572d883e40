package evaluation

import "time"

// Category groups golden queries by which search dimensions they exercise.
type Category string

const (
	CategoryLevel    Category = "level"    // level filter only
	CategorySubject  Category = "subject"  // subject filter only
	CategoryOffering Category = "offering" // level and subject on the same offering
	CategoryText     Category = "text"     // free-text name or location search
	CategoryCombined Category = "combined" // free text plus offering filters
)

// ValidCategories returns all valid category values.
func ValidCategories() []Category {
	return []Category{CategoryLevel, CategorySubject, CategoryOffering, CategoryText, CategoryCombined}
}

// IsValid checks if the category value is one of the defined constants.
func (c Category) IsValid() bool {
	switch c {
	case CategoryLevel, CategorySubject, CategoryOffering, CategoryText, CategoryCombined:
		return true
	}
	return false
}

// GoldenQuery is a labeled directory search with the centres it must return.
// ExpectedCentres holds centre names; an empty list means no centre may match.
type GoldenQuery struct {
	ID              string   `json:"id"`
	Category        Category `json:"category"`
	Search          string   `json:"search,omitempty"`
	Levels          []string `json:"levels,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
	ExpectedCentres []string `json:"expected_centres"`
	Difficulty      string   `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID      string        `json:"query_id"`
	Category     Category      `json:"category"`
	RecallAtK    float64       `json:"recall_at_k"`
	PrecisionAtK float64       `json:"precision_at_k"`
	MRRAtK       float64       `json:"mrr_at_k"`
	Exact        bool          `json:"exact"`
	Total        int           `json:"total"`
	Retrieved    []string      `json:"retrieved"`
	Latency      time.Duration `json:"latency"`
	Error        string        `json:"error,omitempty"`
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	K               int                           `json:"k"`
	TotalQueries    int                           `json:"total_queries"`
	FailedQueries   int                           `json:"failed_queries"`
	ExactMatches    int                           `json:"exact_matches"`
	QueriesWithHits int                           `json:"queries_with_hits"`
	AvgRecallAtK    float64                       `json:"avg_recall_at_k"`
	AvgPrecisionAtK float64                       `json:"avg_precision_at_k"`
	AvgMRRAtK       float64                       `json:"avg_mrr_at_k"`
	AvgLatency      time.Duration                 `json:"avg_latency"`
	ByCategory      map[Category]*CategorySummary `json:"by_category"`
	Results         []EvalResult                  `json:"results"`
}

// CategorySummary holds metrics grouped by category.
type CategorySummary struct {
	Count           int     `json:"count"`
	ExactMatches    int     `json:"exact_matches"`
	AvgRecallAtK    float64 `json:"avg_recall_at_k"`
	AvgPrecisionAtK float64 `json:"avg_precision_at_k"`
}
