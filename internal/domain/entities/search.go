package entities

import "time"

// SearchFilters is a parsed directory search request.
// Empty strings and empty slices mean "no constraint".
type SearchFilters struct {
	Search   string   `json:"search,omitempty"`
	Levels   []string `json:"levels,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
	Page     int      `json:"page"`
	Limit    int      `json:"limit"`
}

// RefItem is an {id, name} pair used for levels and subjects in responses
type RefItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PublicCentre is the public projection of a centre
type PublicCentre struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	WhatsAppNumber string    `json:"whatsappNumber"`
	WhatsAppLink   string    `json:"whatsappLink"`
	Website        *string   `json:"website,omitempty"`
	Levels         []RefItem `json:"levels"`
	Subjects       []RefItem `json:"subjects"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Pagination is the paging metadata returned with a search
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// SearchResult is the response of a directory search
type SearchResult struct {
	Data       []PublicCentre `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// FilterOptions lists the levels and subjects worth offering as filters
type FilterOptions struct {
	Enabled  bool      `json:"enabled"`
	Levels   []RefItem `json:"levels"`
	Subjects []RefItem `json:"subjects"`
	Reason   string    `json:"reason,omitempty"`
}
