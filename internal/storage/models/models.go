package models

import "time"

// Report is a catalog entry loaded once at startup. Read-only after load.
type Report struct {
	ReportID    string         `json:"reportId"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Columns     []string       `json:"columns"`
	Filters     []ReportFilter `json:"filters"`
	Examples    []string       `json:"examples,omitempty"`
}

type ReportFilter struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ReportMatch is the per-query projection of a Report plus its ranking score.
type ReportMatch struct {
	ReportID    string         `json:"reportId"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Score       float64        `json:"score"`
	Filters     []ReportFilter `json:"filters"`
	Columns     []string       `json:"columns"`
}

// FeedbackRecord is one append-only entry in the feedback log.
type FeedbackRecord struct {
	Query     string    `json:"query"`
	Matches   []string  `json:"matches"`
	Feedback  string    `json:"feedback"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// POSCatalog is the three-level point-of-sale tree.
type POSCatalog struct {
	Groups []POSGroup `json:"groups"`
}

type POSGroup struct {
	Name      string        `json:"name"`
	Locations []POSLocation `json:"locations"`
}

type POSLocation struct {
	Name  string    `json:"name"`
	Items []POSItem `json:"items"`
}

type POSItem struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
}

// ItemResult is the POS item snapshot returned by read/update handlers.
type ItemResult struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
}

// QueryRecord is a row in the query history audit table.
type QueryRecord struct {
	ID         string
	QueryText  string
	Intent     string
	Status     string
	MatchCount int
	LatencyMS  int
	CreatedAt  time.Time
}
