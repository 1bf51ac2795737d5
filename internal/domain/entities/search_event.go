package entities

import (
	"time"
)

// SearchEvent records one completed search round for analytics.
type SearchEvent struct {
	ID          string       `json:"id" db:"id"`
	Query       string       `json:"query" db:"query"`
	ContentType ContentType  `json:"content_type" db:"content_type"`
	ResultCount int          `json:"result_count" db:"result_count"`
	FailedTypes []ResultType `json:"failed_types,omitempty" db:"failed_types"`
	LatencyMs   int          `json:"latency_ms" db:"latency_ms"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
