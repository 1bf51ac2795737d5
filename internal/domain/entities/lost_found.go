package entities

import "time"

// LostFoundKind says whether an item was lost or found.
type LostFoundKind string

const (
	LostFoundLost  LostFoundKind = "lost"
	LostFoundFound LostFoundKind = "found"
)

// LostFoundStatus tracks whether a report is still open.
type LostFoundStatus string

const (
	LostFoundActive   LostFoundStatus = "active"
	LostFoundResolved LostFoundStatus = "resolved"
)

// LostFoundItem is a lost or found item report.
type LostFoundItem struct {
	ID          string          `json:"id" mapstructure:"id"`
	Title       string          `json:"title" mapstructure:"title"`
	Description string          `json:"description,omitempty" mapstructure:"description"`
	Type        LostFoundKind   `json:"type" mapstructure:"type"`
	Status      LostFoundStatus `json:"status" mapstructure:"status"`
	Location    string          `json:"location,omitempty" mapstructure:"location"`
	ImageURL    string          `json:"image_url,omitempty" mapstructure:"image_url"`
	ContactInfo string          `json:"contact_info,omitempty" mapstructure:"contact_info"`
	UserID      string          `json:"user_id,omitempty" mapstructure:"user_id"`
	CreatedAt   time.Time       `json:"created_at" mapstructure:"created_at"`
}
