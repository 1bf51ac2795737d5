package entities

import "time"

// Event is a campus event students can RSVP to.
type Event struct {
	ID               string    `json:"id" mapstructure:"id"`
	Title            string    `json:"title" mapstructure:"title"`
	Description      string    `json:"description,omitempty" mapstructure:"description"`
	Location         string    `json:"location,omitempty" mapstructure:"location"`
	EventDate        time.Time `json:"event_date" mapstructure:"event_date"`
	CurrentAttendees int       `json:"current_attendees" mapstructure:"current_attendees"`
	// MaxAttendees is nil for events without a capacity.
	MaxAttendees *int      `json:"max_attendees,omitempty" mapstructure:"max_attendees"`
	Tags         []string  `json:"tags,omitempty" mapstructure:"tags"`
	UserID       string    `json:"user_id,omitempty" mapstructure:"user_id"`
	CreatedAt    time.Time `json:"created_at" mapstructure:"created_at"`
}
