package entities

import "time"

// Note is an uploaded set of study notes.
type Note struct {
	ID        string    `json:"id" mapstructure:"id"`
	Title     string    `json:"title" mapstructure:"title"`
	Content   string    `json:"content,omitempty" mapstructure:"content"`
	Subject   string    `json:"subject,omitempty" mapstructure:"subject"`
	Course    string    `json:"course,omitempty" mapstructure:"course"`
	Semester  string    `json:"semester,omitempty" mapstructure:"semester"`
	FileURL   string    `json:"file_url,omitempty" mapstructure:"file_url"`
	Downloads int       `json:"downloads" mapstructure:"downloads"`
	Likes     int       `json:"likes" mapstructure:"likes"`
	Tags      []string  `json:"tags,omitempty" mapstructure:"tags"`
	UserID    string    `json:"user_id,omitempty" mapstructure:"user_id"`
	CreatedAt time.Time `json:"created_at" mapstructure:"created_at"`
}
