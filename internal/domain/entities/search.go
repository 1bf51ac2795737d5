package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ContentType selects which collections a search covers.
type ContentType string

const (
	ContentAll       ContentType = "all"
	ContentNotes     ContentType = "notes"
	ContentEvents    ContentType = "events"
	ContentLostFound ContentType = "lost_found"
)

// ParseContentType maps a user supplied value to a ContentType. Empty means all.
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(strings.TrimSpace(s)) {
	case "", ContentAll:
		return ContentAll, nil
	case ContentNotes:
		return ContentNotes, nil
	case ContentEvents:
		return ContentEvents, nil
	case ContentLostFound:
		return ContentLostFound, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// ResultType is the discriminant of a SearchResult.
type ResultType string

const (
	ResultNote      ResultType = "note"
	ResultEvent     ResultType = "event"
	ResultLostFound ResultType = "lost_found"
)

// ResultTypes lists every result type in merge order.
var ResultTypes = []ResultType{ResultNote, ResultEvent, ResultLostFound}

// ParseResultType maps a user supplied value to a ResultType.
func ParseResultType(s string) (ResultType, error) {
	for _, t := range ResultTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown result type %q", s)
}

// ContentType returns the content type filter that selects t.
func (t ResultType) ContentType() ContentType {
	switch t {
	case ResultNote:
		return ContentNotes
	case ResultEvent:
		return ContentEvents
	case ResultLostFound:
		return ContentLostFound
	}
	return ""
}

// Collection returns the record store collection holding results of type t.
func (t ResultType) Collection() string {
	switch t {
	case ResultNote:
		return CollectionNotes
	case ResultEvent:
		return CollectionEvents
	case ResultLostFound:
		return CollectionLostFound
	}
	return ""
}

// SearchFilters narrows a search. Refinement fields belong to one content
// type each and are only read by that type's adapter.
type SearchFilters struct {
	ContentType ContentType `json:"content_type"`

	// Notes
	Subject  string `json:"subject,omitempty"`
	Course   string `json:"course,omitempty"`
	Semester string `json:"semester,omitempty"`

	// Events
	EventDateFrom *time.Time `json:"event_date_from,omitempty"`
	EventDateTo   *time.Time `json:"event_date_to,omitempty"`

	// Lost & found
	LostFoundType   LostFoundKind   `json:"lost_found_type,omitempty"`
	LostFoundStatus LostFoundStatus `json:"lost_found_status,omitempty"`
	Location        string          `json:"location,omitempty"`
}

// Includes reports whether results of type t are in scope for these filters.
func (f SearchFilters) Includes(t ResultType) bool {
	return f.ContentType == ContentAll || f.ContentType == "" || f.ContentType == t.ContentType()
}

// SearchResult is one normalized hit. The type specific payload is only
// reachable through the As* accessors matching Type.
type SearchResult struct {
	ID          string
	Type        ResultType
	Title       string
	Description string
	CreatedAt   time.Time
	Tags        []string

	note      *Note
	event     *Event
	lostFound *LostFoundItem
}

// NewNoteResult wraps a note.
func NewNoteResult(n *Note) SearchResult {
	return SearchResult{
		ID:          n.ID,
		Type:        ResultNote,
		Title:       n.Title,
		Description: n.Content,
		CreatedAt:   n.CreatedAt,
		Tags:        n.Tags,
		note:        n,
	}
}

// NewEventResult wraps an event.
func NewEventResult(e *Event) SearchResult {
	return SearchResult{
		ID:          e.ID,
		Type:        ResultEvent,
		Title:       e.Title,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		Tags:        e.Tags,
		event:       e,
	}
}

// NewLostFoundResult wraps a lost & found report.
func NewLostFoundResult(i *LostFoundItem) SearchResult {
	return SearchResult{
		ID:          i.ID,
		Type:        ResultLostFound,
		Title:       i.Title,
		Description: i.Description,
		CreatedAt:   i.CreatedAt,
		lostFound:   i,
	}
}

// AsNote returns the note payload when r is a note.
func (r SearchResult) AsNote() (*Note, bool) {
	return r.note, r.Type == ResultNote && r.note != nil
}

// AsEvent returns the event payload when r is an event.
func (r SearchResult) AsEvent() (*Event, bool) {
	return r.event, r.Type == ResultEvent && r.event != nil
}

// AsLostFound returns the lost & found payload when r is a lost & found report.
func (r SearchResult) AsLostFound() (*LostFoundItem, bool) {
	return r.lostFound, r.Type == ResultLostFound && r.lostFound != nil
}

// Ref returns the reference that identifies this result across types.
func (r SearchResult) Ref() ResultRef {
	return ResultRef{Type: r.Type, ID: r.ID}
}

// MarshalJSON writes the shared fields alongside the payload of the active type.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID          string         `json:"id"`
		Type        ResultType     `json:"type"`
		Title       string         `json:"title"`
		Description string         `json:"description,omitempty"`
		CreatedAt   time.Time      `json:"created_at"`
		Tags        []string       `json:"tags,omitempty"`
		Note        *Note          `json:"note,omitempty"`
		Event       *Event         `json:"event,omitempty"`
		LostFound   *LostFoundItem `json:"lost_found,omitempty"`
	}
	w := wire{
		ID:          r.ID,
		Type:        r.Type,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		Tags:        r.Tags,
	}
	switch r.Type {
	case ResultNote:
		w.Note = r.note
	case ResultEvent:
		w.Event = r.event
	case ResultLostFound:
		w.LostFound = r.lostFound
	}
	return json.Marshal(w)
}

// ResultRef addresses a single result, written as "type:id".
type ResultRef struct {
	Type ResultType
	ID   string
}

// ParseResultRef parses "note:<id>", "event:<id>" or "lost_found:<id>".
func ParseResultRef(s string) (ResultRef, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return ResultRef{}, fmt.Errorf("malformed result reference %q", s)
	}
	t, err := ParseResultType(kind)
	if err != nil {
		return ResultRef{}, err
	}
	return ResultRef{Type: t, ID: id}, nil
}

func (r ResultRef) String() string {
	return string(r.Type) + ":" + r.ID
}
