// Package predicates turns a free-text query and search filters into the
// record store conditions each collection is queried with.
package predicates

import (
	"strings"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/domain/repositories"
)

var (
	noteTextFields      = []string{"title", "content", "subject", "course"}
	eventTextFields     = []string{"title", "description", "location"}
	lostFoundTextFields = []string{"title", "description", "location"}
)

// textMatch returns one predicate per field, to be ORed. Nil for an empty query.
func textMatch(query string, fields []string) []repositories.Predicate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	preds := make([]repositories.Predicate, 0, len(fields))
	for _, f := range fields {
		preds = append(preds, repositories.Predicate{Field: f, Op: repositories.OpSubstring, Value: query})
	}
	return preds
}

func contains(field, value string) []repositories.Predicate {
	if value == "" {
		return nil
	}
	return []repositories.Predicate{{Field: field, Op: repositories.OpSubstring, Value: value}}
}

func equals(field, value string) []repositories.Predicate {
	if value == "" {
		return nil
	}
	return []repositories.Predicate{{Field: field, Op: repositories.OpEq, Value: value}}
}

// Notes matches the query against title, content, subject and course, then
// narrows by subject, course and semester.
func Notes(query string, f entities.SearchFilters) repositories.Condition {
	return repositories.Condition{}.
		Or(textMatch(query, noteTextFields)...).
		And(contains("subject", f.Subject)...).
		And(contains("course", f.Course)...).
		And(contains("semester", f.Semester)...)
}

// Events matches the query against title, description and location, then
// bounds event_date by the filter's date range. Both bounds are inclusive.
func Events(query string, f entities.SearchFilters) repositories.Condition {
	cond := repositories.Condition{}.Or(textMatch(query, eventTextFields)...)
	if f.EventDateFrom != nil {
		cond = cond.And(repositories.Predicate{Field: "event_date", Op: repositories.OpGte, Value: *f.EventDateFrom})
	}
	if f.EventDateTo != nil {
		cond = cond.And(repositories.Predicate{Field: "event_date", Op: repositories.OpLte, Value: *f.EventDateTo})
	}
	return cond
}

// LostFound matches the query against title, description and location, then
// narrows by report kind, status and location.
func LostFound(query string, f entities.SearchFilters) repositories.Condition {
	return repositories.Condition{}.
		Or(textMatch(query, lostFoundTextFields)...).
		And(equals("type", string(f.LostFoundType))...).
		And(equals("status", string(f.LostFoundStatus))...).
		And(contains("location", f.Location)...)
}

// For dispatches on the result type. Unknown types get an empty condition.
func For(t entities.ResultType, query string, f entities.SearchFilters) repositories.Condition {
	switch t {
	case entities.ResultNote:
		return Notes(query, f)
	case entities.ResultEvent:
		return Events(query, f)
	case entities.ResultLostFound:
		return LostFound(query, f)
	}
	return repositories.Condition{}
}
