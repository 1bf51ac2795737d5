// Package normalize maps raw collection records onto the common SearchResult shape.
package normalize

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/lib/pq"

	"github.com/campushub/portal/backend/internal/domain/entities"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

// textArrayHook decodes Postgres text[] literals such as {a,"b c"} into []string.
func textArrayHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf([]string{}) {
		return data, nil
	}
	var literal string
	switch v := data.(type) {
	case string:
		literal = v
	case []byte:
		literal = string(v)
	default:
		return data, nil
	}
	if !strings.HasPrefix(literal, "{") {
		return data, nil
	}
	var arr pq.StringArray
	if err := arr.Scan(literal); err != nil {
		return nil, err
	}
	return []string(arr), nil
}

func decode(rec entities.Record, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(textArrayHook),
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]interface{}(rec))
}

// Result decodes rec as a record of type t. Columns missing from rec leave
// the matching payload fields at their zero value.
func Result(rec entities.Record, t entities.ResultType) (entities.SearchResult, error) {
	var err error
	switch t {
	case entities.ResultNote:
		var n entities.Note
		if err = decode(rec, &n); err == nil {
			return entities.NewNoteResult(&n), nil
		}
	case entities.ResultEvent:
		var e entities.Event
		if err = decode(rec, &e); err == nil {
			return entities.NewEventResult(&e), nil
		}
	case entities.ResultLostFound:
		var i entities.LostFoundItem
		if err = decode(rec, &i); err == nil {
			return entities.NewLostFoundResult(&i), nil
		}
	default:
		return entities.SearchResult{}, apperrors.NewValidationError(fmt.Sprintf("unknown result type %q", t))
	}
	return entities.SearchResult{}, apperrors.NewStoreError(
		fmt.Sprintf("malformed %s record %q", t, rec.ID()), err)
}

// Results decodes every record, keeping their order. The first malformed
// record fails the whole batch.
func Results(recs []entities.Record, t entities.ResultType) ([]entities.SearchResult, error) {
	out := make([]entities.SearchResult, 0, len(recs))
	for _, rec := range recs {
		r, err := Result(rec, t)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
