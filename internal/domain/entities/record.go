package entities

// Collection names in the record store.
const (
	CollectionNotes     = "notes"
	CollectionEvents    = "events"
	CollectionLostFound = "lost_found"
)

// Record is a raw row from a collection, keyed by column name. Its shape
// depends on the collection it came from.
type Record map[string]interface{}

// ID returns the record's id column as a string, or "" when absent.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}
