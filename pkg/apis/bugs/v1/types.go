package v1

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// IDField is the key Bugzilla uses for the numeric bug identifier.
	IDField = "id"
	// LinkField is added by the client and never sent to the server.
	LinkField = "link"
)

// Bug is a single record as returned by the Bugzilla REST API. We don't own the schema, so the decoded
// JSON object is kept as-is instead of being mapped onto a struct, and fields the server adds later
// survive untouched.
type Bug map[string]interface{}

// BugList matches the envelope returned by GET /rest/bug.
type BugList struct {
	Bugs []Bug `json:"bugs"`
}

// ID returns the raw identifier value, or nil when the record has none.
func (b Bug) ID() interface{} {
	return b[IDField]
}

// Link returns the link added by the client, or "" if it has not been set.
func (b Bug) Link() string {
	return b.String(LinkField)
}

// SetLink sets the human-facing link for the bug.
func (b Bug) SetLink(link string) {
	b[LinkField] = link
}

// String renders a top level field as text. Missing fields and nulls render as "".
func (b Bug) String(field string) string {
	return FormatValue(b[field])
}

// FormatValue renders a decoded JSON scalar the way it would appear in a URL or a table cell.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
