package tracking

import (
	"bytes"
	"encoding/json"
	"fmt"

	"sitetrack/internal/pkg/sanitize"
)

// VerbPageBrowse is the event verb for a page view.
const VerbPageBrowse = "pbr"

// Visitor identifies the browser behind a page view. Token comes from the
// tracking cookie, PVUID from the optional query parameter.
type Visitor struct {
	Token string
	PVUID string
}

// Sanitized returns the visitor reduced to safe values: the token to a
// key-like string and pv_uid to plain text.
func (v Visitor) Sanitized() Visitor {
	return Visitor{
		Token: sanitize.Key(v.Token),
		PVUID: sanitize.TextField(v.PVUID),
	}
}

// Field order in these structs is the wire order, and the request
// signature covers the exact encoded bytes.

type EventPayload struct {
	Channel      string               `json:"channel"`
	NoDuplicates bool                 `json:"no_duplicates"`
	Data         []IdentityEventGroup `json:"data"`
}

type IdentityEventGroup struct {
	Identity Identity `json:"identity"`
	Events   []Event  `json:"events"`
}

type Identity struct {
	Token string `json:"token"`
	PVUID string `json:"pv_uid,omitempty"`
}

type Event struct {
	Verb  string     `json:"verb"`
	Items EventItems `json:"items"`
}

type EventItems struct {
	URL string `json:"url"`
}

// BuildPayload wraps a single page browse event for the visitor.
func BuildPayload(channel string, visitor Visitor, pageURL string) *EventPayload {
	return &EventPayload{
		Channel:      channel,
		NoDuplicates: false,
		Data: []IdentityEventGroup{
			{
				Identity: Identity{
					Token: visitor.Token,
					PVUID: visitor.PVUID,
				},
				Events: []Event{
					{
						Verb:  VerbPageBrowse,
						Items: EventItems{URL: pageURL},
					},
				},
			},
		},
	}
}

// EncodePayload serializes the payload as compact JSON without HTML
// escaping and without a trailing newline.
func EncodePayload(payload *EventPayload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
