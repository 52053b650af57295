package workflow

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// Notification is a raw payment webhook delivery.
type Notification struct {
	Body  []byte
	Query url.Values
}

type notificationBody struct {
	Data *struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
	ID json.RawMessage `json:"id"`
}

// ExtractPaymentID finds the payment id in a notification. The body's data.id
// wins over its top-level id; the query string (data.id, then id) is the
// fallback. Ids may arrive as JSON strings or numbers.
func ExtractPaymentID(n Notification) string {
	var b notificationBody
	if len(bytes.TrimSpace(n.Body)) > 0 && json.Unmarshal(n.Body, &b) == nil {
		if b.Data != nil {
			if id := rawID(b.Data.ID); id != "" {
				return id
			}
		}
		if id := rawID(b.ID); id != "" {
			return id
		}
	}
	for _, k := range []string{"data.id", "id"} {
		if id := strings.TrimSpace(n.Query.Get(k)); id != "" {
			return id
		}
	}
	return ""
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}
