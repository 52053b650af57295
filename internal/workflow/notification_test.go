package workflow

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPaymentID(t *testing.T) {
	cases := []struct {
		name string
		n    Notification
		want string
	}{
		{"data id string", Notification{Body: []byte(`{"data":{"id":"123"}}`)}, "123"},
		{"data id number", Notification{Body: []byte(`{"data":{"id":987654321}}`)}, "987654321"},
		{"data wins over top level", Notification{Body: []byte(`{"id":"1","data":{"id":"2"}}`)}, "2"},
		{"top level id", Notification{Body: []byte(`{"id":42}`)}, "42"},
		{"null falls through to query", Notification{Body: []byte(`{"data":{"id":null}}`), Query: url.Values{"data.id": {"77"}}}, "77"},
		{"query data.id before id", Notification{Query: url.Values{"id": {"1"}, "data.id": {"2"}}}, "2"},
		{"query id", Notification{Query: url.Values{"id": {" 5 "}, "topic": {"payment"}}}, "5"},
		{"malformed body uses query", Notification{Body: []byte(`{`), Query: url.Values{"id": {"9"}}}, "9"},
		{"nothing", Notification{Body: []byte(`{"action":"payment.created"}`)}, ""},
		{"empty", Notification{}, ""},
		{"blank string id", Notification{Body: []byte(`{"data":{"id":"  "}}`)}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPaymentID(tc.n))
		})
	}
}
