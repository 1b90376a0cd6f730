// Package requestid carries the id correlating an upload with the logs,
// events and jobs it produces.
package requestid

import (
	"context"
	"net/http"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Header is the header the id travels in, both ways.
const Header = "X-Request-Id"

const maxLength = 128

type ctxKey struct{}

func Generate() string {
	return uuid.NewString()
}

func ToContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns "" when ctx carries no id.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func FromRequest(r *http.Request) string {
	return FromContext(r.Context())
}

// FromHeader returns the caller supplied id, or "" when it is missing,
// too long or holds anything but printable ascii.
func FromHeader(h http.Header) string {
	id := strings.TrimSpace(h.Get(Header))
	if id == "" || len(id) > maxLength {
		return ""
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || r == ' ' {
			return ""
		}
	}
	return id
}
