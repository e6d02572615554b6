package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sdscatalog/pkg/reqid"
)

func TestMiddleware(t *testing.T) {
	cases := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"generated", "", false},
		{"upstream", "gw-123:abc.DEF_9", true},
		{"spaces rejected", "a b", false},
		{"newline rejected", "abc\nInjected: 1", false},
		{"too long", strings.Repeat("a", reqid.MaxLen+1), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = reqid.FromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(reqid.Header, tc.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, seen, rec.Header().Get(reqid.Header))
			if tc.reused {
				assert.Equal(t, tc.incoming, seen)
			} else {
				assert.Len(t, seen, 32)
			}
		})
	}
}
