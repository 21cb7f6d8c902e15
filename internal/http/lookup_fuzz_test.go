package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func FuzzSubmitLookupBody(f *testing.F) {
	seeds := []string{
		`{"id":"tt0111161"}`,
		`{"id":"   "}`,
		`{"id":null}`,
		`[]`,
		``,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	srv := buildTestServer(f, newFakeOMDb(), nil)
	f.Fuzz(func(t *testing.T, body string) {
		req := httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		switch rec.Code {
		case http.StatusAccepted, http.StatusBadRequest, http.StatusUnprocessableEntity:
		default:
			t.Fatalf("unexpected status %d for body %q", rec.Code, body)
		}
	})
}

func FuzzParseLimit(f *testing.F) {
	for _, seed := range []string{"", "1", "50", "51", "-3", "abc"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		limit, err := parseLimit(raw)
		if err == nil && (limit < 0 || limit > 50) {
			t.Fatalf("parseLimit(%q) = %d without error", raw, limit)
		}
	})
}
