package helpers

import (
	"net/http/httptest"
	"testing"
)

func TestPagination(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantSkip  int
		wantLimit int
		wantErr   bool
	}{
		{"defaults", "", 0, 100, false},
		{"explicit", "skip=10&limit=25", 10, 25, false},
		{"limit clamped", "limit=5000", 0, 1000, false},
		{"negative skip", "skip=-1", 0, 0, true},
		{"zero limit", "limit=0", 0, 0, true},
		{"garbage skip", "skip=abc", 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/organizations/?"+tc.query, nil)
			p, err := Pagination(r, 100, 1000)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Skip != tc.wantSkip || p.Limit != tc.wantLimit {
				t.Fatalf("got skip=%d limit=%d, want skip=%d limit=%d", p.Skip, p.Limit, tc.wantSkip, tc.wantLimit)
			}
		})
	}
}

func TestReadJSONContentType(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/organizations/", nil)
	r.Header.Set("Content-Type", "text/plain")

	var v map[string]any
	if ReadJSON(w, r, &v) {
		t.Fatal("accepted non-JSON content type")
	}
	if w.Code != 400 {
		t.Fatalf("status: %d", w.Code)
	}
}
