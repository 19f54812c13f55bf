package wbapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avoronina/wb-finance-data/internal/report"
)

// pageServer serves canned pages keyed by the rrdid query parameter.
func pageServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("rrdid")]
		if !ok {
			t.Errorf("unexpected cursor %q requested", r.URL.Query().Get("rrdid"))
			body = "[]"
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func testClient(baseURL string) *Client {
	// High request budget so the limiter never stalls tests.
	return NewClient(baseURL, "test-token", 5*time.Second, 60000, nil)
}

func collectRows(t *testing.T, c *Client, limit int) []report.RawRow {
	t.Helper()
	var rows []report.RawRow
	err := c.ForEachReportDetail(context.Background(), "2024-01-01", "2024-01-31", limit, func(r report.RawRow) error {
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachReportDetail: %v", err)
	}
	return rows
}

func TestForEachReportDetail_StopsWhenCursorDoesNotAdvance(t *testing.T) {
	srv := pageServer(t, map[string]string{
		"0": `[{"rrd_id": 5}, {"rrd_id": 9}]`,
		"9": `[{"rrd_id": 9}]`,
	})
	defer srv.Close()

	rows := collectRows(t, testClient(srv.URL), 2)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
}

func TestForEachReportDetail_StopsOnEmptyPage(t *testing.T) {
	srv := pageServer(t, map[string]string{
		"0": `[{"rrd_id": 1}, {"rrd_id": 2}]`,
		"2": `[]`,
	})
	defer srv.Close()

	rows := collectRows(t, testClient(srv.URL), 2)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}

func TestForEachReportDetail_StopsWhenLastRowHasNoID(t *testing.T) {
	srv := pageServer(t, map[string]string{
		"0": `[{"rrd_id": 3}, {"article": "no-id"}]`,
	})
	defer srv.Close()

	rows := collectRows(t, testClient(srv.URL), 2)
	if len(rows) != 2 {
		t.Fatalf("already-fetched rows must stand; got %d rows, want 2", len(rows))
	}
}

func TestForEachReportDetail_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object", `{"data": []}`},
		{"null", `null`},
		{"truncated array", `[{"rrd_id": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			err := testClient(srv.URL).ForEachReportDetail(context.Background(), "2024-01-01", "2024-01-31", 10,
				func(report.RawRow) error { return nil })

			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("got %v, want MalformedResponseError", err)
			}
		})
	}
}

func TestForEachReportDetail_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := testClient(srv.URL).ForEachReportDetail(context.Background(), "2024-01-01", "2024-01-31", 10,
		func(report.RawRow) error { return nil })

	var status *StatusError
	if !errors.As(err, &status) {
		t.Fatalf("got %v, want StatusError", err)
	}
	if status.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", status.StatusCode, http.StatusBadGateway)
	}
}

func TestForEachReportDetail_RequestShape(t *testing.T) {
	var gotAuth, gotAccept string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotQuery = map[string]string{
			"dateFrom": r.URL.Query().Get("dateFrom"),
			"dateTo":   r.URL.Query().Get("dateTo"),
			"limit":    r.URL.Query().Get("limit"),
		}
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	collectRows(t, testClient(srv.URL), 500)

	if gotAuth != "test-token" {
		t.Errorf("Authorization = %q, want test-token", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if gotQuery["dateFrom"] != "2024-01-01" || gotQuery["dateTo"] != "2024-01-31" || gotQuery["limit"] != "500" {
		t.Errorf("unexpected query params: %v", gotQuery)
	}
}

func TestForEachReportDetail_CallbackErrorAborts(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `[{"rrd_id": 1}, {"rrd_id": 2}]`)
	}))
	defer srv.Close()

	sentinel := errors.New("stop here")
	err := testClient(srv.URL).ForEachReportDetail(context.Background(), "2024-01-01", "2024-01-31", 2,
		func(report.RawRow) error { return sentinel })

	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want sentinel error", err)
	}
	if requests != 1 {
		t.Fatalf("made %d requests after callback error, want 1", requests)
	}
}
