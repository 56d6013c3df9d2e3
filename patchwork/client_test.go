package patchwork

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRecentSeriesFiltersResolved(t *testing.T) {
	recent := time.Now().UTC().AddDate(0, 0, -5).Format(time.RFC3339)
	old := time.Now().UTC().AddDate(0, 0, -200).Format(time.RFC3339)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series/" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, "[]")
			return
		}
		fmt.Fprintf(w, `[
			{"id": 1, "name": "Applied series", "date": %q,
			 "submitter": {"name": "Test Author", "email": "test@example.com"},
			 "total": 1, "patches": [{"id": 1, "name": "[GIT,PULL] Rust fixes for 6.15"}],
			 "web_url": "https://example.com/series/1"},
			{"id": 2, "name": "rust: add new feature", "date": %q,
			 "submitter": {"name": "Test Author", "email": "test@example.com"},
			 "total": 1, "patches": [{"id": 2, "name": "Regular patch"}],
			 "web_url": "https://example.com/series/2"},
			{"id": 3, "name": "too old", "date": %q,
			 "total": 1, "patches": [{"id": 3, "name": "Old patch"}],
			 "web_url": "https://example.com/series/3"},
			{"id": 4, "name": "bad date", "date": "not-a-date",
			 "total": 1, "patches": [{"id": 4, "name": "Broken"}],
			 "web_url": "https://example.com/series/4"}
		]`, recent, recent, old)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	series, excluded, err := client.RecentSeries(context.Background(), "rust-for-linux", 90, false)
	if err != nil {
		t.Fatalf("RecentSeries: %v", err)
	}

	if len(series) != 1 {
		t.Fatalf("series = %d, want 1 (git pull, stale and broken entries dropped)", len(series))
	}
	if series[0].Name != "rust: add new feature" {
		t.Errorf("kept series = %q", series[0].Name)
	}
	if excluded != 1 {
		t.Errorf("excluded = %d, want 1", excluded)
	}
	if series[0].Submitter.Name != "Test Author" {
		t.Errorf("submitter = %q", series[0].Submitter.Name)
	}
}

func TestRecentSeriesIncludeResolved(t *testing.T) {
	recent := time.Now().UTC().AddDate(0, 0, -5).Format(time.RFC3339)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, "[]")
			return
		}
		fmt.Fprintf(w, `[
			{"id": 1, "name": "Applied series", "date": %q, "total": 1,
			 "patches": [{"id": 1, "name": "[GIT,PULL] Rust fixes"}],
			 "web_url": "u"}
		]`, recent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	series, excluded, err := client.RecentSeries(context.Background(), "rust-for-linux", 90, true)
	if err != nil {
		t.Fatalf("RecentSeries: %v", err)
	}
	if len(series) != 1 || excluded != 0 {
		t.Errorf("got %d series, %d excluded; want 1 and 0", len(series), excluded)
	}
}

func TestRecentSeriesPaginates(t *testing.T) {
	recent := time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC3339)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			// A full page forces a second request.
			fmt.Fprint(w, "[")
			for i := 0; i < pageSize; i++ {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"id": %d, "name": "series %d", "date": %q, "total": 1,
					"patches": [{"id": %d, "name": "p"}], "web_url": "u"}`, i+1, i+1, recent, i+1)
			}
			fmt.Fprint(w, "]")
		default:
			fmt.Fprintf(w, `[{"id": 99, "name": "last one", "date": %q, "total": 1,
				"patches": [{"id": 99, "name": "p"}], "web_url": "u"}]`, recent)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	series, _, err := client.RecentSeries(context.Background(), "rust-for-linux", 90, true)
	if err != nil {
		t.Fatalf("RecentSeries: %v", err)
	}
	if len(series) != pageSize+1 {
		t.Errorf("series = %d, want %d across two pages", len(series), pageSize+1)
	}
}

func TestPatchContentDereferencesMbox(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/patches/123/":
			fmt.Fprintf(w, `{"id": 123, "name": "rust: add feature",
				"date": "2025-04-29T10:00:00Z",
				"submitter": {"name": "Alice", "email": "a@x"},
				"mbox": %q, "state": "new", "web_url": "u"}`, srvURL+"/mbox/123")
		case "/mbox/123":
			fmt.Fprint(w, "raw mbox body\nSigned-off-by: Alice <a@x>\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	client := NewClient(srv.URL)
	patch, err := client.PatchContent(context.Background(), 123)
	if err != nil {
		t.Fatalf("PatchContent: %v", err)
	}
	if patch.ID != 123 || patch.State != "new" {
		t.Errorf("patch = %+v", patch)
	}
	if patch.Content != "raw mbox body\nSigned-off-by: Alice <a@x>\n" {
		t.Errorf("content = %q", patch.Content)
	}
	if !patch.Date.Equal(time.Date(2025, 4, 29, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", patch.Date)
	}
}

func TestPatchContentErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.PatchContent(context.Background(), 1); err == nil {
		t.Fatal("expected error for failing patch fetch")
	}
}

func TestPatchCommentsDegradeToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/patches/123/comments/":
			fmt.Fprint(w, `[
				{"id": 1, "submitter": {"name": "Reviewer One"},
				 "date": "2025-05-02T10:00:00Z",
				 "content": "This looks good but needs a small fix."},
				{"id": 2, "submitter": {"name": "Reviewer Two"},
				 "date": "2025-05-02T11:00:00Z",
				 "content": "I agree with the approach."}
			]`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	comments := client.PatchComments(context.Background(), 123)
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[0].Submitter.Name != "Reviewer One" {
		t.Errorf("first comment author = %q", comments[0].Submitter.Name)
	}

	// A failing endpoint must degrade to an empty list, never an error.
	if got := client.PatchComments(context.Background(), 999); len(got) != 0 {
		t.Errorf("failing fetch returned %d comments, want 0", len(got))
	}
}

func TestProjectID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/series/" {
			fmt.Fprint(w, "[]")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	id, err := client.ProjectID(context.Background())
	if err != nil {
		t.Fatalf("ProjectID: %v", err)
	}
	if id != "rust-for-linux" {
		t.Errorf("id = %q, want rust-for-linux", id)
	}
}

func TestProjectIDFallsBackToProjectList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/series/":
			http.Error(w, "nope", http.StatusNotFound)
		case "/projects/":
			fmt.Fprint(w, `[
				{"id": 10, "name": "Netdev", "link_name": "netdevbpf"},
				{"id": 42, "name": "Rust for Linux", "link_name": "rust-for-linux"}
			]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	id, err := client.ProjectID(context.Background())
	if err != nil {
		t.Fatalf("ProjectID: %v", err)
	}
	if id != "42" {
		t.Errorf("id = %q, want 42", id)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-08-20T10:00:00Z", want: time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)},
		{in: "2025-08-20T12:00:00+02:00", want: time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)},
		// No offset at all is taken as already UTC.
		{in: "2025-08-20T10:00:00", want: time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)},
		{in: "2025-08-20T10:00:00.123456", want: time.Date(2025, 8, 20, 10, 0, 0, 123456000, time.UTC)},
		{in: "", wantErr: true},
		{in: "not-a-date", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
