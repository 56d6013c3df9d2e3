package patchwork

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public kernel.org Patchwork API.
	DefaultBaseURL = "https://patchwork.kernel.org/api"

	// project is the tracker's string identifier for Rust for Linux.
	project = "rust-for-linux"

	pageSize = 50
)

// Client talks to a Patchwork REST API. All calls are synchronous and
// blocking; timeout policy lives in the underlying http.Client.
type Client struct {
	baseURL string
	http    *http.Client
	Policy  ClassifierPolicy
	Verbose bool
	Logf    func(format string, args ...any)
}

// NewClient returns a client for the given API base URL, defaulting to the
// public kernel.org instance.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		Policy:  DefaultClassifierPolicy(),
		Logf:    log.Printf,
	}
}

func (c *Client) logf(format string, args ...any) {
	if c.Verbose && c.Logf != nil {
		c.Logf(format, args...)
	}
}

// get issues a GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call patchwork: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("patchwork responded with status %s for %s", resp.Status, rawURL)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode patchwork response: %w", err)
	}
	return nil
}

// ProjectID resolves the Rust for Linux project identifier. The project is
// reachable by its string identifier even though it is missing from the
// numeric project list on some instances, so the string form is probed first.
func (c *Client) ProjectID(ctx context.Context) (string, error) {
	probe := fmt.Sprintf("%s/series/?project=%s&per_page=1", c.baseURL, project)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return project, nil
		}
	}

	projects, err := c.ListProjects(ctx)
	if err != nil {
		return "", fmt.Errorf("project %s not reachable and project list failed: %w", project, err)
	}
	for _, p := range projects {
		name := strings.ToLower(p.Name)
		link := strings.ToLower(p.LinkName)
		if strings.Contains(name, "rust") || strings.Contains(name, "r4l") ||
			strings.Contains(link, "rust") || strings.Contains(link, "r4l") {
			return strconv.Itoa(p.ID), nil
		}
	}
	return "", errors.New("rust-for-linux project not accessible via the API")
}

// ListProjects returns every project the tracker advertises.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.get(ctx, c.baseURL+"/projects/", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// seriesJSON is the wire shape of one series listing entry.
type seriesJSON struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Date        string     `json:"date"`
	Submitter   *Submitter `json:"submitter"`
	Total       int        `json:"total"`
	Patches     []PatchRef `json:"patches"`
	CoverLetter *struct {
		ID int `json:"id"`
	} `json:"cover_letter"`
	WebURL string `json:"web_url"`
}

// RecentSeries pages through the project's series newest-first and returns
// those posted within the last days days. Unless includeResolved is set,
// series the classifier marks resolved are dropped; the second return value
// is how many were excluded that way. Series with unparsable dates are
// skipped, never fatal.
func (c *Client) RecentSeries(ctx context.Context, projectID string, days int, includeResolved bool) ([]Series, int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var out []Series
	excluded := 0
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("project", projectID)
		q.Set("ordering", "-date")
		q.Set("per_page", strconv.Itoa(pageSize))
		q.Set("page", strconv.Itoa(page))

		var body []seriesJSON
		if err := c.get(ctx, c.baseURL+"/series/?"+q.Encode(), &body); err != nil {
			return nil, 0, err
		}
		if len(body) == 0 {
			break
		}

		for _, sj := range body {
			date, err := ParseDate(sj.Date)
			if err != nil {
				c.logf("[patchwork] skipping series %d: bad date %q", sj.ID, sj.Date)
				continue
			}
			if date.Before(cutoff) {
				continue
			}
			if !includeResolved && c.Policy.Resolved(sj.Patches) {
				excluded++
				continue
			}
			name := sj.Name
			if name == "" {
				name = "Untitled"
			}
			var sub Submitter
			if sj.Submitter != nil {
				sub = *sj.Submitter
			}
			out = append(out, Series{
				ID:             sj.ID,
				Name:           name,
				Date:           date,
				Submitter:      sub,
				Total:          sj.Total,
				Patches:        sj.Patches,
				HasCoverLetter: sj.CoverLetter != nil,
				WebURL:         sj.WebURL,
			})
		}

		if len(body) < pageSize {
			break
		}
	}
	return out, excluded, nil
}

// patchJSON is the wire shape of the patch detail record.
type patchJSON struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Date      string     `json:"date"`
	Submitter *Submitter `json:"submitter"`
	Mbox      string     `json:"mbox"`
	State     string     `json:"state"`
	WebURL    string     `json:"web_url"`
}

// PatchContent fetches the patch detail record and dereferences its mbox URL
// for the raw textual body.
func (c *Client) PatchContent(ctx context.Context, id int) (Patch, error) {
	var pj patchJSON
	if err := c.get(ctx, fmt.Sprintf("%s/patches/%d/", c.baseURL, id), &pj); err != nil {
		return Patch{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pj.Mbox, nil)
	if err != nil {
		return Patch{}, fmt.Errorf("build mbox request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Patch{}, fmt.Errorf("fetch mbox: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Patch{}, fmt.Errorf("mbox responded with status %s", resp.Status)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return Patch{}, fmt.Errorf("read mbox: %w", err)
	}

	date, err := ParseDate(pj.Date)
	if err != nil {
		date = time.Time{}
	}
	var sub Submitter
	if pj.Submitter != nil {
		sub = *pj.Submitter
	}
	return Patch{
		ID:        pj.ID,
		Name:      pj.Name,
		Date:      date,
		Submitter: sub,
		Content:   string(content),
		State:     pj.State,
		WebURL:    pj.WebURL,
		MboxURL:   pj.Mbox,
	}, nil
}

// commentJSON is the wire shape of one discussion entry.
type commentJSON struct {
	ID        int        `json:"id"`
	Submitter *Submitter `json:"submitter"`
	Date      string     `json:"date"`
	Content   string     `json:"content"`
}

// PatchComments returns the discussion for a patch. Any failure degrades to
// an empty list; comment fetching must never abort an analysis.
func (c *Client) PatchComments(ctx context.Context, id int) []Comment {
	var body []commentJSON
	if err := c.get(ctx, fmt.Sprintf("%s/patches/%d/comments/", c.baseURL, id), &body); err != nil {
		c.logf("[patchwork] comments for patch %d unavailable: %v", id, err)
		return nil
	}
	comments := make([]Comment, 0, len(body))
	for _, cj := range body {
		date, err := ParseDate(cj.Date)
		if err != nil {
			date = time.Time{}
		}
		var sub Submitter
		if cj.Submitter != nil {
			sub = *cj.Submitter
		}
		comments = append(comments, Comment{
			ID:        cj.ID,
			Submitter: sub,
			Date:      date,
			Content:   cj.Content,
		})
	}
	return comments
}

// ParseDate parses the tracker's ISO-8601 timestamps. A trailing "Z" or an
// explicit offset is honored; a timestamp with no offset at all is taken as
// already UTC. The result is always normalized to UTC.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}
