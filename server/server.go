package server

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
)

// Server is a read-only browser over a reports output directory: an index of
// run dates, individual reports rendered from markdown, and the latest JSON
// export.
type Server struct {
	dir string
}

func New(dir string) (*Server, error) {
	if dir == "" {
		return nil, errors.New("reports directory required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reports directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &Server{dir: dir}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/reports/", s.handleReport)
	mux.HandleFunc("/api/export.json", s.handleExport)
	return mux
}

// handleIndex lists run dates and the reports inside each.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	runs, err := os.ReadDir(s.dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString("<!doctype html><title>Patch Reports</title><h1>Patch Reports</h1>\n")
	names := make([]string, 0, len(runs))
	for _, run := range runs {
		if run.IsDir() {
			names = append(names, run.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, name := range names {
		fmt.Fprintf(&b, "<h2>%s</h2>\n<ul>\n", html.EscapeString(name))
		files, err := os.ReadDir(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
				continue
			}
			href := path.Join("/reports", name, f.Name())
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", href, html.EscapeString(f.Name()))
		}
		b.WriteString("</ul>\n")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, b.String())
}

// handleReport renders one markdown report as HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/reports/")
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") || !strings.HasSuffix(rel, ".md") {
		http.NotFound(w, r)
		return
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(raw, &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><title>%s</title>\n", html.EscapeString(path.Base(rel)))
	w.Write(buf.Bytes())
}

// handleExport serves the most recent patches.json found under the reports
// directory, newest run first.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	runs, err := os.ReadDir(s.dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	names := make([]string, 0, len(runs))
	for _, run := range runs {
		if run.IsDir() {
			names = append(names, run.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, name := range names {
		p := filepath.Join(s.dir, name, "patches.json")
		raw, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
		return
	}
	http.Error(w, "no export available", http.StatusNotFound)
}
