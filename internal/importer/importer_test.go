package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const episodeLog = `<html><body>
<table>
  <tr><th>#</th><th>Date</th><th>Title</th><th>Notes</th></tr>
  <tr><td>1</td><td>49-06-03</td><td>The Big Jolt</td><td>AFRS</td></tr>
  <tr><td>2.</td><td>June 10, 1949</td><td><b>The Big Thief</b> aka Big Steal</td><td></td></tr>
  <tr><td></td><td>49-06</td><td>"The Big Lie"</td></tr>
  <tr><td>4</td><td>xx-xx-xx</td><td></td></tr>
</table>
</body></html>`

func TestParse(t *testing.T) {
	eps, err := Parse(strings.NewReader(episodeLog))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(eps) != 3 {
		t.Fatalf("Parse() = %+v, want 3 episodes", eps)
	}

	tests := []struct {
		number int
		date   string
		titles []string
	}{
		{1, "1949-06-03", []string{"The Big Jolt"}},
		{2, "1949-06-10", []string{"The Big Thief", "Big Steal"}},
		{3, "1949-06", []string{"The Big Lie"}},
	}

	for i, tt := range tests {
		got := eps[i]
		if got.Number != tt.number || got.Date.String() != tt.date {
			t.Errorf("episode %d = %d %q, want %d %q", i, got.Number, got.Date, tt.number, tt.date)
		}
		if strings.Join(got.Titles, "|") != strings.Join(tt.titles, "|") {
			t.Errorf("episode %d titles = %q, want %q", i, got.Titles, tt.titles)
		}
	}
}

func TestImport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	if err := os.WriteFile(path, []byte(episodeLog), 0644); err != nil {
		t.Fatal(err)
	}
	eps, err := New().Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(eps) != 3 {
		t.Errorf("Import() returned %d episodes", len(eps))
	}
}

func TestImport_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/log" {
			http.NotFound(w, r)
			return
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "otr") {
			t.Errorf("missing user agent: %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(episodeLog))
	}))
	defer srv.Close()

	im := New(WithClient(srv.Client()))
	eps, err := im.Import(context.Background(), srv.URL+"/log")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(eps) != 3 {
		t.Errorf("Import() returned %d episodes", len(eps))
	}

	if _, err := im.Import(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
}
