// Package importer reads episode logs published as HTML tables and turns
// them into catalog episodes.
package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mydehq/otr/internal/airdate"
	"github.com/mydehq/otr/internal/types"
)

const userAgent = "Mozilla/5.0 (compatible; otr/1.0; +https://github.com/mydehq/otr)"

// Long-form date layouts seen in published logs
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"01/02/2006",
	"1/2/2006",
}

var (
	aliasSplit = regexp.MustCompile(`(?i)\s+(?:aka|a\.k\.a\.)\s+|\s+/\s+`)
	numberRe   = regexp.MustCompile(`^#?\s*(\d+)\.?$`)
)

// Importer fetches and parses episode logs
type Importer struct {
	client *http.Client
}

// Option configures an Importer
type Option func(*Importer)

// WithTimeout sets the HTTP timeout for remote logs
func WithTimeout(d time.Duration) Option {
	return func(im *Importer) {
		im.client.Timeout = d
	}
}

// WithClient replaces the HTTP client
func WithClient(c *http.Client) Option {
	return func(im *Importer) {
		im.client = c
	}
}

// New returns an Importer with a 30 second timeout
func New(opts ...Option) *Importer {
	im := &Importer{client: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import reads source, a local file or an http(s) URL, and parses it
func (im *Importer) Import(ctx context.Context, source string) ([]types.EpisodeRecord, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open episode log: %w", err)
		}
		defer f.Close()
		return Parse(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch episode log: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch episode log %s: %s", source, resp.Status)
	}
	return Parse(resp.Body)
}

// Parse walks every table row. In each row the first integer cell is the
// episode number, the first date cell is the broadcast date and the first
// other non-empty cell holds the title, with alternates split on "aka" or
// " / ". Rows without a title are skipped; rows without a number are
// numbered by position.
func Parse(r io.Reader) ([]types.EpisodeRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var episodes []types.EpisodeRecord
	var crawler func(*html.Node)
	crawler = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			if ep, ok := parseRow(node); ok {
				if ep.Number == 0 {
					ep.Number = len(episodes) + 1
				}
				episodes = append(episodes, ep)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			crawler(c)
		}
	}
	crawler(doc)

	return episodes, nil
}

func parseRow(tr *html.Node) (types.EpisodeRecord, bool) {
	var ep types.EpisodeRecord
	haveDate := false
	title := ""

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "td" {
			continue
		}
		text := strings.Join(strings.Fields(getText(c)), " ")
		if text == "" {
			continue
		}

		if ep.Number == 0 {
			if m := numberRe.FindStringSubmatch(text); m != nil {
				ep.Number, _ = strconv.Atoi(m[1])
				continue
			}
		}
		if !haveDate {
			if d, ok := parseDate(text); ok {
				ep.Date = d
				haveDate = true
				continue
			}
		}
		if title == "" {
			title = text
		}
	}

	if title == "" {
		return ep, false
	}
	for _, t := range aliasSplit.Split(title, -1) {
		if t = strings.Trim(t, ` "`); t != "" {
			ep.Titles = append(ep.Titles, t)
		}
	}
	return ep, len(ep.Titles) > 0
}

func parseDate(s string) (types.CanonicalDate, bool) {
	// A bare year is more likely a number or a title than a date.
	if d, err := airdate.Parse(s); err == nil && d.Precision != types.PrecisionYear {
		return d, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.CanonicalDate{
				Year:      t.Year(),
				Month:     int(t.Month()),
				Day:       t.Day(),
				Precision: types.PrecisionDay,
			}, true
		}
	}
	return types.CanonicalDate{}, false
}

func getText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(getText(c))
		if c.Type == html.ElementNode && c.Data == "br" {
			text.WriteString(" ")
		}
	}
	return text.String()
}
