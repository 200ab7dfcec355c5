// Package tagger writes resolved show and episode metadata into audio files
// with external tools: id3v2 (MP3), AtomicParsley (M4A/MP4) and
// mkvpropedit (MKA/MKV).
package tagger

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/mydehq/otr/internal/types"
)

const (
	id3Bin = "id3v2"
	mp4Bin = "AtomicParsley"
	mkvBin = "mkvpropedit"
)

// Info is what ends up in the file's tags
type Info struct {
	Title string // episode title
	Show  string // series, written as album and artist
	Track int    // episode number, 0 when unknown
	Year  int    // 0 when unknown
	Date  string // as precise as known, e.g. "1949-06" or "1949-06-03"
}

// InfoFor builds tag values from resolved metadata
func InfoFor(meta *types.ResolvedMetadata) Info {
	info := Info{
		Title: meta.EpisodeTitle,
		Show:  meta.ShowTitle,
		Track: meta.Number,
	}
	if meta.Date.IsKnown() {
		info.Year = meta.Date.Year
		info.Date = meta.Date.String()
	}
	return info
}

// Tagger dispatches on extension. Formats with no tool are skipped.
type Tagger struct {
	lookPath func(string) (string, error)
	run      func(ctx context.Context, bin string, args ...string) ([]byte, error)
}

// New returns a Tagger that runs tools from $PATH
func New() *Tagger {
	return &Tagger{
		lookPath: exec.LookPath,
		run: func(ctx context.Context, bin string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, bin, args...).CombinedOutput()
		},
	}
}

// toolFor returns the binary that tags path, or "" when the format is not
// supported.
func toolFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return id3Bin
	case ".m4a", ".mp4", ".m4b":
		return mp4Bin
	case ".mka", ".mkv":
		return mkvBin
	}
	return ""
}

// Available reports which tools were found, keyed by binary name
func (t *Tagger) Available() map[string]bool {
	out := make(map[string]bool, 3)
	for _, bin := range []string{id3Bin, mp4Bin, mkvBin} {
		_, err := t.lookPath(bin)
		out[bin] = err == nil
	}
	return out
}

// TagFile writes meta into path. Unsupported extensions return nil; a
// supported format whose tool is missing is an error.
func (t *Tagger) TagFile(ctx context.Context, path string, meta *types.ResolvedMetadata) error {
	if meta == nil {
		return nil
	}
	bin := toolFor(path)
	if bin == "" {
		return nil
	}
	if _, err := t.lookPath(bin); err != nil {
		return fmt.Errorf("%s not found; cannot tag %s", bin, filepath.Base(path))
	}

	info := InfoFor(meta)
	switch bin {
	case id3Bin:
		return t.exec(ctx, bin, id3Args(path, info)...)
	case mp4Bin:
		return t.exec(ctx, bin, mp4Args(path, info)...)
	default:
		return t.tagMatroska(ctx, path, info)
	}
}

func (t *Tagger) exec(ctx context.Context, bin string, args ...string) error {
	if out, err := t.run(ctx, bin, args...); err != nil {
		return fmt.Errorf("%s failed: %w\noutput: %s", bin, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func id3Args(path string, info Info) []string {
	var args []string
	if info.Title != "" {
		args = append(args, "--song", info.Title)
	}
	if info.Show != "" {
		args = append(args, "--album", info.Show, "--artist", info.Show)
	}
	if info.Track > 0 {
		args = append(args, "--track", strconv.Itoa(info.Track))
	}
	if info.Year > 0 {
		args = append(args, "--year", strconv.Itoa(info.Year))
	}
	if info.Date != "" {
		args = append(args, "--comment", "Aired "+info.Date)
	}
	return append(args, path)
}

func mp4Args(path string, info Info) []string {
	args := []string{path, "--overWrite"}
	if info.Title != "" {
		args = append(args, "--title", info.Title)
	}
	if info.Show != "" {
		args = append(args, "--album", info.Show, "--artist", info.Show)
	}
	if info.Track > 0 {
		args = append(args, "--tracknum", strconv.Itoa(info.Track))
	}
	if info.Date != "" {
		args = append(args, "--year", info.Date)
	}
	return args
}

func (t *Tagger) tagMatroska(ctx context.Context, path string, info Info) error {
	tmp, err := os.CreateTemp("", "otr-tags-*.xml")
	if err != nil {
		return fmt.Errorf("create tag file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeTagXML(tmp, info); err != nil {
		tmp.Close()
		return fmt.Errorf("write tag XML: %w", err)
	}
	tmp.Close()

	return t.exec(ctx, mkvBin,
		path,
		"--edit", "info",
		"--set", "title="+info.Title,
		"--tags", "all:"+tmp.Name(),
	)
}

// Matroska global tags: 50 is the collection, 30 the episode
const tagXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE Tags SYSTEM "matroskatags.dtd">
<Tags>
  <Tag>
    <Targets>
      <TargetTypeValue>50</TargetTypeValue>
      <TargetType>COLLECTION</TargetType>
    </Targets>
    <Simple>
      <Name>TITLE</Name>
      <String>{{.Show}}</String>
    </Simple>
  </Tag>
  <Tag>
    <Targets>
      <TargetTypeValue>30</TargetTypeValue>
      <TargetType>TRACK</TargetType>
    </Targets>
    <Simple>
      <Name>TITLE</Name>
      <String>{{.Title}}</String>
    </Simple>{{if .Track}}
    <Simple>
      <Name>PART_NUMBER</Name>
      <String>{{.Track}}</String>
    </Simple>{{end}}{{if .Date}}
    <Simple>
      <Name>DATE_RELEASED</Name>
      <String>{{.Date}}</String>
    </Simple>{{end}}
  </Tag>
</Tags>
`

var tagTmpl = template.Must(template.New("tags").Parse(tagXML))

func writeTagXML(w io.Writer, info Info) error {
	return tagTmpl.Execute(w, escaped(info))
}

// escaped returns info with XML special characters escaped
func escaped(info Info) Info {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	info.Title = r.Replace(info.Title)
	info.Show = r.Replace(info.Show)
	return info
}
