package tagger

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"github.com/mydehq/otr/internal/airdate"
	"github.com/mydehq/otr/internal/types"
)

type call struct {
	bin  string
	args []string
}

// fakeTagger records invocations instead of running tools
func fakeTagger(installed ...string) (*Tagger, *[]call) {
	var calls []call
	t := &Tagger{
		lookPath: func(bin string) (string, error) {
			if slices.Contains(installed, bin) {
				return "/usr/bin/" + bin, nil
			}
			return "", exec.ErrNotFound
		},
		run: func(_ context.Context, bin string, args ...string) ([]byte, error) {
			calls = append(calls, call{bin: bin, args: args})
			return nil, nil
		},
	}
	return t, &calls
}

func dragnet() *types.ResolvedMetadata {
	return &types.ResolvedMetadata{
		ShowTitle:    "Dragnet",
		EpisodeTitle: "The Big Jolt",
		Date:         airdate.MustParse("49-06-03"),
		Number:       1,
		Extension:    "mp3",
	}
}

func TestInfoFor(t *testing.T) {
	info := InfoFor(dragnet())
	want := Info{Title: "The Big Jolt", Show: "Dragnet", Track: 1, Year: 1949, Date: "1949-06-03"}
	if info != want {
		t.Errorf("InfoFor() = %+v, want %+v", info, want)
	}

	meta := dragnet()
	meta.Date = types.UnknownDate
	if info := InfoFor(meta); info.Year != 0 || info.Date != "" {
		t.Errorf("unknown date leaked into tags: %+v", info)
	}
}

func TestToolFor(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/x/show.mp3", id3Bin},
		{"/x/show.MP3", id3Bin},
		{"/x/show.m4a", mp4Bin},
		{"/x/show.mp4", mp4Bin},
		{"/x/show.mka", mkvBin},
		{"/x/show.mkv", mkvBin},
		{"/x/show.ogg", ""},
		{"/x/show.flac", ""},
		{"/x/show", ""},
	}
	for _, c := range cases {
		if got := toolFor(c.path); got != c.want {
			t.Errorf("toolFor(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestTagFileMP3(t *testing.T) {
	tg, calls := fakeTagger(id3Bin)
	if err := tg.TagFile(context.Background(), "/x/dragnet.mp3", dragnet()); err != nil {
		t.Fatal(err)
	}
	if len(*calls) != 1 {
		t.Fatalf("got %d calls", len(*calls))
	}
	c := (*calls)[0]
	if c.bin != id3Bin {
		t.Errorf("bin = %q", c.bin)
	}
	joined := strings.Join(c.args, " ")
	for _, want := range []string{"--song The Big Jolt", "--album Dragnet", "--track 1", "--year 1949"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
	if c.args[len(c.args)-1] != "/x/dragnet.mp3" {
		t.Errorf("path must be last, got %v", c.args)
	}
}

func TestTagFileMP4(t *testing.T) {
	tg, calls := fakeTagger(mp4Bin)
	if err := tg.TagFile(context.Background(), "/x/dragnet.m4a", dragnet()); err != nil {
		t.Fatal(err)
	}
	c := (*calls)[0]
	if c.args[0] != "/x/dragnet.m4a" || c.args[1] != "--overWrite" {
		t.Errorf("args = %v", c.args)
	}
	if !strings.Contains(strings.Join(c.args, " "), "--year 1949-06-03") {
		t.Errorf("args missing date: %v", c.args)
	}
}

func TestTagFileMatroska(t *testing.T) {
	tg, calls := fakeTagger(mkvBin)
	if err := tg.TagFile(context.Background(), "/x/dragnet.mka", dragnet()); err != nil {
		t.Fatal(err)
	}
	c := (*calls)[0]
	if c.bin != mkvBin || !slices.Contains(c.args, "title=The Big Jolt") {
		t.Errorf("call = %+v", c)
	}
}

func TestTagFileSkipsAndMissingTools(t *testing.T) {
	tg, calls := fakeTagger()

	if err := tg.TagFile(context.Background(), "/x/show.ogg", dragnet()); err != nil {
		t.Errorf("unsupported format: %v", err)
	}
	if err := tg.TagFile(context.Background(), "/x/show.mp3", nil); err != nil {
		t.Errorf("nil metadata: %v", err)
	}
	err := tg.TagFile(context.Background(), "/x/show.mp3", dragnet())
	if err == nil || !strings.Contains(err.Error(), id3Bin) {
		t.Errorf("missing tool error = %v", err)
	}
	if len(*calls) != 0 {
		t.Errorf("no tool should have run, got %v", *calls)
	}
}

func TestTagFileToolFailure(t *testing.T) {
	tg, _ := fakeTagger(id3Bin)
	tg.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("bad frame\n"), errors.New("exit status 1")
	}
	err := tg.TagFile(context.Background(), "/x/show.mp3", dragnet())
	if err == nil || !strings.Contains(err.Error(), "bad frame") {
		t.Errorf("error = %v, want tool output", err)
	}
}

func TestWriteTagXML(t *testing.T) {
	var buf bytes.Buffer
	info := Info{Title: "Fish & Chips <live>", Show: "Dragnet", Track: 5, Date: "1949-06"}
	if err := writeTagXML(&buf, info); err != nil {
		t.Fatal(err)
	}
	xml := buf.String()
	for _, want := range []string{"<?xml", "Fish &amp; Chips &lt;live&gt;", "Dragnet", "PART_NUMBER", "DATE_RELEASED", "1949-06"} {
		if !strings.Contains(xml, want) {
			t.Errorf("XML missing %q:\n%s", want, xml)
		}
	}

	buf.Reset()
	if err := writeTagXML(&buf, Info{Title: "t", Show: "s"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "DATE_RELEASED") || strings.Contains(buf.String(), "PART_NUMBER") {
		t.Errorf("optional tags rendered for empty values:\n%s", buf.String())
	}
}

func TestAvailable(t *testing.T) {
	tg, _ := fakeTagger(mkvBin)
	got := tg.Available()
	if !got[mkvBin] || got[id3Bin] || got[mp4Bin] {
		t.Errorf("Available() = %v", got)
	}
}
