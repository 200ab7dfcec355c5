package matcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mydehq/otr/internal/types"
)

// Output fields understood by Template
const (
	FieldShow   = "SHOW"
	FieldDate   = "DATE"
	FieldEpNum  = "EP_NUM"
	FieldEpName = "EP_NAME"

	// Glue joins its neighbours without a separator
	Glue = "+"
)

// Slugifier turns a text field into a filename-safe token
type Slugifier interface {
	Slug(s string) string
}

// Template describes how resolved metadata becomes a filename
type Template struct {
	Fields       []string
	Separator    string
	NumberPrefix string

	// Padding is the episode number width. 0 derives it from the batch size.
	Padding int
}

// DefaultTemplate renders show--date--eNN--episode
func DefaultTemplate() Template {
	return Template{
		Fields:       []string{FieldShow, FieldDate, FieldEpNum, FieldEpName},
		Separator:    "--",
		NumberPrefix: "e",
	}
}

// Validate rejects unknown field names
func (t Template) Validate() error {
	for _, f := range t.Fields {
		if isLiteral(f) || f == Glue {
			continue
		}
		switch f {
		case FieldShow, FieldDate, FieldEpNum, FieldEpName:
		default:
			return fmt.Errorf("unknown output field %q", f)
		}
	}
	return nil
}

// Render assembles the filename for meta. Text fields go through slugger
// when it is non-nil, fields that resolve empty are dropped, and the
// extension is appended lower-cased.
func (t Template) Render(meta types.ResolvedMetadata, slugger Slugifier, batchSize int) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	slug := func(s string) string {
		if slugger == nil || s == "" {
			return s
		}
		return slugger.Slug(s)
	}

	var b strings.Builder
	glue := false
	for _, f := range t.Fields {
		if f == Glue {
			glue = true
			continue
		}

		var value string
		switch {
		case isLiteral(f):
			value = f[1 : len(f)-1]
		case f == FieldShow:
			value = slug(meta.ShowTitle)
		case f == FieldDate:
			value = meta.Date.String()
		case f == FieldEpNum:
			if meta.HasNumber || meta.Number > 0 {
				value = t.NumberPrefix + PadNumber(meta.Number, t.width(batchSize))
			}
		case f == FieldEpName:
			value = slug(meta.EpisodeTitle)
		}

		if value == "" {
			glue = false
			continue
		}
		if b.Len() > 0 && !glue {
			b.WriteString(t.Separator)
		}
		b.WriteString(value)
		glue = false
	}

	if ext := strings.ToLower(strings.TrimPrefix(meta.Extension, ".")); ext != "" {
		b.WriteString("." + ext)
	}
	return b.String(), nil
}

func (t Template) width(batchSize int) int {
	if t.Padding > 0 {
		return t.Padding
	}
	return PaddingFor(batchSize)
}

// PaddingFor returns the number of decimal digits in batchSize
func PaddingFor(batchSize int) int {
	if batchSize < 1 {
		return 1
	}
	return len(strconv.Itoa(batchSize))
}

// PadNumber zero-pads n to width. Wider numbers are never truncated.
func PadNumber(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) < width {
		return strings.Repeat("0", width-len(s)) + s
	}
	return s
}

func isLiteral(f string) bool {
	return len(f) >= 2 && f[0] == '"' && f[len(f)-1] == '"'
}
