package airdate

import (
	"errors"
	"testing"

	"github.com/mydehq/otr/internal/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token     string
		want      string
		precision types.Precision
	}{
		{"85-03-11", "1985-03-11", types.PrecisionDay},
		{"85-03", "1985-03", types.PrecisionMonth},
		{"85", "1985", types.PrecisionYear},
		{"55-06-02", "1955-06-02", types.PrecisionDay},
		{"00-01-01", "1900-01-01", types.PrecisionDay},
		{"49.11.20", "1949-11-20", types.PrecisionDay},
		{"1951-04-08", "1951-04-08", types.PrecisionDay},
		{"55-06-xx", "1955-06", types.PrecisionMonth},
		{"55-xx-xx", "1955", types.PrecisionYear},
		{"xx-xx-xx", "", types.PrecisionUnknown},
		{"XX", "", types.PrecisionUnknown},
		{"", "", types.PrecisionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.token, err)
			}
			if got.String() != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.token, got.String(), tt.want)
			}
			if got.Precision != tt.precision {
				t.Errorf("Parse(%q) precision = %s, want %s", tt.token, got.Precision, tt.precision)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, token := range []string{"abc", "5-6-7", "55-13-01", "55-02-30", "55/06/02", "123"} {
		t.Run(token, func(t *testing.T) {
			_, err := Parse(token)
			var de types.ErrInvalidDateFormat
			if !errors.As(err, &de) {
				t.Fatalf("Parse(%q) error = %v, want ErrInvalidDateFormat", token, err)
			}
		})
	}
}

func TestOr(t *testing.T) {
	known := MustParse("48-01-01")
	if got := Or(types.UnknownDate, known); got != known {
		t.Errorf("Or(unknown, known) = %v", got)
	}
	if got := Or(known, types.UnknownDate); got != known {
		t.Errorf("Or(known, unknown) = %v", got)
	}
}
