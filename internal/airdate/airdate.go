// Package airdate turns raw broadcast date tokens into canonical dates.
package airdate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mydehq/otr/internal/types"
)

const sep = `[-._ ]`

// Shapes in priority order. The first one that matches wins.
var (
	fullRe        = regexp.MustCompile(`^(\d{4}|\d{2})` + sep + `(\d{2}|[xX]{2})` + sep + `(\d{2}|[xX]{2})$`)
	partialRe     = regexp.MustCompile(`^(\d{4}|\d{2})` + sep + `(\d{2}|[xX]{2})$`)
	yearRe        = regexp.MustCompile(`^(\d{4}|\d{2})$`)
	placeholderRe = regexp.MustCompile(`^[xX]+(` + sep + `[xX]+)*$`)
)

// Parse normalizes token into a CanonicalDate.
//
// An empty token or an all-x placeholder such as "xx-xx-xx" yields the
// unknown sentinel. Two-digit years always land in 1900-1999. A non-empty
// token that fits no shape, or names an impossible day, is an
// ErrInvalidDateFormat.
func Parse(token string) (types.CanonicalDate, error) {
	token = strings.TrimSpace(token)
	if token == "" || placeholderRe.MatchString(token) {
		return types.UnknownDate, nil
	}

	var parts []string
	switch {
	case fullRe.MatchString(token):
		parts = fullRe.FindStringSubmatch(token)[1:]
	case partialRe.MatchString(token):
		parts = partialRe.FindStringSubmatch(token)[1:]
	case yearRe.MatchString(token):
		parts = yearRe.FindStringSubmatch(token)[1:]
	default:
		return types.UnknownDate, types.ErrInvalidDateFormat{Token: token}
	}

	d := types.CanonicalDate{Year: expandYear(parts[0]), Precision: types.PrecisionYear}
	if len(parts) > 1 && isNumeric(parts[1]) {
		d.Month, _ = strconv.Atoi(parts[1])
		d.Precision = types.PrecisionMonth
		if len(parts) > 2 && isNumeric(parts[2]) {
			d.Day, _ = strconv.Atoi(parts[2])
			d.Precision = types.PrecisionDay
		}
	}

	if !valid(d) {
		return types.UnknownDate, types.ErrInvalidDateFormat{Token: token}
	}
	return d, nil
}

// MustParse is Parse for trusted literals
func MustParse(token string) types.CanonicalDate {
	d, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return d
}

// Or returns primary when it is known, otherwise fallback
func Or(primary, fallback types.CanonicalDate) types.CanonicalDate {
	if primary.IsKnown() {
		return primary
	}
	return fallback
}

func expandYear(s string) int {
	y, _ := strconv.Atoi(s)
	if len(s) == 2 {
		return 1900 + y
	}
	return y
}

func isNumeric(s string) bool {
	return s != "" && !strings.ContainsAny(s, "xX")
}

func valid(d types.CanonicalDate) bool {
	switch d.Precision {
	case types.PrecisionMonth:
		return d.Month >= 1 && d.Month <= 12
	case types.PrecisionDay:
		t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
	}
	return true
}
