package reqcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Request codes look like "VR-2026-000123": a fixed prefix, the year the
// request was applied, and a zero-padded per-year sequence number.
const prefix = "VR"

var codeRe = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d{4,})$`)

// Code holds the structured parts of a request code.
type Code struct {
	Year int
	Seq  int
}

// Format renders a request code from a year and sequence number.
func Format(year, seq int) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, seq)
}

// Parse extracts the year and sequence number from a request code string.
func Parse(raw string) (Code, error) {
	s := strings.TrimSpace(strings.ToUpper(raw))
	m := codeRe.FindStringSubmatch(s)
	if m == nil {
		return Code{}, fmt.Errorf("unable to parse request code: %q", raw)
	}
	if m[1] != prefix {
		return Code{}, fmt.Errorf("unexpected request code prefix %q in %q", m[1], raw)
	}

	year, err := strconv.Atoi(m[2])
	if err != nil {
		return Code{}, fmt.Errorf("invalid year in request code %q: %w", raw, err)
	}
	seq, err := strconv.Atoi(m[3])
	if err != nil {
		return Code{}, fmt.Errorf("invalid sequence in request code %q: %w", raw, err)
	}
	if seq <= 0 {
		return Code{}, fmt.Errorf("sequence must be positive in request code %q", raw)
	}
	return Code{Year: year, Seq: seq}, nil
}
