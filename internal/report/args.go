package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shanehull/aipsscraper/internal/types"
)

// ErrValidation marks a malformed --since or --larger argument.
var ErrValidation = errors.New("invalid argument")

// ParseSince converts a DD.MM.YYYY cutoff into the YYYY-MM-DD form records
// are compared against. Only the component lengths are checked.
func ParseSince(s string) (string, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || len(parts[0]) != 2 || len(parts[1]) != 2 || len(parts[2]) != 4 {
		return "", fmt.Errorf("%w: date %q must be in format DD.MM.YYYY", ErrValidation, s)
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0], nil
}

func ParseThreshold(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: threshold %q must be a valid number", ErrValidation, s)
	}
	return uint32(v), nil
}

// NewFilterRequest validates the raw flag values. Empty strings mean the
// flag was not given.
func NewFilterRequest(since, larger string, today bool) (types.FilterRequest, error) {
	req := types.FilterRequest{Today: today}

	if since != "" {
		cutoff, err := ParseSince(since)
		if err != nil {
			return req, err
		}
		req.Since = cutoff
		req.SinceDisplay = since
	}

	if larger != "" {
		threshold, err := ParseThreshold(larger)
		if err != nil {
			return req, err
		}
		req.Larger = &threshold
	}

	return req, nil
}
