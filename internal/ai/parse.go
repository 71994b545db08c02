package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	pricePattern   = regexp.MustCompile(`\$([0-9][0-9,]*)\$`)
	numberRegex    = regexp.MustCompile(`[0-9][0-9,]*`)
	ErrParseFailed = errors.New("parse_failed")
)

// ParseRupees extracts a whole-rupee amount from model output. It first tries
// the strict $<number>$ envelope the prompt asks for, then falls back to the
// longest number in the text (e.g. "around 5,50,000 rupees"). Grouping commas
// are ignored.
func ParseRupees(text string) (int64, error) {
	if m := pricePattern.FindStringSubmatch(text); len(m) >= 2 {
		v, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrParseFailed, err)
		}
		return v, nil
	}
	matches := numberRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: no price found", ErrParseFailed)
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(best) {
			best = m
		}
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(best, ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return v, nil
}
