/*
normalizer.go - Free-text category normalization

PURPOSE:
  Calendar entries arrive with a single free-form category label such as
  "VACATION, WF-2301 | Basin restoration". The prorate engine expects
  already-classified earning categories, so this normalizer runs ahead of
  it: it detects the earning keyword (defaulting to REGULAR when none is
  present), strips it from the text, and leaves the project code behind.

  The keyword scan is case-insensitive and matches anywhere in the text,
  in the fixed priority order of the category table.
*/
package timesheet

import (
	"strings"

	"github.com/tidewater/timesheet-engine/prorate"
)

// ParseCategory extracts the earning category from a free-form label.
// It returns the detected category (REGULAR when no keyword matches) and
// the remaining text with the keyword and any commas removed.
func ParseCategory(text string) (prorate.EarningCategory, string) {
	found := CategoryRegular
	rest := text

	lower := strings.ToLower(text)
	for _, c := range categories {
		keyword := strings.ToLower(string(c))
		if idx := strings.Index(lower, keyword); idx >= 0 {
			found = c
			rest = text[:idx] + text[idx+len(keyword):]
			break
		}
	}

	rest = strings.ReplaceAll(rest, ",", "")
	return found, strings.TrimSpace(rest)
}

// ParseCategoryLabel additionally splits the remainder at "|" and returns
// the leading segment as the project code, the way calendar labels carry
// them ("SICK, WF-2301 | notes..." -> SICK, WF-2301).
func ParseCategoryLabel(text string) (prorate.EarningCategory, prorate.Code) {
	earning, rest := ParseCategory(text)
	code := rest
	if idx := strings.Index(rest, "|"); idx >= 0 {
		code = rest[:idx]
	}
	return earning, prorate.Code(strings.TrimSpace(code))
}
