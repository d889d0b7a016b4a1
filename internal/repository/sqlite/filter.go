package sqlite

import (
	"fmt"
	"strings"
)

// maxScannedYears caps the per-year LIKE expansion for numeric experience
// bands so a band like "10+" stays a bounded predicate.
const maxScannedYears = 15

// experienceBand is a discrete experience range. entry covers 신입/entry-level
// postings; lo/hi are inclusive year counts.
type experienceBand struct {
	entry  bool
	lo, hi int
}

// parseExperienceBand maps the API-level band names onto a range. Unknown
// band strings yield ok=false and the filter is ignored rather than erroring,
// matching the lenient filter contract.
func parseExperienceBand(s string) (experienceBand, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return experienceBand{}, false
	case "entry", "entry-level", "신입":
		return experienceBand{entry: true}, true
	case "1-3", "1-3년":
		return experienceBand{lo: 1, hi: 3}, true
	case "3-5", "3-5년":
		return experienceBand{lo: 3, hi: 5}, true
	case "5-10", "5-10년":
		return experienceBand{lo: 5, hi: 10}, true
	case "10+", "10년 이상":
		return experienceBand{lo: 10, hi: maxScannedYears}, true
	default:
		return experienceBand{}, false
	}
}

// experienceClause builds the lenient SQL predicate for a band. Blank and
// "무관"/"no experience required" rows match every band; numeric bands match
// any year literal inside [lo, hi].
func experienceClause(band experienceBand) (string, []any) {
	alts := []string{
		"experience IS NULL",
		"experience = ''",
		"experience LIKE '%무관%'",
		"lower(experience) LIKE '%no experience%'",
	}
	var args []any

	if band.entry {
		alts = append(alts, "experience LIKE '%신입%'", "lower(experience) LIKE '%entry%'")
	} else {
		hi := band.hi
		if hi > maxScannedYears {
			hi = maxScannedYears
		}
		for y := band.lo; y <= hi; y++ {
			alts = append(alts, "experience LIKE ?")
			args = append(args, fmt.Sprintf("%%%d년%%", y))
		}
	}

	return "(" + strings.Join(alts, " OR ") + ")", args
}

// keywordClause matches a keyword case-insensitively across title,
// description and company (OR semantics).
func keywordClause(keyword string) (string, []any) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	return "(lower(title) LIKE ? OR lower(description) LIKE ? OR lower(company) LIKE ?)",
		[]any{pattern, pattern, pattern}
}

// locationClause is an OR of substring matches against the location field.
func locationClause(locations []string) (string, []any) {
	alts := make([]string, 0, len(locations))
	args := make([]any, 0, len(locations))
	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		alts = append(alts, "location LIKE ?")
		args = append(args, "%"+loc+"%")
	}
	if len(alts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(alts, " OR ") + ")", args
}
