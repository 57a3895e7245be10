package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

const monthPattern = `\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	yearRe = regexp.MustCompile(`20\d{2}`)

	// July 10-12, 2024
	sameMonthRangeRe = regexp.MustCompile(`(?i)` + monthPattern + `\s+(\d{1,2})\s*[-–]\s*(\d{1,2}),?\s+(20\d{2})`)
	// July 10, 2024 - July 12, 2024
	twoDateRangeRe = regexp.MustCompile(`(?i)` + monthPattern + `\s+(\d{1,2}),?\s+(20\d{2})\s*[-–—]\s*` + monthPattern + `\s*(\d{1,2}),?\s*(20\d{2})`)
	// 10 July 2024
	dayMonthYearRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+` + monthPattern + `\s+(20\d{2})`)
	// July 10, 2024
	monthDayYearRe = regexp.MustCompile(`(?i)` + monthPattern + `\s+(\d{1,2}),?\s+(20\d{2})`)

	fullYearRe      = regexp.MustCompile(`^20\d{2}$`)
	nameYearRe      = regexp.MustCompile(`\(?20\d{2}\)?`)
	locationLabelRe = regexp.MustCompile(`(?i)^(location|place|where|venue)[:\s]*`)
	locationDashRe  = regexp.MustCompile(`\s+-\s+|\s*[–—]\s*`)
)

// ExtractYear returns the first 20xx year in s, or "".
func ExtractYear(s string) string {
	return yearRe.FindString(s)
}

// ParseDateRange finds a conference date or date range in free text and
// returns ISO dates. end is "" when only a single day is given. Patterns
// are tried from most to least specific.
func ParseDateRange(text string) (start, end string) {
	if m := sameMonthRangeRe.FindStringSubmatch(text); m != nil {
		if s, ok := isoFromParts(m[1], m[2], m[4]); ok {
			e, _ := isoFromParts(m[1], m[3], m[4])
			return s, e
		}
	}
	if m := twoDateRangeRe.FindStringSubmatch(text); m != nil {
		if s, ok := isoFromParts(m[1], m[2], m[3]); ok {
			e, _ := isoFromParts(m[4], m[5], m[6])
			return s, e
		}
	}
	if m := dayMonthYearRe.FindStringSubmatch(text); m != nil {
		if s, ok := isoFromParts(m[2], m[1], m[3]); ok {
			return s, ""
		}
	}
	if m := monthDayYearRe.FindStringSubmatch(text); m != nil {
		if s, ok := isoFromParts(m[1], m[2], m[3]); ok {
			return s, ""
		}
	}
	return "", ""
}

func isoFromParts(month, day, year string) (string, bool) {
	t, ok := dateFromParts(month, day, year)
	if !ok {
		return "", false
	}
	return t.Format(isoDate), true
}

// dateFromParts builds a UTC date from a month name and numeric day and
// year. Impossible dates such as Feb 30 are rejected.
func dateFromParts(month, day, year string) (time.Time, bool) {
	if len(month) < 3 {
		return time.Time{}, false
	}
	m, ok := months[strings.ToLower(month[:3])]
	if !ok {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != m {
		return time.Time{}, false
	}
	return t, true
}

var numericDeadlineLayouts = []string{
	"1/2/2006", "1-2-2006", "1/2/06", "1-2-06",
	"2006-1-2", "2006/1/2",
}

// ParseDeadline converts a date as written on a call-for-papers page into
// a UTC date. Numeric day-month forms are read US style.
func ParseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range numericDeadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	fields := strings.Fields(strings.NewReplacer(",", " ", ".", " ").Replace(s))
	if len(fields) != 3 {
		return time.Time{}, false
	}
	if _, err := strconv.Atoi(fields[0]); err == nil {
		return dateFromParts(fields[1], fields[0], fields[2])
	}
	return dateFromParts(fields[0], fields[1], fields[2])
}

// CleanName strips year markers such as "2024" or "(2024)" from a
// conference name.
func CleanName(name string) string {
	name = nameYearRe.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeLocation removes a leading label and turns dash separators
// into commas, e.g. "Venue: Lisbon - Portugal" becomes "Lisbon, Portugal".
func NormalizeLocation(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = strings.TrimSpace(locationLabelRe.ReplaceAllString(raw, ""))
	raw = locationDashRe.ReplaceAllString(raw, ", ")
	raw = strings.Join(strings.Fields(raw), " ")
	return strings.TrimSpace(strings.Trim(raw, ", "))
}
