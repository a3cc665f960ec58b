package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	approxCountRe  = regexp.MustCompile(`([\d][\d.,]*)\s*([KkMmBb])?`)
	relativeTimeRe = regexp.MustCompile(`(\d+)\s*(yr|y|mo|w|d|h|m|s)\b`)
	followerNoise  = regexp.MustCompile(`(?i)[\d][\d.,]*\s*[KkMmBb]?\+?\s*followers(\s+on\s+LinkedIn)?`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// timestampLayouts are tried in order before falling back to relative parsing
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseApproxCount turns strings like "1.5K followers", "2,345" or "3M"
// into an integer. Returns nil when no number is present.
func ParseApproxCount(s string) *int {
	match := approxCountRe.FindStringSubmatch(s)
	if match == nil {
		return nil
	}

	raw := strings.ReplaceAll(match[1], ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}

	switch strings.ToUpper(match[2]) {
	case "K":
		value *= 1_000
	case "M":
		value *= 1_000_000
	case "B":
		value *= 1_000_000_000
	}

	n := int(value)
	return &n
}

// ParseTimestamp parses an absolute ISO timestamp, falling back to relative
// forms like "3d ago". Absolute timestamps always win when present.
func ParseTimestamp(s string, now time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return ParseRelativeTime(s, now)
}

// ParseRelativeTime turns "3d ago", "2w", "1mo" into an absolute time
// anchored at now. Month and year use calendar arithmetic; date-only
// precision is all the target provides.
func ParseRelativeTime(s string, now time.Time) *time.Time {
	match := relativeTimeRe.FindStringSubmatch(s)
	if match == nil {
		return nil
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}

	var t time.Time
	switch match[2] {
	case "s":
		t = now.Add(-time.Duration(n) * time.Second)
	case "m":
		t = now.Add(-time.Duration(n) * time.Minute)
	case "h":
		t = now.Add(-time.Duration(n) * time.Hour)
	case "d":
		t = now.AddDate(0, 0, -n)
	case "w":
		t = now.AddDate(0, 0, -7*n)
	case "mo":
		t = now.AddDate(0, -n, 0)
	case "y", "yr":
		t = now.AddDate(-n, 0, 0)
	default:
		return nil
	}
	return &t
}

// CleanDescription strips embedded follower-count phrases and platform
// boilerplate from a scraped description.
func CleanDescription(s string) string {
	s = followerNoise.ReplaceAllString(s, "")

	// Drop platform-suffix segments like "... | LinkedIn"
	parts := strings.Split(s, "|")
	kept := parts[:0]
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" || strings.EqualFold(trimmed, "LinkedIn") {
			continue
		}
		kept = append(kept, part)
	}
	s = strings.Join(kept, "|")

	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// boilerplate phrases the DOM strategy must never accept as field values
var boilerplatePhrases = []string{
	"linkedin",
	"sign in",
	"sign up",
	"join now",
	"join linkedin",
	"log in",
	"welcome back",
}

// plausibleText rejects values that are platform boilerplate or bare
// follower-count strings rather than real field content.
func plausibleText(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range boilerplatePhrases {
		if lower == phrase {
			return false
		}
	}
	if followerNoise.MatchString(trimmed) {
		return false
	}
	return true
}

// plausibleName additionally rejects short all-caps strings, which on the
// target are usually a navigation echo of the organization name.
func plausibleName(s string) bool {
	trimmed := strings.TrimSpace(s)
	if !plausibleText(trimmed) {
		return false
	}
	if len(trimmed) <= 4 && trimmed == strings.ToUpper(trimmed) && strings.ContainsAny(trimmed, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return false
	}
	return true
}
