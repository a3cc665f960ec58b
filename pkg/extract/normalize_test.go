package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApproxCount(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		found    bool
	}{
		{"1.5K followers", 1500, true},
		{"2,345 followers", 2345, true},
		{"3M followers", 3000000, true},
		{"2M", 2000000, true},
		{"1B", 1000000000, true},
		{"847", 847, true},
		{"12,345", 12345, true},
		{"no numbers here", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseApproxCount(tt.input)
			if !tt.found {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, *result)
		})
	}
}

func TestParseRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2d ago", now.AddDate(0, 0, -2)},
		{"3d", now.AddDate(0, 0, -3)},
		{"1w ago", now.AddDate(0, 0, -7)},
		{"2mo ago", now.AddDate(0, -2, 0)},
		{"1yr ago", now.AddDate(-1, 0, 0)},
		{"5h ago", now.Add(-5 * time.Hour)},
		{"30m ago", now.Add(-30 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseRelativeTime(tt.input, now)
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, *result)
		})
	}

	assert.Nil(t, ParseRelativeTime("yesterday", now))
	assert.Nil(t, ParseRelativeTime("", now))
}

func TestParseTimestampPrefersAbsolute(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	// An ISO timestamp is taken verbatim, never re-anchored at now
	result := ParseTimestamp("2023-11-02T08:30:00Z", now)
	require.NotNil(t, result)
	assert.Equal(t, time.Date(2023, 11, 2, 8, 30, 0, 0, time.UTC), result.UTC())

	// Date-only form
	result = ParseTimestamp("2023-11-02", now)
	require.NotNil(t, result)
	assert.Equal(t, 2023, result.Year())

	// Relative fallback
	result = ParseTimestamp("4d ago", now)
	require.NotNil(t, result)
	assert.Equal(t, now.AddDate(0, 0, -4), *result)
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips follower phrase",
			input:    "Acme Corp | 12,345 followers on LinkedIn | We build things.",
			expected: "Acme Corp | We build things.",
		},
		{
			name:     "strips platform suffix",
			input:    "We build rockets. | LinkedIn",
			expected: "We build rockets.",
		},
		{
			name:     "collapses whitespace",
			input:    "We   build\n\nthings.",
			expected: "We build things.",
		},
		{
			name:     "plain text untouched",
			input:    "A software company.",
			expected: "A software company.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanDescription(tt.input))
		})
	}
}

func TestPlausibilityFilters(t *testing.T) {
	assert.False(t, plausibleText("LinkedIn"))
	assert.False(t, plausibleText("Sign Up"))
	assert.False(t, plausibleText("12,345 followers"))
	assert.False(t, plausibleText("   "))
	assert.True(t, plausibleText("Aerospace component manufacturing"))

	// Short all-caps strings are navigation echoes, not names
	assert.False(t, plausibleName("ACME"))
	assert.True(t, plausibleName("Acme Corporation"))
}

func TestNameFromProfileURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.linkedin.com/in/rajesh-gupta-12345/", "Rajesh Gupta"},
		{"https://www.linkedin.com/in/jane-doe/", "Jane Doe"},
		{"/in/singleword/", "Singleword"},
		{"https://example.com/company/acme/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, NameFromProfileURL(tt.url))
		})
	}
}
