package session

import "strings"

// The target serves an interstitial demanding login in place of requested
// content. Three independent signals identify it; any one suffices.

var authwallURLTokens = []string{
	"/login",
	"/authwall",
	"/checkpoint",
	"/challenge",
	"/signup",
	"/join",
}

var authwallTitles = []string{
	"join linkedin",
	"sign up",
	"sign in",
	"log in",
}

var authwallBodyPhrases = []string{
	"sign in to continue",
	"join linkedin",
	"join now to see",
}

// IsAuthwall reports whether a navigation landed on the login interstitial
// instead of the requested content.
func IsAuthwall(url, title, body string) bool {
	lowerURL := strings.ToLower(url)
	for _, token := range authwallURLTokens {
		if strings.Contains(lowerURL, token) {
			return true
		}
	}

	lowerTitle := strings.ToLower(title)
	for _, phrase := range authwallTitles {
		if strings.Contains(lowerTitle, phrase) {
			return true
		}
	}

	lowerBody := strings.ToLower(body)
	for _, phrase := range authwallBodyPhrases {
		if strings.Contains(lowerBody, phrase) {
			return true
		}
	}

	return false
}

// IsChallenge reports whether the current URL is the out-of-band
// verification surface shown after login.
func IsChallenge(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, "/checkpoint") || strings.Contains(lower, "/challenge")
}
