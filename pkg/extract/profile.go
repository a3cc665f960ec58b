package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ProfilePartial is one strategy's best-effort view of the organization
// profile. Nil means the strategy found nothing for that field.
type ProfilePartial struct {
	Name              *string
	Description       *string
	Industry          *string
	Location          *string
	Website           *string
	LogoURL           *string
	HeadCount         *string
	CompanyType       *string
	ExternalNumericID *string
	FoundedYear       *int
	FollowerCount     *int
	Specialties       []string
}

// ProfileStrategy is one independent way of reading the profile off a page
type ProfileStrategy interface {
	Name() string
	Attempt(snap *PageSnapshot) ProfilePartial
}

// ProfileStrategies returns the fixed strategy order. Earlier strategies are
// less likely to pick up stale boilerplate, so their values win the merge.
func ProfileStrategies() []ProfileStrategy {
	return []ProfileStrategy{
		structuredDataStrategy{},
		pageStateStrategy{},
		domStrategy{},
		networkStrategy{},
		rawRegexStrategy{},
	}
}

// ExtractProfile runs all strategies against the snapshot and merges their
// partials first-non-null in strategy order.
func ExtractProfile(snap *PageSnapshot) ProfilePartial {
	parts := make([]ProfilePartial, 0, 5)
	for _, strategy := range ProfileStrategies() {
		parts = append(parts, strategy.Attempt(snap))
	}
	return MergeProfileParts(parts)
}

// MergeProfileParts merges ordered partials: for each field the first
// non-null value wins.
func MergeProfileParts(parts []ProfilePartial) ProfilePartial {
	var merged ProfilePartial
	for _, p := range parts {
		if merged.Name == nil {
			merged.Name = p.Name
		}
		if merged.Description == nil {
			merged.Description = p.Description
		}
		if merged.Industry == nil {
			merged.Industry = p.Industry
		}
		if merged.Location == nil {
			merged.Location = p.Location
		}
		if merged.Website == nil {
			merged.Website = p.Website
		}
		if merged.LogoURL == nil {
			merged.LogoURL = p.LogoURL
		}
		if merged.HeadCount == nil {
			merged.HeadCount = p.HeadCount
		}
		if merged.CompanyType == nil {
			merged.CompanyType = p.CompanyType
		}
		if merged.ExternalNumericID == nil {
			merged.ExternalNumericID = p.ExternalNumericID
		}
		if merged.FoundedYear == nil {
			merged.FoundedYear = p.FoundedYear
		}
		if merged.FollowerCount == nil {
			merged.FollowerCount = p.FollowerCount
		}
		if merged.Specialties == nil {
			merged.Specialties = p.Specialties
		}
	}
	return merged
}

// structuredDataStrategy reads schema.org Organization blocks embedded as
// JSON-LD script tags.
type structuredDataStrategy struct{}

func (structuredDataStrategy) Name() string { return "structured-data" }

func (structuredDataStrategy) Attempt(snap *PageSnapshot) ProfilePartial {
	var partial ProfilePartial

	snap.Document().Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var node interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &node); err != nil {
			return true
		}
		org := findOrganization(node, 0)
		if org == nil {
			return true
		}

		partial.Name = asString(org["name"])
		if desc := asString(org["description"]); desc != nil {
			cleaned := CleanDescription(*desc)
			if cleaned != "" {
				partial.Description = &cleaned
			}
		}
		partial.Website = asString(org["url"])
		partial.LogoURL = logoURL(org["logo"])
		partial.Location = addressText(org["address"])
		if founding := asString(org["foundingDate"]); founding != nil {
			partial.FoundedYear = yearOf(*founding)
		}
		if employees, ok := org["numberOfEmployees"].(map[string]interface{}); ok {
			if value := asInt(employees["value"]); value != nil {
				count := fmt.Sprintf("%d", *value)
				partial.HeadCount = &count
			}
		}
		return false
	})

	return partial
}

// findOrganization walks a JSON-LD tree for the first Organization node
func findOrganization(node interface{}, depth int) map[string]interface{} {
	if depth > maxSearchDepth {
		return nil
	}
	switch v := node.(type) {
	case map[string]interface{}:
		if t, ok := v["@type"].(string); ok && strings.EqualFold(t, "Organization") {
			return v
		}
		for _, child := range v {
			if org := findOrganization(child, depth+1); org != nil {
				return org
			}
		}
	case []interface{}:
		for _, child := range v {
			if org := findOrganization(child, depth+1); org != nil {
				return org
			}
		}
	}
	return nil
}

func logoURL(v interface{}) *string {
	switch logo := v.(type) {
	case string:
		return asString(logo)
	case map[string]interface{}:
		if url := asString(logo["url"]); url != nil {
			return url
		}
		return asString(logo["contentUrl"])
	}
	return nil
}

func addressText(v interface{}) *string {
	addr, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	var parts []string
	for _, key := range []string{"addressLocality", "addressRegion", "addressCountry"} {
		if part := asString(addr[key]); part != nil {
			parts = append(parts, *part)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, ", ")
	return &joined
}

func yearOf(s string) *int {
	match := regexp.MustCompile(`\d{4}`).FindString(s)
	if match == "" {
		return nil
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &year
}

// pageStateStrategy reads the client-side state objects the page exposes
// (captured by the page driver before the snapshot was taken).
type pageStateStrategy struct{}

func (pageStateStrategy) Name() string { return "in-page-state" }

func (pageStateStrategy) Attempt(snap *PageSnapshot) ProfilePartial {
	var parts []ProfilePartial
	for _, state := range snap.State {
		parts = append(parts, profileFromJSON(state))
	}
	return MergeProfileParts(parts)
}

// networkStrategy searches JSON responses captured during page load
type networkStrategy struct{}

func (networkStrategy) Name() string { return "network-capture" }

func (networkStrategy) Attempt(snap *PageSnapshot) ProfilePartial {
	var parts []ProfilePartial
	for _, capture := range snap.APICaptures() {
		var node interface{}
		if err := json.Unmarshal(capture.Body, &node); err != nil {
			continue
		}
		parts = append(parts, profileFromJSON(node))
	}
	return MergeProfileParts(parts)
}

// profileFromJSON pulls profile fields out of an arbitrary JSON tree by
// known field names. Shared by the in-page-state and network strategies.
func profileFromJSON(node interface{}) ProfilePartial {
	var partial ProfilePartial

	partial.Name = asString(searchJSON(node, []string{"name", "localizedName"}, 0))
	if desc := asString(searchJSON(node, []string{"description", "tagline"}, 0)); desc != nil {
		cleaned := CleanDescription(*desc)
		if cleaned != "" {
			partial.Description = &cleaned
		}
	}
	partial.Industry = localizedText(searchJSON(node, []string{"industry", "industryV2"}, 0))
	partial.CompanyType = localizedText(searchJSON(node, []string{"companyType"}, 0))
	partial.Website = asString(searchJSON(node, []string{"companyPageUrl", "websiteUrl"}, 0))
	partial.FollowerCount = asInt(searchJSON(node, []string{"followerCount"}, 0))

	if hq, ok := searchJSON(node, []string{"headquarter", "headquarters"}, 0).(map[string]interface{}); ok {
		var parts []string
		for _, key := range []string{"city", "geographicArea", "country"} {
			if part := asString(hq[key]); part != nil {
				parts = append(parts, *part)
			}
		}
		if len(parts) > 0 {
			joined := strings.Join(parts, ", ")
			partial.Location = &joined
		}
	}

	if founded, ok := searchJSON(node, []string{"foundedOn"}, 0).(map[string]interface{}); ok {
		partial.FoundedYear = asInt(founded["year"])
	}

	if staff, ok := searchJSON(node, []string{"staffCountRange"}, 0).(map[string]interface{}); ok {
		if start := asInt(staff["start"]); start != nil {
			headCount := fmt.Sprintf("%d", *start)
			if end := asInt(staff["end"]); end != nil {
				headCount = fmt.Sprintf("%d-%d", *start, *end)
			} else {
				headCount = fmt.Sprintf("%d+", *start)
			}
			partial.HeadCount = &headCount
		}
	}

	if urn := asString(searchJSON(node, []string{"entityUrn"}, 0)); urn != nil {
		if id := numericIDRe.FindStringSubmatch(*urn); id != nil {
			partial.ExternalNumericID = &id[1]
		}
	}

	if specialties, ok := searchJSON(node, []string{"specialities", "specialties"}, 0).([]interface{}); ok {
		for _, raw := range specialties {
			if s := asString(raw); s != nil {
				partial.Specialties = append(partial.Specialties, *s)
			}
		}
	}

	return partial
}

var numericIDRe = regexp.MustCompile(`urn:li:(?:fsd_)?company:(\d+)`)

// localizedText handles fields the target serves either as a plain string
// or as an object with a localized name.
func localizedText(v interface{}) *string {
	switch t := v.(type) {
	case string:
		return asString(t)
	case map[string]interface{}:
		if name := asString(t["localizedName"]); name != nil {
			return name
		}
		return asString(t["name"])
	}
	return nil
}
