package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Ordered selector candidates per field; first non-empty plausible match wins.
// The target ships several markup generations, so each list spans them.
var (
	nameSelectors = []string{
		"h1.org-top-card-summary__title",
		"h1.top-card-layout__title",
		"main h1",
		"h1",
	}
	descriptionSelectors = []string{
		"p.org-top-card-summary__tagline",
		".org-about-us-organization-description__text",
		"p.about-us__description",
		"section.core-section-container p",
	}
	logoSelectors = []string{
		"img.org-top-card-primary-content__logo",
		"div.org-top-card-primary-content__logo-container img",
		"img.top-card-layout__entity-image",
	}
	followerSelectors = []string{
		".org-top-card-summary-info-list__info-item",
		".top-card-layout__first-subline",
		"main section p",
	}
)

// aboutLabels maps the definition-list labels on the about section to fields
var aboutLabels = map[string]string{
	"industry":     "industry",
	"company size": "head_count",
	"headquarters": "location",
	"type":         "company_type",
	"founded":      "founded",
	"specialties":  "specialties",
	"website":      "website",
}

// domStrategy applies ordered CSS-selector candidates per field with
// plausibility filtering.
type domStrategy struct{}

func (domStrategy) Name() string { return "dom" }

func (domStrategy) Attempt(snap *PageSnapshot) ProfilePartial {
	var partial ProfilePartial
	doc := snap.Document()

	if name := firstMatch(doc, nameSelectors, plausibleName); name != nil {
		partial.Name = name
	}

	if desc := firstMatch(doc, descriptionSelectors, plausibleText); desc != nil {
		cleaned := CleanDescription(*desc)
		if cleaned != "" {
			partial.Description = &cleaned
		}
	} else if meta, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		cleaned := CleanDescription(meta)
		if cleaned != "" && plausibleText(cleaned) {
			partial.Description = &cleaned
		}
	}

	for _, selector := range logoSelectors {
		if src, ok := doc.Find(selector).First().Attr("src"); ok && src != "" {
			partial.LogoURL = &src
			break
		}
	}

	// Follower count appears as "12,345 followers" in the summary line
	for _, selector := range followerSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := sel.Text()
			if !strings.Contains(strings.ToLower(text), "followers") {
				return true
			}
			if count := ParseApproxCount(text); count != nil {
				partial.FollowerCount = count
				return false
			}
			return true
		})
		if partial.FollowerCount != nil {
			break
		}
	}

	// The about section renders as a definition list of labeled values
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(dt.Text()))
		field, ok := aboutLabels[label]
		if !ok {
			return
		}
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		value := strings.TrimSpace(dd.First().Text())
		if value == "" || !plausibleText(value) {
			return
		}

		switch field {
		case "industry":
			if partial.Industry == nil {
				partial.Industry = &value
			}
		case "head_count":
			if partial.HeadCount == nil {
				count := strings.TrimSpace(strings.Split(value, "\n")[0])
				partial.HeadCount = &count
			}
		case "location":
			if partial.Location == nil {
				partial.Location = &value
			}
		case "company_type":
			if partial.CompanyType == nil {
				partial.CompanyType = &value
			}
		case "founded":
			if partial.FoundedYear == nil {
				partial.FoundedYear = yearOf(value)
			}
		case "specialties":
			if partial.Specialties == nil {
				for _, item := range strings.Split(value, ",") {
					if item = strings.TrimSpace(item); item != "" {
						partial.Specialties = append(partial.Specialties, item)
					}
				}
			}
		case "website":
			if partial.Website == nil {
				if href, ok := dd.Find("a").First().Attr("href"); ok && href != "" {
					partial.Website = &href
				} else {
					partial.Website = &value
				}
			}
		}
	})

	return partial
}

// firstMatch returns the first selector candidate whose text passes the
// plausibility filter.
func firstMatch(doc *goquery.Document, selectors []string, plausible func(string) bool) *string {
	for _, selector := range selectors {
		var found *string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := strings.TrimSpace(sel.Text())
			if text == "" || !plausible(text) {
				return true
			}
			found = &text
			return false
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// Raw-markup fragments shaped like `"field": "value"`, the last resort when
// every structured source came up empty.
var (
	rawNameRe        = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
	rawDescriptionRe = regexp.MustCompile(`"description"\s*:\s*"([^"]+)"`)
	rawIndustryRe    = regexp.MustCompile(`"industry"\s*:\s*"([^"]+)"`)
	rawWebsiteRe     = regexp.MustCompile(`"companyPageUrl"\s*:\s*"([^"]+)"`)
	rawFollowersRe   = regexp.MustCompile(`"followerCount"\s*:\s*(\d+)`)
)

// rawRegexStrategy scans the full markup for JSON-shaped fragments. Because
// the merge is first-non-null in strategy order, its values only land on
// fields every other strategy left null.
type rawRegexStrategy struct{}

func (rawRegexStrategy) Name() string { return "raw-regex" }

func (rawRegexStrategy) Attempt(snap *PageSnapshot) ProfilePartial {
	var partial ProfilePartial

	if m := rawNameRe.FindStringSubmatch(snap.HTML); m != nil && plausibleName(m[1]) {
		partial.Name = &m[1]
	}
	if m := rawDescriptionRe.FindStringSubmatch(snap.HTML); m != nil {
		cleaned := CleanDescription(m[1])
		if cleaned != "" && plausibleText(cleaned) {
			partial.Description = &cleaned
		}
	}
	if m := rawIndustryRe.FindStringSubmatch(snap.HTML); m != nil && plausibleText(m[1]) {
		partial.Industry = &m[1]
	}
	if m := rawWebsiteRe.FindStringSubmatch(snap.HTML); m != nil {
		partial.Website = &m[1]
	}
	if m := rawFollowersRe.FindStringSubmatch(snap.HTML); m != nil {
		partial.FollowerCount = ParseApproxCount(m[1])
	}
	if m := numericIDRe.FindStringSubmatch(snap.HTML); m != nil {
		partial.ExternalNumericID = &m[1]
	}

	return partial
}
