package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"liscraper/pkg/models"
)

// People cards on the dedicated people sub-page
var peopleCardSelectors = []string{
	"li.org-people-profile-card__profile-card-spacing",
	"li.org-people-profiles-module__profile-item",
	"div.artdeco-entity-lockup",
}

var (
	personNameSelectors = []string{
		"div.org-people-profile-card__profile-title",
		"div.artdeco-entity-lockup__title",
	}
	personHeadlineSelectors = []string{
		"div.artdeco-entity-lockup__subtitle",
		"div.lt-line-clamp--multi-line",
	}
)

var (
	profileSlugRe   = regexp.MustCompile(`/in/([^/?#]+)`)
	connectionsRe   = regexp.MustCompile(`([\d][\d.,]*\+?)\s+connections`)
	digitsRe        = regexp.MustCompile(`\d`)
)

// ExtractPeople parses people cards from a people sub-page snapshot,
// deduplicated by profile URL, up to limit.
func ExtractPeople(snap *PageSnapshot, limit int) []models.Person {
	doc := snap.Document()
	var people []models.Person
	seen := make(map[string]bool)

	for _, selector := range peopleCardSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
			if limit > 0 && len(people) >= limit {
				return false
			}

			href, ok := card.Find(`a[href*="/in/"]`).First().Attr("href")
			if !ok {
				return true
			}
			profileURL := normalizeProfileURL(href)
			if profileURL == "" || seen[profileURL] {
				return true
			}

			person := models.Person{ProfileURL: profileURL}
			for _, nameSel := range personNameSelectors {
				if name := strings.TrimSpace(card.Find(nameSel).First().Text()); name != "" && plausibleText(name) {
					person.Name = name
					break
				}
			}
			if person.Name == "" {
				person.Name = NameFromProfileURL(profileURL)
			}
			if person.Name == "" {
				return true
			}
			for _, headlineSel := range personHeadlineSelectors {
				if headline := strings.TrimSpace(card.Find(headlineSel).First().Text()); headline != "" {
					person.Headline = &headline
					break
				}
			}

			seen[profileURL] = true
			people = append(people, person)
			return true
		})
		if len(people) > 0 {
			break
		}
	}

	return people
}

// PeopleFromPosts derives people from distinct post authors. Used when the
// people sub-page is itself behind an authwall: the feed already names the
// members who post.
func PeopleFromPosts(posts []models.Post, limit int) []models.Person {
	var people []models.Person
	seen := make(map[string]bool)

	for _, post := range posts {
		if limit > 0 && len(people) >= limit {
			break
		}
		if post.AuthorProfileURL == nil {
			continue
		}
		profileURL := normalizeProfileURL(*post.AuthorProfileURL)
		if profileURL == "" || seen[profileURL] {
			continue
		}

		name := ""
		if post.AuthorName != nil {
			name = strings.TrimSpace(*post.AuthorName)
		}
		if name == "" {
			name = NameFromProfileURL(profileURL)
		}
		if name == "" {
			continue
		}

		seen[profileURL] = true
		people = append(people, models.Person{Name: name, ProfileURL: profileURL})
	}

	return people
}

// EnrichPerson fills headline, location and connection count from the
// person's own profile page snapshot. Existing values are kept.
func EnrichPerson(person *models.Person, snap *PageSnapshot) {
	doc := snap.Document()

	if person.Headline == nil {
		if headline := strings.TrimSpace(doc.Find("div.text-body-medium.break-words").First().Text()); headline != "" && plausibleText(headline) {
			person.Headline = &headline
			person.CurrentPosition = &headline
		}
	}
	if person.Location == nil {
		if location := strings.TrimSpace(doc.Find("span.text-body-small.inline.t-black--light.break-words").First().Text()); location != "" && plausibleText(location) {
			person.Location = &location
		}
	}
	if person.ConnectionCount == nil {
		if m := connectionsRe.FindStringSubmatch(doc.Find("main").Text()); m != nil {
			person.ConnectionCount = ParseApproxCount(m[1])
		}
	}
}

// normalizeProfileURL strips query and fragment and resolves relative links
// so profile URLs dedup reliably.
func normalizeProfileURL(href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	m := profileSlugRe.FindStringSubmatch(parsed.Path)
	if m == nil {
		return ""
	}
	return "https://www.linkedin.com/in/" + m[1] + "/"
}

// NameFromProfileURL infers a display name from the profile-identifier slug:
// "rajesh-gupta-12345" becomes "Rajesh Gupta". Tokens containing digits are
// the platform's uniqueness suffix, not part of the name.
func NameFromProfileURL(profileURL string) string {
	m := profileSlugRe.FindStringSubmatch(profileURL)
	if m == nil {
		return ""
	}

	var words []string
	for _, token := range strings.Split(m[1], "-") {
		if token == "" || digitsRe.MatchString(token) {
			continue
		}
		words = append(words, strings.ToUpper(token[:1])+token[1:])
	}
	return strings.Join(words, " ")
}
