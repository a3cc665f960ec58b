package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liscraper/pkg/models"
)

const peopleFixture = `<html><body><main>
	<ul>
		<li class="org-people-profile-card__profile-card-spacing">
			<a href="/in/jane-doe-8814/"></a>
			<div class="org-people-profile-card__profile-title">Jane Doe</div>
			<div class="artdeco-entity-lockup__subtitle">VP of Anvils</div>
		</li>
		<li class="org-people-profile-card__profile-card-spacing">
			<a href="/in/jane-doe-8814/?ref=card"></a>
			<div class="org-people-profile-card__profile-title">Jane Doe</div>
		</li>
		<li class="org-people-profile-card__profile-card-spacing">
			<a href="/in/sam-smith-77/"></a>
		</li>
		<li class="org-people-profile-card__profile-card-spacing">
			<div class="org-people-profile-card__profile-title">No Link Person</div>
		</li>
	</ul>
</main></body></html>`

func TestExtractPeople(t *testing.T) {
	people := ExtractPeople(NewPageSnapshot("", "", peopleFixture), 0)

	// Duplicate profile URLs collapse; the card without a link is skipped
	require.Len(t, people, 2)

	assert.Equal(t, "Jane Doe", people[0].Name)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe-8814/", people[0].ProfileURL)
	require.NotNil(t, people[0].Headline)
	assert.Equal(t, "VP of Anvils", *people[0].Headline)

	// Name inferred from the slug when the card shows none
	assert.Equal(t, "Sam Smith", people[1].Name)
}

func TestExtractPeopleLimit(t *testing.T) {
	people := ExtractPeople(NewPageSnapshot("", "", peopleFixture), 1)
	assert.Len(t, people, 1)
}

func TestPeopleFromPosts(t *testing.T) {
	jane := "Jane Doe"
	janeURL := "https://www.linkedin.com/in/jane-doe-8814/"
	slugOnlyURL := "https://www.linkedin.com/in/rajesh-gupta-12345/"

	posts := []models.Post{
		{Content: "a", AuthorName: &jane, AuthorProfileURL: &janeURL},
		{Content: "b", AuthorName: &jane, AuthorProfileURL: &janeURL}, // duplicate author
		{Content: "c", AuthorProfileURL: &slugOnlyURL},                // no display name
		{Content: "d"}, // no author at all
	}

	people := PeopleFromPosts(posts, 0)
	require.Len(t, people, 2)

	assert.Equal(t, "Jane Doe", people[0].Name)
	assert.Equal(t, janeURL, people[0].ProfileURL)

	// Display name missing: inferred from the profile slug
	assert.Equal(t, "Rajesh Gupta", people[1].Name)
}

func TestEnrichPersonFillsOnlyMissingFields(t *testing.T) {
	html := `<html><body><main>
		<div class="text-body-medium break-words">Chief Anvil Officer</div>
		<span class="text-body-small inline t-black--light break-words">Springfield, US</span>
		<p>500+ connections</p>
	</main></body></html>`

	existing := "Existing Headline"
	person := models.Person{
		Name:       "Jane Doe",
		ProfileURL: "https://www.linkedin.com/in/jane-doe-8814/",
		Headline:   &existing,
	}

	EnrichPerson(&person, NewPageSnapshot("", "", html))

	// Already-present headline is kept
	require.NotNil(t, person.Headline)
	assert.Equal(t, "Existing Headline", *person.Headline)

	require.NotNil(t, person.Location)
	assert.Equal(t, "Springfield, US", *person.Location)
	require.NotNil(t, person.ConnectionCount)
	assert.Equal(t, 500, *person.ConnectionCount)
}
