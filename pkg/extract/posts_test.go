package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedFixture = `<html><body><main>
	<div class="feed-shared-update-v2" data-urn="urn:li:activity:7001">
		<span class="update-components-actor__title">Jane Doe</span>
		<a href="https://www.linkedin.com/in/jane-doe-8814/?miniProfile=x">Jane</a>
		<span class="update-components-actor__sub-description">3d ago</span>
		<div class="update-components-text">We shipped a new anvil line.</div>
		<ul class="social-details-social-counts">
			<li><span class="social-details-social-counts__reactions-count">1.2K</span></li>
			<li>34 comments</li>
			<li>5 reposts</li>
		</ul>
		<article class="comments-comment-item">
			<span class="comments-post-meta__name-text">Sam Smith</span>
			<span class="comments-comment-item__main-content">Congrats to the team!</span>
			<span class="comments-comment-social-bar__reactions-count">12</span>
		</article>
	</div>
	<div class="feed-shared-update-v2" data-urn="urn:li:activity:7002">
		<div class="update-components-text">Hiring across all sites.</div>
	</div>
	<div class="feed-shared-update-v2">
		<!-- neither content nor URL: dropped -->
	</div>
</main></body></html>`

func TestExtractPosts(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := NewPageSnapshot("https://www.linkedin.com/company/acme/posts/", "Acme: Posts", feedFixture)

	posts := ExtractPosts(snap, now, 0, 10)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "We shipped a new anvil line.", first.Content)
	require.NotNil(t, first.ExternalPostID)
	assert.Equal(t, "7001", *first.ExternalPostID)
	require.NotNil(t, first.PostURL)
	assert.Contains(t, *first.PostURL, "urn:li:activity:7001")
	require.NotNil(t, first.AuthorName)
	assert.Equal(t, "Jane Doe", *first.AuthorName)
	require.NotNil(t, first.AuthorProfileURL)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe-8814/", *first.AuthorProfileURL)
	require.NotNil(t, first.CreatedAt)
	assert.Equal(t, now.AddDate(0, 0, -3), *first.CreatedAt)
	assert.Equal(t, 1200, first.Likes)
	assert.Equal(t, 34, first.CommentCount)
	assert.Equal(t, 5, first.Shares)

	require.Len(t, first.Comments, 1)
	comment := first.Comments[0]
	assert.Equal(t, "Congrats to the team!", comment.Content)
	require.NotNil(t, comment.AuthorName)
	assert.Equal(t, "Sam Smith", *comment.AuthorName)
	assert.Equal(t, 12, comment.Likes)

	// Second post has no author or engagement, only content
	second := posts[1]
	assert.Equal(t, "Hiring across all sites.", second.Content)
	assert.Nil(t, second.AuthorName)
	assert.Equal(t, 0, second.Likes)
}

func TestExtractPostsLimit(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := NewPageSnapshot("", "", feedFixture)

	posts := ExtractPosts(snap, now, 1, 10)
	assert.Len(t, posts, 1)
}

func TestExtractPostsAbsoluteTimePrecedence(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	html := `<html><body>
		<div class="feed-shared-update-v2" data-urn="urn:li:activity:7003">
			<time datetime="2024-01-10T09:00:00Z">5mo ago</time>
			<span class="update-components-actor__sub-description">5mo ago</span>
			<div class="update-components-text">Old post.</div>
		</div>
	</body></html>`

	posts := ExtractPosts(NewPageSnapshot("", "", html), now, 0, 0)
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].CreatedAt)
	assert.Equal(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), posts[0].CreatedAt.UTC())
}

func TestExtractPostsEmptyPage(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	posts := ExtractPosts(NewPageSnapshot("", "", "<html><body></body></html>"), now, 0, 0)
	assert.Empty(t, posts)
}
