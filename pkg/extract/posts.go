package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"liscraper/pkg/models"
)

// Post containers across the target's markup generations
var postContainerSelectors = []string{
	"div.feed-shared-update-v2",
	"li.org-updates__item",
	"article[data-activity-urn]",
	"div[data-urn*='activity']",
}

var (
	postContentSelectors = []string{
		"div.update-components-text",
		"span.break-words",
		"div.feed-shared-inline-show-more-text",
	}
	postAuthorSelectors = []string{
		"span.update-components-actor__title",
		"span.update-components-actor__name",
		"span.feed-shared-actor__name",
	}
	postTimeSelectors = []string{
		"span.update-components-actor__sub-description",
		"span.feed-shared-actor__sub-description",
		"time",
	}
	commentContainerSelectors = []string{
		"article.comments-comment-item",
		"div.comments-comment-item",
	}
)

// PostSelector returns a combined selector matching any known post
// container, usable for counting loaded posts on a live page.
func PostSelector() string {
	return strings.Join(postContainerSelectors, ", ")
}

var (
	activityURNRe = regexp.MustCompile(`urn:li:activity:(\d+)`)
	commentsRe    = regexp.MustCompile(`([\d][\d.,]*[KkMm]?)\s+comments?`)
	repostsRe     = regexp.MustCompile(`([\d][\d.,]*[KkMm]?)\s+reposts?`)
)

// ExtractPosts parses all post containers out of a feed snapshot, up to
// limit. Relative post ages are anchored at now; posts with neither content
// nor a URL are dropped.
func ExtractPosts(snap *PageSnapshot, now time.Time, limit, maxComments int) []models.Post {
	doc := snap.Document()
	var posts []models.Post

	containers := selectPostContainers(doc)
	containers.EachWithBreak(func(_ int, container *goquery.Selection) bool {
		if limit > 0 && len(posts) >= limit {
			return false
		}

		post := parsePost(container, now, maxComments)
		if post.Valid() {
			posts = append(posts, post)
		}
		return true
	})

	return posts
}

// selectPostContainers returns the first container selector with any matches
func selectPostContainers(doc *goquery.Document) *goquery.Selection {
	for _, selector := range postContainerSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find(postContainerSelectors[0])
}

func parsePost(container *goquery.Selection, now time.Time, maxComments int) models.Post {
	var post models.Post

	for _, selector := range postContentSelectors {
		if text := strings.TrimSpace(container.Find(selector).First().Text()); text != "" {
			post.Content = text
			break
		}
	}

	// External id and URL come from the activity URN when present
	urn, _ := container.Attr("data-urn")
	if urn == "" {
		urn, _ = container.Attr("data-activity-urn")
	}
	if urn == "" {
		if href, ok := container.Find(`a[href*="/feed/update/"]`).First().Attr("href"); ok {
			urn = href
		}
	}
	if m := activityURNRe.FindStringSubmatch(urn); m != nil {
		post.ExternalPostID = &m[1]
		url := fmt.Sprintf("https://www.linkedin.com/feed/update/urn:li:activity:%s/", m[1])
		post.PostURL = &url
	}

	for _, selector := range postAuthorSelectors {
		if author := strings.TrimSpace(container.Find(selector).First().Text()); author != "" {
			// The actor block repeats the name for screen readers; keep the
			// first line only.
			author = strings.TrimSpace(strings.Split(author, "\n")[0])
			post.AuthorName = &author
			break
		}
	}
	if href, ok := container.Find(`a[href*="/in/"]`).First().Attr("href"); ok {
		normalized := normalizeProfileURL(href)
		if normalized != "" {
			post.AuthorProfileURL = &normalized
		}
	}

	post.CreatedAt = parsePostTime(container, now)
	post.Likes, post.CommentCount, post.Shares = parseEngagement(container)

	post.Comments = parseComments(container, now, maxComments)
	if post.CommentCount == 0 {
		post.CommentCount = len(post.Comments)
	}

	return post
}

// parsePostTime prefers an absolute datetime attribute over relative text
func parsePostTime(container *goquery.Selection, now time.Time) *time.Time {
	if datetime, ok := container.Find("time[datetime]").First().Attr("datetime"); ok {
		if t := ParseTimestamp(datetime, now); t != nil {
			return t
		}
	}
	for _, selector := range postTimeSelectors {
		if t := ParseRelativeTime(container.Find(selector).First().Text(), now); t != nil {
			return t
		}
	}
	return nil
}

func parseEngagement(container *goquery.Selection) (likes, comments, shares int) {
	reactionText := container.Find("span.social-details-social-counts__reactions-count").First().Text()
	if reactionText == "" {
		reactionText = container.Find(`button[aria-label*="reaction"]`).First().AttrOr("aria-label", "")
	}
	if count := ParseApproxCount(reactionText); count != nil {
		likes = *count
	}

	socialText := container.Find("ul.social-details-social-counts").Text()
	if socialText == "" {
		socialText = container.Text()
	}
	if m := commentsRe.FindStringSubmatch(socialText); m != nil {
		if count := ParseApproxCount(m[1]); count != nil {
			comments = *count
		}
	}
	if m := repostsRe.FindStringSubmatch(socialText); m != nil {
		if count := ParseApproxCount(m[1]); count != nil {
			shares = *count
		}
	}
	return likes, comments, shares
}

// parseComments reads the first visible page of comments under a post
func parseComments(container *goquery.Selection, now time.Time, maxComments int) []models.Comment {
	var comments []models.Comment

	for _, selector := range commentContainerSelectors {
		container.Find(selector).EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if maxComments > 0 && len(comments) >= maxComments {
				return false
			}

			var comment models.Comment
			comment.Content = strings.TrimSpace(item.Find("span.comments-comment-item__main-content, div.comments-comment-item-content-body").First().Text())
			if comment.Content == "" {
				return true
			}
			if author := strings.TrimSpace(item.Find("span.comments-post-meta__name-text, span.comments-comment-meta__description-title").First().Text()); author != "" {
				author = strings.TrimSpace(strings.Split(author, "\n")[0])
				comment.AuthorName = &author
			}
			if likeText := item.Find("span.comments-comment-social-bar__reactions-count").First().Text(); likeText != "" {
				if count := ParseApproxCount(likeText); count != nil {
					comment.Likes = *count
				}
			}
			comment.CreatedAt = ParseRelativeTime(item.Find("time").First().Text(), now)

			comments = append(comments, comment)
			return true
		})
		if len(comments) > 0 {
			break
		}
	}

	return comments
}
