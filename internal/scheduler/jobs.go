package scheduler

import "github.com/google/uuid"

const (
	// JobTypeNewsPublish flips a scheduled news article to published when its
	// publish time arrives.
	JobTypeNewsPublish = "editorial.news.publish"
)

// NewsPublishJobKey builds the idempotency key for an article's publish job.
// Rescheduling enqueues under the same key, replacing the previous entry.
func NewsPublishJobKey(id uuid.UUID) string {
	return "news:" + id.String() + ":publish"
}
