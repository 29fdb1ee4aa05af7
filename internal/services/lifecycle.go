package services

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
)

// UnlimitedReposts is stored as the repost limit of paid posts. Paid posts
// bypass the limit check entirely; the value only keeps the column meaningful.
const UnlimitedReposts = 1<<31 - 1

// reportSourceStates lists the states a report may move out of to reach target.
func reportSourceStates(target models.ReportStatus) ([]models.ReportStatus, error) {
	switch target {
	case models.ReportApproved, models.ReportRejected:
		return []models.ReportStatus{models.ReportPending}, nil
	case models.ReportPending:
		return []models.ReportStatus{models.ReportApproved, models.ReportRejected}, nil
	}
	return nil, NewValidationError(fmt.Sprintf("invalid report status %q", target))
}

// postSourceStates lists the states a post may move out of to reach target.
// Expiration is not a state, so an expired post is still aprovado here.
func postSourceStates(target models.PostStatus) ([]models.PostStatus, error) {
	switch target {
	case models.PostApproved, models.PostRejected:
		return []models.PostStatus{models.PostPending}, nil
	case models.PostPending:
		return []models.PostStatus{models.PostApproved, models.PostRejected}, nil
	}
	return nil, NewValidationError(fmt.Sprintf("invalid post status %q", target))
}

// CanTransitionReport reports whether a moderator may move a report from one
// status to another.
func CanTransitionReport(from, to models.ReportStatus) bool {
	sources, err := reportSourceStates(to)
	if err != nil {
		return false
	}
	return containsStatus(sources, from)
}

// CanTransitionPost reports whether a moderator may move a post from one
// status to another.
func CanTransitionPost(from, to models.PostStatus) bool {
	sources, err := postSourceStates(to)
	if err != nil {
		return false
	}
	return containsStatus(sources, from)
}

// StatusAfterEdit is the status a post lands in once its owner changes it.
// Content changed after approval, and resubmissions after rejection, always
// go back through review.
func StatusAfterEdit(models.PostStatus) models.PostStatus {
	return models.PostPending
}

// IsActive reports whether a post is publicly visible at now.
func IsActive(post *models.ShowcasePost, now time.Time) bool {
	return post.Status == models.PostApproved &&
		post.ExpiresAt != nil &&
		now.Before(*post.ExpiresAt)
}

// IsExpired reports whether an approved post has run past its window.
func IsExpired(post *models.ShowcasePost, now time.Time) bool {
	return post.Status == models.PostApproved &&
		post.ExpiresAt != nil &&
		!now.Before(*post.ExpiresAt)
}

// CheckRepost returns nil when the post can be reposted at now, otherwise the
// reason it cannot.
func CheckRepost(post *models.ShowcasePost, now time.Time) error {
	if post.Status != models.PostApproved {
		return ErrNotApproved
	}
	if !IsExpired(post, now) {
		return ErrStillActive
	}
	if !post.Paid && post.RepostCount >= post.RepostLimit {
		return ErrRepostLimit
	}
	return nil
}

func containsStatus[S ~string](list []S, s S) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
