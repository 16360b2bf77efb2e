package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cached read views over the relation graph. Invalidation is coarse: any
// mutation of an edge evicts the whole view for the users it touches, rather
// than patching entries. The store remains the source of truth; these views
// are never consulted for authorization decisions.

const viewTTL = 10 * time.Minute

func FollowersKey(userID uint) string { return fmt.Sprintf("followers:%d", userID) }
func FollowingKey(userID uint) string { return fmt.Sprintf("following:%d", userID) }
func RequestsKey(userID uint) string  { return fmt.Sprintf("requests:%d", userID) }

// FeedKey caches one page of a user's feed; FeedPrefix scopes whole-feed eviction.
func FeedKey(userID uint, page, size int) string {
	return fmt.Sprintf("%s%d:%d", FeedPrefix(userID), page, size)
}

func FeedPrefix(userID uint) string { return fmt.Sprintf("feed:%d:", userID) }

// GetView unmarshals a cached view into out, reporting whether it was warm.
func GetView(ctx context.Context, key string, out interface{}) bool {
	raw, err := Get(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

func SetView(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = Set(ctx, key, data, viewTTL)
}

// InvalidatePendingRequests evicts the followee's pending-request view.
func InvalidatePendingRequests(ctx context.Context, followedID uint) {
	_ = Delete(ctx, RequestsKey(followedID))
}

// InvalidateRelationViews evicts the follower/following views of both ends of
// an edge, the followee's pending requests, and the follower's feed (the set
// of authors it fans out from may have changed).
func InvalidateRelationViews(ctx context.Context, followerID, followedID uint) {
	_ = Delete(ctx,
		FollowersKey(followedID),
		FollowingKey(followerID),
		RequestsKey(followedID),
	)
	_ = DeleteByPrefix(ctx, FeedPrefix(followerID))
}

// InvalidateFeeds evicts the cached feed pages of every given user. Used when
// a new review is published, against the author's accepted followers.
func InvalidateFeeds(ctx context.Context, userIDs []uint) {
	for _, id := range userIDs {
		_ = DeleteByPrefix(ctx, FeedPrefix(id))
	}
}
