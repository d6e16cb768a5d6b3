package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix      = "user:%d"
	feedFirstPageKey   = "feed:first"
	storyRailKeyPrefix = "stories:rail:%d"
)

const (
	UserTTL = 5 * time.Minute
	FeedTTL = 1 * time.Minute
	// StoryRailTTL is short because activeness is a wall-clock property.
	StoryRailTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// FeedFirstPageKey caches the anonymous first feed page only; any viewer
// context (isLiked) is layered on top per request.
func FeedFirstPageKey() string {
	return feedFirstPageKey
}

// StoryRailKey caches the first page of a viewer's story rail. The rail
// depends on who the viewer follows, so the key is per viewer. Mutations
// invalidate only the author's own rail; other viewers converge via TTL.
func StoryRailKey(viewerID uint) string {
	return fmt.Sprintf(storyRailKeyPrefix, viewerID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateFeed(ctx context.Context) {
	Invalidate(ctx, feedFirstPageKey)
}

func InvalidateStoryRail(ctx context.Context, viewerID uint) {
	Invalidate(ctx, StoryRailKey(viewerID))
}
