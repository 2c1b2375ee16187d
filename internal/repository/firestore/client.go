package firestore

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// 集合布局：users/{userId}，posts/{postId}，
// posts/{postId}/comments/{commentId}，posts/{postId}/likes/{viewerId}，
// posts/{postId}/comments/{commentId}/likes/{viewerId}，
// follows/{followerId_followingId}
const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
	likesCollection    = "likes"
	followsCollection  = "follows"
)

// NewClient 创建 Firestore 客户端
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	if credentialsFile != "" {
		return firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	}
	return firestore.NewClient(ctx, projectID)
}

// emitGuard 保证订阅取消后不再向回调推送
type emitGuard struct {
	mu      sync.Mutex
	stopped bool
}

func (g *emitGuard) emit(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.stopped {
		fn()
	}
}

func (g *emitGuard) stop() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()
}
