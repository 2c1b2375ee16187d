package interfaces

import (
	"context"

	"github.com/kitokazu/gymunyfu/internal/model"
)

// PostQuery 帖子查询条件，零值字段表示不过滤
type PostQuery struct {
	Category model.PostCategory
	Tag      model.PostTag
	Limit    int
}

// PostRepository 定义了帖子文档的存储操作接口。
// Create/Delete 在同一事务内调整作者的 postsCount。
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q PostQuery) ([]*model.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Post, error)
	// Subscribe 订阅帖子查询，每次变更推送完整结果集；返回取消函数
	Subscribe(ctx context.Context, q PostQuery, fn func([]*model.Post)) (func(), error)
	// SubscribeOne 订阅单个帖子，文档不存在时推送 nil
	SubscribeOne(ctx context.Context, id string, fn func(*model.Post)) (func(), error)
	SubscribeByUser(ctx context.Context, userID string, fn func([]*model.Post)) (func(), error)
	// UpdateAuthorSnapshots 把作者冗余快照字段的变更批量刷到该作者的所有帖子上
	UpdateAuthorSnapshots(ctx context.Context, userID string, fields map[string]interface{}) error
}

// CommentRepository 定义了评论子集合的存储操作接口。
// Create/Delete 在同一事务内调整父帖子的 commentsCount。
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, postID, commentID string) (*model.Comment, error)
	Delete(ctx context.Context, postID, commentID string) error
	ListByPost(ctx context.Context, postID string) ([]*model.Comment, error)
	Subscribe(ctx context.Context, postID string, fn func([]*model.Comment)) (func(), error)
	UpdateAuthorSnapshots(ctx context.Context, userID string, fields map[string]interface{}) error
}

// LikeRepository 定义了点赞关系的存储操作接口。
// Toggle 以 (主体, 查看者) 为键做存在性检查，在事务内完成翻转与计数调整，
// 返回翻转后的点赞状态。
type LikeRepository interface {
	TogglePostLike(ctx context.Context, postID, viewerID string) (bool, error)
	ToggleCommentLike(ctx context.Context, postID, commentID, viewerID string) (bool, error)
	IsPostLiked(ctx context.Context, postID, viewerID string) (bool, error)
	IsCommentLiked(ctx context.Context, postID, commentID, viewerID string) (bool, error)
}

// FollowRepository 定义了关注关系的存储操作接口。
// Toggle 在事务内同时调整双方的 followingCount/followersCount。
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	Following(ctx context.Context, userID string) ([]string, error)
	Followers(ctx context.Context, userID string) ([]string, error)
}
