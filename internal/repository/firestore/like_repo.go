package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type LikeRepository struct {
	client *firestore.Client
}

func NewLikeRepository(client *firestore.Client) *LikeRepository {
	return &LikeRepository{client}
}

// 点赞文档以查看者ID为键，存在即点赞——这保证了切换操作的幂等性
func (r *LikeRepository) postLikeRef(postID, viewerID string) *firestore.DocumentRef {
	return r.client.Collection(postsCollection).Doc(postID).
		Collection(likesCollection).Doc(viewerID)
}

func (r *LikeRepository) commentLikeRef(postID, commentID, viewerID string) *firestore.DocumentRef {
	return r.client.Collection(postsCollection).Doc(postID).
		Collection(commentsCollection).Doc(commentID).
		Collection(likesCollection).Doc(viewerID)
}

// toggle 在单个事务内完成存在性检查、点赞文档写删和主体计数调整，
// 返回翻转后的点赞状态
func (r *LikeRepository) toggle(ctx context.Context, likeRef, subjectRef *firestore.DocumentRef, viewerID string) (bool, error) {
	var liked bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(likeRef)
		exists := err == nil
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if exists {
			if err := tx.Delete(likeRef); err != nil {
				return err
			}
			liked = false
			return tx.Update(subjectRef, []firestore.Update{
				{Path: "likesCount", Value: firestore.Increment(-1)},
			})
		}

		if err := tx.Set(likeRef, encodeLike(&model.Like{
			UserID:    viewerID,
			CreatedAt: time.Now(),
		})); err != nil {
			return err
		}
		liked = true
		return tx.Update(subjectRef, []firestore.Update{
			{Path: "likesCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return false, errors.Wrap(errors.ErrStore, "切换点赞失败", err)
	}
	return liked, nil
}

func (r *LikeRepository) TogglePostLike(ctx context.Context, postID, viewerID string) (bool, error) {
	postRef := r.client.Collection(postsCollection).Doc(postID)
	return r.toggle(ctx, r.postLikeRef(postID, viewerID), postRef, viewerID)
}

func (r *LikeRepository) ToggleCommentLike(ctx context.Context, postID, commentID, viewerID string) (bool, error) {
	commentRef := r.client.Collection(postsCollection).Doc(postID).
		Collection(commentsCollection).Doc(commentID)
	return r.toggle(ctx, r.commentLikeRef(postID, commentID, viewerID), commentRef, viewerID)
}

func (r *LikeRepository) exists(ctx context.Context, ref *firestore.DocumentRef) (bool, error) {
	_, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, errors.Wrap(errors.ErrStore, "读取点赞状态失败", err)
	}
	return true, nil
}

func (r *LikeRepository) IsPostLiked(ctx context.Context, postID, viewerID string) (bool, error) {
	return r.exists(ctx, r.postLikeRef(postID, viewerID))
}

func (r *LikeRepository) IsCommentLiked(ctx context.Context, postID, commentID, viewerID string) (bool, error) {
	return r.exists(ctx, r.commentLikeRef(postID, commentID, viewerID))
}
