package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CommentRepository struct {
	client *firestore.Client
}

func NewCommentRepository(client *firestore.Client) *CommentRepository {
	return &CommentRepository{client}
}

func (r *CommentRepository) collection(postID string) *firestore.CollectionRef {
	return r.client.Collection(postsCollection).Doc(postID).Collection(commentsCollection)
}

// Create 写入评论并在同一事务内把父帖子的 commentsCount 加一
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	ref := r.collection(comment.PostID).NewDoc()
	comment.ID = ref.ID
	postRef := r.client.Collection(postsCollection).Doc(comment.PostID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// 事务要求先读后写
		if _, err := tx.Get(postRef); err != nil {
			return err
		}
		if err := tx.Set(ref, encodeComment(comment)); err != nil {
			return err
		}
		return tx.Update(postRef, []firestore.Update{
			{Path: "commentsCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.New(errors.ErrPostNotFound, "帖子不存在")
		}
		return errors.Wrap(errors.ErrStore, "创建评论失败", err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, postID, commentID string) (*model.Comment, error) {
	snap, err := r.collection(postID).Doc(commentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.New(errors.ErrCommentNotFound, "评论不存在")
		}
		return nil, errors.Wrap(errors.ErrStore, "读取评论失败", err)
	}
	return decodeComment(snap.Ref.ID, snap.Data()), nil
}

// Delete 删除评论并在同一事务内把父帖子的 commentsCount 减一
func (r *CommentRepository) Delete(ctx context.Context, postID, commentID string) error {
	ref := r.collection(postID).Doc(commentID)
	postRef := r.client.Collection(postsCollection).Doc(postID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		return tx.Update(postRef, []firestore.Update{
			{Path: "commentsCount", Value: firestore.Increment(-1)},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.New(errors.ErrCommentNotFound, "评论不存在")
		}
		return errors.Wrap(errors.ErrStore, "删除评论失败", err)
	}
	return nil
}

// ListByPost 按创建时间正序返回帖子的全部评论
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	iter := r.collection(postID).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	return collectComments(iter)
}

func collectComments(iter *firestore.DocumentIterator) ([]*model.Comment, error) {
	defer iter.Stop()
	comments := make([]*model.Comment, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrStore, "查询评论列表失败", err)
		}
		comments = append(comments, decodeComment(snap.Ref.ID, snap.Data()))
	}
	return comments, nil
}

// Subscribe 订阅帖子的评论，每次变更推送完整结果集（创建时间正序）
func (r *CommentRepository) Subscribe(ctx context.Context, postID string, fn func([]*model.Comment)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	guard := &emitGuard{}
	query := r.collection(postID).OrderBy("createdAt", firestore.Asc)
	snapIter := query.Snapshots(ctx)

	go func() {
		defer snapIter.Stop()
		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					util.Logger.Error("评论订阅中断", zap.Error(err), zap.String("post_id", postID))
				}
				return
			}
			comments, err := collectComments(snap.Documents)
			if err != nil {
				util.Logger.Error("解析评论快照失败", zap.Error(err))
				continue
			}
			guard.emit(func() { fn(comments) })
		}
	}()

	return func() {
		guard.stop()
		cancel()
	}, nil
}

// UpdateAuthorSnapshots 把作者快照字段的变更刷到该作者的所有评论上（跨帖子）
func (r *CommentRepository) UpdateAuthorSnapshots(ctx context.Context, userID string, fields map[string]interface{}) error {
	iter := r.client.CollectionGroup(commentsCollection).
		Where("userId", "==", userID).
		Documents(ctx)
	defer iter.Stop()

	updates := make([]firestore.Update, 0, len(fields))
	for key, value := range fields {
		updates = append(updates, firestore.Update{Path: "user." + key, Value: value})
	}

	batch := r.client.Batch()
	count := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Wrap(errors.ErrStore, "查询作者评论失败", err)
		}
		batch.Update(snap.Ref, updates)
		count++
	}
	if count == 0 {
		return nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return errors.Wrap(errors.ErrStore, "刷新评论作者快照失败", err)
	}
	return nil
}
