package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type PostRepository struct {
	client *firestore.Client
}

func NewPostRepository(client *firestore.Client) *PostRepository {
	return &PostRepository{client}
}

func (r *PostRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(postsCollection).Doc(id)
}

// Create 写入帖子文档并在同一事务内把作者的 postsCount 加一
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	ref := r.client.Collection(postsCollection).NewDoc()
	post.ID = ref.ID
	authorRef := r.client.Collection(usersCollection).Doc(post.UserID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(ref, encodePost(post)); err != nil {
			return err
		}
		return tx.Update(authorRef, []firestore.Update{
			{Path: "postsCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return errors.Wrap(errors.ErrStore, "创建帖子失败", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
		}
		return nil, errors.Wrap(errors.ErrStore, "读取帖子失败", err)
	}
	return decodePost(snap.Ref.ID, snap.Data()), nil
}

func (r *PostRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	fsUpdates := make([]firestore.Update, 0, len(updates))
	for path, value := range updates {
		fsUpdates = append(fsUpdates, firestore.Update{Path: path, Value: value})
	}
	if _, err := r.doc(id).Update(ctx, fsUpdates); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.New(errors.ErrPostNotFound, "帖子不存在")
		}
		return errors.Wrap(errors.ErrStore, "更新帖子失败", err)
	}
	return nil
}

// Delete 删除帖子并在同一事务内把作者的 postsCount 减一
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	ref := r.doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		userID, _ := snap.Data()["userId"].(string)
		if err := tx.Delete(ref); err != nil {
			return err
		}
		if userID == "" {
			return nil
		}
		authorRef := r.client.Collection(usersCollection).Doc(userID)
		return tx.Update(authorRef, []firestore.Update{
			{Path: "postsCount", Value: firestore.Increment(-1)},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.New(errors.ErrPostNotFound, "帖子不存在")
		}
		return errors.Wrap(errors.ErrStore, "删除帖子失败", err)
	}
	return nil
}

// buildQuery 组装帖子查询：创建时间倒序，可按分类或标签过滤
func (r *PostRepository) buildQuery(q interfaces.PostQuery) firestore.Query {
	query := r.client.Collection(postsCollection).
		OrderBy("createdAt", firestore.Desc)
	if q.Category != "" {
		query = query.Where("category", "==", string(q.Category))
	}
	if q.Tag != "" {
		query = query.Where("tags", "array-contains", string(q.Tag))
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

func (r *PostRepository) List(ctx context.Context, q interfaces.PostQuery) ([]*model.Post, error) {
	return collectPosts(r.buildQuery(q).Documents(ctx))
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]*model.Post, error) {
	query := r.client.Collection(postsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return collectPosts(query.Documents(ctx))
}

func collectPosts(iter *firestore.DocumentIterator) ([]*model.Post, error) {
	defer iter.Stop()
	posts := make([]*model.Post, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrStore, "查询帖子列表失败", err)
		}
		posts = append(posts, decodePost(snap.Ref.ID, snap.Data()))
	}
	return posts, nil
}

// Subscribe 订阅帖子查询，每次变更推送完整结果集
func (r *PostRepository) Subscribe(ctx context.Context, q interfaces.PostQuery, fn func([]*model.Post)) (func(), error) {
	return r.watchQuery(ctx, r.buildQuery(q), fn)
}

// SubscribeByUser 订阅指定用户的帖子
func (r *PostRepository) SubscribeByUser(ctx context.Context, userID string, fn func([]*model.Post)) (func(), error) {
	query := r.client.Collection(postsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return r.watchQuery(ctx, query, fn)
}

func (r *PostRepository) watchQuery(ctx context.Context, query firestore.Query, fn func([]*model.Post)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	guard := &emitGuard{}
	snapIter := query.Snapshots(ctx)

	go func() {
		defer snapIter.Stop()
		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					util.Logger.Error("帖子订阅中断", zap.Error(err))
				}
				return
			}
			posts, err := collectPosts(snap.Documents)
			if err != nil {
				util.Logger.Error("解析帖子快照失败", zap.Error(err))
				continue
			}
			guard.emit(func() { fn(posts) })
		}
	}()

	return func() {
		guard.stop()
		cancel()
	}, nil
}

// SubscribeOne 订阅单个帖子，文档不存在时推送 nil
func (r *PostRepository) SubscribeOne(ctx context.Context, id string, fn func(*model.Post)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	guard := &emitGuard{}
	snapIter := r.doc(id).Snapshots(ctx)

	go func() {
		defer snapIter.Stop()
		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					util.Logger.Error("帖子订阅中断", zap.Error(err), zap.String("post_id", id))
				}
				return
			}
			if !snap.Exists() {
				guard.emit(func() { fn(nil) })
				continue
			}
			post := decodePost(snap.Ref.ID, snap.Data())
			guard.emit(func() { fn(post) })
		}
	}()

	return func() {
		guard.stop()
		cancel()
	}, nil
}

// UpdateAuthorSnapshots 把作者快照字段的变更批量刷到该作者的所有帖子上
func (r *PostRepository) UpdateAuthorSnapshots(ctx context.Context, userID string, fields map[string]interface{}) error {
	iter := r.client.Collection(postsCollection).
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
			return errors.Wrap(errors.ErrStore, "查询作者帖子失败", err)
		}
		batch.Update(snap.Ref, updates)
		count++
	}
	if count == 0 {
		return nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return errors.Wrap(errors.ErrStore, "刷新作者快照失败", err)
	}
	return nil
}
