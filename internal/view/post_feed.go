package view

import (
	"context"
	"sync"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

// PostSubscriber 订阅帖子查询的能力
type PostSubscriber interface {
	Subscribe(ctx context.Context, q interfaces.PostQuery, fn func([]*model.Post)) (func(), error)
}

// PostLiker 帖子点赞的能力
type PostLiker interface {
	TogglePostLike(ctx context.Context, postID, viewerID string) (bool, error)
	PostLikeStatuses(ctx context.Context, postIDs []string, viewerID string) (map[string]bool, error)
}

// PostFeed 把三个数据源合并成查看者看到的帖子流：
// 订阅推送的权威结果集、单独拉取的点赞状态、以及在途的乐观覆盖。
// 点赞动作先本地翻转立即生效，变更失败时回滚并上报。
type PostFeed struct {
	likes    PostLiker
	viewerID string
	onUpdate func([]*model.Post)
	onError  func(error)

	mu       sync.Mutex
	posts    []*model.Post
	liked    map[string]bool
	inflight map[string]bool
	cancel   func()
}

func NewPostFeed(likes PostLiker, viewerID string, onUpdate func([]*model.Post), onError func(error)) *PostFeed {
	return &PostFeed{
		likes:    likes,
		viewerID: viewerID,
		onUpdate: onUpdate,
		onError:  onError,
		liked:    make(map[string]bool),
		inflight: make(map[string]bool),
	}
}

// Start 打开订阅。每次推送都整体替换本地结果集，随后刷新点赞状态。
func (f *PostFeed) Start(ctx context.Context, posts PostSubscriber, q interfaces.PostQuery) error {
	cancel, err := posts.Subscribe(ctx, q, func(emitted []*model.Post) {
		f.applyEmission(ctx, emitted)
	})
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()
	return nil
}

func (f *PostFeed) applyEmission(ctx context.Context, emitted []*model.Post) {
	// 权威数据覆盖本地状态
	f.mu.Lock()
	f.posts = emitted
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	f.notify(snapshot)

	if f.viewerID == "" || len(emitted) == 0 {
		return
	}

	ids := make([]string, 0, len(emitted))
	for _, post := range emitted {
		ids = append(ids, post.ID)
	}
	statuses, err := f.likes.PostLikeStatuses(ctx, ids, f.viewerID)
	if err != nil {
		util.Logger.Error("拉取点赞状态失败", zap.Error(err))
		return
	}

	f.mu.Lock()
	f.liked = statuses
	snapshot = f.snapshotLocked()
	f.mu.Unlock()
	f.notify(snapshot)
}

// ToggleLike 对帖子执行乐观点赞翻转。
// 同一帖子上已有在途翻转时拒绝，避免基于未确认状态叠加计算。
func (f *PostFeed) ToggleLike(ctx context.Context, postID string) error {
	f.mu.Lock()
	if f.inflight[postID] {
		f.mu.Unlock()
		return errors.New(errors.ErrToggleInFlight, "该帖子的点赞操作尚未完成")
	}
	f.inflight[postID] = true

	previous := f.liked[postID]
	delta := 1
	if previous {
		delta = -1
	}
	f.liked[postID] = !previous
	f.adjustCountLocked(postID, delta)
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	f.notify(snapshot)

	_, err := f.likes.TogglePostLike(ctx, postID, f.viewerID)

	f.mu.Lock()
	delete(f.inflight, postID)
	if err != nil {
		// 回滚到动作前的状态
		f.liked[postID] = previous
		f.adjustCountLocked(postID, -delta)
		snapshot = f.snapshotLocked()
		f.mu.Unlock()
		f.notify(snapshot)
		if f.onError != nil {
			f.onError(err)
		}
		return err
	}
	f.mu.Unlock()
	return nil
}

// Posts 返回合并了点赞状态的当前结果集副本
func (f *PostFeed) Posts() []*model.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Close 取消订阅，之后不再有推送
func (f *PostFeed) Close() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (f *PostFeed) adjustCountLocked(postID string, delta int) {
	for _, post := range f.posts {
		if post.ID == postID {
			post.LikesCount += delta
			return
		}
	}
}

func (f *PostFeed) snapshotLocked() []*model.Post {
	out := make([]*model.Post, 0, len(f.posts))
	for _, post := range f.posts {
		copied := *post
		copied.IsLiked = f.liked[post.ID]
		out = append(out, &copied)
	}
	return out
}

func (f *PostFeed) notify(posts []*model.Post) {
	if f.onUpdate != nil {
		f.onUpdate(posts)
	}
}
