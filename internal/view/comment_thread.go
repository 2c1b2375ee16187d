package view

import (
	"context"
	"sync"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

// CommentSubscriber 订阅帖子评论的能力
type CommentSubscriber interface {
	Subscribe(ctx context.Context, postID string, fn func([]*model.Comment)) (func(), error)
}

// CommentAdder 添加评论的能力
type CommentAdder interface {
	AddComment(ctx context.Context, postID string, author *model.User, content string) (*model.Comment, error)
}

// CommentLiker 评论点赞的能力
type CommentLiker interface {
	ToggleCommentLike(ctx context.Context, postID, commentID, viewerID string) (bool, error)
	CommentLikeStatuses(ctx context.Context, postID string, commentIDs []string, viewerID string) (map[string]bool, error)
}

// CommentThread 是单个帖子评论区的乐观视图，
// 合并订阅推送（创建时间正序）与查看者的点赞状态。
type CommentThread struct {
	postID   string
	viewer   *model.User
	adder    CommentAdder
	likes    CommentLiker
	onUpdate func([]*model.Comment)
	onError  func(error)

	mu       sync.Mutex
	comments []*model.Comment
	liked    map[string]bool
	inflight map[string]bool
	cancel   func()
}

func NewCommentThread(postID string, viewer *model.User, adder CommentAdder, likes CommentLiker,
	onUpdate func([]*model.Comment), onError func(error)) *CommentThread {
	return &CommentThread{
		postID:   postID,
		viewer:   viewer,
		adder:    adder,
		likes:    likes,
		onUpdate: onUpdate,
		onError:  onError,
		liked:    make(map[string]bool),
		inflight: make(map[string]bool),
	}
}

// Start 打开评论订阅
func (t *CommentThread) Start(ctx context.Context, comments CommentSubscriber) error {
	cancel, err := comments.Subscribe(ctx, t.postID, func(emitted []*model.Comment) {
		t.applyEmission(ctx, emitted)
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()
	return nil
}

func (t *CommentThread) applyEmission(ctx context.Context, emitted []*model.Comment) {
	t.mu.Lock()
	t.comments = emitted
	snapshot := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(snapshot)

	if t.viewer == nil || len(emitted) == 0 {
		return
	}

	ids := make([]string, 0, len(emitted))
	for _, comment := range emitted {
		ids = append(ids, comment.ID)
	}
	statuses, err := t.likes.CommentLikeStatuses(ctx, t.postID, ids, t.viewer.ID)
	if err != nil {
		util.Logger.Error("拉取评论点赞状态失败", zap.Error(err), zap.String("post_id", t.postID))
		return
	}

	t.mu.Lock()
	t.liked = statuses
	snapshot = t.snapshotLocked()
	t.mu.Unlock()
	t.notify(snapshot)
}

// AddComment 添加评论。创建不是乐观操作，成功后由订阅推送带回
func (t *CommentThread) AddComment(ctx context.Context, content string) (*model.Comment, error) {
	if t.viewer == nil {
		return nil, errors.New(errors.ErrUnauthorized, "需要登录")
	}
	return t.adder.AddComment(ctx, t.postID, t.viewer, content)
}

// ToggleLike 对评论执行乐观点赞翻转，在途时拒绝重复操作
func (t *CommentThread) ToggleLike(ctx context.Context, commentID string) error {
	if t.viewer == nil {
		return errors.New(errors.ErrUnauthorized, "需要登录")
	}

	t.mu.Lock()
	if t.inflight[commentID] {
		t.mu.Unlock()
		return errors.New(errors.ErrToggleInFlight, "该评论的点赞操作尚未完成")
	}
	t.inflight[commentID] = true

	previous := t.liked[commentID]
	delta := 1
	if previous {
		delta = -1
	}
	t.liked[commentID] = !previous
	t.adjustCountLocked(commentID, delta)
	snapshot := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(snapshot)

	_, err := t.likes.ToggleCommentLike(ctx, t.postID, commentID, t.viewer.ID)

	t.mu.Lock()
	delete(t.inflight, commentID)
	if err != nil {
		t.liked[commentID] = previous
		t.adjustCountLocked(commentID, -delta)
		snapshot = t.snapshotLocked()
		t.mu.Unlock()
		t.notify(snapshot)
		if t.onError != nil {
			t.onError(err)
		}
		return err
	}
	t.mu.Unlock()
	return nil
}

// Comments 返回合并了点赞状态的当前评论列表副本
func (t *CommentThread) Comments() []*model.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Close 取消订阅，之后不再有推送
func (t *CommentThread) Close() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (t *CommentThread) adjustCountLocked(commentID string, delta int) {
	for _, comment := range t.comments {
		if comment.ID == commentID {
			comment.LikesCount += delta
			return
		}
	}
}

func (t *CommentThread) snapshotLocked() []*model.Comment {
	out := make([]*model.Comment, 0, len(t.comments))
	for _, comment := range t.comments {
		copied := *comment
		copied.IsLiked = t.liked[comment.ID]
		out = append(out, &copied)
	}
	return out
}

func (t *CommentThread) notify(comments []*model.Comment) {
	if t.onUpdate != nil {
		t.onUpdate(comments)
	}
}
