package view

import (
	"context"
	"sync"
	"testing"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/stretchr/testify/assert"
)

type fakeCommentSource struct {
	mu       sync.Mutex
	fn       func([]*model.Comment)
	canceled bool
}

func (s *fakeCommentSource) Subscribe(ctx context.Context, postID string, fn func([]*model.Comment)) (func(), error) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.canceled = true
		s.mu.Unlock()
	}, nil
}

func (s *fakeCommentSource) emit(comments []*model.Comment) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	fn(comments)
}

type fakeCommentBackend struct {
	mu        sync.Mutex
	statuses  map[string]bool
	toggleErr error
	added     []*model.Comment
}

func (b *fakeCommentBackend) AddComment(ctx context.Context, postID string, author *model.User, content string) (*model.Comment, error) {
	comment := &model.Comment{ID: "c-new", PostID: postID, UserID: author.ID, Content: content}
	b.mu.Lock()
	b.added = append(b.added, comment)
	b.mu.Unlock()
	return comment, nil
}

func (b *fakeCommentBackend) ToggleCommentLike(ctx context.Context, postID, commentID, viewerID string) (bool, error) {
	if b.toggleErr != nil {
		return false, b.toggleErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses[commentID] = !b.statuses[commentID]
	return b.statuses[commentID], nil
}

func (b *fakeCommentBackend) CommentLikeStatuses(ctx context.Context, postID string, commentIDs []string, viewerID string) (map[string]bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]bool, len(commentIDs))
	for _, id := range commentIDs {
		out[id] = b.statuses[id]
	}
	return out, nil
}

func TestThreadEmissionKeepsOrder(t *testing.T) {
	backend := &fakeCommentBackend{statuses: map[string]bool{}}
	viewer := &model.User{ID: "viewer"}
	var updates [][]*model.Comment
	thread := NewCommentThread("p1", viewer, backend, backend, func(comments []*model.Comment) {
		updates = append(updates, comments)
	}, nil)
	source := &fakeCommentSource{}
	assert.NoError(t, thread.Start(context.Background(), source))
	defer thread.Close()

	source.emit([]*model.Comment{{ID: "c1"}, {ID: "c2"}})
	source.emit([]*model.Comment{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}})

	comments := thread.Comments()
	assert.Len(t, comments, 3)
	// 新评论追加在末尾，正序不变
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "c3", comments[2].ID)
}

func TestThreadAddCommentRequiresViewer(t *testing.T) {
	backend := &fakeCommentBackend{statuses: map[string]bool{}}
	thread := NewCommentThread("p1", nil, backend, backend, nil, nil)

	_, err := thread.AddComment(context.Background(), "hello")

	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	assert.Empty(t, backend.added)
}

func TestThreadAddCommentDelegates(t *testing.T) {
	backend := &fakeCommentBackend{statuses: map[string]bool{}}
	viewer := &model.User{ID: "viewer"}
	thread := NewCommentThread("p1", viewer, backend, backend, nil, nil)

	comment, err := thread.AddComment(context.Background(), "学到了")

	assert.NoError(t, err)
	assert.Equal(t, "p1", comment.PostID)
	assert.Len(t, backend.added, 1)
}

func TestThreadToggleLikeRollsBackOnFailure(t *testing.T) {
	backend := &fakeCommentBackend{
		statuses:  map[string]bool{},
		toggleErr: errors.New(errors.ErrStore, "存储错误"),
	}
	viewer := &model.User{ID: "viewer"}
	var reported error
	thread := NewCommentThread("p1", viewer, backend, backend, nil, func(err error) {
		reported = err
	})
	source := &fakeCommentSource{}
	assert.NoError(t, thread.Start(context.Background(), source))
	defer thread.Close()

	source.emit([]*model.Comment{{ID: "c1", LikesCount: 5}})

	err := thread.ToggleLike(context.Background(), "c1")

	assert.Error(t, err)
	assert.Error(t, reported)
	comments := thread.Comments()
	assert.False(t, comments[0].IsLiked)
	assert.Equal(t, 5, comments[0].LikesCount)
}

func TestThreadToggleLikeRequiresViewer(t *testing.T) {
	backend := &fakeCommentBackend{statuses: map[string]bool{}}
	thread := NewCommentThread("p1", nil, backend, backend, nil, nil)

	err := thread.ToggleLike(context.Background(), "c1")

	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
