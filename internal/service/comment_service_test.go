package service

import (
	"context"
	"testing"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddCommentRejectsEmptyContent(t *testing.T) {
	comments := new(MockCommentRepository)
	svc := NewCommentService(comments)
	author := &model.User{ID: "u1", Username: "alice"}

	_, err := svc.AddComment(context.Background(), "p1", author, "  ")

	assert.True(t, errors.Is(err, errors.ErrValidation))
	comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddCommentBuildsDocument(t *testing.T) {
	comments := new(MockCommentRepository)
	svc := NewCommentService(comments)
	author := &model.User{ID: "u1", Username: "alice"}
	comments.On("Create", mock.Anything, mock.Anything).Return(nil)

	comment, err := svc.AddComment(context.Background(), "p1", author, "不错的思路")

	assert.NoError(t, err)
	assert.Equal(t, "p1", comment.PostID)
	assert.Equal(t, "u1", comment.UserID)
	assert.Equal(t, author, comment.User)
	assert.Equal(t, 0, comment.LikesCount)
	assert.False(t, comment.CreatedAt.IsZero())
	comments.AssertExpectations(t)
}

func TestAddCommentPropagatesPostNotFound(t *testing.T) {
	comments := new(MockCommentRepository)
	svc := NewCommentService(comments)
	author := &model.User{ID: "u1"}
	comments.On("Create", mock.Anything, mock.Anything).Return(errors.New(errors.ErrPostNotFound, "帖子不存在"))

	_, err := svc.AddComment(context.Background(), "missing", author, "hello")

	assert.True(t, errors.Is(err, errors.ErrPostNotFound))
}
