package service

import (
	"context"
	"testing"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreatePostValidation(t *testing.T) {
	posts := new(MockPostRepository)
	svc := NewPostService(posts)
	author := &model.User{ID: "u1", Username: "alice"}

	cases := []struct {
		name  string
		input CreatePostInput
	}{
		{"空内容", CreatePostInput{Content: "   ", Category: model.CategoryDiscussion}},
		{"未知分类", CreatePostInput{Content: "hello", Category: "unknown"}},
		{"未知标签", CreatePostInput{Content: "hello", Category: model.CategoryDiscussion, Tags: []model.PostTag{"bogus"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), author, tc.input)
			assert.True(t, errors.Is(err, errors.ErrValidation))
		})
	}
	posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePostBuildsDocument(t *testing.T) {
	posts := new(MockPostRepository)
	svc := NewPostService(posts)
	author := &model.User{ID: "u1", Username: "alice"}
	posts.On("Create", mock.Anything, mock.Anything).Return(nil)

	post, err := svc.CreatePost(context.Background(), author, CreatePostInput{
		Content:  "第一笔投资",
		Category: model.CategoryInvestment,
		Tags:     []model.PostTag{model.TagStocks},
	})

	assert.NoError(t, err)
	assert.Equal(t, "u1", post.UserID)
	assert.Equal(t, author, post.User)
	assert.Equal(t, 0, post.LikesCount)
	assert.Equal(t, 0, post.CommentsCount)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
	posts.AssertExpectations(t)
}

func TestUpdatePostRefreshesTimestamp(t *testing.T) {
	posts := new(MockPostRepository)
	svc := NewPostService(posts)
	posts.On("Update", mock.Anything, "p1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		_, ok := updates["updatedAt"]
		return ok && updates["content"] == "edited"
	})).Return(nil)

	err := svc.UpdatePost(context.Background(), "p1", map[string]interface{}{"content": "edited"})

	assert.NoError(t, err)
	posts.AssertExpectations(t)
}

func TestUpdatePostEmptyUpdatesNoop(t *testing.T) {
	posts := new(MockPostRepository)
	svc := NewPostService(posts)

	err := svc.UpdatePost(context.Background(), "p1", map[string]interface{}{})

	assert.NoError(t, err)
	posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
