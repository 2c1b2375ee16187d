package service

import (
	"context"
	"strings"
	"time"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
)

type PostService struct {
	posts interfaces.PostRepository
}

func NewPostService(posts interfaces.PostRepository) *PostService {
	return &PostService{posts}
}

// CreatePostInput 创建帖子的入参
type CreatePostInput struct {
	Content  string
	Category model.PostCategory
	Tags     []model.PostTag
	Images   []string
}

// CreatePost 以 owner 为作者创建帖子，计数从零开始
func (s *PostService) CreatePost(ctx context.Context, owner *model.User, input CreatePostInput) (*model.Post, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.New(errors.ErrValidation, "内容不能为空")
	}
	if !model.ValidCategory(input.Category) {
		return nil, errors.New(errors.ErrValidation, "未知的帖子分类")
	}
	for _, tag := range input.Tags {
		if !model.ValidTag(tag) {
			return nil, errors.New(errors.ErrValidation, "未知的话题标签")
		}
	}

	now := time.Now()
	post := &model.Post{
		UserID:    owner.ID,
		User:      owner,
		Content:   input.Content,
		Category:  input.Category,
		Tags:      input.Tags,
		Images:    input.Images,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// UpdatePost 更新帖子的可编辑字段并刷新 updatedAt
func (s *PostService) UpdatePost(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updatedAt"] = time.Now()
	return s.posts.Update(ctx, id, updates)
}

func (s *PostService) DeletePost(ctx context.Context, id string) error {
	return s.posts.Delete(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, q interfaces.PostQuery) ([]*model.Post, error) {
	return s.posts.List(ctx, q)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID string) ([]*model.Post, error) {
	return s.posts.ListByUser(ctx, userID)
}

func (s *PostService) Subscribe(ctx context.Context, q interfaces.PostQuery, fn func([]*model.Post)) (func(), error) {
	return s.posts.Subscribe(ctx, q, fn)
}

func (s *PostService) SubscribeOne(ctx context.Context, id string, fn func(*model.Post)) (func(), error) {
	return s.posts.SubscribeOne(ctx, id, fn)
}

func (s *PostService) SubscribeUserPosts(ctx context.Context, userID string, fn func([]*model.Post)) (func(), error) {
	return s.posts.SubscribeByUser(ctx, userID, fn)
}
