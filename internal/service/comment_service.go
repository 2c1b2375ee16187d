package service

import (
	"context"
	"strings"
	"time"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
)

type CommentService struct {
	comments interfaces.CommentRepository
}

func NewCommentService(comments interfaces.CommentRepository) *CommentService {
	return &CommentService{comments}
}

// AddComment 为帖子添加评论，父帖子的 commentsCount 随之加一
func (s *CommentService) AddComment(ctx context.Context, postID string, author *model.User, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New(errors.ErrValidation, "内容不能为空")
	}

	comment := &model.Comment{
		PostID:    postID,
		UserID:    author.ID,
		User:      author,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) GetCommentByID(ctx context.Context, postID, commentID string) (*model.Comment, error) {
	return s.comments.GetByID(ctx, postID, commentID)
}

// DeleteComment 删除评论，父帖子的 commentsCount 随之减一
func (s *CommentService) DeleteComment(ctx context.Context, postID, commentID string) error {
	return s.comments.Delete(ctx, postID, commentID)
}

func (s *CommentService) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

func (s *CommentService) Subscribe(ctx context.Context, postID string, fn func([]*model.Comment)) (func(), error) {
	return s.comments.Subscribe(ctx, postID, fn)
}
