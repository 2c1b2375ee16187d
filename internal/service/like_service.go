package service

import (
	"context"
	"sync"

	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
)

type LikeService struct {
	likes interfaces.LikeRepository
}

func NewLikeService(likes interfaces.LikeRepository) *LikeService {
	return &LikeService{likes}
}

// TogglePostLike 翻转查看者对帖子的点赞，返回翻转后的状态
func (s *LikeService) TogglePostLike(ctx context.Context, postID, viewerID string) (bool, error) {
	return s.likes.TogglePostLike(ctx, postID, viewerID)
}

// ToggleCommentLike 翻转查看者对评论的点赞，返回翻转后的状态
func (s *LikeService) ToggleCommentLike(ctx context.Context, postID, commentID, viewerID string) (bool, error) {
	return s.likes.ToggleCommentLike(ctx, postID, commentID, viewerID)
}

func (s *LikeService) IsPostLiked(ctx context.Context, postID, viewerID string) (bool, error) {
	return s.likes.IsPostLiked(ctx, postID, viewerID)
}

func (s *LikeService) IsCommentLiked(ctx context.Context, postID, commentID, viewerID string) (bool, error) {
	return s.likes.IsCommentLiked(ctx, postID, commentID, viewerID)
}

// PostLikeStatuses 并发查询查看者对一批帖子的点赞状态
func (s *LikeService) PostLikeStatuses(ctx context.Context, postIDs []string, viewerID string) (map[string]bool, error) {
	statuses := make(map[string]bool, len(postIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, postID := range postIDs {
		wg.Add(1)
		go func(postID string) {
			defer wg.Done()
			liked, err := s.likes.IsPostLiked(ctx, postID, viewerID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			statuses[postID] = liked
		}(postID)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return statuses, nil
}

// CommentLikeStatuses 并发查询查看者对一批评论的点赞状态
func (s *LikeService) CommentLikeStatuses(ctx context.Context, postID string, commentIDs []string, viewerID string) (map[string]bool, error) {
	statuses := make(map[string]bool, len(commentIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, commentID := range commentIDs {
		wg.Add(1)
		go func(commentID string) {
			defer wg.Done()
			liked, err := s.likes.IsCommentLiked(ctx, postID, commentID, viewerID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			statuses[commentID] = liked
		}(commentID)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return statuses, nil
}
