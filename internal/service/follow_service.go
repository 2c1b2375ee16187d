package service

import (
	"context"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
)

type FollowService struct {
	follows interfaces.FollowRepository
}

func NewFollowService(follows interfaces.FollowRepository) *FollowService {
	return &FollowService{follows}
}

// ToggleFollow 翻转关注关系，返回翻转后的状态。
// 自己关注自己在任何写入前同步拒绝。
func (s *FollowService) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, errors.New(errors.ErrSelfFollow, "不能关注自己")
	}
	return s.follows.Toggle(ctx, followerID, followingID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, nil
	}
	return s.follows.IsFollowing(ctx, followerID, followingID)
}

// GetFollowing 返回该用户关注的用户ID列表
func (s *FollowService) GetFollowing(ctx context.Context, userID string) ([]string, error) {
	return s.follows.Following(ctx, userID)
}

// GetFollowers 返回关注该用户的用户ID列表
func (s *FollowService) GetFollowers(ctx context.Context, userID string) ([]string, error) {
	return s.follows.Followers(ctx, userID)
}

// FollowStatuses 查询当前查看者对一批用户的关注状态
func (s *FollowService) FollowStatuses(ctx context.Context, viewerID string, userIDs []string) (map[string]bool, error) {
	following, err := s.follows.Following(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	followingSet := make(map[string]bool, len(following))
	for _, id := range following {
		followingSet[id] = true
	}

	statuses := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		statuses[id] = followingSet[id]
	}
	return statuses, nil
}
