package service

import (
	"context"
	"testing"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFollowRepository 是 FollowRepository 接口的模拟实现
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Following(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFollowRepository) Followers(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

func TestToggleFollowRejectsSelfFollow(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := NewFollowService(follows)

	_, err := svc.ToggleFollow(context.Background(), "u1", "u1")

	// 自我关注在任何写入前被拒绝
	assert.True(t, errors.Is(err, errors.ErrSelfFollow))
	follows.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleFollowDelegates(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := NewFollowService(follows)
	follows.On("Toggle", mock.Anything, "u1", "u2").Return(true, nil)

	following, err := svc.ToggleFollow(context.Background(), "u1", "u2")

	assert.NoError(t, err)
	assert.True(t, following)
	follows.AssertExpectations(t)
}

func TestIsFollowingSelfAlwaysFalse(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := NewFollowService(follows)

	following, err := svc.IsFollowing(context.Background(), "u1", "u1")

	assert.NoError(t, err)
	assert.False(t, following)
	follows.AssertNotCalled(t, "IsFollowing", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollowStatuses(t *testing.T) {
	follows := new(MockFollowRepository)
	svc := NewFollowService(follows)
	follows.On("Following", mock.Anything, "u1").Return([]string{"u2", "u4"}, nil)

	statuses, err := svc.FollowStatuses(context.Background(), "u1", []string{"u2", "u3", "u4"})

	assert.NoError(t, err)
	assert.Equal(t, map[string]bool{"u2": true, "u3": false, "u4": true}, statuses)
}
