package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
	"github.com/kitokazu/gymunyfu/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	os.Exit(m.Run())
}

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateFinancialProfile(ctx context.Context, id string, profile *model.FinancialProfile) error {
	args := m.Called(ctx, id, profile)
	return args.Error(0)
}

// MockPostRepository 是 PostRepository 接口的模拟实现
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) List(ctx context.Context, q interfaces.PostQuery) ([]*model.Post, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepository) ListByUser(ctx context.Context, userID string) ([]*model.Post, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepository) Subscribe(ctx context.Context, q interfaces.PostQuery, fn func([]*model.Post)) (func(), error) {
	args := m.Called(ctx, q, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

func (m *MockPostRepository) SubscribeOne(ctx context.Context, id string, fn func(*model.Post)) (func(), error) {
	args := m.Called(ctx, id, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

func (m *MockPostRepository) SubscribeByUser(ctx context.Context, userID string, fn func([]*model.Post)) (func(), error) {
	args := m.Called(ctx, userID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

func (m *MockPostRepository) UpdateAuthorSnapshots(ctx context.Context, userID string, fields map[string]interface{}) error {
	args := m.Called(ctx, userID, fields)
	return args.Error(0)
}

// MockCommentRepository 是 CommentRepository 接口的模拟实现
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, postID, commentID string) (*model.Comment, error) {
	args := m.Called(ctx, postID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, postID, commentID string) error {
	args := m.Called(ctx, postID, commentID)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Subscribe(ctx context.Context, postID string, fn func([]*model.Comment)) (func(), error) {
	args := m.Called(ctx, postID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

func (m *MockCommentRepository) UpdateAuthorSnapshots(ctx context.Context, userID string, fields map[string]interface{}) error {
	args := m.Called(ctx, userID, fields)
	return args.Error(0)
}

func newUserServiceForTest() (*UserService, *MockUserRepository, *MockPostRepository, *MockCommentRepository) {
	users := new(MockUserRepository)
	posts := new(MockPostRepository)
	comments := new(MockCommentRepository)
	return NewUserService(users, posts, comments), users, posts, comments
}

func TestSyncUserExisting(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest()
	existing := &model.User{ID: "u1", Username: "alice"}
	users.On("GetByID", mock.Anything, "u1").Return(existing, nil)

	user, err := svc.SyncUser(context.Background(), "u1", "alice", "Alice", "alice@example.com")

	assert.NoError(t, err)
	assert.Equal(t, existing, user)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSyncUserCreatesWithDefaults(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest()
	users.On("GetByID", mock.Anything, "u1").Return(nil, errors.New(errors.ErrUserNotFound, "用户不存在"))
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, errors.New(errors.ErrUserNotFound, "用户不存在"))
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.SyncUser(context.Background(), "u1", "alice", "Alice", "alice@example.com")

	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 0, user.FollowersCount)
	assert.Equal(t, 0, user.PostsCount)
	// 新用户的主可见性开关默认开启
	assert.NotNil(t, user.FinancialProfile)
	assert.True(t, user.FinancialProfile.ShowIncome)
	assert.True(t, user.FinancialProfile.ShowAssets)
	users.AssertExpectations(t)
}

func TestSyncUserUsernameTaken(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest()
	users.On("GetByID", mock.Anything, "u2").Return(nil, errors.New(errors.ErrUserNotFound, "用户不存在"))
	users.On("GetByUsername", mock.Anything, "alice").Return(&model.User{ID: "u1", Username: "alice"}, nil)

	_, err := svc.SyncUser(context.Background(), "u2", "alice", "Alice 2", "alice2@example.com")

	assert.True(t, errors.Is(err, errors.ErrUsernameTaken))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateAvatarFansOutSnapshots(t *testing.T) {
	svc, users, posts, comments := newUserServiceForTest()
	users.On("UpdateFields", mock.Anything, "u1", map[string]interface{}{"avatar": "http://img/a.png"}).Return(nil)

	postsDone := make(chan struct{})
	commentsDone := make(chan struct{})
	posts.On("UpdateAuthorSnapshots", mock.Anything, "u1", map[string]interface{}{"avatar": "http://img/a.png"}).
		Run(func(args mock.Arguments) { close(postsDone) }).Return(nil)
	comments.On("UpdateAuthorSnapshots", mock.Anything, "u1", map[string]interface{}{"avatar": "http://img/a.png"}).
		Run(func(args mock.Arguments) { close(commentsDone) }).Return(nil)

	err := svc.UpdateAvatar(context.Background(), "u1", "http://img/a.png")
	assert.NoError(t, err)

	// 扇出是异步的，等待两路快照刷新完成
	for _, done := range []chan struct{}{postsDone, commentsDone} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("快照扇出未执行")
		}
	}
}

func TestUpdateUserDisplayNameFansOutSnapshots(t *testing.T) {
	svc, users, posts, comments := newUserServiceForTest()
	fields := map[string]interface{}{"displayName": "Alice 2.0", "bio": "新简介"}
	users.On("UpdateFields", mock.Anything, "u1", fields).Return(nil)

	// 只有冗余快照字段会被扇出，bio 不在其中
	snapshot := map[string]interface{}{"displayName": "Alice 2.0"}
	postsDone := make(chan struct{})
	commentsDone := make(chan struct{})
	posts.On("UpdateAuthorSnapshots", mock.Anything, "u1", snapshot).
		Run(func(args mock.Arguments) { close(postsDone) }).Return(nil)
	comments.On("UpdateAuthorSnapshots", mock.Anything, "u1", snapshot).
		Run(func(args mock.Arguments) { close(commentsDone) }).Return(nil)

	err := svc.UpdateUser(context.Background(), "u1", fields)
	assert.NoError(t, err)

	for _, done := range []chan struct{}{postsDone, commentsDone} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("快照扇出未执行")
		}
	}
}

func TestUpdateUserNonSnapshotFieldsSkipFanOut(t *testing.T) {
	svc, users, posts, comments := newUserServiceForTest()
	fields := map[string]interface{}{"bio": "新简介"}
	users.On("UpdateFields", mock.Anything, "u1", fields).Return(nil)

	err := svc.UpdateUser(context.Background(), "u1", fields)

	assert.NoError(t, err)
	posts.AssertNotCalled(t, "UpdateAuthorSnapshots", mock.Anything, mock.Anything, mock.Anything)
	comments.AssertNotCalled(t, "UpdateAuthorSnapshots", mock.Anything, mock.Anything, mock.Anything)
}

func TestVisibleFinancialProfileOwnerSeesAll(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	owner := &model.User{
		ID: "u1",
		FinancialProfile: &model.FinancialProfile{
			TotalIncome: 120000,
			ShowIncome:  false,
			ShowAssets:  false,
		},
	}

	visible := svc.VisibleFinancialProfile(owner, "u1")

	assert.NotNil(t, visible)
	assert.Equal(t, 120000.0, visible.TotalIncome)
}

func TestVisibleFinancialProfileHiddenWhenBothOff(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	owner := &model.User{
		ID: "u1",
		FinancialProfile: &model.FinancialProfile{
			TotalIncome: 120000,
			ShowIncome:  false,
			ShowAssets:  false,
		},
	}

	assert.Nil(t, svc.VisibleFinancialProfile(owner, "u2"))
}

func TestVisibleFinancialProfileIncomeAmountGate(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	owner := &model.User{
		ID: "u1",
		FinancialProfile: &model.FinancialProfile{
			TotalIncome:       120000,
			IncomeBreakdown:   []model.IncomeSource{{ID: "s1", Name: "工资", Amount: 10000}},
			ShowIncome:        true,
			ShowIncomeAmounts: false,
			ShowAssets:        false,
		},
	}

	visible := svc.VisibleFinancialProfile(owner, "u2")

	assert.NotNil(t, visible)
	// 收入来源可见，但总额被金额开关隐藏
	assert.Len(t, visible.IncomeBreakdown, 1)
	assert.Equal(t, 0.0, visible.TotalIncome)
}

func TestVisibleFinancialProfileAssetSubFlags(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	hide := false
	owner := &model.User{
		ID: "u1",
		FinancialProfile: &model.FinancialProfile{
			ShowIncome:       false,
			ShowAssets:       true,
			ShowBankAccounts: &hide,
			BankAccounts:     []model.BankAccount{{ID: "b1", Name: "主账户"}},
			Investments:      []model.Investment{{ID: "i1", Name: "指数基金"}},
		},
	}

	visible := svc.VisibleFinancialProfile(owner, "u2")

	assert.NotNil(t, visible)
	assert.Empty(t, visible.BankAccounts)
	// 子开关缺省视为开启
	assert.Len(t, visible.Investments, 1)
}
