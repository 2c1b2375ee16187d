package service

import (
	"context"
	"time"

	"github.com/kitokazu/gymunyfu/internal/common"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

type UserService struct {
	users    interfaces.UserRepository
	posts    interfaces.PostRepository
	comments interfaces.CommentRepository
}

func NewUserService(users interfaces.UserRepository, posts interfaces.PostRepository, comments interfaces.CommentRepository) *UserService {
	return &UserService{users, posts, comments}
}

// SyncUser 在身份提供方确认登录后补齐本地用户文档。
// 文档已存在时直接返回；不存在时以零计数和默认财务资料创建。
func (s *UserService) SyncUser(ctx context.Context, id, username, displayName, email string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, errors.ErrUserNotFound) {
		return nil, err
	}

	taken, err := s.IsUsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errors.New(errors.ErrUsernameTaken, "用户名已被占用")
	}

	user = &model.User{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		Email:       email,
		CreatedAt:   time.Now(),
		FinancialProfile: &model.FinancialProfile{
			ShowIncome: true,
			ShowAssets: true,
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	util.Logger.Info("创建用户文档", zap.String("user_id", id), zap.String("username", username))
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}

// UpdateUser 对用户文档做部分字段更新。
// 冗余在帖子与评论快照上的字段（displayName、avatar）变更会异步扇出。
func (s *UserService) UpdateUser(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := s.users.UpdateFields(ctx, id, fields); err != nil {
		return err
	}

	snapshot := make(map[string]interface{})
	for _, key := range []string{"displayName", "avatar"} {
		if v, ok := fields[key]; ok {
			snapshot[key] = v
		}
	}
	if len(snapshot) > 0 {
		s.fanOutAuthorSnapshots(id, snapshot)
	}
	return nil
}

func (s *UserService) UpdateFinancialProfile(ctx context.Context, id string, profile *model.FinancialProfile) error {
	return s.users.UpdateFinancialProfile(ctx, id, profile)
}

// UpdateAvatar 更新头像并把冗余快照异步刷到该用户的帖子与评论上
func (s *UserService) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return s.UpdateUser(ctx, id, map[string]interface{}{"avatar": avatarURL})
}

// fanOutAuthorSnapshots 异步刷新该用户帖子与评论上的冗余快照。
// 扇出失败只记录日志，权威数据（用户文档）已经更新。
func (s *UserService) fanOutAuthorSnapshots(id string, fields map[string]interface{}) {
	go func() {
		fanoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := common.WithRetry(func() error {
			return s.posts.UpdateAuthorSnapshots(fanoutCtx, id, fields)
		}, 3); err != nil {
			util.Logger.Error("帖子作者快照扇出失败", zap.Error(err), zap.String("user_id", id))
		}
		if err := common.WithRetry(func() error {
			return s.comments.UpdateAuthorSnapshots(fanoutCtx, id, fields)
		}, 3); err != nil {
			util.Logger.Error("评论作者快照扇出失败", zap.Error(err), zap.String("user_id", id))
		}
	}()
}

// VisibleFinancialProfile 返回对指定查看者可见的财务资料投影。
// 两个主开关都关闭时，非本人看不到任何财务数据。
func (s *UserService) VisibleFinancialProfile(owner *model.User, viewerID string) *model.FinancialProfile {
	profile := owner.FinancialProfile
	if profile == nil {
		return nil
	}
	if owner.ID == viewerID {
		return profile
	}
	if !profile.ShowIncome && !profile.ShowAssets {
		return nil
	}

	visible := &model.FinancialProfile{
		ShowIncome: profile.ShowIncome,
		ShowAssets: profile.ShowAssets,
	}
	if profile.ShowIncome {
		visible.IncomeBreakdown = profile.IncomeBreakdown
		visible.ShowIncomeAmounts = profile.ShowIncomeAmounts
		if profile.ShowIncomeAmounts {
			visible.TotalIncome = profile.TotalIncome
		}
	}
	if profile.ShowAssets {
		if enabled(profile.ShowBankAccounts) {
			visible.BankAccounts = profile.BankAccounts
		}
		if enabled(profile.ShowCreditCards) {
			visible.CreditCards = profile.CreditCards
		}
		if enabled(profile.ShowInvestments) {
			visible.Investments = profile.Investments
		}
		if enabled(profile.ShowLoans) {
			visible.Loans = profile.Loans
		}
	}
	return visible
}

// 子开关缺省视为开启
func enabled(flag *bool) bool {
	return flag == nil || *flag
}
