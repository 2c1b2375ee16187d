package interfaces

import (
	"context"

	"github.com/kitokazu/gymunyfu/internal/model"
)

// UserRepository 定义了用户文档的存储操作接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	// UpdateFields 对用户文档做部分字段更新
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateFinancialProfile(ctx context.Context, id string, profile *model.FinancialProfile) error
}
