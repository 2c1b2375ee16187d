package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client}
}

func (r *UserRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(id)
}

// Create 写入用户文档，文档ID即身份提供方的用户ID
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if _, err := r.doc(user.ID).Set(ctx, encodeUser(user)); err != nil {
		return errors.Wrap(errors.ErrStore, "写入用户文档失败", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		return nil, errors.Wrap(errors.ErrStore, "读取用户文档失败", err)
	}
	return decodeUser(snap.Ref.ID, snap.Data()), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	iter := r.client.Collection(usersCollection).
		Where("username", "==", username).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStore, "按用户名查询失败", err)
	}
	return decodeUser(snap.Ref.ID, snap.Data()), nil
}

// List 按创建时间倒序返回全部用户
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(usersCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrStore, "查询用户列表失败", err)
		}
		users = append(users, decodeUser(snap.Ref.ID, snap.Data()))
	}
	return users, nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if _, err := r.doc(id).Set(ctx, fields, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		return errors.Wrap(errors.ErrStore, "更新用户文档失败", err)
	}
	return nil
}

func (r *UserRepository) UpdateFinancialProfile(ctx context.Context, id string, profile *model.FinancialProfile) error {
	_, err := r.doc(id).Update(ctx, []firestore.Update{
		{Path: "financialProfile", Value: encodeFinancialProfile(profile)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		return errors.Wrap(errors.ErrStore, "更新财务资料失败", err)
	}
	return nil
}
