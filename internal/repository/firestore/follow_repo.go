package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FollowRepository struct {
	client *firestore.Client
}

func NewFollowRepository(client *firestore.Client) *FollowRepository {
	return &FollowRepository{client}
}

// followDocID 确定性复合键，保证同一对用户之间至多一条关注边
func followDocID(followerID, followingID string) string {
	return followerID + "_" + followingID
}

func (r *FollowRepository) doc(followerID, followingID string) *firestore.DocumentRef {
	return r.client.Collection(followsCollection).Doc(followDocID(followerID, followingID))
}

// Toggle 在单个事务内翻转关注关系并调整双方的计数，
// 返回翻转后的关注状态
func (r *FollowRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	followRef := r.doc(followerID, followingID)
	followerRef := r.client.Collection(usersCollection).Doc(followerID)
	followingRef := r.client.Collection(usersCollection).Doc(followingID)

	var following bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(followRef)
		exists := err == nil
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if exists {
			if err := tx.Delete(followRef); err != nil {
				return err
			}
			following = false
			if err := tx.Update(followerRef, []firestore.Update{
				{Path: "followingCount", Value: firestore.Increment(-1)},
			}); err != nil {
				return err
			}
			return tx.Update(followingRef, []firestore.Update{
				{Path: "followersCount", Value: firestore.Increment(-1)},
			})
		}

		if err := tx.Set(followRef, encodeFollow(&model.Follow{
			FollowerID:  followerID,
			FollowingID: followingID,
			CreatedAt:   time.Now(),
		})); err != nil {
			return err
		}
		following = true
		if err := tx.Update(followerRef, []firestore.Update{
			{Path: "followingCount", Value: firestore.Increment(1)},
		}); err != nil {
			return err
		}
		return tx.Update(followingRef, []firestore.Update{
			{Path: "followersCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return false, errors.Wrap(errors.ErrStore, "切换关注失败", err)
	}
	return following, nil
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	_, err := r.doc(followerID, followingID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, errors.Wrap(errors.ErrStore, "读取关注状态失败", err)
	}
	return true, nil
}

func (r *FollowRepository) listIDs(ctx context.Context, field, userID, pick string) ([]string, error) {
	iter := r.client.Collection(followsCollection).
		Where(field, "==", userID).
		Documents(ctx)
	defer iter.Stop()

	ids := make([]string, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrStore, "查询关注关系失败", err)
		}
		follow := decodeFollow(snap.Ref.ID, snap.Data())
		if pick == "followingId" {
			ids = append(ids, follow.FollowingID)
		} else {
			ids = append(ids, follow.FollowerID)
		}
	}
	return ids, nil
}

// Following 返回该用户关注的所有用户ID
func (r *FollowRepository) Following(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, "followerId", userID, "followingId")
}

// Followers 返回关注该用户的所有用户ID
func (r *FollowRepository) Followers(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, "followingId", userID, "followerId")
}
