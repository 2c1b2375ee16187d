package firestore

import (
	"testing"
	"time"

	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestEncodePostOmitsUnsetOptionals(t *testing.T) {
	post := &model.Post{
		UserID:    "u1",
		Content:   "hello",
		Category:  model.CategoryDiscussion,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	data := encodePost(post)

	// 未设置的可选字段不写占位
	assert.NotContains(t, data, "images")
	assert.NotContains(t, data, "user")
	assert.Contains(t, data, "tags")
	assert.Equal(t, 0, data["likesCount"])
}

func TestEncodePostDenormalizesAuthor(t *testing.T) {
	post := &model.Post{
		UserID: "u1",
		User: &model.User{
			ID:          "u1",
			Username:    "alice",
			DisplayName: "Alice",
			Email:       "alice@example.com",
			Avatar:      "http://img/a.png",
			PostsCount:  7,
		},
		Content:  "hello",
		Category: model.CategoryDiscussion,
	}

	data := encodePost(post)

	snapshot := data["user"].(map[string]interface{})
	assert.Equal(t, "alice", snapshot["username"])
	assert.Equal(t, "http://img/a.png", snapshot["avatar"])
	// 快照只冗余身份字段，不带邮箱与聚合计数
	assert.NotContains(t, snapshot, "email")
	assert.NotContains(t, snapshot, "postsCount")
}

func TestDecodePostFillsDefaults(t *testing.T) {
	before := time.Now()
	post := decodePost("p1", map[string]interface{}{
		"userId":  "u1",
		"content": "hello",
	})

	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "u1", post.UserID)
	assert.Equal(t, 0, post.LikesCount)
	assert.NotNil(t, post.Tags)
	// 缺失的时间戳读取时取当前时间
	assert.False(t, post.CreatedAt.Before(before))
}

func TestDecodePostReconstructsSnapshotUser(t *testing.T) {
	post := decodePost("p1", map[string]interface{}{
		"userId": "u1",
		"user": map[string]interface{}{
			"id":          "u1",
			"username":    "alice",
			"displayName": "Alice",
		},
		"tags":       []interface{}{"stocks", "crypto"},
		"likesCount": int64(3),
		"createdAt":  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.NotNil(t, post.User)
	assert.Equal(t, "alice", post.User.Username)
	// 快照合成的用户聚合计数为零、邮箱为空
	assert.Equal(t, "", post.User.Email)
	assert.Equal(t, 0, post.User.FollowersCount)
	assert.Equal(t, []model.PostTag{model.TagStocks, model.TagCrypto}, post.Tags)
	assert.Equal(t, 3, post.LikesCount)
}

func TestUserRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	show := false
	user := &model.User{
		ID:          "u1",
		Username:    "alice",
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Bio:         "投资新手",
		Occupation:  []string{"工程师"},
		CreatedAt:   created,
		PostsCount:  4,
		FinancialProfile: &model.FinancialProfile{
			TotalIncome:      90000,
			ShowIncome:       true,
			ShowAssets:       true,
			ShowBankAccounts: &show,
			IncomeBreakdown: []model.IncomeSource{
				{ID: "s1", Name: "工资", Amount: 7500, Type: model.IncomeSalary, Frequency: model.FrequencyMonthly},
			},
		},
	}

	decoded := decodeUser("u1", encodeUser(user))

	assert.Equal(t, user.Username, decoded.Username)
	assert.Equal(t, user.Bio, decoded.Bio)
	assert.Equal(t, user.Occupation, decoded.Occupation)
	assert.Equal(t, user.PostsCount, decoded.PostsCount)
	assert.Equal(t, created, decoded.CreatedAt)
	assert.NotNil(t, decoded.FinancialProfile)
	assert.Equal(t, 90000.0, decoded.FinancialProfile.TotalIncome)
	assert.NotNil(t, decoded.FinancialProfile.ShowBankAccounts)
	assert.False(t, *decoded.FinancialProfile.ShowBankAccounts)
	assert.Len(t, decoded.FinancialProfile.IncomeBreakdown, 1)
	assert.Equal(t, model.FrequencyMonthly, decoded.FinancialProfile.IncomeBreakdown[0].Frequency)
}

func TestEncodeUserOmitsEmptyOptionals(t *testing.T) {
	data := encodeUser(&model.User{ID: "u1", Username: "alice", CreatedAt: time.Now()})

	assert.NotContains(t, data, "bio")
	assert.NotContains(t, data, "avatar")
	assert.NotContains(t, data, "coverImage")
	assert.NotContains(t, data, "financialProfile")
}

func TestFinancialProfileSubFlagAbsenceIsNil(t *testing.T) {
	profile := decodeFinancialProfile(map[string]interface{}{
		"showIncome": true,
		"showAssets": true,
	})

	// 未落库的子开关解码为 nil，区别于显式的 false
	assert.Nil(t, profile.ShowBankAccounts)
	assert.Nil(t, profile.ShowLoans)
}

func TestInvestmentOptionalValues(t *testing.T) {
	value := 12500.5
	profile := &model.FinancialProfile{
		ShowIncome: true,
		ShowAssets: true,
		Investments: []model.Investment{
			{ID: "i1", Name: "指数基金", Type: model.InvestStocks, Value: &value},
			{ID: "i2", Name: "比特币", Type: model.InvestCrypto},
		},
	}

	decoded := decodeFinancialProfile(encodeFinancialProfile(profile))

	assert.Len(t, decoded.Investments, 2)
	assert.NotNil(t, decoded.Investments[0].Value)
	assert.Equal(t, 12500.5, *decoded.Investments[0].Value)
	assert.Nil(t, decoded.Investments[1].Value)
	assert.Nil(t, decoded.Investments[1].ReturnRate)
}

func TestCommentRoundTrip(t *testing.T) {
	created := time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)
	comment := &model.Comment{
		PostID:     "p1",
		UserID:     "u1",
		User:       &model.User{ID: "u1", Username: "alice", DisplayName: "Alice"},
		Content:    "学到了",
		CreatedAt:  created,
		LikesCount: 2,
	}

	decoded := decodeComment("c1", encodeComment(comment))

	assert.Equal(t, "c1", decoded.ID)
	assert.Equal(t, "p1", decoded.PostID)
	assert.Equal(t, comment.Content, decoded.Content)
	assert.Equal(t, 2, decoded.LikesCount)
	assert.Equal(t, created, decoded.CreatedAt)
	assert.Equal(t, "alice", decoded.User.Username)
}

func TestEncodeLike(t *testing.T) {
	created := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	data := encodeLike(&model.Like{UserID: "viewer", CreatedAt: created})

	assert.Equal(t, "viewer", data["userId"])
	assert.Equal(t, created, data["createdAt"])
}

func TestFollowRoundTrip(t *testing.T) {
	created := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	follow := &model.Follow{FollowerID: "u1", FollowingID: "u2", CreatedAt: created}

	decoded := decodeFollow("u1_u2", encodeFollow(follow))

	assert.Equal(t, "u1_u2", decoded.ID)
	assert.Equal(t, "u1", decoded.FollowerID)
	assert.Equal(t, "u2", decoded.FollowingID)
	assert.Equal(t, created, decoded.CreatedAt)
}
