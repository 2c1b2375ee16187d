package model

import "time"

// PostCategory 帖子分类（封闭枚举）
type PostCategory string

const (
	CategoryInvestment   PostCategory = "investment"
	CategoryQuestion     PostCategory = "question"
	CategoryAnnouncement PostCategory = "announcement"
	CategoryDiscussion   PostCategory = "discussion"
	CategoryAchievement  PostCategory = "achievement"
	CategoryOther        PostCategory = "other"
)

// PostTag 帖子话题标签（封闭枚举）
type PostTag string

const (
	TagStocks     PostTag = "stocks"
	TagCrypto     PostTag = "crypto"
	TagRealEstate PostTag = "real-estate"
	TagCreditCard PostTag = "credit-cards"
	TagSavings    PostTag = "savings"
	TagDebtFree   PostTag = "debt-free"
	TagSideHustle PostTag = "side-hustle"
	TagBudgeting  PostTag = "budgeting"
	TagRetirement PostTag = "retirement"
	TagTaxes      PostTag = "taxes"
)

type Post struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	User          *User        `json:"user,omitempty"`
	Content       string       `json:"content"`
	Category      PostCategory `json:"category"`
	Tags          []PostTag    `json:"tags"`
	Images        []string     `json:"images,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	LikesCount    int          `json:"likes_count"`
	CommentsCount int          `json:"comments_count"`
	// IsLiked 是针对当前查看者的派生字段，不落库
	IsLiked bool `json:"is_liked"`
}

type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	UserID     string    `json:"user_id"`
	User       *User     `json:"user,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	LikesCount int       `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`
}

type Like struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Follow struct {
	ID          string    `json:"id"`
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidCategory 校验帖子分类是否为已知枚举值
func ValidCategory(c PostCategory) bool {
	switch c {
	case CategoryInvestment, CategoryQuestion, CategoryAnnouncement,
		CategoryDiscussion, CategoryAchievement, CategoryOther:
		return true
	}
	return false
}

// ValidTag 校验话题标签是否为已知枚举值
func ValidTag(t PostTag) bool {
	switch t {
	case TagStocks, TagCrypto, TagRealEstate, TagCreditCard, TagSavings,
		TagDebtFree, TagSideHustle, TagBudgeting, TagRetirement, TagTaxes:
		return true
	}
	return false
}
