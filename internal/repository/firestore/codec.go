package firestore

import (
	"time"

	"github.com/kitokazu/gymunyfu/internal/model"
)

// 本文件负责领域模型与 Firestore 文档之间的双向转换。
// 解码必须是全量的：缺失字段取零值，缺失时间取当前时间。
// 编码必须省略未设置的可选字段，Firestore 不接受显式的空占位。

func strVal(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func intVal(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func floatVal(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func boolVal(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func optBoolVal(data map[string]interface{}, key string) *bool {
	if v, ok := data[key].(bool); ok {
		return &v
	}
	return nil
}

func optFloatVal(data map[string]interface{}, key string) *float64 {
	switch v := data[key].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

// timeVal 缺失的时间戳在读取时取当前时间
func timeVal(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(time.Time); ok {
		return v
	}
	return time.Now()
}

func strSlice(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mapVal(data map[string]interface{}, key string) map[string]interface{} {
	if v, ok := data[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func mapSlice(data map[string]interface{}, key string) []map[string]interface{} {
	items, ok := data[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// denormalizeUser 提取冗余存储在帖子/评论上的作者快照字段
func denormalizeUser(user *model.User) map[string]interface{} {
	snapshot := map[string]interface{}{
		"id":          user.ID,
		"username":    user.Username,
		"displayName": user.DisplayName,
	}
	if user.Avatar != "" {
		snapshot["avatar"] = user.Avatar
	}
	return snapshot
}

// decodeSnapshotUser 从冗余快照合成一个最小用户：聚合计数清零，邮箱为空
func decodeSnapshotUser(data map[string]interface{}) *model.User {
	return &model.User{
		ID:          strVal(data, "id"),
		Username:    strVal(data, "username"),
		DisplayName: strVal(data, "displayName"),
		Avatar:      strVal(data, "avatar"),
		CreatedAt:   time.Now(),
	}
}

func decodeUser(id string, data map[string]interface{}) *model.User {
	user := &model.User{
		ID:             id,
		Username:       strVal(data, "username"),
		DisplayName:    strVal(data, "displayName"),
		Email:          strVal(data, "email"),
		Bio:            strVal(data, "bio"),
		Occupation:     strSlice(data, "occupation"),
		Avatar:         strVal(data, "avatar"),
		CoverImage:     strVal(data, "coverImage"),
		CreatedAt:      timeVal(data, "createdAt"),
		FollowersCount: intVal(data, "followersCount"),
		FollowingCount: intVal(data, "followingCount"),
		PostsCount:     intVal(data, "postsCount"),
	}
	if fp := mapVal(data, "financialProfile"); fp != nil {
		user.FinancialProfile = decodeFinancialProfile(fp)
	}
	return user
}

func encodeUser(user *model.User) map[string]interface{} {
	data := map[string]interface{}{
		"username":       user.Username,
		"displayName":    user.DisplayName,
		"email":          user.Email,
		"createdAt":      user.CreatedAt,
		"followersCount": user.FollowersCount,
		"followingCount": user.FollowingCount,
		"postsCount":     user.PostsCount,
	}
	if user.Bio != "" {
		data["bio"] = user.Bio
	}
	if len(user.Occupation) > 0 {
		data["occupation"] = user.Occupation
	}
	if user.Avatar != "" {
		data["avatar"] = user.Avatar
	}
	if user.CoverImage != "" {
		data["coverImage"] = user.CoverImage
	}
	if user.FinancialProfile != nil {
		data["financialProfile"] = encodeFinancialProfile(user.FinancialProfile)
	}
	return data
}

func decodePost(id string, data map[string]interface{}) *model.Post {
	post := &model.Post{
		ID:            id,
		UserID:        strVal(data, "userId"),
		Content:       strVal(data, "content"),
		Category:      model.PostCategory(strVal(data, "category")),
		CreatedAt:     timeVal(data, "createdAt"),
		UpdatedAt:     timeVal(data, "updatedAt"),
		LikesCount:    intVal(data, "likesCount"),
		CommentsCount: intVal(data, "commentsCount"),
		Images:        strSlice(data, "images"),
	}
	post.Tags = make([]model.PostTag, 0)
	for _, tag := range strSlice(data, "tags") {
		post.Tags = append(post.Tags, model.PostTag(tag))
	}
	if snapshot := mapVal(data, "user"); snapshot != nil {
		post.User = decodeSnapshotUser(snapshot)
	}
	return post
}

func encodePost(post *model.Post) map[string]interface{} {
	tags := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, string(tag))
	}

	data := map[string]interface{}{
		"userId":        post.UserID,
		"content":       post.Content,
		"category":      string(post.Category),
		"tags":          tags,
		"createdAt":     post.CreatedAt,
		"updatedAt":     post.UpdatedAt,
		"likesCount":    post.LikesCount,
		"commentsCount": post.CommentsCount,
	}
	if post.User != nil {
		data["user"] = denormalizeUser(post.User)
	}
	if len(post.Images) > 0 {
		data["images"] = post.Images
	}
	return data
}

func decodeComment(id string, data map[string]interface{}) *model.Comment {
	comment := &model.Comment{
		ID:         id,
		PostID:     strVal(data, "postId"),
		UserID:     strVal(data, "userId"),
		Content:    strVal(data, "content"),
		CreatedAt:  timeVal(data, "createdAt"),
		LikesCount: intVal(data, "likesCount"),
	}
	if snapshot := mapVal(data, "user"); snapshot != nil {
		comment.User = decodeSnapshotUser(snapshot)
	}
	return comment
}

func encodeComment(comment *model.Comment) map[string]interface{} {
	data := map[string]interface{}{
		"postId":     comment.PostID,
		"userId":     comment.UserID,
		"content":    comment.Content,
		"createdAt":  comment.CreatedAt,
		"likesCount": comment.LikesCount,
	}
	if comment.User != nil {
		data["user"] = denormalizeUser(comment.User)
	}
	return data
}

func encodeLike(like *model.Like) map[string]interface{} {
	return map[string]interface{}{
		"userId":    like.UserID,
		"createdAt": like.CreatedAt,
	}
}

func decodeFollow(id string, data map[string]interface{}) *model.Follow {
	return &model.Follow{
		ID:          id,
		FollowerID:  strVal(data, "followerId"),
		FollowingID: strVal(data, "followingId"),
		CreatedAt:   timeVal(data, "createdAt"),
	}
}

func encodeFollow(follow *model.Follow) map[string]interface{} {
	return map[string]interface{}{
		"followerId":  follow.FollowerID,
		"followingId": follow.FollowingID,
		"createdAt":   follow.CreatedAt,
	}
}

func decodeFinancialProfile(data map[string]interface{}) *model.FinancialProfile {
	profile := &model.FinancialProfile{
		TotalIncome:       floatVal(data, "totalIncome"),
		ShowIncomeAmounts: boolVal(data, "showIncomeAmounts"),
		ShowIncome:        boolVal(data, "showIncome"),
		ShowAssets:        boolVal(data, "showAssets"),
		ShowBankAccounts:  optBoolVal(data, "showBankAccounts"),
		ShowCreditCards:   optBoolVal(data, "showCreditCards"),
		ShowInvestments:   optBoolVal(data, "showInvestments"),
		ShowLoans:         optBoolVal(data, "showLoans"),
	}
	for _, m := range mapSlice(data, "incomeBreakdown") {
		profile.IncomeBreakdown = append(profile.IncomeBreakdown, model.IncomeSource{
			ID:        strVal(m, "id"),
			Name:      strVal(m, "name"),
			Amount:    floatVal(m, "amount"),
			Type:      model.IncomeType(strVal(m, "type")),
			Frequency: model.IncomeFrequency(strVal(m, "frequency")),
		})
	}
	for _, m := range mapSlice(data, "bankAccounts") {
		profile.BankAccounts = append(profile.BankAccounts, model.BankAccount{
			ID:          strVal(m, "id"),
			Name:        strVal(m, "name"),
			Type:        model.BankAccountType(strVal(m, "type")),
			Description: strVal(m, "description"),
		})
	}
	for _, m := range mapSlice(data, "creditCards") {
		profile.CreditCards = append(profile.CreditCards, model.CreditCard{
			ID:       strVal(m, "id"),
			Name:     strVal(m, "name"),
			Type:     strVal(m, "type"),
			Benefits: strSlice(m, "benefits"),
		})
	}
	for _, m := range mapSlice(data, "investments") {
		profile.Investments = append(profile.Investments, model.Investment{
			ID:         strVal(m, "id"),
			Name:       strVal(m, "name"),
			Type:       model.InvestmentType(strVal(m, "type")),
			Category:   strVal(m, "category"),
			Value:      optFloatVal(m, "value"),
			ReturnRate: optFloatVal(m, "returnRate"),
		})
	}
	for _, m := range mapSlice(data, "loans") {
		profile.Loans = append(profile.Loans, model.Loan{
			ID:     strVal(m, "id"),
			Name:   strVal(m, "name"),
			Type:   model.LoanType(strVal(m, "type")),
			Lender: strVal(m, "lender"),
		})
	}
	return profile
}

func encodeFinancialProfile(profile *model.FinancialProfile) map[string]interface{} {
	data := map[string]interface{}{
		"showIncome": profile.ShowIncome,
		"showAssets": profile.ShowAssets,
	}
	if profile.TotalIncome != 0 {
		data["totalIncome"] = profile.TotalIncome
	}
	if profile.ShowIncomeAmounts {
		data["showIncomeAmounts"] = profile.ShowIncomeAmounts
	}
	if profile.ShowBankAccounts != nil {
		data["showBankAccounts"] = *profile.ShowBankAccounts
	}
	if profile.ShowCreditCards != nil {
		data["showCreditCards"] = *profile.ShowCreditCards
	}
	if profile.ShowInvestments != nil {
		data["showInvestments"] = *profile.ShowInvestments
	}
	if profile.ShowLoans != nil {
		data["showLoans"] = *profile.ShowLoans
	}

	if len(profile.IncomeBreakdown) > 0 {
		items := make([]map[string]interface{}, 0, len(profile.IncomeBreakdown))
		for _, source := range profile.IncomeBreakdown {
			items = append(items, map[string]interface{}{
				"id":        source.ID,
				"name":      source.Name,
				"amount":    source.Amount,
				"type":      string(source.Type),
				"frequency": string(source.Frequency),
			})
		}
		data["incomeBreakdown"] = items
	}
	if len(profile.BankAccounts) > 0 {
		items := make([]map[string]interface{}, 0, len(profile.BankAccounts))
		for _, account := range profile.BankAccounts {
			m := map[string]interface{}{
				"id":   account.ID,
				"name": account.Name,
				"type": string(account.Type),
			}
			if account.Description != "" {
				m["description"] = account.Description
			}
			items = append(items, m)
		}
		data["bankAccounts"] = items
	}
	if len(profile.CreditCards) > 0 {
		items := make([]map[string]interface{}, 0, len(profile.CreditCards))
		for _, card := range profile.CreditCards {
			m := map[string]interface{}{
				"id":   card.ID,
				"name": card.Name,
			}
			if card.Type != "" {
				m["type"] = card.Type
			}
			if len(card.Benefits) > 0 {
				m["benefits"] = card.Benefits
			}
			items = append(items, m)
		}
		data["creditCards"] = items
	}
	if len(profile.Investments) > 0 {
		items := make([]map[string]interface{}, 0, len(profile.Investments))
		for _, investment := range profile.Investments {
			m := map[string]interface{}{
				"id":   investment.ID,
				"name": investment.Name,
				"type": string(investment.Type),
			}
			if investment.Category != "" {
				m["category"] = investment.Category
			}
			if investment.Value != nil {
				m["value"] = *investment.Value
			}
			if investment.ReturnRate != nil {
				m["returnRate"] = *investment.ReturnRate
			}
			items = append(items, m)
		}
		data["investments"] = items
	}
	if len(profile.Loans) > 0 {
		items := make([]map[string]interface{}, 0, len(profile.Loans))
		for _, loan := range profile.Loans {
			m := map[string]interface{}{
				"id":   loan.ID,
				"name": loan.Name,
				"type": string(loan.Type),
			}
			if loan.Lender != "" {
				m["lender"] = loan.Lender
			}
			items = append(items, m)
		}
		data["loans"] = items
	}
	return data
}
