package user

import (
	"github.com/gin-gonic/gin"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/service"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

// UserHandler 公开用户查询接口，财务资料按可见性裁剪
type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
}

func NewUserHandler(userService *service.UserService, followService *service.FollowService) *UserHandler {
	return &UserHandler{userService, followService}
}

// 返回给非本人查看者之前裁剪财务资料
func (h *UserHandler) project(user *model.User, viewerID string) *model.User {
	projected := *user
	projected.FinancialProfile = h.userService.VisibleFinancialProfile(user, viewerID)
	if user.ID != viewerID {
		projected.Email = ""
	}
	return &projected
}

func (h *UserHandler) GetUser(c *gin.Context) {
	viewerID := c.GetString("user_id")

	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": h.project(user, viewerID),
	}, "")
}

func (h *UserHandler) GetUserByUsername(c *gin.Context) {
	viewerID := c.GetString("user_id")

	user, err := h.userService.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": h.project(user, viewerID),
	}, "")
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	viewerID := c.GetString("user_id")

	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		util.Logger.Error("获取用户列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	projected := make([]*model.User, 0, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		projected = append(projected, h.project(u, viewerID))
		ids = append(ids, u.ID)
	}

	resp := gin.H{"users": projected}
	if viewerID != "" {
		statuses, err := h.followService.FollowStatuses(c.Request.Context(), viewerID, ids)
		if err != nil {
			util.Logger.Error("获取关注状态失败", zap.Error(err))
			errors.HandleError(c, err)
			return
		}
		resp["follow_statuses"] = statuses
	}

	errors.HandleSuccess(c, resp, "")
}
