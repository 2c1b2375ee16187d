package user

import (
	"github.com/gin-gonic/gin"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/service"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

// SyncHandler 在身份提供方登录成功后同步本地用户文档
type SyncHandler struct {
	userService *service.UserService
}

func NewSyncHandler(userService *service.UserService) *SyncHandler {
	return &SyncHandler{userService}
}

// SyncUser 幂等地创建或返回当前登录用户的文档。
// 用户ID来自令牌，不信任请求体。
func (h *SyncHandler) SyncUser(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Username    string `json:"username" binding:"required,handle"`
		DisplayName string `json:"display_name" binding:"required,max=50"`
		Email       string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Logger.Warn("同步用户失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.userService.SyncUser(c.Request.Context(), userID, req.Username, req.DisplayName, req.Email)
	if err != nil {
		util.Logger.Error("同步用户失败", zap.Error(err), zap.String("user_id", userID))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

// CheckUsername 查询用户名是否已被占用
func (h *SyncHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if !util.IsValidHandle(username) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "无效的用户名"))
		return
	}

	taken, err := h.userService.IsUsernameTaken(c.Request.Context(), username)
	if err != nil {
		util.Logger.Error("查询用户名失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"taken": taken,
	}, "")
}
