package user

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kitokazu/gymunyfu/config"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/service"
	"github.com/kitokazu/gymunyfu/internal/storage"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	userService *service.UserService
	storage     storage.Uploader
}

func NewProfileHandler(userService *service.UserService, storage storage.Uploader) *ProfileHandler {
	return &ProfileHandler{userService, storage}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var updateData struct {
		DisplayName string   `json:"display_name"`
		Bio         string   `json:"bio"`
		Occupation  []string `json:"occupation"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		util.Logger.Warn("更新用户资料失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	// 只更新允许用户修改的字段
	fields := make(map[string]interface{})
	if updateData.DisplayName != "" {
		fields["displayName"] = updateData.DisplayName
	}
	if updateData.Bio != "" {
		fields["bio"] = updateData.Bio
	}
	if updateData.Occupation != nil {
		fields["occupation"] = updateData.Occupation
	}

	if err := h.userService.UpdateUser(c.Request.Context(), userID, fields); err != nil {
		util.Logger.Error("更新用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "资料更新成功")
}

// UpdateFinancialProfile 整体替换当前用户的财务资料
func (h *ProfileHandler) UpdateFinancialProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var profile model.FinancialProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		util.Logger.Warn("更新财务资料失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.userService.UpdateFinancialProfile(c.Request.Context(), userID, &profile); err != nil {
		util.Logger.Error("更新财务资料失败", zap.Error(err), zap.String("user_id", userID))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "财务资料更新成功")
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetString("user_id")

	file, err := c.FormFile("avatar")
	if err != nil {
		util.Logger.Error("获取上传文件失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法获取上传文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("avatars/%s/%s", userID, filename)

	avatarURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传头像失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传头像失败", err))
		return
	}

	if config.AppConfig.StorageBackend == "local" {
		avatarURL = fmt.Sprintf("%s/uploads/%s", config.AppConfig.BackendURL, avatarURL)
	}

	// 头像冗余在帖子和评论上，由服务层异步扇出
	if err := h.userService.UpdateAvatar(c.Request.Context(), userID, avatarURL); err != nil {
		util.Logger.Error("更新用户头像失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"avatar_url": avatarURL,
	}, "头像上传成功")
}

func (h *ProfileHandler) UploadCoverImage(c *gin.Context) {
	userID := c.GetString("user_id")

	file, err := c.FormFile("cover")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法获取上传文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("covers/%s/%s", userID, filename)

	coverURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传封面失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传封面失败", err))
		return
	}

	if config.AppConfig.StorageBackend == "local" {
		coverURL = fmt.Sprintf("%s/uploads/%s", config.AppConfig.BackendURL, coverURL)
	}

	if err := h.userService.UpdateUser(c.Request.Context(), userID, map[string]interface{}{"coverImage": coverURL}); err != nil {
		util.Logger.Error("更新封面失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"cover_url": coverURL,
	}, "封面上传成功")
}
