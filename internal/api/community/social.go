package community

import (
	"github.com/gin-gonic/gin"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/service"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

// SocialHandler 点赞与关注的翻转接口
type SocialHandler struct {
	likeService   *service.LikeService
	followService *service.FollowService
}

func NewSocialHandler(likeService *service.LikeService, followService *service.FollowService) *SocialHandler {
	return &SocialHandler{likeService, followService}
}

// TogglePostLike 翻转当前用户对帖子的点赞，返回翻转后的状态
func (h *SocialHandler) TogglePostLike(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	liked, err := h.likeService.TogglePostLike(c.Request.Context(), postID, userID)
	if err != nil {
		util.Logger.Error("翻转帖子点赞失败", zap.Error(err), zap.String("post_id", postID))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"liked": liked,
	}, "")
}

func (h *SocialHandler) ToggleCommentLike(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")
	commentID := c.Param("commentId")

	liked, err := h.likeService.ToggleCommentLike(c.Request.Context(), postID, commentID, userID)
	if err != nil {
		util.Logger.Error("翻转评论点赞失败", zap.Error(err), zap.String("comment_id", commentID))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"liked": liked,
	}, "")
}

// ToggleFollow 翻转当前用户对目标用户的关注关系
func (h *SocialHandler) ToggleFollow(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	following, err := h.followService.ToggleFollow(c.Request.Context(), userID, targetID)
	if err != nil {
		util.Logger.Error("翻转关注失败", zap.Error(err), zap.String("target_id", targetID))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"following": following,
	}, "")
}

func (h *SocialHandler) GetFollowStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	following, err := h.followService.IsFollowing(c.Request.Context(), userID, targetID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"following": following,
	}, "")
}

func (h *SocialHandler) GetFollowing(c *gin.Context) {
	ids, err := h.followService.GetFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Logger.Error("获取关注列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"following": ids,
	}, "")
}

func (h *SocialHandler) GetFollowers(c *gin.Context) {
	ids, err := h.followService.GetFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Logger.Error("获取粉丝列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"followers": ids,
	}, "")
}
