package community

import (
	"github.com/gin-gonic/gin"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/service"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
	userService    *service.UserService
	likeService    *service.LikeService
}

func NewCommentHandler(commentService *service.CommentService, userService *service.UserService, likeService *service.LikeService) *CommentHandler {
	return &CommentHandler{commentService, userService, likeService}
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	author, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), postID, author, req.Content)
	if err != nil {
		util.Logger.Error("添加评论失败", zap.Error(err), zap.String("post_id", postID))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"comment": comment,
	}, "评论成功")
}

// ListComments 按创建时间正序返回帖子的评论
func (h *CommentHandler) ListComments(c *gin.Context) {
	postID := c.Param("id")

	comments, err := h.commentService.ListComments(c.Request.Context(), postID)
	if err != nil {
		util.Logger.Error("获取评论列表失败", zap.Error(err), zap.String("post_id", postID))
		errors.HandleError(c, err)
		return
	}

	h.attachLikeStatuses(c, postID, comments)

	errors.HandleSuccess(c, gin.H{
		"comments": comments,
	}, "")
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")
	commentID := c.Param("commentId")

	comment, err := h.commentService.GetCommentByID(c.Request.Context(), postID, commentID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if comment.UserID != userID {
		errors.HandleError(c, errors.New(errors.ErrForbidden, "只能删除自己的评论"))
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), postID, commentID); err != nil {
		util.Logger.Error("删除评论失败", zap.Error(err), zap.String("comment_id", commentID))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "评论删除成功")
}

func (h *CommentHandler) attachLikeStatuses(c *gin.Context, postID string, comments []*model.Comment) {
	viewerID := c.GetString("user_id")
	if viewerID == "" || len(comments) == 0 {
		return
	}

	ids := make([]string, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.ID)
	}
	statuses, err := h.likeService.CommentLikeStatuses(c.Request.Context(), postID, ids, viewerID)
	if err != nil {
		util.Logger.Warn("获取评论点赞状态失败", zap.Error(err))
		return
	}
	for _, cm := range comments {
		cm.IsLiked = statuses[cm.ID]
	}
}
