package community

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/kitokazu/gymunyfu/config"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
	"github.com/kitokazu/gymunyfu/internal/service"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

// StreamHandler 把存储层的实时订阅暴露为 SSE 流。
// 每次推送都是完整结果集，客户端整体替换本地状态。
type StreamHandler struct {
	postService    *service.PostService
	commentService *service.CommentService
}

func NewStreamHandler(postService *service.PostService, commentService *service.CommentService) *StreamHandler {
	return &StreamHandler{postService, commentService}
}

// 只保留最新一次推送，慢客户端收到的永远是最新快照
func replace[T any](updates chan T, v T) {
	select {
	case updates <- v:
	default:
		select {
		case <-updates:
		default:
		}
		updates <- v
	}
}

// StreamPosts 按查询条件订阅帖子流
func (h *StreamHandler) StreamPosts(c *gin.Context) {
	q := interfaces.PostQuery{
		Category: model.PostCategory(c.Query("category")),
		Tag:      model.PostTag(c.Query("tag")),
		Limit:    config.AppConfig.FeedLimit,
	}
	if q.Category != "" && !model.ValidCategory(q.Category) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "未知的帖子分类"))
		return
	}
	if q.Tag != "" && !model.ValidTag(q.Tag) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "未知的话题标签"))
		return
	}

	ctx := c.Request.Context()
	updates := make(chan []*model.Post, 1)

	stop, err := h.postService.Subscribe(ctx, q, func(posts []*model.Post) {
		replace(updates, posts)
	})
	if err != nil {
		util.Logger.Error("订阅帖子流失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	defer stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case posts := <-updates:
			c.SSEvent("posts", gin.H{"posts": posts})
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// StreamPost 订阅单个帖子文档，文档被删除时推送 deleted 事件并结束
func (h *StreamHandler) StreamPost(c *gin.Context) {
	postID := c.Param("id")

	ctx := c.Request.Context()
	updates := make(chan *model.Post, 1)

	stop, err := h.postService.SubscribeOne(ctx, postID, func(post *model.Post) {
		replace(updates, post)
	})
	if err != nil {
		util.Logger.Error("订阅帖子失败", zap.Error(err), zap.String("post_id", postID))
		errors.HandleError(c, err)
		return
	}
	defer stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case post := <-updates:
			if post == nil {
				c.SSEvent("deleted", gin.H{"id": postID})
				return false
			}
			c.SSEvent("post", gin.H{"post": post})
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// StreamComments 订阅帖子的评论流（创建时间正序）
func (h *StreamHandler) StreamComments(c *gin.Context) {
	postID := c.Param("id")

	ctx := c.Request.Context()
	updates := make(chan []*model.Comment, 1)

	stop, err := h.commentService.Subscribe(ctx, postID, func(comments []*model.Comment) {
		replace(updates, comments)
	})
	if err != nil {
		util.Logger.Error("订阅评论流失败", zap.Error(err), zap.String("post_id", postID))
		errors.HandleError(c, err)
		return
	}
	defer stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case comments := <-updates:
			c.SSEvent("comments", gin.H{"comments": comments})
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// StreamUserPosts 订阅某个用户的帖子流
func (h *StreamHandler) StreamUserPosts(c *gin.Context) {
	userID := c.Param("id")

	ctx := c.Request.Context()
	updates := make(chan []*model.Post, 1)

	stop, err := h.postService.SubscribeUserPosts(ctx, userID, func(posts []*model.Post) {
		replace(updates, posts)
	})
	if err != nil {
		util.Logger.Error("订阅用户帖子流失败", zap.Error(err), zap.String("user_id", userID))
		errors.HandleError(c, err)
		return
	}
	defer stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case posts := <-updates:
			c.SSEvent("posts", gin.H{"posts": posts})
			return true
		case <-ctx.Done():
			return false
		}
	})
}
