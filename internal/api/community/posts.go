package community

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kitokazu/gymunyfu/config"
	"github.com/kitokazu/gymunyfu/internal/errors"
	"github.com/kitokazu/gymunyfu/internal/model"
	"github.com/kitokazu/gymunyfu/internal/repository/interfaces"
	"github.com/kitokazu/gymunyfu/internal/service"
	"github.com/kitokazu/gymunyfu/internal/storage"
	"github.com/kitokazu/gymunyfu/internal/util"
	"go.uber.org/zap"
)

type PostHandler struct {
	postService *service.PostService
	userService *service.UserService
	likeService *service.LikeService
	storage     storage.Uploader
}

func NewPostHandler(postService *service.PostService, userService *service.UserService, likeService *service.LikeService, storage storage.Uploader) *PostHandler {
	return &PostHandler{postService, userService, likeService, storage}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	// 解析多部分表单
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		util.Logger.Error("无法解析表单数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法解析表单数据", err))
		return
	}

	input := service.CreatePostInput{
		Content:  c.PostForm("content"),
		Category: model.PostCategory(c.PostForm("category")),
	}
	for _, tag := range c.PostFormArray("tags[]") {
		input.Tags = append(input.Tags, model.PostTag(tag))
	}

	// 作者快照在写入时冗余进帖子文档
	author, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	// 处理多张图片
	if form, err := c.MultipartForm(); err == nil {
		for _, file := range form.File["images[]"] {
			filename := util.GenerateUniqueFilename(file.Filename)
			path := fmt.Sprintf("posts/%s/%s", userID, filename)
			imageURL, err := h.storage.UploadFile(file, path)
			if err != nil {
				util.Logger.Error("图片上传失败", zap.Error(err))
				errors.HandleError(c, errors.Wrap(errors.ErrInternal, "图片上传失败", err))
				return
			}
			if config.AppConfig.StorageBackend == "local" {
				imageURL = fmt.Sprintf("%s/uploads/%s", config.AppConfig.BackendURL, imageURL)
			}
			input.Images = append(input.Images, imageURL)
		}
	}

	post, err := h.postService.CreatePost(c.Request.Context(), author, input)
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"post": post,
	}, "帖子创建成功")
}

func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPostByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	// 点赞状态是查看者视角的派生字段
	if viewerID := c.GetString("user_id"); viewerID != "" {
		liked, err := h.likeService.IsPostLiked(c.Request.Context(), post.ID, viewerID)
		if err != nil {
			util.Logger.Warn("获取点赞状态失败", zap.Error(err), zap.String("post_id", post.ID))
		} else {
			post.IsLiked = liked
		}
	}

	errors.HandleSuccess(c, gin.H{
		"post": post,
	}, "")
}

// ListPosts 按创建时间倒序返回帖子，支持分类与标签过滤
func (h *PostHandler) ListPosts(c *gin.Context) {
	q := interfaces.PostQuery{
		Category: model.PostCategory(c.Query("category")),
		Tag:      model.PostTag(c.Query("tag")),
		Limit:    config.AppConfig.FeedLimit,
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			errors.HandleError(c, errors.New(errors.ErrValidation, "无效的limit参数"))
			return
		}
		q.Limit = n
	}
	if q.Category != "" && !model.ValidCategory(q.Category) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "未知的帖子分类"))
		return
	}
	if q.Tag != "" && !model.ValidTag(q.Tag) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "未知的话题标签"))
		return
	}

	posts, err := h.postService.ListPosts(c.Request.Context(), q)
	if err != nil {
		util.Logger.Error("获取帖子列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	h.attachLikeStatuses(c, posts)

	errors.HandleSuccess(c, gin.H{
		"posts": posts,
	}, "")
}

func (h *PostHandler) GetUserPosts(c *gin.Context) {
	posts, err := h.postService.GetUserPosts(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Logger.Error("获取用户帖子失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	h.attachLikeStatuses(c, posts)

	errors.HandleSuccess(c, gin.H{
		"posts": posts,
	}, "")
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	post, err := h.postService.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if post.UserID != userID {
		errors.HandleError(c, errors.New(errors.ErrForbidden, "只能编辑自己的帖子"))
		return
	}

	var req struct {
		Content  string             `json:"content"`
		Category model.PostCategory `json:"category"`
		Tags     []model.PostTag    `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	updates := make(map[string]interface{})
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if req.Category != "" {
		if !model.ValidCategory(req.Category) {
			errors.HandleError(c, errors.New(errors.ErrValidation, "未知的帖子分类"))
			return
		}
		updates["category"] = string(req.Category)
	}
	if req.Tags != nil {
		tags := make([]string, 0, len(req.Tags))
		for _, tag := range req.Tags {
			if !model.ValidTag(tag) {
				errors.HandleError(c, errors.New(errors.ErrValidation, "未知的话题标签"))
				return
			}
			tags = append(tags, string(tag))
		}
		updates["tags"] = tags
	}

	if err := h.postService.UpdatePost(c.Request.Context(), postID, updates); err != nil {
		util.Logger.Error("更新帖子失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "帖子更新成功")
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	post, err := h.postService.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	if post.UserID != userID {
		errors.HandleError(c, errors.New(errors.ErrForbidden, "只能删除自己的帖子"))
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), postID); err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.String("post_id", postID))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "帖子删除成功")
}

// 匿名查看者跳过，失败只记录日志不影响列表返回
func (h *PostHandler) attachLikeStatuses(c *gin.Context, posts []*model.Post) {
	viewerID := c.GetString("user_id")
	if viewerID == "" || len(posts) == 0 {
		return
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	statuses, err := h.likeService.PostLikeStatuses(c.Request.Context(), ids, viewerID)
	if err != nil {
		util.Logger.Warn("获取点赞状态失败", zap.Error(err))
		return
	}
	for _, p := range posts {
		p.IsLiked = statuses[p.ID]
	}
}
