package controller

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dorse_dev_v1_202608/internal/api/dto"
	"dorse_dev_v1_202608/internal/media"
	"dorse_dev_v1_202608/internal/middleware"
	"dorse_dev_v1_202608/internal/service"
	"dorse_dev_v1_202608/internal/taxonomy"
)

// ==================== 控制器 ====================

// ListingController 发布会话控制器
type ListingController struct {
	publishService *service.PublishService
	aiService      *service.AIService
}

func NewListingController(publishService *service.PublishService, aiService *service.AIService) *ListingController {
	return &ListingController{publishService: publishService, aiService: aiService}
}

// ==================== 会话生命周期 ====================

// StartSession 开启发布会话
// @Summary 解析分类链并开启发布会话
// @Tags Listing
// @Accept json
// @Produce json
// @Param body body dto.StartSessionRequest true "分类 slug 链"
// @Success 201 {object} dto.StartSessionResult
// @Router /api/listings [post]
func (ctrl *ListingController) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if uid := middleware.CurrentUserID(c); uid > 0 {
		req.UserID = uid
	}

	result, err := ctrl.publishService.StartSession(c.Request.Context(), &req)
	if err != nil {
		if _, ok := err.(*taxonomy.ResolutionError); ok {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    404,
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "开启会话失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// ListSessions 会话列表
// @Summary 查询当前用户的发布会话
// @Tags Listing
// @Param user_id query int false "用户ID"
// @Param status query string false "会话状态"
// @Success 200 {array} dto.SessionResponse
// @Router /api/listings [get]
func (ctrl *ListingController) ListSessions(c *gin.Context) {
	var req dto.ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}
	if uid := middleware.CurrentUserID(c); uid > 0 {
		req.UserID = uid
	}

	sessions, total, err := ctrl.publishService.ListSessions(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"items": sessions, "total": total},
	})
}

// Abandon 放弃会话
// @Summary 放弃发布会话并回收媒体
// @Tags Listing
// @Param session_id path int true "会话ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/listings/{session_id} [delete]
func (ctrl *ListingController) Abandon(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	if err := ctrl.publishService.Abandon(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// ==================== 表单编辑 ====================

// SetFields 批量写字段
// @Summary 写入表单字段
// @Tags Listing
// @Accept json
// @Param session_id path int true "会话ID"
// @Param body body dto.SetFieldsRequest true "字段键值"
// @Success 200 {object} map[string]interface{}
// @Router /api/listings/{session_id}/fields [patch]
func (ctrl *ListingController) SetFields(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	var req dto.SetFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if err := ctrl.publishService.SetFields(c.Request.Context(), sessionID, req.Fields); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"code":    409,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// SetFeatures 写特性勾选组
// @Summary 写入特性勾选
// @Tags Listing
// @Accept json
// @Param session_id path int true "会话ID"
// @Param body body dto.SetFeaturesRequest true "特性组与勾选项"
// @Success 200 {object} map[string]interface{}
// @Router /api/listings/{session_id}/features [put]
func (ctrl *ListingController) SetFeatures(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	var req dto.SetFeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if err := ctrl.publishService.SetFeatures(c.Request.Context(), sessionID, req.Group, req.Selected); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// Advance 向导步进
// @Summary 当前步校验通过则进入下一步
// @Tags Listing
// @Param session_id path int true "会话ID"
// @Success 200 {object} dto.StepResult
// @Router /api/listings/{session_id}/advance [post]
func (ctrl *ListingController) Advance(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	result, err := ctrl.publishService.Advance(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// Validate 全量校验
// @Summary 全量校验当前表单
// @Tags Listing
// @Param session_id path int true "会话ID"
// @Success 200 {object} dto.StepResult
// @Router /api/listings/{session_id}/validate [get]
func (ctrl *ListingController) Validate(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	result, err := ctrl.publishService.Validate(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// ==================== 位置 ====================

// Cities 城市列表
// @Summary 城市列表
// @Tags Location
// @Success 200 {array} model.City
// @Router /api/cities [get]
func (ctrl *ListingController) Cities(c *gin.Context) {
	cities, err := ctrl.publishService.Cities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    cities,
	})
}

// Districts 拉取区县并落地到会话
// @Summary 按城市拉取区县
// @Tags Location
// @Param session_id path int true "会话ID"
// @Param city_id query int true "城市ID"
// @Success 200 {object} dto.DistrictsResponse
// @Router /api/listings/{session_id}/districts [get]
func (ctrl *ListingController) Districts(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	cityID, err := strconv.ParseInt(c.Query("city_id"), 10, 64)
	if err != nil || cityID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的城市ID",
		})
		return
	}

	result, err := ctrl.publishService.LoadDistricts(c.Request.Context(), sessionID, cityID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// ==================== 媒体 ====================

// AddPhotos 批量上传图库图片
// @Summary 批量添加图库图片
// @Tags Media
// @Accept multipart/form-data
// @Param session_id path int true "会话ID"
// @Param photos formData file true "图片文件 (可多个)"
// @Success 200 {object} dto.MediaStateResponse
// @Router /api/listings/{session_id}/photos [post]
func (ctrl *ListingController) AddPhotos(c *gin.Context) {
	ctrl.addMedia(c, "photos", ctrl.publishService.AddPhotos)
}

// AddVideos 批量上传视频
// @Summary 批量添加视频
// @Tags Media
// @Accept multipart/form-data
// @Param session_id path int true "会话ID"
// @Param videos formData file true "视频文件 (可多个)"
// @Success 200 {object} dto.MediaStateResponse
// @Router /api/listings/{session_id}/videos [post]
func (ctrl *ListingController) AddVideos(c *gin.Context) {
	ctrl.addMedia(c, "videos", ctrl.publishService.AddVideos)
}

// SetShowcase 设置橱窗图
// @Summary 设置唯一橱窗图
// @Tags Media
// @Accept multipart/form-data
// @Param session_id path int true "会话ID"
// @Param photo formData file true "橱窗图片"
// @Success 200 {object} dto.MediaStateResponse
// @Router /api/listings/{session_id}/showcase [put]
func (ctrl *ListingController) SetShowcase(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少 photo 文件",
		})
		return
	}
	file, err := readUpload(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	state, err := ctrl.publishService.SetShowcase(c.Request.Context(), sessionID, file)
	if err != nil {
		ctrl.mediaError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    state,
	})
}

// RemoveMedia 删除媒体资产
// @Summary 删除单个媒体资产
// @Tags Media
// @Param session_id path int true "会话ID"
// @Param asset_id path string true "资产ID"
// @Success 200 {object} dto.MediaStateResponse
// @Router /api/listings/{session_id}/media/{asset_id} [delete]
func (ctrl *ListingController) RemoveMedia(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	state, err := ctrl.publishService.RemoveMedia(c.Request.Context(), sessionID, c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    state,
	})
}

// MediaState 会话媒体全貌
// @Summary 查询会话媒体
// @Tags Media
// @Param session_id path int true "会话ID"
// @Success 200 {object} dto.MediaStateResponse
// @Router /api/listings/{session_id}/media [get]
func (ctrl *ListingController) MediaState(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	state, err := ctrl.publishService.MediaState(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    state,
	})
}

// addMedia 多文件上传公共路径
func (ctrl *ListingController) addMedia(c *gin.Context, field string,
	add func(ctx context.Context, sessionID int64, files []media.File) (*dto.MediaStateResponse, error)) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	mpForm, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "multipart 解析失败: " + err.Error(),
		})
		return
	}

	headers := mpForm.File[field]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少 " + field + " 文件",
		})
		return
	}

	files := make([]media.File, 0, len(headers))
	for _, h := range headers {
		file, err := readUpload(h)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": err.Error(),
			})
			return
		}
		files = append(files, file)
	}

	state, err := add(c.Request.Context(), sessionID, files)
	if err != nil {
		ctrl.mediaError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    state,
	})
}

// mediaError 媒体校验错误统一翻译
func (ctrl *ListingController) mediaError(c *gin.Context, err error) {
	switch err.(type) {
	case *media.TooManyError, *media.TooLargeError, *media.InvalidKindError:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    422,
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
	}
}

// ==================== 提交 ====================

// Submit 提交发布
// @Summary 组装并提交广告
// @Tags Listing
// @Param session_id path int true "会话ID"
// @Success 200 {object} dto.SubmitResult
// @Router /api/listings/{session_id}/submit [post]
func (ctrl *ListingController) Submit(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	result, err := ctrl.publishService.Submit(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"code":    409,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// StreamProgress SSE 订阅提交进度
// @Summary SSE 实时推送提交进度
// @Tags Listing
// @Param session_id path int true "会话ID"
// @Produce text/event-stream
// @Router /api/listings/{session_id}/stream [get]
func (ctrl *ListingController) StreamProgress(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	progressCh := ctrl.publishService.Subscribe(sessionID)
	defer ctrl.publishService.Unsubscribe(sessionID, progressCh)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"time": time.Now().Unix()})
			c.Writer.Flush()
		case event, ok := <-progressCh:
			if !ok {
				return
			}
			data, _ := json.Marshal(event)
			c.SSEvent("progress", string(data))
			c.Writer.Flush()

			if event.Stage == "done" || event.Stage == "failed" {
				return
			}
		}
	}
}

// AdStatus 查询已发布广告状态
// @Summary 查询已发布广告在后端的状态
// @Tags Listing
// @Param session_id path int true "会话ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/listings/{session_id}/ad [get]
func (ctrl *ListingController) AdStatus(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	status, err := ctrl.publishService.AdStatus(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    status,
	})
}

// SuggestCopy AI 文案草稿
// @Summary 按已填参数生成标题与描述草稿
// @Tags Listing
// @Param session_id path int true "会话ID"
// @Success 200 {object} service.SuggestedCopy
// @Router /api/listings/{session_id}/suggest-copy [post]
func (ctrl *ListingController) SuggestCopy(c *gin.Context) {
	sessionID, ok := ctrl.sessionID(c)
	if !ok {
		return
	}

	specs, category, err := ctrl.publishService.CopyContext(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	result, err := ctrl.aiService.SuggestListingCopy(c.Request.Context(), category, specs)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": "文案生成失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// ==================== 工具 ====================

func (ctrl *ListingController) sessionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("session_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的会话ID",
		})
		return 0, false
	}
	return id, true
}

func readUpload(h *multipart.FileHeader) (media.File, error) {
	f, err := h.Open()
	if err != nil {
		return media.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return media.File{}, err
	}
	return media.File{Name: h.Filename, Data: data}, nil
}
