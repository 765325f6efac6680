package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"gorm.io/datatypes"

	"dorse_dev_v1_202608/internal/api/dto"
	"dorse_dev_v1_202608/internal/assemble"
	"dorse_dev_v1_202608/internal/auth"
	"dorse_dev_v1_202608/internal/form"
	"dorse_dev_v1_202608/internal/media"
	"dorse_dev_v1_202608/internal/model"
	"dorse_dev_v1_202608/internal/repository"
	"dorse_dev_v1_202608/internal/schema"
	"dorse_dev_v1_202608/internal/taxonomy"
	"dorse_dev_v1_202608/pkg/net"
)

// ==================== 外部服务依赖 ====================

// TaxonomyResolverInterface 分类解析接口
type TaxonomyResolverInterface interface {
	Resolve(ctx context.Context, slugs taxonomy.PathSlugs) (*model.CategoryPath, error)
	Cities(ctx context.Context) ([]model.City, error)
	Districts(ctx context.Context, cityID int64) (*taxonomy.DistrictList, error)
}

// ==================== 服务实现 ====================

// PublishService 发布编排服务
// 每个活动会话 = 一个表单控制器 + 一个媒体暂存管理器，都在内存里；
// 数据库只存可恢复的快照。提交的结果分类与流水在这里统一落库
type PublishService struct {
	resolver    TaxonomyResolverInterface
	dispatcher  net.Dispatcher
	tokens      auth.TokenProvider
	previews    media.PreviewFactory
	sessionRepo repository.ListingSessionRepository
	logRepo     repository.SubmissionLogRepository

	backendURL string

	// 活动会话
	liveMutex sync.RWMutex
	live      map[int64]*liveSession

	// 进度订阅管理
	subscribers     map[int64][]chan dto.ProgressEvent
	subscriberMutex sync.RWMutex
}

// liveSession 内存态会话
// 表单控制器本身不加锁；gin 可能并发收到同一会话的请求，
// 所以对控制器的每次进入都要持本会话锁串行化
type liveSession struct {
	mu         sync.Mutex
	userID     int64
	controller *form.Controller
}

// NewPublishService 创建发布服务
func NewPublishService(
	resolver TaxonomyResolverInterface,
	dispatcher net.Dispatcher,
	tokens auth.TokenProvider,
	previews media.PreviewFactory,
	sessionRepo repository.ListingSessionRepository,
	logRepo repository.SubmissionLogRepository,
	backendURL string,
) *PublishService {
	return &PublishService{
		resolver:    resolver,
		dispatcher:  dispatcher,
		tokens:      tokens,
		previews:    previews,
		sessionRepo: sessionRepo,
		logRepo:     logRepo,
		backendURL:  backendURL,
		live:        make(map[int64]*liveSession),
		subscribers: make(map[int64][]chan dto.ProgressEvent),
	}
}

// ==================== 进度订阅 ====================

// Subscribe 订阅会话进度
func (s *PublishService) Subscribe(sessionID int64) chan dto.ProgressEvent {
	s.subscriberMutex.Lock()
	defer s.subscriberMutex.Unlock()

	ch := make(chan dto.ProgressEvent, 10)
	s.subscribers[sessionID] = append(s.subscribers[sessionID], ch)
	return ch
}

// Unsubscribe 取消订阅
func (s *PublishService) Unsubscribe(sessionID int64, ch chan dto.ProgressEvent) {
	s.subscriberMutex.Lock()
	defer s.subscriberMutex.Unlock()

	subs := s.subscribers[sessionID]
	for i, sub := range subs {
		if sub == ch {
			s.subscribers[sessionID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(s.subscribers[sessionID]) == 0 {
		delete(s.subscribers, sessionID)
	}
}

// notifyProgress 通知进度
func (s *PublishService) notifyProgress(sessionID int64, event dto.ProgressEvent) {
	s.subscriberMutex.RLock()
	defer s.subscriberMutex.RUnlock()

	for _, ch := range s.subscribers[sessionID] {
		select {
		case ch <- event:
		default:
			// channel 已满，跳过
		}
	}
}

// ==================== 开启会话 ====================

// StartSession 解析分类链并开启发布会话
func (s *PublishService) StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResult, error) {
	path, err := s.resolver.Resolve(ctx, taxonomy.PathSlugs{
		Category: req.Category,
		Brand:    req.Brand,
		Model:    req.Model,
		Variant:  req.Variant,
	})
	if err != nil {
		return nil, err
	}

	sch := schema.SchemaFor(path.CategorySlug(), path.VariantSlug())

	session := &model.ListingSession{
		UserID:       req.UserID,
		CategorySlug: path.CategorySlug(),
		VariantSlug:  path.VariantSlug(),
		Endpoint:     sch.Endpoint,
		Status:       model.SessionStatusEditing,
		FieldValues:  model.JSONMap{},
		Features:     model.JSONMap{},
	}
	if path.Category != nil {
		session.CategoryID = path.Category.ID
	}
	if path.Brand != nil {
		session.BrandSlug = path.Brand.Slug
		session.BrandID = path.Brand.ID
	}
	if path.Model != nil {
		session.ModelSlug = path.Model.Slug
		session.ModelID = path.Model.ID
	}
	if path.Variant != nil {
		session.VariantID = path.Variant.ID
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("会话落库失败: %v", err)
	}

	staging := media.NewManager(s.previews, media.Limits{
		MaxGallery:    sch.MaxGallery,
		MaxVideos:     sch.MaxVideos,
		MaxVideoBytes: sch.MaxVideoBytes,
	})
	controller := form.NewController(sch, path, staging)

	s.liveMutex.Lock()
	s.live[session.ID] = &liveSession{userID: req.UserID, controller: controller}
	s.liveMutex.Unlock()

	log.Printf("[Publish] 会话 %d 开启: %s/%s", session.ID, session.CategorySlug, session.VariantSlug)

	return buildStartResult(session.ID, sch, path), nil
}

func buildStartResult(sessionID int64, sch schema.FieldSchema, path *model.CategoryPath) *dto.StartSessionResult {
	result := &dto.StartSessionResult{
		SessionID:     sessionID,
		Endpoint:      sch.Endpoint,
		Steps:         sch.Steps,
		MaxGallery:    sch.MaxGallery,
		MaxVideos:     sch.MaxVideos,
		MaxVideoBytes: sch.MaxVideoBytes,
	}
	for _, f := range sch.Fields {
		result.Fields = append(result.Fields, dto.FieldSpecVO{
			Key: f.Key, Type: string(f.Type), Required: f.Required, Enum: f.Enum, Step: f.Step,
		})
	}
	for _, g := range sch.FeatureGroups {
		result.FeatureGroups = append(result.FeatureGroups, dto.FeatureGroupVO{Key: g.Key, Options: g.Options})
	}
	for _, node := range []*model.TaxonomyNode{path.Category, path.Brand, path.Model, path.Variant} {
		if node != nil {
			result.Path = append(result.Path, dto.TaxonomyNodeVO{ID: node.ID, Name: node.Name, Slug: node.Slug})
		}
	}
	return result
}

// getLive 取活动会话
func (s *PublishService) getLive(sessionID int64) (*liveSession, error) {
	s.liveMutex.RLock()
	defer s.liveMutex.RUnlock()

	live, ok := s.live[sessionID]
	if !ok {
		return nil, fmt.Errorf("会话 %d 不存在或已结束", sessionID)
	}
	return live, nil
}

// ==================== 表单编辑 ====================

// SetFields 批量写字段并持久化快照
func (s *PublishService) SetFields(ctx context.Context, sessionID int64, fields map[string]string) error {
	live, err := s.getLive(sessionID)
	if err != nil {
		return err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	// cityId 先写，保证区县清空语义不被同批字段顺序干扰
	if v, ok := fields["cityId"]; ok {
		if err := live.controller.SetField("cityId", v); err != nil {
			return err
		}
	}
	for key, value := range fields {
		if key == "cityId" {
			continue
		}
		if err := live.controller.SetField(key, value); err != nil {
			return err
		}
	}

	return s.persistSnapshot(ctx, sessionID, live)
}

// SetFeatures 写特性勾选组
func (s *PublishService) SetFeatures(ctx context.Context, sessionID int64, group string, selected []string) error {
	live, err := s.getLive(sessionID)
	if err != nil {
		return err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	if err := live.controller.SetFeatures(group, selected); err != nil {
		return err
	}
	return s.persistSnapshot(ctx, sessionID, live)
}

// Advance 步进
func (s *PublishService) Advance(ctx context.Context, sessionID int64) (*dto.StepResult, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	result := live.controller.Advance()
	if result.Ok() {
		_ = s.persistSnapshot(ctx, sessionID, live)
	}
	return &dto.StepResult{Step: live.controller.Step(), Failures: toFailureVOs(result.Failures)}, nil
}

// Validate 全量校验 (只读)
func (s *PublishService) Validate(sessionID int64) (*dto.StepResult, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	result := live.controller.Validate()
	return &dto.StepResult{Step: live.controller.Step(), Failures: toFailureVOs(result.Failures)}, nil
}

// ==================== 位置联动 ====================

// Cities 城市列表
func (s *PublishService) Cities(ctx context.Context) ([]model.City, error) {
	return s.resolver.Cities(ctx)
}

// LoadDistricts 拉取区县并尝试落地到会话
// 用户在响应途中换了城市时 Applied=false，调用方丢弃即可
func (s *PublishService) LoadDistricts(ctx context.Context, sessionID int64, cityID int64) (*dto.DistrictsResponse, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}

	list, err := s.resolver.Districts(ctx, cityID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	resp := &dto.DistrictsResponse{
		CityID:  list.CityID,
		Applied: live.controller.ApplyDistricts(list),
	}
	for _, d := range list.Items {
		resp.Districts = append(resp.Districts, dto.DistrictVO{ID: d.ID, Name: d.Name})
	}
	return resp, nil
}

// ==================== 媒体 ====================

// AddPhotos 批量添加图库图片
func (s *PublishService) AddPhotos(ctx context.Context, sessionID int64, files []media.File) (*dto.MediaStateResponse, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	if err := live.controller.Staging().AddGallery(files); err != nil {
		return nil, err
	}
	_ = s.persistSnapshot(ctx, sessionID, live)
	return s.mediaState(live), nil
}

// AddVideos 批量添加视频
func (s *PublishService) AddVideos(ctx context.Context, sessionID int64, files []media.File) (*dto.MediaStateResponse, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	if err := live.controller.Staging().AddVideos(files); err != nil {
		return nil, err
	}
	_ = s.persistSnapshot(ctx, sessionID, live)
	return s.mediaState(live), nil
}

// SetShowcase 设置橱窗图
func (s *PublishService) SetShowcase(ctx context.Context, sessionID int64, file media.File) (*dto.MediaStateResponse, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	if err := live.controller.Staging().SetShowcase(file); err != nil {
		return nil, err
	}
	_ = s.persistSnapshot(ctx, sessionID, live)
	return s.mediaState(live), nil
}

// RemoveMedia 删除单个媒体资产
func (s *PublishService) RemoveMedia(ctx context.Context, sessionID int64, assetID string) (*dto.MediaStateResponse, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	if err := live.controller.Staging().Remove(assetID); err != nil {
		return nil, err
	}
	_ = s.persistSnapshot(ctx, sessionID, live)
	return s.mediaState(live), nil
}

// MediaState 会话媒体全貌
func (s *PublishService) MediaState(sessionID int64) (*dto.MediaStateResponse, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}
	return s.mediaState(live), nil
}

func (s *PublishService) mediaState(live *liveSession) *dto.MediaStateResponse {
	staging := live.controller.Staging()
	resp := &dto.MediaStateResponse{Gallery: []dto.MediaAssetVO{}, Videos: []dto.MediaAssetVO{}}

	if sc := staging.Showcase(); sc != nil {
		vo := toAssetVO(*sc)
		resp.Showcase = &vo
	}
	for _, a := range staging.Gallery() {
		resp.Gallery = append(resp.Gallery, toAssetVO(a))
	}
	for _, v := range staging.Videos() {
		resp.Videos = append(resp.Videos, toAssetVO(v))
	}
	return resp
}

func toAssetVO(a media.Asset) dto.MediaAssetVO {
	return dto.MediaAssetVO{
		ID:         a.ID,
		Name:       a.Name,
		Kind:       string(a.Kind),
		Showcase:   a.Role == media.RoleShowcase,
		PreviewURL: a.PreviewURL,
	}
}

// ==================== 提交 ====================

// Submit 组装并提交
// 未登录时一个字节都不发出去；失败会话回到编辑态，字段与媒体原样保留
func (s *PublishService) Submit(ctx context.Context, sessionID int64) (*dto.SubmitResult, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	// 登录态前置检查
	token, err := s.tokens.Token(ctx)
	if errors.Is(err, auth.ErrUnauthenticated) {
		s.logAttempt(ctx, sessionID, 0, model.OutcomeUnauthenticated, "未登录", nil)
		return &dto.SubmitResult{Outcome: model.OutcomeUnauthenticated, Message: "请先登录"}, nil
	}
	if err != nil {
		return nil, err
	}

	s.notifyProgress(sessionID, dto.ProgressEvent{SessionID: sessionID, Stage: "validating", Progress: 10, Message: "校验表单"})

	result, err := live.controller.BeginSubmit()
	if err != nil {
		if !result.Ok() {
			return &dto.SubmitResult{Outcome: model.OutcomeRejected, Message: "校验未通过", Failures: toFailureVOs(result.Failures)}, nil
		}
		return nil, err
	}

	if err := s.sessionRepo.MarkSubmitting(ctx, sessionID); err != nil {
		log.Printf("[Publish] 会话 %d 状态落库失败: %v", sessionID, err)
	}

	s.notifyProgress(sessionID, dto.ProgressEvent{SessionID: sessionID, Stage: "assembling", Progress: 30, Message: "组装载荷"})

	req, err := assemble.Build(s.backendURL, live.controller)
	if err != nil {
		live.controller.FinishSubmit(false)
		_ = s.sessionRepo.MarkFailed(ctx, sessionID, err.Error())
		return nil, err
	}
	req.Headers["Authorization"] = "Bearer " + token

	s.notifyProgress(sessionID, dto.ProgressEvent{SessionID: sessionID, Stage: "uploading", Progress: 50, Message: "上传中"})

	resp, err := s.dispatcher.SendMultipart(ctx, req)
	if err != nil {
		// 网络层失败：会话回编辑态，媒体不动，可原地重试
		live.controller.FinishSubmit(false)
		_ = s.sessionRepo.MarkFailed(ctx, sessionID, err.Error())
		s.logAttempt(ctx, sessionID, 0, model.OutcomeNetworkError, err.Error(), req)
		s.notifyProgress(sessionID, dto.ProgressEvent{SessionID: sessionID, Stage: "failed", Progress: 100, Message: "网络错误"})
		return &dto.SubmitResult{Outcome: model.OutcomeNetworkError, Message: err.Error()}, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	outcome := categorizeStatus(resp.StatusCode)

	if outcome == model.OutcomeCreated {
		adID := extractAdID(body)
		live.controller.FinishSubmit(true)
		_ = s.sessionRepo.MarkSucceeded(ctx, sessionID, adID)
		s.logAttempt(ctx, sessionID, resp.StatusCode, outcome, adID, req)
		s.notifyProgress(sessionID, dto.ProgressEvent{SessionID: sessionID, Stage: "done", Progress: 100, Message: "发布成功", Data: adID})

		// 成功后媒体暂存完成使命，回收全部预览句柄
		live.controller.Staging().Teardown()
		s.liveMutex.Lock()
		delete(s.live, sessionID)
		s.liveMutex.Unlock()

		log.Printf("[Publish] 会话 %d 发布成功, 广告ID %s", sessionID, adID)
		return &dto.SubmitResult{Outcome: outcome, StatusCode: resp.StatusCode, AdID: adID}, nil
	}

	// 非成功响应：会话回编辑态等待修正或重试
	message := truncate(string(body), 512)
	live.controller.FinishSubmit(false)
	_ = s.sessionRepo.MarkFailed(ctx, sessionID, fmt.Sprintf("[%d] %s", resp.StatusCode, message))
	s.logAttempt(ctx, sessionID, resp.StatusCode, outcome, message, req)
	s.notifyProgress(sessionID, dto.ProgressEvent{SessionID: sessionID, Stage: "failed", Progress: 100, Message: outcome})

	return &dto.SubmitResult{Outcome: outcome, StatusCode: resp.StatusCode, Message: message}, nil
}

// categorizeStatus 响应码到结果分类
func categorizeStatus(code int) string {
	switch {
	case code == http.StatusOK || code == http.StatusCreated:
		return model.OutcomeCreated
	case code == http.StatusRequestEntityTooLarge:
		return model.OutcomePayloadTooLarge
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return model.OutcomeUnauthenticated
	case code >= 500:
		return model.OutcomeServerError
	default:
		return model.OutcomeRejected
	}
}

// extractAdID 从后端响应提取广告ID (id 字段可能是数字或字符串)
func extractAdID(body []byte) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	switch id := parsed["id"].(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return ""
	}
}

// logAttempt 提交流水落库
func (s *PublishService) logAttempt(ctx context.Context, sessionID int64, statusCode int, outcome, message string, req *net.MultipartRequest) {
	entry := &model.SubmissionLog{
		SessionID:  sessionID,
		StatusCode: statusCode,
		Outcome:    outcome,
		Message:    truncate(message, 1024),
	}
	if req != nil {
		if raw, err := json.Marshal(assemble.FieldKeys(req)); err == nil {
			entry.FieldKeys = datatypes.JSON(raw)
		}
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		log.Printf("[Publish] 提交流水落库失败: %v", err)
	}
}

// CopyContext 文案生成所需的上下文：类目显示名 + 已填参数
func (s *PublishService) CopyContext(sessionID int64) (map[string]string, string, error) {
	live, err := s.getLive(sessionID)
	if err != nil {
		return nil, "", err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	category := live.controller.Schema().CategoryKey
	path := live.controller.Path()
	if path != nil && path.Category != nil {
		category = path.Category.Name
		if path.Variant != nil {
			category += " / " + path.Variant.Name
		}
	}

	specs := map[string]string{}
	for k, v := range live.controller.Values() {
		if v != "" {
			specs[k] = v
		}
	}
	return specs, category, nil
}

// ==================== 放弃与恢复 ====================

// Abandon 放弃会话：回收媒体句柄并软删会话
func (s *PublishService) Abandon(ctx context.Context, sessionID int64) error {
	live, err := s.getLive(sessionID)
	if err != nil {
		return err
	}

	live.mu.Lock()
	live.controller.Abandon()
	live.mu.Unlock()

	s.liveMutex.Lock()
	delete(s.live, sessionID)
	s.liveMutex.Unlock()

	log.Printf("[Publish] 会话 %d 已放弃", sessionID)
	return s.sessionRepo.Delete(ctx, sessionID)
}

// AdStatus 查询已发布广告在后端的当前状态 (审核中/上线/下架)
func (s *PublishService) AdStatus(ctx context.Context, sessionID int64) (map[string]interface{}, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.AdID == "" {
		return nil, errors.New("会话尚未发布成功")
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := net.BuildAdsGetRequest(ctx,
		fmt.Sprintf("%s/ads/%s/%s", s.backendURL, session.Endpoint, session.AdID), token)
	if err != nil {
		return nil, err
	}

	resp, err := s.dispatcher.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("广告状态查询失败 [%d]", resp.StatusCode)
	}

	var status map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&status); err != nil {
		return nil, fmt.Errorf("广告状态解析失败: %v", err)
	}
	return status, nil
}

// ReclaimSession 回收内存态会话 (过期清理任务调用)
// 只处理内存侧：媒体句柄回收 + 出活动表；数据库状态由调用方标记
func (s *PublishService) ReclaimSession(sessionID int64) {
	s.liveMutex.Lock()
	live, ok := s.live[sessionID]
	if ok {
		delete(s.live, sessionID)
	}
	s.liveMutex.Unlock()

	if ok {
		live.mu.Lock()
		live.controller.Abandon()
		live.mu.Unlock()
		log.Printf("[Publish] 会话 %d 过期回收", sessionID)
	}
}

// ListSessions 会话列表
func (s *PublishService) ListSessions(ctx context.Context, req *dto.ListSessionsRequest) ([]dto.SessionResponse, int64, error) {
	sessions, total, err := s.sessionRepo.List(ctx, repository.SessionFilter{
		UserID:   req.UserID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.SessionResponse{
			SessionID:    session.ID,
			CategorySlug: session.CategorySlug,
			VariantSlug:  session.VariantSlug,
			Status:       session.Status,
			Step:         session.Step,
			AdID:         session.AdID,
			LastError:    session.LastError,
			UpdatedAt:    session.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out, total, nil
}

// ==================== 快照持久化 ====================

// persistSnapshot 把内存中的表单状态落到数据库
func (s *PublishService) persistSnapshot(ctx context.Context, sessionID int64, live *liveSession) error {
	values := model.JSONMap{}
	for k, v := range live.controller.Values() {
		values[k] = v
	}
	features := model.JSONMap{}
	for k, v := range live.controller.Features() {
		features[k] = v
	}

	return s.sessionRepo.UpdateFields(ctx, sessionID, map[string]interface{}{
		"field_values": &values,
		"features":     &features,
		"media_keys":   datatypes.NewJSONSlice(live.controller.Staging().AssetIDs()),
		"step":         live.controller.Step(),
	})
}

func toFailureVOs(failures []form.Failure) []dto.FailureVO {
	out := make([]dto.FailureVO, 0, len(failures))
	for _, f := range failures {
		out = append(out, dto.FailureVO{Field: f.Field, Reason: f.Reason})
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
