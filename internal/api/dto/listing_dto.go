package dto

// ==================== 请求 DTO ====================

// StartSessionRequest 开启发布会话请求
type StartSessionRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Category string `json:"category" binding:"required"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Variant  string `json:"variant"`
}

// SetFieldsRequest 批量写字段请求
type SetFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

// SetFeaturesRequest 写特性组请求
type SetFeaturesRequest struct {
	Group    string   `json:"group" binding:"required"`
	Selected []string `json:"selected"`
}

// ListSessionsRequest 会话列表请求
type ListSessionsRequest struct {
	UserID   int64  `form:"user_id"`
	Status   string `form:"status"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// SuggestCopyRequest 文案生成请求
type SuggestCopyRequest struct {
	ExtraHint string `json:"extra_hint"`
}

// ==================== 响应 DTO ====================

// FieldSpecVO 表单字段描述
type FieldSpecVO struct {
	Key      string   `json:"key"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Enum     []string `json:"enum,omitempty"`
	Step     int      `json:"step"`
}

// FeatureGroupVO 特性组描述
type FeatureGroupVO struct {
	Key     string   `json:"key"`
	Options []string `json:"options"`
}

// TaxonomyNodeVO 分类节点
type TaxonomyNodeVO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// StartSessionResult 开启会话结果：会话ID + 渲染表单所需的全部架构
type StartSessionResult struct {
	SessionID     int64            `json:"session_id"`
	Endpoint      string           `json:"endpoint"`
	Steps         int              `json:"steps"`
	Fields        []FieldSpecVO    `json:"fields"`
	FeatureGroups []FeatureGroupVO `json:"feature_groups,omitempty"`
	Path          []TaxonomyNodeVO `json:"path"`
	MaxGallery    int              `json:"max_gallery"`
	MaxVideos     int              `json:"max_videos"`
	MaxVideoBytes int64            `json:"max_video_bytes"`
}

// MediaAssetVO 暂存媒体资产
type MediaAssetVO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Showcase   bool   `json:"showcase"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// MediaStateResponse 会话媒体全貌
type MediaStateResponse struct {
	Showcase *MediaAssetVO  `json:"showcase,omitempty"`
	Gallery  []MediaAssetVO `json:"gallery"`
	Videos   []MediaAssetVO `json:"videos"`
}

// FailureVO 校验失败项
type FailureVO struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// StepResult 步进/校验结果
type StepResult struct {
	Step     int         `json:"step"`
	Failures []FailureVO `json:"failures,omitempty"`
}

// DistrictVO 区县
type DistrictVO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DistrictsResponse 区县列表响应
// Applied=false 表示响应到达时用户已换城市，列表未落地
type DistrictsResponse struct {
	CityID    int64        `json:"city_id"`
	Applied   bool         `json:"applied"`
	Districts []DistrictVO `json:"districts"`
}

// SubmitResult 提交结果
type SubmitResult struct {
	Outcome    string      `json:"outcome"`
	StatusCode int         `json:"status_code,omitempty"`
	AdID       string      `json:"ad_id,omitempty"`
	Message    string      `json:"message,omitempty"`
	Failures   []FailureVO `json:"failures,omitempty"`
}

// SessionResponse 会话列表项
type SessionResponse struct {
	SessionID    int64  `json:"session_id"`
	CategorySlug string `json:"category_slug"`
	VariantSlug  string `json:"variant_slug,omitempty"`
	Status       string `json:"status"`
	Step         int    `json:"step"`
	AdID         string `json:"ad_id,omitempty"`
	LastError    string `json:"last_error,omitempty"`
	UpdatedAt    string `json:"updated_at"`
}

// ProgressEvent SSE进度事件
type ProgressEvent struct {
	SessionID int64       `json:"session_id"`
	Stage     string      `json:"stage"` // validating, assembling, uploading, done, failed
	Progress  int         `json:"progress"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}
