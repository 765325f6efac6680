package form

import (
	"errors"
	"fmt"
	"strconv"

	"dorse_dev_v1_202608/internal/media"
	"dorse_dev_v1_202608/internal/model"
	"dorse_dev_v1_202608/internal/schema"
	"dorse_dev_v1_202608/internal/taxonomy"
)

// ==================== 状态机 ====================

// Status 表单会话状态
// Editing(step) -> Editing(step+1) 仅当该步校验通过；
// 最后一步 + 提交意图 -> Submitting -> Succeeded / 回到 Editing(last)。
// 失败回退保留全部字段与媒体，用户重试无需重新录入
type Status string

const (
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
)

// ==================== 校验结果 ====================

// Failure 单条校验失败
type Failure struct {
	Field  string `json:"field"`
	Reason string `json:"reason"` // required / invalid
}

// ValidationResult 校验结果，纯读取、可重复调用
type ValidationResult struct {
	Failures []Failure `json:"failures,omitempty"`
}

func (r ValidationResult) Ok() bool {
	return len(r.Failures) == 0
}

// ==================== 控制器 ====================

// Controller 单次发布会话的表单状态机
// 字段值、城市/区县联动归它管；媒体全部委托给暂存管理器。
// 自身不加锁：持有方 (发布服务) 对同一会话的进入负责串行化
type Controller struct {
	schema  schema.FieldSchema
	path    *model.CategoryPath
	staging *media.Manager

	values    map[string]string
	features  map[string][]string
	districts []model.District

	status Status
	step   int
}

// NewController 创建表单控制器
func NewController(sch schema.FieldSchema, path *model.CategoryPath, staging *media.Manager) *Controller {
	return &Controller{
		schema:   sch,
		path:     path,
		staging:  staging,
		values:   make(map[string]string),
		features: make(map[string][]string),
		status:   StatusEditing,
	}
}

// ==================== 字段写入 ====================

// SetField 写入单个字段
// cityId 是特例：换城市必须在新区县列表到达之前同步清空 districtId 和旧选项，
// 界面上不允许出现"新城市 + 旧区县"的瞬时组合
func (c *Controller) SetField(key, value string) error {
	if c.status == StatusSubmitting {
		return errors.New("提交中的会话不可编辑")
	}
	if c.status == StatusSucceeded {
		return errors.New("已完成的会话不可编辑")
	}

	c.values[key] = value

	if key == "cityId" {
		c.values["districtId"] = ""
		c.districts = nil
	}
	return nil
}

// ApplyDistricts 挂接区县列表响应
// 响应带着请求时的城市标签；和当前城市不一致说明是陈旧响应，丢弃并返回 false
func (c *Controller) ApplyDistricts(list *taxonomy.DistrictList) bool {
	if list == nil {
		return false
	}
	if strconv.FormatInt(list.CityID, 10) != c.values["cityId"] {
		return false
	}
	c.districts = list.Items
	return true
}

// SetFeatures 整组写入特性勾选
func (c *Controller) SetFeatures(group string, selected []string) error {
	for _, g := range c.schema.FeatureGroups {
		if g.Key == group {
			c.features[group] = append([]string(nil), selected...)
			return nil
		}
	}
	return fmt.Errorf("类目 %s 没有特性组 %s", c.schema.CategoryKey, group)
}

// ==================== 校验 ====================

// Validate 全量校验：必填字段 + 区县归属 + 至少一份可提交媒体
func (c *Controller) Validate() ValidationResult {
	return c.validate(-1)
}

// ValidateStep 只校验某一步的字段，向导逐步放行用
func (c *Controller) ValidateStep(step int) ValidationResult {
	return c.validate(step)
}

func (c *Controller) validate(step int) ValidationResult {
	var result ValidationResult

	for _, f := range c.schema.Fields {
		if step >= 0 && f.Step != step {
			continue
		}
		value := c.values[f.Key]

		if f.Required && value == "" {
			result.Failures = append(result.Failures, Failure{Field: f.Key, Reason: "required"})
			continue
		}
		if value != "" && f.Type == schema.TypeEnum && !contains(f.Enum, value) {
			result.Failures = append(result.Failures, Failure{Field: f.Key, Reason: "invalid"})
		}
	}

	// districtId 只有属于当前城市已取回的区县列表才有效；
	// 列表未取回时任何非空值都判无效，防止绕过联动直接塞任意区县
	if d := c.values["districtId"]; d != "" {
		if len(c.districts) == 0 || !c.districtKnown(d) {
			result.Failures = append(result.Failures, Failure{Field: "districtId", Reason: "invalid"})
		}
	}

	// 媒体规则只在全量校验时生效
	if step < 0 && c.staging != nil && !c.staging.HasAny() {
		result.Failures = append(result.Failures, Failure{Field: "media", Reason: "required"})
	}

	return result
}

func (c *Controller) districtKnown(id string) bool {
	for _, d := range c.districts {
		if strconv.FormatInt(d.ID, 10) == id {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ==================== 步进与提交 ====================

// Advance 当前步校验通过则进入下一步
func (c *Controller) Advance() ValidationResult {
	if c.status != StatusEditing {
		return ValidationResult{Failures: []Failure{{Field: "_state", Reason: "invalid"}}}
	}
	result := c.ValidateStep(c.step)
	if result.Ok() && c.step < c.schema.Steps-1 {
		c.step++
	}
	return result
}

// BeginSubmit 最后一步发起提交
// 全量校验不过不放行，Submitting 状态期间表单冻结
func (c *Controller) BeginSubmit() (ValidationResult, error) {
	if c.status != StatusEditing {
		return ValidationResult{}, fmt.Errorf("状态 %s 不可提交", c.status)
	}
	if c.step != c.schema.Steps-1 {
		return ValidationResult{}, fmt.Errorf("尚在第 %d 步，未到最后一步", c.step)
	}

	result := c.Validate()
	if !result.Ok() {
		return result, errors.New("校验未通过")
	}

	c.status = StatusSubmitting
	return result, nil
}

// FinishSubmit 提交收尾
// 成功进入 Succeeded；失败回到最后一步的 Editing，字段与媒体原样保留
func (c *Controller) FinishSubmit(success bool) {
	if c.status != StatusSubmitting {
		return
	}
	if success {
		c.status = StatusSucceeded
		return
	}
	c.status = StatusEditing
	c.step = c.schema.Steps - 1
}

// Abandon 放弃会话：先回收全部预览句柄再丢状态
func (c *Controller) Abandon() {
	if c.staging != nil {
		c.staging.Teardown()
	}
}

// ==================== 读取 ====================

func (c *Controller) Status() Status { return c.status }
func (c *Controller) Step() int      { return c.step }

func (c *Controller) Schema() schema.FieldSchema  { return c.schema }
func (c *Controller) Path() *model.CategoryPath   { return c.path }
func (c *Controller) Staging() *media.Manager     { return c.staging }
func (c *Controller) Districts() []model.District { return c.districts }

// Values 字段值快照
func (c *Controller) Values() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Features 特性勾选快照
func (c *Controller) Features() map[string][]string {
	out := make(map[string][]string, len(c.features))
	for k, v := range c.features {
		out[k] = append([]string(nil), v...)
	}
	return out
}
