package assemble

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"dorse_dev_v1_202608/internal/form"
	"dorse_dev_v1_202608/internal/schema"
	"dorse_dev_v1_202608/pkg/net"
	"dorse_dev_v1_202608/pkg/utils"
)

// ==================== 提交组装器 ====================

// 把一次表单会话组装成后端的 multipart 载荷。
// 组装是纯函数：同一会话快照两次组装产出逐键逐序相同的请求——
// 字段按架构声明序、文件按入列位置序，改名表在这里统一套用

// Build 组装提交请求
// baseURL: 分类广告后端地址；最终 POST {baseURL}/ads/{endpoint}
func Build(baseURL string, c *form.Controller) (*net.MultipartRequest, error) {
	sch := c.Schema()
	values := c.Values()

	req := &net.MultipartRequest{
		URL:     fmt.Sprintf("%s/ads/%s", baseURL, sch.Endpoint),
		Headers: map[string]string{},
	}

	// -------------------- 分类链 ID --------------------

	path := c.Path()
	if path != nil {
		appendID := func(key string, id int64) {
			if id != 0 {
				req.Fields = append(req.Fields, net.FormField{Key: key, Value: strconv.FormatInt(id, 10)})
			}
		}
		if path.Category != nil {
			appendID("categoryId", path.Category.ID)
		}
		if path.Brand != nil {
			appendID("brandId", path.Brand.ID)
		}
		if path.Model != nil {
			appendID("modelId", path.Model.ID)
		}
		if path.Variant != nil {
			appendID("variantId", path.Variant.ID)
		}
	}

	// -------------------- 标量字段 --------------------

	// 按架构声明序遍历，不遍历 map；数值/货币字段先还原千分位
	for _, f := range sch.Fields {
		value := values[f.Key]
		if value == "" {
			continue
		}
		if f.Type == schema.TypeNumber || f.Type == schema.TypeCurrency {
			value = utils.DeformatNumber(value)
		}
		req.Fields = append(req.Fields, net.FormField{Key: sch.BackendKey(f.Key), Value: value})
	}

	// -------------------- 特性组 --------------------

	// 全部勾选编码为单个 JSON 字符串字段；json.Marshal 对 map 键排序，编码确定
	features := c.Features()
	if len(features) > 0 {
		raw, err := json.Marshal(features)
		if err != nil {
			return nil, fmt.Errorf("特性组编码失败: %v", err)
		}
		req.Fields = append(req.Fields, net.FormField{Key: "features", Value: string(raw)})
	}

	// -------------------- 媒体 --------------------

	staging := c.Staging()
	showcase := staging.Showcase()
	gallery := staging.Gallery()

	if showcase == nil && len(gallery) == 0 {
		return nil, errors.New("没有可提交的媒体")
	}

	// 后端要求 showcasePhoto 必在：未显式设置时首张图库图顶位
	if showcase == nil {
		promoted := gallery[0]
		showcase = &promoted
		gallery = gallery[1:]
	}
	req.Files = append(req.Files, net.FormFile{Key: "showcasePhoto", Filename: showcase.Name, Data: showcase.Data})

	for i, a := range gallery {
		req.Files = append(req.Files, net.FormFile{Key: fmt.Sprintf("photo_%d", i), Filename: a.Name, Data: a.Data})
	}
	for i, v := range staging.Videos() {
		req.Files = append(req.Files, net.FormFile{Key: fmt.Sprintf("video_%d", i), Filename: v.Name, Data: v.Data})
	}

	return req, nil
}

// FieldKeys 载荷的字段键序列，提交日志记录用
func FieldKeys(req *net.MultipartRequest) []string {
	keys := make([]string, 0, len(req.Fields))
	for _, f := range req.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// MediaCount 载荷里的文件数
func MediaCount(req *net.MultipartRequest) int {
	return len(req.Files)
}
