package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"dorse_dev_v1_202608/internal/model"
	"dorse_dev_v1_202608/pkg/utils"
)

// ==================== 错误 ====================

// ResolutionError 分类链某一级解析失败
// 对本次会话是致命的：表单不得在半解析的链上渲染
type ResolutionError struct {
	Level string // category / brand / model / variant
	Slug  string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("分类路径解析失败: %s 级 slug %q 不存在", e.Level, e.Slug)
}

// ==================== 客户端 ====================

// PathSlugs 用户路径携带的 slug 链，后三级可缺省
type PathSlugs struct {
	Category string
	Brand    string
	Model    string
	Variant  string
}

// Resolver 分类与位置查询客户端
// 只读；短 TTL 缓存挡掉同一类目页的重复查询
type Resolver struct {
	http     *resty.Client
	cacheTTL time.Duration
}

// NewResolver 创建解析客户端
// baseURL: 分类广告后端地址
func NewResolver(baseURL string) *Resolver {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "Dorse-Publish-Engine/1.0").
		SetHeader("Accept", "application/json")

	return &Resolver{
		http:     client,
		cacheTTL: 5 * time.Minute,
	}
}

// Resolve 顺序解析分类链
// 每一级的接口路径依赖上一级返回的规范 slug——不能并发预取，
// 也不能拿用户原始输入拼后续 URL，否则规范化差异会让链漂移
func (r *Resolver) Resolve(ctx context.Context, slugs PathSlugs) (*model.CategoryPath, error) {
	path := &model.CategoryPath{}

	if slugs.Category == "" {
		return nil, &ResolutionError{Level: "category", Slug: ""}
	}

	category, err := r.getNode(ctx, "category", slugs.Category,
		fmt.Sprintf("/categories/%s", slugs.Category))
	if err != nil {
		return nil, err
	}
	path.Category = category

	// 中间级缺省时跳过后续 (允许泛类目发布)
	if slugs.Brand == "" {
		return path, nil
	}
	brand, err := r.getNode(ctx, "brand", slugs.Brand,
		fmt.Sprintf("/categories/%s/brands/%s", category.Slug, slugs.Brand))
	if err != nil {
		return nil, err
	}
	path.Brand = brand

	if slugs.Model == "" {
		return path, nil
	}
	mdl, err := r.getNode(ctx, "model", slugs.Model,
		fmt.Sprintf("/categories/%s/brands/%s/models/%s", category.Slug, brand.Slug, slugs.Model))
	if err != nil {
		return nil, err
	}
	path.Model = mdl

	if slugs.Variant == "" {
		return path, nil
	}
	variant, err := r.getNode(ctx, "variant", slugs.Variant,
		fmt.Sprintf("/categories/%s/brands/%s/models/%s/variants/%s", category.Slug, brand.Slug, mdl.Slug, slugs.Variant))
	if err != nil {
		return nil, err
	}
	path.Variant = variant

	return path, nil
}

// getNode 单级查询，404 翻译为 ResolutionError
func (r *Resolver) getNode(ctx context.Context, level, slug, url string) (*model.TaxonomyNode, error) {
	cacheKey := "taxonomy:" + r.http.BaseURL + url
	if cached, ok := utils.GetCache(cacheKey); ok {
		var node model.TaxonomyNode
		if err := json.Unmarshal([]byte(cached), &node); err == nil {
			return &node, nil
		}
	}

	var node model.TaxonomyNode
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&node).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("分类查询失败 %s: %v", url, err)
	}

	if resp.StatusCode() == 404 {
		return nil, &ResolutionError{Level: level, Slug: slug}
	}
	if resp.IsError() {
		return nil, fmt.Errorf("分类查询失败 %s [%d]", url, resp.StatusCode())
	}

	if raw, err := json.Marshal(&node); err == nil {
		utils.SetCache(cacheKey, string(raw), r.cacheTTL)
	}

	return &node, nil
}
