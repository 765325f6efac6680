package model

// ==================== 分类体系 ====================

// TaxonomyNode 分类链上的一个节点 (类目/品牌/型号/子型号)
type TaxonomyNode struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryPath 已解析的分类链
// 解析是顺序的：后一级的接口路径依赖前一级返回的规范 slug
// 完整解析后对当前会话不可变
type CategoryPath struct {
	Category *TaxonomyNode `json:"category"`
	Brand    *TaxonomyNode `json:"brand,omitempty"`
	Model    *TaxonomyNode `json:"model,omitempty"`
	Variant  *TaxonomyNode `json:"variant,omitempty"`
}

// CategorySlug 类目 slug，未解析时为空串
func (p *CategoryPath) CategorySlug() string {
	if p == nil || p.Category == nil {
		return ""
	}
	return p.Category.Slug
}

// VariantSlug 子型号 slug，链不完整时为空串
func (p *CategoryPath) VariantSlug() string {
	if p == nil || p.Variant == nil {
		return ""
	}
	return p.Variant.Slug
}

// ==================== 地理位置 ====================

// City 城市
type City struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PlateCode string `json:"plateCode"`
}

// District 区县，归属某个城市
type District struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	CityID int64  `json:"cityId"`
}
