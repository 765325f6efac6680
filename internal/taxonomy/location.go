package taxonomy

import (
	"context"
	"fmt"

	"dorse_dev_v1_202608/internal/model"
)

// DistrictList 某个城市的区县清单
// CityID 是请求发起时的城市——应用前必须和表单当前城市比对，
// 不一致说明用户已换城市，这份响应是陈旧的，丢弃
type DistrictList struct {
	CityID int64
	Items  []model.District
}

// Cities 城市列表
func (r *Resolver) Cities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&cities).
		Get("/cities")
	if err != nil {
		return nil, fmt.Errorf("城市列表获取失败: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("城市列表获取失败 [%d]", resp.StatusCode())
	}
	return cities, nil
}

// Districts 按城市取区县，响应携带请求时的城市标签
func (r *Resolver) Districts(ctx context.Context, cityID int64) (*DistrictList, error) {
	var districts []model.District
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&districts).
		Get(fmt.Sprintf("/cities/%d/districts", cityID))
	if err != nil {
		return nil, fmt.Errorf("区县列表获取失败: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("区县列表获取失败 [%d]", resp.StatusCode())
	}
	return &DistrictList{CityID: cityID, Items: districts}, nil
}
