package net

import (
	"context"
	"io"
	"net/http"
)

// BuildAdsRequest 通用广告后端请求构建器
// 适用方：PublishService 等所有需要携带用户凭证访问后端的服务
// 职责：统一封装鉴权头 (Authorization) 和标准头 (Accept, Content-Type)
// 注意：如果 Content-Type 不是 JSON (如 form-data)，调用方获取 req 后可手动覆盖 Header
func BuildAdsRequest(ctx context.Context, method, url string, body io.Reader, accessToken string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return req, nil
}

// BuildAdsGetRequest 构建 GET 请求
func BuildAdsGetRequest(ctx context.Context, url string, accessToken string) (*http.Request, error) {
	return BuildAdsRequest(ctx, http.MethodGet, url, nil, accessToken)
}

// BuildAdsPostRequest 构建 POST 请求
func BuildAdsPostRequest(ctx context.Context, url string, body io.Reader, accessToken string) (*http.Request, error) {
	return BuildAdsRequest(ctx, http.MethodPost, url, body, accessToken)
}
