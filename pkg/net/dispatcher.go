package net

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Dispatcher 网络调度器 (通用组件)
// 所有发往分类广告后端的写请求统一走这里，便于重试与连接复用
type Dispatcher interface {
	// Send 发送标准 HTTP 请求
	Send(ctx context.Context, req *http.Request) (*http.Response, error)

	// SendMultipart 发送 multipart/form-data 请求
	// 字段与文件按切片顺序写入 body，保证同一 payload 重复发送时键序一致
	SendMultipart(ctx context.Context, req *MultipartRequest) (*http.Response, error)
}

// MultipartRequest 多部分请求
// Fields/Files 用有序切片而不是 map：提交载荷要求确定性编码
type MultipartRequest struct {
	URL     string
	Headers map[string]string
	Fields  []FormField
	Files   []FormFile
}

// FormField 普通表单字段
type FormField struct {
	Key   string
	Value string
}

// FormFile 文件表单字段
type FormFile struct {
	Key      string
	Filename string
	Data     []byte
}

// httpDispatcher 是 Dispatcher 接口的具体实现
// 注意：它是私有的，外部只能通过 NewDispatcher 获取接口
type httpDispatcher struct {
	client     *http.Client
	maxRetries int
}

var _ Dispatcher = (*httpDispatcher)(nil)

func NewDispatcher() Dispatcher {
	tr := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &httpDispatcher{
		client: &http.Client{
			Transport: tr,
			Timeout:   60 * time.Second, // 提交带媒体文件，给足超时
		},
		maxRetries: 2,
	}
}

// Send 发送 HTTP 请求 (网络层错误自动重试)
// 仅在连接层面失败时重试；拿到响应后状态码判断交给调用方
func (d *httpDispatcher) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error

	for i := 0; i <= d.maxRetries; i++ {
		resp, err := d.client.Do(req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// body 不可重放的请求无法重试
		if req.Body != nil && req.GetBody == nil {
			break
		}

		if i < d.maxRetries && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				break
			}
			req.Body = body
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	return nil, fmt.Errorf("request failed after retries: %v", lastErr)
}

// SendMultipart 构建并发送 multipart 请求
func (d *httpDispatcher) SendMultipart(ctx context.Context, mp *MultipartRequest) (*http.Response, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range mp.Fields {
		if err := writer.WriteField(f.Key, f.Value); err != nil {
			return nil, fmt.Errorf("写入表单字段 %s 失败: %v", f.Key, err)
		}
	}

	for _, f := range mp.Files {
		part, err := writer.CreateFormFile(f.Key, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("写入文件字段 %s 失败: %v", f.Key, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("写入文件内容 %s 失败: %v", f.Key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	raw := body.Bytes()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mp.URL, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	for k, v := range mp.Headers {
		req.Header.Set(k, v)
	}

	// 留一份可重放的 body，Send 的重试依赖它
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(raw)), nil
	}

	return d.Send(ctx, req)
}
