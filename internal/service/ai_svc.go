package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ==================== AI 文案辅助 ====================

// SuggestedCopy AI 生成的发布文案
type SuggestedCopy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AIService 发布文案辅助服务
// 用户填完硬参数后可一键生成土耳其语标题与描述草稿，生成失败不阻断发布
type AIService struct {
	ApiKey       string
	ModelVersion string
}

// NewAIService 创建 AI 服务
func NewAIService(apiKey string, modelVersion string) *AIService {
	if modelVersion == "" {
		modelVersion = "gemini-2.5-flash"
	}
	return &AIService{
		ApiKey:       apiKey,
		ModelVersion: modelVersion,
	}
}

// SuggestListingCopy 按类目与已填参数生成文案草稿
func (s *AIService) SuggestListingCopy(ctx context.Context, categoryName string, specs map[string]string) (*SuggestedCopy, error) {
	if s.ApiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 未配置")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.ApiKey))
	if err != nil {
		return nil, fmt.Errorf("Gemini 初始化失败: %v", err)
	}
	defer client.Close()

	modelAI := client.GenerativeModel(s.ModelVersion)
	modelAI.ResponseMIMEType = "application/json"

	prompt := fmt.Sprintf(`
        You are a copywriter for a Turkish commercial-vehicle classifieds site.
        Category: %s
        Vehicle specs: %s

        Write the listing copy in Turkish.
        Requirements:
        1. title: concise, max 80 chars, mention the key specs buyers search for.
        2. description: 100-200 words, factual tone, no invented specs.

        Output JSON only: {"title": "...", "description": "..."}
    `, categoryName, formatSpecs(specs))

	resp, err := modelAI.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("文案生成失败: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("文案生成返回为空")
	}

	var raw string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw += string(txt)
		}
	}

	// 兜底剥掉模型偶尔带上的 markdown 包裹
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var out SuggestedCopy
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, fmt.Errorf("文案解析失败: %v", err)
	}
	return &out, nil
}

// formatSpecs 把已填参数拼成稳定顺序的 prompt 片段
func formatSpecs(specs map[string]string) string {
	keys := make([]string, 0, len(specs))
	for k, v := range specs {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, specs[k]))
	}
	return strings.Join(pairs, ", ")
}
