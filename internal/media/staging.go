package media

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ==================== 类型定义 ====================

// Kind 媒体种类
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// Role 资产角色：橱窗图唯一，其余进图库
type Role int

const (
	RoleGallery Role = iota
	RoleShowcase
)

// File 用户选择的原始文件
type File struct {
	Name string
	Data []byte
}

// Asset 暂存中的一个媒体资产
// PreviewURL 由 PreviewFactory 异步生成；完成回调按 ID 寻址挂回资产，
// 绝不按下标——批量添加与删除会在预览完成前改变列表形状
type Asset struct {
	ID         string
	Name       string
	Kind       Kind
	Role       Role
	Position   int
	Data       []byte
	PreviewURL string
}

// PreviewFactory 预览句柄工厂
// Manager 是它产出句柄的唯一持有者和唯一回收者
type PreviewFactory interface {
	Generate(ctx context.Context, name string, data []byte) (handle string, err error)
	Revoke(ctx context.Context, handle string) error
}

// Limits 按类目配置的媒体上限
type Limits struct {
	MaxGallery    int
	MaxVideos     int
	MaxVideoBytes int64
}

// DefaultLimits 缺省上限
func DefaultLimits() Limits {
	return Limits{MaxGallery: 15, MaxVideos: 3, MaxVideoBytes: 50 * 1024 * 1024}
}

// ==================== Manager ====================

// Manager 媒体暂存管理器
// 持有一次发布会话的全部媒体：入列校验、橱窗图唯一性、预览句柄生命周期。
// 会话废弃时必须调用 Teardown，否则预览句柄泄漏
type Manager struct {
	mu       sync.Mutex
	previews PreviewFactory
	limits   Limits

	assets   map[string]*Asset
	showcase string // 当前橱窗资产ID，空串表示未设置
	nextPos  int

	tornDown bool
	pending  sync.WaitGroup
}

// NewManager 创建暂存管理器
func NewManager(previews PreviewFactory, limits Limits) *Manager {
	if limits.MaxGallery <= 0 {
		limits.MaxGallery = DefaultLimits().MaxGallery
	}
	if limits.MaxVideos < 0 {
		limits.MaxVideos = 0
	}
	if limits.MaxVideoBytes <= 0 {
		limits.MaxVideoBytes = DefaultLimits().MaxVideoBytes
	}

	return &Manager{
		previews: previews,
		limits:   limits,
		assets:   make(map[string]*Asset),
	}
}

// ==================== 入列 ====================

// AddGallery 批量添加图库图片
// 原子性：任何一条校验不过整批拒绝，已有状态不动
func (m *Manager) AddGallery(files []File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tornDown {
		return errors.New("暂存会话已销毁")
	}

	if len(m.galleryLocked())+len(files) > m.limits.MaxGallery {
		return &TooManyError{Kind: KindPhoto, Limit: m.limits.MaxGallery}
	}

	for _, f := range files {
		m.admitLocked(f, KindPhoto, RoleGallery)
	}
	return nil
}

// AddVideos 批量添加视频
// 校验全部在入列时完成，不留到提交时：数量、单体体积、二进制类型
func (m *Manager) AddVideos(files []File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tornDown {
		return errors.New("暂存会话已销毁")
	}

	if len(m.videosLocked())+len(files) > m.limits.MaxVideos {
		return &TooManyError{Kind: KindVideo, Limit: m.limits.MaxVideos}
	}

	for _, f := range files {
		if int64(len(f.Data)) > m.limits.MaxVideoBytes {
			return &TooLargeError{File: f.Name, MaxBytes: m.limits.MaxVideoBytes}
		}
		if !strings.HasPrefix(mimetype.Detect(f.Data).String(), "video/") {
			return &InvalidKindError{File: f.Name}
		}
	}

	for _, f := range files {
		m.admitLocked(f, KindVideo, RoleGallery)
	}
	return nil
}

// SetShowcase 设置橱窗图
// 任何时刻橱窗资产 0 或 1 个；原橱窗只被剥夺角色降级进图库，
// 它的预览句柄归属不变，随后续删除或 Teardown 一并回收。
// 降级同样占图库名额：图库已满时整个替换被拒绝，状态不动
func (m *Manager) SetShowcase(f File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tornDown {
		return errors.New("暂存会话已销毁")
	}

	if prev, ok := m.assets[m.showcase]; ok {
		if len(m.galleryLocked())+1 > m.limits.MaxGallery {
			return &TooManyError{Kind: KindPhoto, Limit: m.limits.MaxGallery}
		}
		prev.Role = RoleGallery
	}

	asset := m.admitLocked(f, KindPhoto, RoleShowcase)
	m.showcase = asset.ID
	return nil
}

// admitLocked 入列单个文件并启动异步预览生成 (调用方持锁)
func (m *Manager) admitLocked(f File, kind Kind, role Role) *Asset {
	asset := &Asset{
		ID:       uuid.NewString(),
		Name:     f.Name,
		Kind:     kind,
		Role:     role,
		Position: m.nextPos,
		Data:     f.Data,
	}
	m.nextPos++
	m.assets[asset.ID] = asset

	if m.previews == nil {
		return asset
	}

	m.pending.Add(1)
	go func(id, name string, data []byte) {
		defer m.pending.Done()

		handle, err := m.previews.Generate(context.Background(), name, data)
		if err != nil {
			log.Printf("[MediaStaging] 预览生成失败 %s: %v", name, err)
			return
		}
		m.attachPreview(id, handle)
	}(asset.ID, asset.Name, asset.Data)

	return asset
}

// attachPreview 预览完成回调，按资产ID挂接
// 资产已被删除 (或会话已销毁) 时立即回收新句柄，保证创建/回收严格配对
func (m *Manager) attachPreview(assetID, handle string) {
	m.mu.Lock()
	asset, ok := m.assets[assetID]
	if ok && !m.tornDown {
		asset.PreviewURL = handle
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.previews.Revoke(context.Background(), handle); err != nil {
		log.Printf("[MediaStaging] 迟到预览回收失败: %v", err)
	}
}

// ==================== 移除与销毁 ====================

// Remove 删除单个资产，预览句柄同步回收，不等垃圾回收
func (m *Manager) Remove(assetID string) error {
	m.mu.Lock()
	asset, ok := m.assets[assetID]
	if !ok {
		m.mu.Unlock()
		return errors.New("资产不存在")
	}
	delete(m.assets, assetID)
	if m.showcase == assetID {
		m.showcase = ""
	}
	handle := asset.PreviewURL
	m.mu.Unlock()

	// 预览尚未生成时句柄为空，迟到的回调会发现资产已删除并自行回收
	if handle != "" && m.previews != nil {
		return m.previews.Revoke(context.Background(), handle)
	}
	return nil
}

// Teardown 销毁暂存会话，回收所有在册句柄并等待在途预览了结
func (m *Manager) Teardown() {
	m.mu.Lock()
	if m.tornDown {
		m.mu.Unlock()
		return
	}
	m.tornDown = true

	var handles []string
	for _, a := range m.assets {
		if a.PreviewURL != "" {
			handles = append(handles, a.PreviewURL)
		}
	}
	m.assets = make(map[string]*Asset)
	m.showcase = ""
	m.mu.Unlock()

	if m.previews != nil {
		for _, h := range handles {
			if err := m.previews.Revoke(context.Background(), h); err != nil {
				log.Printf("[MediaStaging] 句柄回收失败: %v", err)
			}
		}
	}

	// 等在途预览回调完成 (它们发现会话已销毁后自行回收)
	m.pending.Wait()
}

// WaitPreviews 等所有在途预览完成，测试和提交前快照用
func (m *Manager) WaitPreviews() {
	m.pending.Wait()
}

// ==================== 读取 ====================

// galleryLocked 图库资产 (含被降级的前橱窗图)，按入列顺序
func (m *Manager) galleryLocked() []*Asset {
	var out []*Asset
	for _, a := range m.assets {
		if a.Kind == KindPhoto && a.Role == RoleGallery {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (m *Manager) videosLocked() []*Asset {
	var out []*Asset
	for _, a := range m.assets {
		if a.Kind == KindVideo {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Gallery 图库快照，position 升序
func (m *Manager) Gallery() []Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyAssets(m.galleryLocked())
}

// Videos 视频快照，position 升序
func (m *Manager) Videos() []Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyAssets(m.videosLocked())
}

// Showcase 当前橱窗资产，未设置返回 nil
func (m *Manager) Showcase() *Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.assets[m.showcase]; ok {
		c := *a
		return &c
	}
	return nil
}

// HasAny 是否存在可提交媒体 (橱窗图或至少一张图库图)
func (m *Manager) HasAny() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showcase != "" || len(m.galleryLocked()) > 0
}

// AssetIDs 全部资产ID，持久化快照用
func (m *Manager) AssetIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for _, a := range m.assets {
		ids = append(ids, a.ID)
	}
	sort.Strings(ids)
	return ids
}

func copyAssets(in []*Asset) []Asset {
	out := make([]Asset, len(in))
	for i, a := range in {
		out[i] = *a
	}
	return out
}
