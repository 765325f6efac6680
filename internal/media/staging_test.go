package media

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// ==================== 测试用句柄工厂 ====================

// countingFactory 记录每个句柄的创建/回收次数，用来验证严格配对
type countingFactory struct {
	mu       sync.Mutex
	created  int
	revoked  int
	live     map[string]bool
	doubles  int            // 重复回收次数
	gate     chan struct{}  // 非 nil 时 Generate 阻塞等放行，模拟慢速预览
}

func newCountingFactory() *countingFactory {
	return &countingFactory{live: map[string]bool{}}
}

func (f *countingFactory) Generate(_ context.Context, name string, _ []byte) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	handle := fmt.Sprintf("preview://%s/%d", name, f.created)
	f.live[handle] = true
	return handle, nil
}

func (f *countingFactory) Revoke(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live[handle] {
		f.doubles++
		return fmt.Errorf("句柄 %s 已回收或不存在", handle)
	}
	delete(f.live, handle)
	f.revoked++
	return nil
}

func (f *countingFactory) outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func photos(n int) []File {
	files := make([]File, n)
	for i := range files {
		files[i] = File{Name: fmt.Sprintf("p%d.jpg", i), Data: []byte{0xFF, 0xD8, 0xFF, byte(i)}}
	}
	return files
}

// 最小合法 mp4 头 (ftyp box)，让 mimetype 识别为 video/mp4
func fakeMP4(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
		0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'})
	return data
}

// ==================== 图库上限 ====================

func TestAddGallery_WithinCap(t *testing.T) {
	for _, n := range []int{1, 5, 15} {
		m := NewManager(newCountingFactory(), Limits{MaxGallery: 15})
		if err := m.AddGallery(photos(n)); err != nil {
			t.Fatalf("AddGallery(%d) error = %v", n, err)
		}
		if got := len(m.Gallery()); got != n {
			t.Errorf("len(Gallery) = %d, want %d", got, n)
		}
		m.Teardown()
	}
}

func TestAddGallery_OverCapAtomic(t *testing.T) {
	m := NewManager(newCountingFactory(), Limits{MaxGallery: 15})
	defer m.Teardown()

	if err := m.AddGallery(photos(14)); err != nil {
		t.Fatalf("预置失败: %v", err)
	}

	// 14 + 2 > 15：整批拒绝，已有状态不动
	err := m.AddGallery(photos(2))
	tooMany, ok := err.(*TooManyError)
	if !ok {
		t.Fatalf("error = %v, want *TooManyError", err)
	}
	if tooMany.Kind != KindPhoto || tooMany.Limit != 15 {
		t.Errorf("TooManyError = %+v", tooMany)
	}
	if got := len(m.Gallery()); got != 14 {
		t.Errorf("拒绝后 len(Gallery) = %d, want 14", got)
	}
}

// ==================== 视频校验 ====================

func TestAddVideos_FourthRejected(t *testing.T) {
	m := NewManager(newCountingFactory(), Limits{MaxVideos: 3})
	defer m.Teardown()

	for i := 0; i < 3; i++ {
		if err := m.AddVideos([]File{{Name: fmt.Sprintf("v%d.mp4", i), Data: fakeMP4(64)}}); err != nil {
			t.Fatalf("第 %d 个视频入列失败: %v", i+1, err)
		}
	}

	err := m.AddVideos([]File{{Name: "v3.mp4", Data: fakeMP4(64)}})
	tooMany, ok := err.(*TooManyError)
	if !ok || tooMany.Kind != KindVideo || tooMany.Limit != 3 {
		t.Fatalf("error = %v, want TooMany{video,3}", err)
	}
	if got := len(m.Videos()); got != 3 {
		t.Errorf("拒绝后 len(Videos) = %d, want 3", got)
	}
}

func TestAddVideos_TooLarge(t *testing.T) {
	m := NewManager(newCountingFactory(), Limits{MaxVideos: 3, MaxVideoBytes: 128})
	defer m.Teardown()

	err := m.AddVideos([]File{
		{Name: "ok.mp4", Data: fakeMP4(64)},
		{Name: "big.mp4", Data: fakeMP4(256)},
	})

	tooLarge, ok := err.(*TooLargeError)
	if !ok {
		t.Fatalf("error = %v, want *TooLargeError", err)
	}
	if tooLarge.File != "big.mp4" {
		t.Errorf("File = %s, want big.mp4", tooLarge.File)
	}
	// 整批拒绝：第一条合法视频也不得入列
	if got := len(m.Videos()); got != 0 {
		t.Errorf("len(Videos) = %d, want 0", got)
	}
}

func TestAddVideos_InvalidKind(t *testing.T) {
	m := NewManager(newCountingFactory(), Limits{MaxVideos: 3})
	defer m.Teardown()

	err := m.AddVideos([]File{{Name: "not-video.jpg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}}})
	invalid, ok := err.(*InvalidKindError)
	if !ok || invalid.File != "not-video.jpg" {
		t.Fatalf("error = %v, want InvalidKind{not-video.jpg}", err)
	}
}

// ==================== 橱窗图唯一性 ====================

func TestSetShowcase_Singular(t *testing.T) {
	m := NewManager(newCountingFactory(), Limits{})
	defer m.Teardown()

	if m.Showcase() != nil {
		t.Fatal("初始不应有橱窗图")
	}

	for i := 0; i < 3; i++ {
		if err := m.SetShowcase(File{Name: fmt.Sprintf("s%d.jpg", i), Data: []byte{1, byte(i)}}); err != nil {
			t.Fatalf("SetShowcase error = %v", err)
		}
	}

	sc := m.Showcase()
	if sc == nil || sc.Name != "s2.jpg" {
		t.Fatalf("Showcase = %+v, want s2.jpg", sc)
	}

	// 前两任橱窗图被降级进图库，角色唯一性保持
	showcases := 0
	for _, a := range append(m.Gallery(), *sc) {
		if a.Role == RoleShowcase {
			showcases++
		}
	}
	if showcases != 1 {
		t.Errorf("Showcase 角色数 = %d, want 1", showcases)
	}
	if got := len(m.Gallery()); got != 2 {
		t.Errorf("降级后 len(Gallery) = %d, want 2", got)
	}
}

func TestSetShowcase_DemotionRespectsGalleryCap(t *testing.T) {
	m := NewManager(newCountingFactory(), Limits{MaxGallery: 15})
	defer m.Teardown()

	if err := m.AddGallery(photos(15)); err != nil {
		t.Fatalf("预置失败: %v", err)
	}

	// 图库已满但尚无橱窗图：不产生降级，放行
	if err := m.SetShowcase(File{Name: "vitrin.jpg", Data: []byte{1}}); err != nil {
		t.Fatalf("SetShowcase error = %v", err)
	}

	// 替换橱窗图要把前任降级进图库，16 > 15：拒绝且状态不动
	err := m.SetShowcase(File{Name: "vitrin2.jpg", Data: []byte{2}})
	tooMany, ok := err.(*TooManyError)
	if !ok || tooMany.Kind != KindPhoto || tooMany.Limit != 15 {
		t.Fatalf("error = %v, want TooMany{photo,15}", err)
	}
	if sc := m.Showcase(); sc == nil || sc.Name != "vitrin.jpg" {
		t.Errorf("Showcase = %+v, want vitrin.jpg 保持不变", sc)
	}
	if got := len(m.Gallery()); got != 15 {
		t.Errorf("拒绝后 len(Gallery) = %d, want 15", got)
	}
}

// ==================== 句柄生命周期 ====================

func TestHandles_ExactlyOnce(t *testing.T) {
	factory := newCountingFactory()
	m := NewManager(factory, Limits{})

	if err := m.AddGallery(photos(5)); err != nil {
		t.Fatal(err)
	}
	_ = m.SetShowcase(File{Name: "s.jpg", Data: []byte{9}})
	m.WaitPreviews()

	// 删除两个，句柄同步回收
	gallery := m.Gallery()
	_ = m.Remove(gallery[0].ID)
	_ = m.Remove(gallery[1].ID)

	m.Teardown()

	factory.mu.Lock()
	created, revoked, doubles := factory.created, factory.revoked, factory.doubles
	factory.mu.Unlock()

	if created != 6 {
		t.Errorf("created = %d, want 6", created)
	}
	if revoked != created {
		t.Errorf("revoked = %d, want %d (不得泄漏)", revoked, created)
	}
	if doubles != 0 {
		t.Errorf("出现 %d 次重复回收", doubles)
	}
	if factory.outstanding() != 0 {
		t.Errorf("残留 %d 个未回收句柄", factory.outstanding())
	}
}

// 预览完成前资产已被删除：迟到回调必须自行回收，且挂接不得串位
func TestPreview_LateArrivalAfterRemove(t *testing.T) {
	factory := newCountingFactory()
	factory.gate = make(chan struct{})
	m := NewManager(factory, Limits{})

	if err := m.AddGallery(photos(3)); err != nil {
		t.Fatal(err)
	}

	// 预览尚未生成，先删掉第二张
	gallery := m.Gallery()
	removed := gallery[1].ID
	if err := m.Remove(removed); err != nil {
		t.Fatal(err)
	}

	close(factory.gate) // 放行所有预览
	m.WaitPreviews()

	// 存活资产都拿到了自己的预览；被删资产的句柄已回收
	for _, a := range m.Gallery() {
		if a.PreviewURL == "" {
			t.Errorf("资产 %s 缺少预览", a.Name)
		}
		// 预览按身份寻址：句柄内嵌原文件名，必须与资产一致
		if want := "preview://" + a.Name + "/"; len(a.PreviewURL) < len(want) || a.PreviewURL[:len(want)] != want {
			t.Errorf("资产 %s 挂接了别人的预览: %s", a.Name, a.PreviewURL)
		}
	}

	m.Teardown()
	if factory.outstanding() != 0 {
		t.Errorf("残留 %d 个未回收句柄", factory.outstanding())
	}
	if factory.doubles != 0 {
		t.Errorf("出现重复回收")
	}
	_ = removed
}

func TestTeardown_Idempotent(t *testing.T) {
	factory := newCountingFactory()
	m := NewManager(factory, Limits{})
	_ = m.AddGallery(photos(2))
	m.WaitPreviews()

	m.Teardown()
	m.Teardown() // 第二次销毁不得重复回收

	if factory.doubles != 0 {
		t.Errorf("重复销毁导致 %d 次二次回收", factory.doubles)
	}
}
