package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dorse_dev_v1_202608/internal/api/dto"
	"dorse_dev_v1_202608/internal/auth"
	"dorse_dev_v1_202608/internal/media"
	"dorse_dev_v1_202608/internal/model"
	"dorse_dev_v1_202608/internal/repository"
	"dorse_dev_v1_202608/internal/taxonomy"
	"dorse_dev_v1_202608/pkg/net"
)

// ==================== 测试夹具 ====================

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, slugs taxonomy.PathSlugs) (*model.CategoryPath, error) {
	if slugs.Category != "dorse" {
		return nil, &taxonomy.ResolutionError{Level: "category", Slug: slugs.Category}
	}
	return &model.CategoryPath{
		Category: &model.TaxonomyNode{ID: 4, Name: "Dorse", Slug: "dorse"},
		Brand:    &model.TaxonomyNode{ID: 41, Name: "Ekol", Slug: "ekol"},
		Model:    &model.TaxonomyNode{ID: 411, Name: "Kapaklı", Slug: "kapakli"},
		Variant:  &model.TaxonomyNode{ID: 4111, Name: "Kaya Tipi", Slug: "kaya-tipi"},
	}, nil
}

func (fakeResolver) Cities(context.Context) ([]model.City, error) {
	return []model.City{{ID: 34, Name: "İstanbul"}, {ID: 6, Name: "Ankara"}}, nil
}

func (fakeResolver) Districts(_ context.Context, cityID int64) (*taxonomy.DistrictList, error) {
	return &taxonomy.DistrictList{
		CityID: cityID,
		Items: []model.District{
			{ID: cityID*100 + 1, Name: "Merkez", CityID: cityID},
			{ID: cityID*100 + 2, Name: "Sanayi", CityID: cityID},
		},
	}, nil
}

// fakeDispatcher 记录每次提交的调度器
type fakeDispatcher struct {
	mu       sync.Mutex
	requests []*net.MultipartRequest
	status   int
	body     string
	err      error
}

func (d *fakeDispatcher) Send(context.Context, *http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("测试中不应走标准请求")
}

func (d *fakeDispatcher) SendMultipart(_ context.Context, req *net.MultipartRequest) (*http.Response, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Header:     http.Header{},
	}, nil
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

// staticTokens 固定令牌来源
type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context) (string, error) {
	return s.token, s.err
}

type nopPreviews struct{}

func (nopPreviews) Generate(_ context.Context, name string, _ []byte) (string, error) {
	return "preview://" + name, nil
}
func (nopPreviews) Revoke(context.Context, string) error { return nil }

type publishFixture struct {
	svc        *PublishService
	dispatcher *fakeDispatcher
	sessions   repository.ListingSessionRepository
	logs       repository.SubmissionLogRepository
}

func newPublishFixture(t *testing.T, dispatcher *fakeDispatcher, tokens staticTokens) *publishFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.ListingSession{}, &model.SubmissionLog{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	sessions := repository.NewListingSessionRepository(db)
	logs := repository.NewSubmissionLogRepository(db)

	svc := NewPublishService(
		fakeResolver{}, dispatcher, tokens, nopPreviews{},
		sessions, logs, "https://backend.example.com",
	)
	return &publishFixture{svc: svc, dispatcher: dispatcher, sessions: sessions, logs: logs}
}

// startKayaTipi 开启一个解析好的会话
func startKayaTipi(t *testing.T, f *publishFixture) int64 {
	t.Helper()
	result, err := f.svc.StartSession(context.Background(), &dto.StartSessionRequest{
		UserID: 1, Category: "dorse", Brand: "ekol", Model: "kapakli", Variant: "kaya-tipi",
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	return result.SessionID
}

// fillAndAdvanceToLast 填满必填字段并走到最后一步
func fillAndAdvanceToLast(t *testing.T, f *publishFixture, id int64) {
	t.Helper()
	ctx := context.Background()

	if err := f.svc.SetFields(ctx, id, map[string]string{
		"title": "Ekol Kaya Tipi", "description": "Temiz", "productionYear": "2021", "price": "1.250.000",
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.SetFields(ctx, id, map[string]string{
		"dingilSayisi": "3", "uzunluk": "8", "genislik": "2", "yukseklik": "1",
		"istiapHaddi": "30000", "kapakSistemi": "Hidrolik Kapak", "lastikDurumu": "%75-89",
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.SetFields(ctx, id, map[string]string{"cityId": "34"}); err != nil {
		t.Fatal(err)
	}
	if resp, err := f.svc.LoadDistricts(ctx, id, 34); err != nil || !resp.Applied {
		t.Fatalf("LoadDistricts: applied=%v err=%v", resp != nil && resp.Applied, err)
	}
	if err := f.svc.SetFields(ctx, id, map[string]string{"districtId": "3401"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AddPhotos(ctx, id, []media.File{
		{Name: "on.jpg", Data: []byte{0xFF, 0xD8, 1}},
		{Name: "yan.jpg", Data: []byte{0xFF, 0xD8, 2}},
	}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		result, err := f.svc.Advance(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Failures) > 0 {
			t.Fatalf("第 %d 步校验失败: %+v", i, result.Failures)
		}
	}
}

// ==================== 会话开启 ====================

func TestStartSession(t *testing.T) {
	f := newPublishFixture(t, &fakeDispatcher{status: 201}, staticTokens{token: "t"})

	result, err := f.svc.StartSession(context.Background(), &dto.StartSessionRequest{
		UserID: 1, Category: "dorse", Brand: "ekol", Model: "kapakli", Variant: "kaya-tipi",
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if result.Endpoint != "dorse" || result.Steps != 3 {
		t.Errorf("架构解析不对: endpoint=%s steps=%d", result.Endpoint, result.Steps)
	}
	if len(result.Path) != 4 || result.Path[3].Slug != "kaya-tipi" {
		t.Errorf("分类链 = %+v", result.Path)
	}

	session, err := f.sessions.GetByID(context.Background(), result.SessionID)
	if err != nil {
		t.Fatalf("会话未落库: %v", err)
	}
	if session.VariantID != 4111 || session.Status != model.SessionStatusEditing {
		t.Errorf("落库数据 = %+v", session)
	}
}

func TestStartSession_UnknownCategory(t *testing.T) {
	f := newPublishFixture(t, &fakeDispatcher{}, staticTokens{token: "t"})

	_, err := f.svc.StartSession(context.Background(), &dto.StartSessionRequest{UserID: 1, Category: "olmayan"})
	if _, ok := err.(*taxonomy.ResolutionError); !ok {
		t.Fatalf("error = %v, want *ResolutionError", err)
	}
}

// ==================== 区县联动 ====================

func TestLoadDistricts_StaleDiscarded(t *testing.T) {
	f := newPublishFixture(t, &fakeDispatcher{}, staticTokens{token: "t"})
	id := startKayaTipi(t, f)
	ctx := context.Background()

	// 表单当前城市是 6，却来了 34 的响应 (模拟换城市后才到达的旧请求)
	_ = f.svc.SetFields(ctx, id, map[string]string{"cityId": "6"})
	resp, err := f.svc.LoadDistricts(ctx, id, 34)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Applied {
		t.Error("陈旧区县响应不应落地")
	}

	resp, err = f.svc.LoadDistricts(ctx, id, 6)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Applied || len(resp.Districts) != 2 {
		t.Errorf("当前城市响应未落地: %+v", resp)
	}
}

// ==================== 提交 ====================

func TestSubmit_UnauthenticatedSendsNothing(t *testing.T) {
	dispatcher := &fakeDispatcher{status: 201}
	f := newPublishFixture(t, dispatcher, staticTokens{err: auth.ErrUnauthenticated})
	id := startKayaTipi(t, f)
	fillAndAdvanceToLast(t, f, id)

	result, err := f.svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Outcome != model.OutcomeUnauthenticated {
		t.Errorf("Outcome = %s, want unauthenticated", result.Outcome)
	}
	if dispatcher.count() != 0 {
		t.Errorf("未登录时发出了 %d 个请求, want 0", dispatcher.count())
	}
}

func TestSubmit_ValidationFailureSendsNothing(t *testing.T) {
	dispatcher := &fakeDispatcher{status: 201}
	f := newPublishFixture(t, dispatcher, staticTokens{token: "t"})
	id := startKayaTipi(t, f)
	fillAndAdvanceToLast(t, f, id)

	// 走到最后一步后清掉必填价格
	if err := f.svc.SetFields(context.Background(), id, map[string]string{"price": ""}); err != nil {
		t.Fatal(err)
	}

	result, err := f.svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Outcome != model.OutcomeRejected {
		t.Errorf("Outcome = %s, want rejected", result.Outcome)
	}
	found := false
	for _, failure := range result.Failures {
		if failure.Field == "price" && failure.Reason == "required" {
			found = true
		}
	}
	if !found {
		t.Errorf("缺失价格未被报告: %+v", result.Failures)
	}
	if dispatcher.count() != 0 {
		t.Errorf("校验失败仍发出了请求")
	}
}

func TestSubmit_Success(t *testing.T) {
	dispatcher := &fakeDispatcher{status: 201, body: `{"id": 98765}`}
	f := newPublishFixture(t, dispatcher, staticTokens{token: "jwt-token"})
	id := startKayaTipi(t, f)
	fillAndAdvanceToLast(t, f, id)
	ctx := context.Background()

	result, err := f.svc.Submit(ctx, id)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Outcome != model.OutcomeCreated || result.AdID != "98765" {
		t.Errorf("result = %+v", result)
	}

	// 载荷检查
	req := dispatcher.requests[0]
	if req.URL != "https://backend.example.com/ads/dorse" {
		t.Errorf("URL = %s", req.URL)
	}
	if req.Headers["Authorization"] != "Bearer jwt-token" {
		t.Errorf("Authorization = %s", req.Headers["Authorization"])
	}
	if len(req.Files) != 2 || req.Files[0].Key != "showcasePhoto" || req.Files[1].Key != "photo_0" {
		t.Errorf("文件键 = %+v", req.Files)
	}

	// 会话落库流转
	session, _ := f.sessions.GetByID(ctx, id)
	if session.Status != model.SessionStatusSucceeded || session.AdID != "98765" {
		t.Errorf("session = %+v", session)
	}

	// 成功后会话出内存，不可再操作
	if _, err := f.svc.Submit(ctx, id); err == nil {
		t.Error("已完成会话再次提交应报错")
	}

	logs, _ := f.logs.GetBySessionID(ctx, id)
	if len(logs) != 1 || logs[0].Outcome != model.OutcomeCreated {
		t.Errorf("提交流水 = %+v", logs)
	}
}

func TestSubmit_ServerErrorThenRetry(t *testing.T) {
	dispatcher := &fakeDispatcher{status: 500, body: "internal error"}
	f := newPublishFixture(t, dispatcher, staticTokens{token: "t"})
	id := startKayaTipi(t, f)
	fillAndAdvanceToLast(t, f, id)
	ctx := context.Background()

	result, err := f.svc.Submit(ctx, id)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Outcome != model.OutcomeServerError {
		t.Errorf("Outcome = %s, want server_error", result.Outcome)
	}

	session, _ := f.sessions.GetByID(ctx, id)
	if session.Status != model.SessionStatusFailed {
		t.Errorf("Status = %s, want failed", session.Status)
	}

	// 失败后原地重试：不需要重新录入，媒体不得翻倍
	dispatcher.status = 201
	dispatcher.body = `{"id": "ad-1"}`
	result, err = f.svc.Submit(ctx, id)
	if err != nil {
		t.Fatalf("重试 Submit() error = %v", err)
	}
	if result.Outcome != model.OutcomeCreated || result.AdID != "ad-1" {
		t.Errorf("重试结果 = %+v", result)
	}

	if dispatcher.count() != 2 {
		t.Fatalf("请求数 = %d, want 2", dispatcher.count())
	}
	if len(dispatcher.requests[0].Files) != len(dispatcher.requests[1].Files) {
		t.Errorf("重试后媒体数变化: %d -> %d",
			len(dispatcher.requests[0].Files), len(dispatcher.requests[1].Files))
	}
}

func TestSubmit_PayloadTooLarge(t *testing.T) {
	dispatcher := &fakeDispatcher{status: http.StatusRequestEntityTooLarge, body: "too large"}
	f := newPublishFixture(t, dispatcher, staticTokens{token: "t"})
	id := startKayaTipi(t, f)
	fillAndAdvanceToLast(t, f, id)

	result, err := f.svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != model.OutcomePayloadTooLarge {
		t.Errorf("Outcome = %s, want payload_too_large", result.Outcome)
	}
}

func TestSubmit_NetworkError(t *testing.T) {
	dispatcher := &fakeDispatcher{err: fmt.Errorf("connection refused")}
	f := newPublishFixture(t, dispatcher, staticTokens{token: "t"})
	id := startKayaTipi(t, f)
	fillAndAdvanceToLast(t, f, id)
	ctx := context.Background()

	result, err := f.svc.Submit(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome != model.OutcomeNetworkError {
		t.Errorf("Outcome = %s, want network_error", result.Outcome)
	}

	logs, _ := f.logs.GetBySessionID(ctx, id)
	if len(logs) != 1 || logs[0].Outcome != model.OutcomeNetworkError {
		t.Errorf("流水 = %+v", logs)
	}
}

// ==================== 进度订阅 ====================

func TestSubscribe_ReceivesStages(t *testing.T) {
	dispatcher := &fakeDispatcher{status: 201, body: `{"id": 1}`}
	f := newPublishFixture(t, dispatcher, staticTokens{token: "t"})
	id := startKayaTipi(t, f)
	fillAndAdvanceToLast(t, f, id)

	ch := f.svc.Subscribe(id)
	if _, err := f.svc.Submit(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	stages := map[string]bool{}
	for len(ch) > 0 {
		event := <-ch
		stages[event.Stage] = true
	}
	for _, want := range []string{"validating", "uploading", "done"} {
		if !stages[want] {
			t.Errorf("缺少进度事件 %s, got %v", want, stages)
		}
	}
	f.svc.Unsubscribe(id, ch)
}

// ==================== 放弃 ====================

func TestAbandon(t *testing.T) {
	f := newPublishFixture(t, &fakeDispatcher{}, staticTokens{token: "t"})
	id := startKayaTipi(t, f)
	ctx := context.Background()

	if _, err := f.svc.AddPhotos(ctx, id, []media.File{{Name: "p.jpg", Data: []byte{1}}}); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Abandon(ctx, id); err != nil {
		t.Fatalf("Abandon() error = %v", err)
	}

	if _, err := f.svc.MediaState(id); err == nil {
		t.Error("放弃后的会话不应可访问")
	}
	if _, err := f.sessions.GetByID(ctx, id); err == nil {
		t.Error("放弃后的会话应被软删")
	}
}

// ==================== 并发编辑 ====================

func TestSetFields_ConcurrentSameSession(t *testing.T) {
	f := newPublishFixture(t, &fakeDispatcher{status: 201}, staticTokens{token: "t"})
	id := startKayaTipi(t, f)
	ctx := context.Background()

	// 同一会话的并发请求必须被服务层串行化，否则表单控制器的
	// 裸 map 会触发 concurrent map write
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = f.svc.SetFields(ctx, id, map[string]string{
					"title": fmt.Sprintf("baslik-%d-%d", n, j),
					"price": "1.000",
				})
				_, _ = f.svc.Validate(id)
			}
		}(i)
	}
	wg.Wait()

	if _, err := f.svc.Validate(id); err != nil {
		t.Fatalf("并发写后 Validate error = %v", err)
	}

	values, err := f.sessions.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("快照读取失败: %v", err)
	}
	if values.FieldValues["price"] != "1.000" {
		t.Errorf("快照 price = %v, want 1.000", values.FieldValues["price"])
	}
}
