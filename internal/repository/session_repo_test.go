package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dorse_dev_v1_202608/internal/model"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.ListingSession{}, &model.SubmissionLog{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func newSession(userID int64) *model.ListingSession {
	return &model.ListingSession{
		UserID:       userID,
		CategorySlug: "dorse",
		BrandSlug:    "ekol",
		ModelSlug:    "kapakli",
		VariantSlug:  "kaya-tipi",
		CategoryID:   4,
		VariantID:    4111,
		Endpoint:     "dorse",
		Status:       model.SessionStatusEditing,
		FieldValues:  model.JSONMap{"title": "Kaya Tipi Damper", "price": "1250000"},
	}
}

func TestSessionRepo_CreateAndGet(t *testing.T) {
	repo := NewListingSessionRepository(setupSessionTestDB(t))
	ctx := context.Background()

	session := newSession(1)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.ID == 0 {
		t.Fatal("创建后 ID 未回填")
	}

	got, err := repo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.VariantSlug != "kaya-tipi" || got.Endpoint != "dorse" {
		t.Errorf("读回数据不一致: %+v", got)
	}
	if got.FieldValues["title"] != "Kaya Tipi Damper" {
		t.Errorf("FieldValues 未正确序列化: %v", got.FieldValues)
	}
}

func TestSessionRepo_SubmitTransitions(t *testing.T) {
	repo := NewListingSessionRepository(setupSessionTestDB(t))
	ctx := context.Background()

	session := newSession(1)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatal(err)
	}

	if err := repo.MarkSubmitting(ctx, session.ID); err != nil {
		t.Fatalf("MarkSubmitting() error = %v", err)
	}
	got, _ := repo.GetByID(ctx, session.ID)
	if got.Status != model.SessionStatusSubmitting {
		t.Errorf("Status = %s, want submitting", got.Status)
	}

	if err := repo.MarkFailed(ctx, session.ID, "服务端 500"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
	got, _ = repo.GetByID(ctx, session.ID)
	if got.Status != model.SessionStatusFailed || got.LastError != "服务端 500" {
		t.Errorf("失败流转不正确: %+v", got)
	}

	if err := repo.MarkSucceeded(ctx, session.ID, "ad-777"); err != nil {
		t.Fatalf("MarkSucceeded() error = %v", err)
	}
	got, _ = repo.GetByID(ctx, session.ID)
	if got.Status != model.SessionStatusSucceeded || got.AdID != "ad-777" {
		t.Errorf("成功流转不正确: %+v", got)
	}
	if got.LastError != "" {
		t.Errorf("成功后 LastError 应清空, got %q", got.LastError)
	}
}

func TestSessionRepo_ListFilters(t *testing.T) {
	repo := NewListingSessionRepository(setupSessionTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = repo.Create(ctx, newSession(1))
	}
	other := newSession(2)
	other.Status = model.SessionStatusSucceeded
	_ = repo.Create(ctx, other)

	sessions, total, err := repo.List(ctx, SessionFilter{UserID: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(sessions) != 3 {
		t.Errorf("total = %d, len = %d, want 3/3", total, len(sessions))
	}

	_, total, err = repo.List(ctx, SessionFilter{Status: model.SessionStatusSucceeded})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("succeeded total = %d, want 1", total)
	}
}

func TestSessionRepo_StaleLifecycle(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := NewListingSessionRepository(db)
	ctx := context.Background()

	stale := newSession(1)
	if err := repo.Create(ctx, stale); err != nil {
		t.Fatal(err)
	}
	// 手动回拨 updated_at 模拟长期未动
	db.Model(&model.ListingSession{}).Where("id = ?", stale.ID).
		Update("updated_at", time.Now().Add(-72*time.Hour))

	fresh := newSession(1)
	if err := repo.Create(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	found, err := repo.FindStale(ctx, time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("FindStale() error = %v", err)
	}
	if len(found) != 1 || found[0].ID != stale.ID {
		t.Fatalf("FindStale 结果 = %d 条, want 仅陈旧会话", len(found))
	}

	if err := repo.MarkExpired(ctx, stale.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.GetByID(ctx, stale.ID)
	if got.Status != model.SessionStatusExpired {
		t.Errorf("Status = %s, want expired", got.Status)
	}
}

func TestSubmissionLogRepo(t *testing.T) {
	db := setupSessionTestDB(t)
	sessions := NewListingSessionRepository(db)
	logs := NewSubmissionLogRepository(db)
	ctx := context.Background()

	session := newSession(1)
	if err := sessions.Create(ctx, session); err != nil {
		t.Fatal(err)
	}

	entries := []*model.SubmissionLog{
		{SessionID: session.ID, StatusCode: 500, Outcome: model.OutcomeServerError, Message: "内部错误"},
		{SessionID: session.ID, StatusCode: 201, Outcome: model.OutcomeCreated, Message: "ad-777"},
	}
	for _, e := range entries {
		if err := logs.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := logs.GetBySessionID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetBySessionID() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	count, err := logs.CountByOutcome(ctx, model.OutcomeServerError)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("CountByOutcome = %d, want 1", count)
	}
}
