package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dorse_dev_v1_202608/internal/repository"
)

// ==================== 会话过期清理 ====================

// SessionReclaimer 内存态会话回收接口
type SessionReclaimer interface {
	ReclaimSession(sessionID int64)
}

// CleanupTask 定时清理长期未动的发布会话
// 过期会话的预览句柄必须跟着回收，否则存储端慢慢涨垃圾
type CleanupTask struct {
	sessionRepo repository.ListingSessionRepository
	reclaimer   SessionReclaimer
	cron        *cron.Cron

	ttl     time.Duration
	running bool
	mutex   sync.Mutex
}

func NewCleanupTask(sessionRepo repository.ListingSessionRepository, reclaimer SessionReclaimer, ttl time.Duration) *CleanupTask {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &CleanupTask{
		sessionRepo: sessionRepo,
		reclaimer:   reclaimer,
		cron:        cron.New(cron.WithSeconds()),
		ttl:         ttl,
	}
}

// Start 启动定时任务
func (t *CleanupTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次会话清理...")
		t.cleanupJob(ctx)
	}()

	// 每小时整点一轮
	_, err := t.cron.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.cleanupJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动会话清理任务: %v", err)
	}

	t.cron.Start()
	log.Println("会话清理任务已启动 (每小时一轮)")
}

// Stop 停止定时任务
func (t *CleanupTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

// cleanupJob 单轮清理
func (t *CleanupTask) cleanupJob(ctx context.Context) {
	t.mutex.Lock()
	if t.running {
		t.mutex.Unlock()
		log.Println("[Cron] 上一轮清理尚未结束，跳过")
		return
	}
	t.running = true
	t.mutex.Unlock()

	defer func() {
		t.mutex.Lock()
		t.running = false
		t.mutex.Unlock()
	}()

	sessions, err := t.sessionRepo.FindStale(ctx, time.Now().Add(-t.ttl))
	if err != nil {
		log.Printf("[Cron] 陈旧会话查询失败: %v", err)
		return
	}
	if len(sessions) == 0 {
		return
	}

	log.Printf("[Cron] 发现 %d 个陈旧会话，开始清理", len(sessions))
	for _, session := range sessions {
		if t.reclaimer != nil {
			t.reclaimer.ReclaimSession(session.ID)
		}
		if err := t.sessionRepo.MarkExpired(ctx, session.ID); err != nil {
			log.Printf("[Cron] 会话 %d 标记过期失败: %v", session.ID, err)
		}
	}
	log.Printf("[Cron] 本轮会话清理完成")
}
