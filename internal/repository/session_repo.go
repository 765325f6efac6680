package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dorse_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// ListingSessionRepository 发布会话仓储接口
type ListingSessionRepository interface {
	Create(ctx context.Context, session *model.ListingSession) error
	GetByID(ctx context.Context, id int64) (*model.ListingSession, error)
	Update(ctx context.Context, session *model.ListingSession) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter SessionFilter) ([]model.ListingSession, int64, error)

	// 提交流转
	MarkSubmitting(ctx context.Context, id int64) error
	MarkSucceeded(ctx context.Context, id int64, adID string) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error

	// 过期清理相关
	FindStale(ctx context.Context, before time.Time) ([]*model.ListingSession, error)
	MarkExpired(ctx context.Context, id int64) error
}

// SubmissionLogRepository 提交流水仓储接口
type SubmissionLogRepository interface {
	Create(ctx context.Context, entry *model.SubmissionLog) error
	GetBySessionID(ctx context.Context, sessionID int64) ([]model.SubmissionLog, error)
	CountByOutcome(ctx context.Context, outcome string) (int64, error)
}

// ==================== 过滤条件 ====================

// SessionFilter 会话过滤条件
type SessionFilter struct {
	UserID       int64
	Status       string
	CategorySlug string
	Page         int
	PageSize     int
}

// ==================== ListingSession 仓储实现 ====================

type listingSessionRepo struct {
	db *gorm.DB
}

// NewListingSessionRepository 创建发布会话仓储
func NewListingSessionRepository(db *gorm.DB) ListingSessionRepository {
	return &listingSessionRepo{db: db}
}

func (r *listingSessionRepo) Create(ctx context.Context, session *model.ListingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *listingSessionRepo) GetByID(ctx context.Context, id int64) (*model.ListingSession, error) {
	var session model.ListingSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *listingSessionRepo) Update(ctx context.Context, session *model.ListingSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *listingSessionRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.ListingSession{}).Where("id = ?", id).Updates(fields).Error
}

func (r *listingSessionRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.ListingSession{}, id).Error
}

func (r *listingSessionRepo) List(ctx context.Context, filter SessionFilter) ([]model.ListingSession, int64, error) {
	var sessions []model.ListingSession
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ListingSession{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategorySlug != "" {
		query = query.Where("category_slug = ?", filter.CategorySlug)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("updated_at DESC").Limit(filter.PageSize).Offset(offset).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *listingSessionRepo) MarkSubmitting(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.ListingSession{}).Where("id = ?", id).
		Update("status", model.SessionStatusSubmitting).Error
}

func (r *listingSessionRepo) MarkSucceeded(ctx context.Context, id int64, adID string) error {
	return r.db.WithContext(ctx).Model(&model.ListingSession{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.SessionStatusSucceeded,
			"ad_id":      adID,
			"last_error": "",
		}).Error
}

func (r *listingSessionRepo) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return r.db.WithContext(ctx).Model(&model.ListingSession{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.SessionStatusFailed,
			"last_error": errMsg,
		}).Error
}

// FindStale 查找长期未动的编辑中会话
func (r *listingSessionRepo) FindStale(ctx context.Context, before time.Time) ([]*model.ListingSession, error) {
	var sessions []*model.ListingSession
	err := r.db.WithContext(ctx).
		Where("updated_at < ? AND status IN ?", before,
			[]string{model.SessionStatusEditing, model.SessionStatusFailed}).
		Find(&sessions).Error
	return sessions, err
}

// MarkExpired 标记会话为过期
func (r *listingSessionRepo) MarkExpired(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.ListingSession{}).
		Where("id = ?", id).
		Update("status", model.SessionStatusExpired).Error
}

// ==================== SubmissionLog 仓储实现 ====================

type submissionLogRepo struct {
	db *gorm.DB
}

// NewSubmissionLogRepository 创建提交流水仓储
func NewSubmissionLogRepository(db *gorm.DB) SubmissionLogRepository {
	return &submissionLogRepo{db: db}
}

func (r *submissionLogRepo) Create(ctx context.Context, entry *model.SubmissionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *submissionLogRepo) GetBySessionID(ctx context.Context, sessionID int64) ([]model.SubmissionLog, error) {
	var logs []model.SubmissionLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (r *submissionLogRepo) CountByOutcome(ctx context.Context, outcome string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SubmissionLog{}).
		Where("outcome = ?", outcome).
		Count(&count).Error
	return count, err
}
