package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/errs"
	"ideaboard-backend/internal/types"
)

type IdeaRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ideas []*types.Idea) ([]*types.Idea, error)
	GetByID(ctx context.Context, tx *gorm.DB, profile string, id uuid.UUID) (*types.Idea, error)
	ListByProfile(ctx context.Context, tx *gorm.DB, profile string) ([]*types.Idea, error)
	TextExists(ctx context.Context, tx *gorm.DB, profile string, text string) (bool, error)
	// Save persists the full row guarded by an optimistic version check.
	// The stored version must equal idea.Version; on success idea.Version is
	// advanced. RowsAffected==0 surfaces as ErrStaleWrite.
	Save(ctx context.Context, tx *gorm.DB, idea *types.Idea) error
}

type ideaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdeaRepo(db *gorm.DB, baseLog *logger.Logger) IdeaRepo {
	return &ideaRepo{db: db, log: baseLog.With("repo", "IdeaRepo")}
}

func (ir *ideaRepo) Create(ctx context.Context, tx *gorm.DB, ideas []*types.Idea) ([]*types.Idea, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	if len(ideas) == 0 {
		return []*types.Idea{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&ideas).Error; err != nil {
		return nil, err
	}
	return ideas, nil
}

func (ir *ideaRepo) GetByID(ctx context.Context, tx *gorm.DB, profile string, id uuid.UUID) (*types.Idea, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var result types.Idea
	err := transaction.WithContext(ctx).
		Where("profile = ? AND id = ?", profile, id).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (ir *ideaRepo) ListByProfile(ctx context.Context, tx *gorm.DB, profile string) ([]*types.Idea, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.Idea
	if err := transaction.WithContext(ctx).
		Where("profile = ?", profile).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *ideaRepo) TextExists(ctx context.Context, tx *gorm.DB, profile string, text string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Idea{}).
		Where("profile = ? AND status <> ? AND LOWER(text) = ?", profile, types.StatusDiscarded, strings.ToLower(strings.TrimSpace(text))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ir *ideaRepo) Save(ctx context.Context, tx *gorm.DB, idea *types.Idea) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	prev := idea.Version
	idea.Version = prev + 1

	res := transaction.WithContext(ctx).
		Model(&types.Idea{}).
		Where("id = ? AND version = ?", idea.ID, prev).
		Select("*").
		Omit("id", "created_at").
		Updates(idea)
	if res.Error != nil {
		idea.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		idea.Version = prev
		return errs.ErrStaleWrite
	}
	return nil
}
