package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/types"
)

type ProfileRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, profile *types.Profile) error
	GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.Profile, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Profile, error)
	SetLastActive(ctx context.Context, tx *gorm.DB, key string) error
	GetLastActive(ctx context.Context, tx *gorm.DB) (*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (pr *profileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *types.Profile) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(profile).Error
}

func (pr *profileRepo) GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.Profile
	err := transaction.WithContext(ctx).
		Where("key = ?", key).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (pr *profileRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Profile
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) SetLastActive(ctx context.Context, tx *gorm.DB, key string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Model(&types.Profile{}).
			Where("last_active = ?", true).
			Update("last_active", false).Error; err != nil {
			return err
		}
		return inner.Model(&types.Profile{}).
			Where("key = ?", key).
			Update("last_active", true).Error
	})
}

func (pr *profileRepo) GetLastActive(ctx context.Context, tx *gorm.DB) (*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.Profile
	err := transaction.WithContext(ctx).
		Where("last_active = ?", true).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
