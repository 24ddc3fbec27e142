package store

import (
	"context"
	"errors"

	"sheily-auth/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BranchStore struct{ db *gorm.DB }

func (s *Store) Branches() *BranchStore { return &BranchStore{db: s.DB} }

// Upsert inserts the branch, keeping the existing row on a name clash.
func (b *BranchStore) Upsert(ctx context.Context, br *domain.Branch) error {
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(br).Error
}

func (b *BranchStore) GetByName(ctx context.Context, name string) (*domain.Branch, error) {
	var br domain.Branch
	if err := b.db.WithContext(ctx).First(&br, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &br, nil
}

func (b *BranchStore) List(ctx context.Context, enabledOnly bool) ([]domain.Branch, error) {
	q := b.db.WithContext(ctx)
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	var out []domain.Branch
	err := q.Order("name ASC").Find(&out).Error
	return out, err
}

func (b *BranchStore) SetEnabled(ctx context.Context, name string, enabled bool) error {
	res := b.db.WithContext(ctx).Model(&domain.Branch{}).
		Where("name = ?", name).
		Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
