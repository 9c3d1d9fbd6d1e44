package tariff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/micasillero/courier/internal/tariff/model"
	"github.com/micasillero/courier/utils"
)

// descriptionSiblingLimit bounds the textual fallback so a popular parent
// description cannot produce an unbounded join.
const descriptionSiblingLimit = 20

// Store handles database operations for the tariff catalog.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetByCode returns the tariff item with the given code, or nil when absent.
func (s *Store) GetByCode(ctx context.Context, code string) (*model.TariffItem, error) {
	var item model.TariffItem
	err := s.db.WithContext(ctx).First(&item, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query tariff item %s: %w", code, err)
	}
	return &item, nil
}

// GetByID returns the tariff item with the given ID.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*model.TariffItem, error) {
	var item model.TariffItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query tariff item %s: %w", id, err)
	}
	return &item, nil
}

// List returns a page of tariff items matching the filter, ordered by code.
func (s *Store) List(ctx context.Context, filter model.TariffItemFilter) (*model.TariffItemListResult, error) {
	offset, limit := utils.GetPaginationParams(filter.Offset, filter.Limit)

	query := s.db.WithContext(ctx).Model(&model.TariffItem{})
	if filter.CodeStartsWith != nil && *filter.CodeStartsWith != "" {
		query = query.Where("code LIKE ?", *filter.CodeStartsWith+"%")
	}
	if filter.Category != nil {
		query = query.Where("courier_category = ?", *filter.Category)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count tariff items: %w", err)
	}

	var items []model.TariffItem
	if err := query.Order("code").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list tariff items: %w", err)
	}

	return &model.TariffItemListResult{
		TotalCount: totalCount,
		Items:      items,
		Offset:     offset,
		Limit:      limit,
	}, nil
}

// ListPage returns one raw page ordered by code. Used by the batch passes
// (backfill, keyword generation) which manage their own progress.
func (s *Store) ListPage(ctx context.Context, offset, limit int) ([]model.TariffItem, error) {
	var items []model.TariffItem
	err := s.db.WithContext(ctx).Order("code").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page tariff items: %w", err)
	}
	return items, nil
}

// Create inserts a new tariff item.
func (s *Store) Create(ctx context.Context, item *model.TariffItem) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create tariff item %s: %w", item.Code, err)
	}
	return nil
}

// StructuralSiblings returns all items sharing the chapter and hierarchy level,
// excluding the target itself, ordered by code.
func (s *Store) StructuralSiblings(ctx context.Context, chapterCode string, level int, excludeID uuid.UUID) ([]model.TariffItem, error) {
	var items []model.TariffItem
	err := s.db.WithContext(ctx).
		Where("chapter_code = ? AND hierarchy_level = ? AND id <> ?", chapterCode, level, excludeID).
		Order("code").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query structural siblings: %w", err)
	}
	return items, nil
}

// DescriptionSiblings is the textual fallback used before the hierarchy
// backfill has run: items whose description chain contains the parent-level
// description, bounded and ordered by code.
func (s *Store) DescriptionSiblings(ctx context.Context, parentDescription string, excludeID uuid.UUID) ([]model.TariffItem, error) {
	var items []model.TariffItem
	err := s.db.WithContext(ctx).
		Where("description LIKE ? AND id <> ?", "%"+parentDescription+"%", excludeID).
		Order("code").
		Limit(descriptionSiblingLimit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query description siblings: %w", err)
	}
	return items, nil
}

// UpdateHierarchy persists the derived hierarchy fields for one item as a
// single UPDATE, so concurrent readers observe either the old or the new
// metadata in full, never a partial mix.
func (s *Store) UpdateHierarchy(ctx context.Context, id uuid.UUID, h Hierarchy) error {
	err := s.db.WithContext(ctx).
		Model(&model.TariffItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"chapter_code":     h.ChapterCode,
			"heading_code":     h.HeadingCode,
			"parent_code":      h.ParentCode,
			"grandparent_code": h.GrandparentCode,
			"hierarchy_level":  h.Level,
			"is_leaf":          h.IsLeaf,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update hierarchy for %s: %w", id, err)
	}
	return nil
}

// UpdateSearchKeywords replaces the generated keyword set for one item.
func (s *Store) UpdateSearchKeywords(ctx context.Context, id uuid.UUID, keywords []string) error {
	err := s.db.WithContext(ctx).
		Model(&model.TariffItem{}).
		Where("id = ?", id).
		Update("search_keywords", model.StringArray(keywords)).Error
	if err != nil {
		return fmt.Errorf("failed to update search keywords for %s: %w", id, err)
	}
	return nil
}

// ItemsWithEmptyKeywords returns up to limit courier-allowed items whose
// keyword set has not been generated yet, ordered by code.
func (s *Store) ItemsWithEmptyKeywords(ctx context.Context, limit int) ([]model.TariffItem, error) {
	var items []model.TariffItem
	err := s.db.WithContext(ctx).
		Where("courier_category = ?", model.CourierCategoryAllowed).
		Where("search_keywords IS NULL OR search_keywords::text IN ('[]', 'null')").
		Order("code").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query items with empty keywords: %w", err)
	}
	return items, nil
}

// Count returns the total number of tariff items.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.TariffItem{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tariff items: %w", err)
	}
	return count, nil
}
