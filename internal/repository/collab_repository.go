package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bluenest/internal/model"
)

// CollabRepository serves the read interfaces consumed by the query
// aggregator: wishlist, vision board and goals. Each accepts a concrete owner
// or the Common pseudo-owner.
type CollabRepository struct {
	db *gorm.DB
}

func NewCollabRepository(db *gorm.DB) *CollabRepository {
	return &CollabRepository{db: db}
}

func (r *CollabRepository) ListWishes(ctx context.Context, owner string) ([]model.Wish, error) {
	var wishes []model.Wish
	if err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at ASC").
		Find(&wishes).Error; err != nil {
		return nil, fmt.Errorf("list wishes: %w", err)
	}
	return wishes, nil
}

func (r *CollabRepository) ListBoardItems(ctx context.Context, owner string, from, to *time.Time) ([]model.BoardItem, error) {
	query := r.db.WithContext(ctx).Where("owner = ?", owner)
	if from != nil {
		query = query.Where("created_at >= ?", model.Day(*from))
	}
	if to != nil {
		query = query.Where("created_at < ?", model.Day(*to).AddDate(0, 0, 1))
	}

	var items []model.BoardItem
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list board items: %w", err)
	}
	return items, nil
}

func (r *CollabRepository) ListGoals(ctx context.Context, owner string, period model.Scope) ([]model.Goal, error) {
	var goals []model.Goal
	if err := r.db.WithContext(ctx).
		Where("owner = ? AND period = ?", owner, period).
		Order("created_at ASC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// AddWish, AddBoardItem and AddGoal exist for the chat surface and seeding;
// the aggregator itself only reads.

func (r *CollabRepository) AddWish(ctx context.Context, wish *model.Wish) error {
	if err := r.db.WithContext(ctx).Create(wish).Error; err != nil {
		return fmt.Errorf("create wish: %w", err)
	}
	return nil
}

func (r *CollabRepository) AddBoardItem(ctx context.Context, item *model.BoardItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create board item: %w", err)
	}
	return nil
}

func (r *CollabRepository) AddGoal(ctx context.Context, goal *model.Goal) error {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}
