package model

import "time"

// CommonOwner is the shared pseudo-owner. It never owns tasks; it scopes
// wishlist, vision-board and goal items shared between the real owners.
const CommonOwner = "Common"

// Wish is one wishlist entry.
type Wish struct {
	ID        uint   `gorm:"primaryKey"`
	Owner     string `gorm:"index"`
	Title     string
	Link      string
	Priority  string `gorm:"default:Medium"`
	Acquired  bool
	CreatedAt time.Time
}

// BoardItem is one vision-board card.
type BoardItem struct {
	ID          uint   `gorm:"primaryKey"`
	Owner       string `gorm:"index"`
	Title       string
	ContentType string `gorm:"default:image"`
	Tag         string `gorm:"default:general"`
	CreatedAt   time.Time
}

// Goal is a quarterly or yearly objective with measurable progress.
type Goal struct {
	ID        uint   `gorm:"primaryKey"`
	Owner     string `gorm:"index"`
	Title     string
	Period    Scope `gorm:"index"`
	Target    string
	Progress  float64 `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
