package model

import "time"

// User rows are provisioned by the external auth service; this model only
// exists so foreign keys resolve and migrations stay self-contained.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
