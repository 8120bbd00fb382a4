package model

import "time"

// Discipline names are unique per creator, not globally. Rows are created
// on demand by the discipline resolver and reclaimed once no question
// references them.
type Discipline struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_discipline_creator_name"`
	CreatorID uint      `json:"creator_id" gorm:"not null;uniqueIndex:idx_discipline_creator_name"`
	CreatedAt time.Time `json:"created_at"`
}
