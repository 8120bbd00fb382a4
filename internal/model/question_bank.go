package model

import "time"

type QuestionBank struct {
	ID          uint                     `gorm:"primarykey" json:"id"`
	Name        string                   `json:"name" gorm:"not null"`
	Description string                   `json:"description,omitempty"`
	CreatorID   uint                     `json:"creator_id" gorm:"not null;index"`
	Questions   []Question               `json:"questions,omitempty" gorm:"many2many:question_bank_questions;"`
	Disciplines []QuestionBankDiscipline `json:"disciplines,omitempty" gorm:"foreignKey:QuestionBankID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// QuestionBankQuestion keeps CreatedAt so membership can be listed in
// insertion order, which fixes the tie-break order of the discipline
// ranking.
type QuestionBankQuestion struct {
	QuestionBankID uint      `gorm:"primaryKey" json:"question_bank_id"`
	QuestionID     uint      `gorm:"primaryKey" json:"question_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// QuestionBankDiscipline is the cached discipline ranking of a bank.
// Rows are fully replaced on every membership change; Position is the
// rank (0-based) and the top two entries carry Predominant=true.
type QuestionBankDiscipline struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	QuestionBankID uint       `json:"question_bank_id" gorm:"not null;uniqueIndex:idx_bank_discipline"`
	DisciplineID   uint       `json:"discipline_id" gorm:"not null;uniqueIndex:idx_bank_discipline"`
	Discipline     Discipline `json:"discipline,omitempty" gorm:"foreignKey:DisciplineID"`
	Count          int        `json:"count" gorm:"not null"`
	Position       int        `json:"position" gorm:"not null"`
	Predominant    bool       `json:"predominant" gorm:"not null"`
}
