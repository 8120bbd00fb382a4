package model

import "time"

// Exam visibility states derived from IsPublic/AccessCode:
// public (IsPublic), code-protected (code set), locked (neither).
// A locked exam is reachable only by its creator; that state is
// deliberate and never auto-corrected.
type Exam struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	CreatorID   uint      `json:"creator_id" gorm:"not null;index"`
	IsPublic    bool      `json:"is_public" gorm:"not null"`
	AccessCode  *string   `json:"access_code,omitempty" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ExamQuestion struct {
	ExamID     uint      `gorm:"primaryKey" json:"exam_id"`
	QuestionID uint      `gorm:"primaryKey" json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type ExamQuestionBank struct {
	ExamID         uint      `gorm:"primaryKey" json:"exam_id"`
	QuestionBankID uint      `gorm:"primaryKey" json:"question_bank_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExamAccess records that a user once supplied the correct access code.
// Grants never expire and are not invalidated by later code changes.
type ExamAccess struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_exam_access_user_exam"`
	ExamID    uint      `json:"exam_id" gorm:"not null;uniqueIndex:idx_exam_access_user_exam"`
	CreatedAt time.Time `json:"created_at"`
}
