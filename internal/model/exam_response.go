package model

import "time"

type ExamResponse struct {
	ID        uint         `gorm:"primarykey" json:"id"`
	UserID    uint         `json:"user_id" gorm:"not null;index"`
	ExamID    uint         `json:"exam_id" gorm:"not null;index"`
	Answers   []ExamAnswer `json:"answers,omitempty" gorm:"foreignKey:ExamResponseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time    `json:"created_at"`
}

// ExamAnswer carries either an alternative choice (objective questions)
// or free text (subjective questions), never both. Score and Feedback
// stay nil until the correction engine persists a grade.
type ExamAnswer struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ExamResponseID uint      `json:"exam_response_id" gorm:"not null;index"`
	QuestionID     uint      `json:"question_id" gorm:"not null;index"`
	Question       Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	AlternativeID  *uint     `json:"alternative_id,omitempty"`
	SubjectiveText *string   `json:"subjective_text,omitempty" gorm:"type:text"`
	Score          *float64  `json:"score,omitempty"`
	Feedback       *string   `json:"feedback,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
