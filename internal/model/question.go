package model

import "time"

const (
	QuestionTypeObjective  = "OBJECTIVE"
	QuestionTypeSubjective = "SUBJECTIVE"
)

const (
	ModelAnswerWrong   = "WRONG"
	ModelAnswerMedian  = "MEDIAN"
	ModelAnswerCorrect = "CORRECT"
)

type Question struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	Text            string        `json:"text" gorm:"type:text;not null"`
	QuestionType    string        `json:"question_type" gorm:"not null"` // "OBJECTIVE", "SUBJECTIVE"
	CreatorID       uint          `json:"creator_id" gorm:"not null;index"`
	EducationLevel  *string       `json:"education_level,omitempty"`
	Difficulty      *string       `json:"difficulty,omitempty"`
	ExamReference   *string       `json:"exam_reference,omitempty"`
	UseModelAnswers bool          `json:"use_model_answers"`
	Alternatives    []Alternative `json:"alternatives,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ModelAnswers    []ModelAnswer `json:"model_answers,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Disciplines     []Discipline  `json:"disciplines,omitempty" gorm:"many2many:question_disciplines;"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Alternative belongs to exactly one objective question; the set of its
// alternatives is the question's answer key.
type Alternative struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Content    string `json:"content" gorm:"type:text;not null"`
	Correct    bool   `json:"correct" gorm:"not null"`
}

// ModelAnswer holds one of the three grading reference tiers for a
// subjective question. At most one row per (question, type).
type ModelAnswer struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;uniqueIndex:idx_model_answer_question_type"`
	Type       string `json:"type" gorm:"not null;uniqueIndex:idx_model_answer_question_type"` // "WRONG", "MEDIAN", "CORRECT"
	Content    string `json:"content" gorm:"type:text;not null"`
}

// QuestionDiscipline is the join row behind the question/discipline
// many-to-many relation; kept explicit so membership edits and the
// orphan-discipline sweep can target rows directly.
type QuestionDiscipline struct {
	QuestionID   uint `gorm:"primaryKey" json:"question_id"`
	DisciplineID uint `gorm:"primaryKey" json:"discipline_id"`
}
