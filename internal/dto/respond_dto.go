package dto

import "time"

// RespondentAlternativeDTO hides the correct flag from exam takers.
type RespondentAlternativeDTO struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

// RespondentQuestionDTO is the answer-key-free view of a question.
type RespondentQuestionDTO struct {
	ID           uint                       `json:"id"`
	Text         string                     `json:"text"`
	QuestionType string                     `json:"question_type"`
	Alternatives []RespondentAlternativeDTO `json:"alternatives,omitempty"`
}

type ExamForResponseDTO struct {
	ID          uint                    `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Questions   []RespondentQuestionDTO `json:"questions"`
}

type SubmitAnswerDTO struct {
	QuestionID     uint    `json:"question_id" binding:"required"`
	AlternativeID  *uint   `json:"alternative_id"`
	SubjectiveText *string `json:"subjective_text"`
}

// ExamSubmitDTO submits all answers for an exam. AccessCode is optional:
// supplying the correct one both grants and uses access in one call.
type ExamSubmitDTO struct {
	AccessCode *string           `json:"access_code"`
	Answers    []SubmitAnswerDTO `json:"answers" binding:"required,min=1,dive"`
}

type ExamAnswerDTO struct {
	ID             uint     `json:"id"`
	QuestionID     uint     `json:"question_id"`
	AlternativeID  *uint    `json:"alternative_id,omitempty"`
	SubjectiveText *string  `json:"subjective_text,omitempty"`
	Score          *float64 `json:"score,omitempty"`
	Feedback       *string  `json:"feedback,omitempty"`
}

type ExamResponseDetailDTO struct {
	ID        uint            `json:"id"`
	ExamID    uint            `json:"exam_id"`
	UserID    uint            `json:"user_id"`
	Answers   []ExamAnswerDTO `json:"answers"`
	CreatedAt time.Time       `json:"created_at"`
}
