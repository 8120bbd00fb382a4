package dto

import "time"

type ExamCreateDTO struct {
	Title              string `json:"title" binding:"required"`
	Description        string `json:"description"`
	IsPublic           bool   `json:"is_public"`
	GenerateAccessCode bool   `json:"generate_access_code"`
	Questions          []uint `json:"questions"`
	QuestionBanks      []uint `json:"question_banks"`
}

// ExamUpdateDTO: nil fields are untouched. A non-nil Questions slice
// replaces the direct-question set. GenerateAccessCode mints a new code,
// ClearAccessCode drops the current one; clearing the code on a private
// exam intentionally leaves it locked to everyone but the creator.
type ExamUpdateDTO struct {
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	IsPublic           *bool   `json:"is_public"`
	GenerateAccessCode bool    `json:"generate_access_code"`
	ClearAccessCode    bool    `json:"clear_access_code"`
	Questions          *[]uint `json:"questions"`
}

type ExamQuestionsDTO struct {
	Questions []uint `json:"questions" binding:"required,min=1"`
}

type ExamBanksDTO struct {
	QuestionBanks []uint `json:"question_banks" binding:"required,min=1"`
}

type ExamBankSummaryDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ExamResponseDTO struct {
	ID            uint                  `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description,omitempty"`
	CreatorID     uint                  `json:"creator_id"`
	IsPublic      bool                  `json:"is_public"`
	AccessCode    *string               `json:"access_code,omitempty"`
	Questions     []QuestionResponseDTO `json:"questions,omitempty"`
	QuestionBanks []ExamBankSummaryDTO  `json:"question_banks,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

type GrantAccessDTO struct {
	AccessCode string `json:"access_code" binding:"required"`
}

type AccessStatusDTO struct {
	HasAccess bool `json:"has_access"`
}
