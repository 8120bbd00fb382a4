package dto

import "time"

type QuestionBankCreateDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Questions   []uint `json:"questions"`
}

// QuestionBankUpdateDTO: a non-nil Questions slice replaces the entire
// membership; nil leaves it untouched.
type QuestionBankUpdateDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Questions   *[]uint `json:"questions"`
}

type BankQuestionsDTO struct {
	Questions []uint `json:"questions" binding:"required,min=1"`
}

// BankDisciplineDTO is one entry of the cached discipline ranking.
type BankDisciplineDTO struct {
	DisciplineID uint   `json:"discipline_id"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
	Position     int    `json:"position"`
	Predominant  bool   `json:"predominant"`
}

type QuestionBankResponseDTO struct {
	ID          uint                  `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	CreatorID   uint                  `json:"creator_id"`
	Questions   []QuestionResponseDTO `json:"questions,omitempty"`
	Disciplines []BankDisciplineDTO   `json:"disciplines,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}
