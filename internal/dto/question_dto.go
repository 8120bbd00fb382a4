package dto

import "time"

// AlternativeCreateDTO is one answer option of an objective question.
type AlternativeCreateDTO struct {
	Content string `json:"content" binding:"required"`
	Correct bool   `json:"correct"`
}

// ModelAnswerCreateDTO is one grading reference tier of a subjective question.
type ModelAnswerCreateDTO struct {
	Type    string `json:"type" binding:"required,oneof=WRONG MEDIAN CORRECT"`
	Content string `json:"content" binding:"required"`
}

// QuestionCreateDTO creates a question. Disciplines entries are either
// numeric ids of existing disciplines or free-text names resolved (and
// created on demand) per creator.
type QuestionCreateDTO struct {
	Text            string                 `json:"text" binding:"required"`
	QuestionType    string                 `json:"question_type" binding:"required,oneof=OBJECTIVE SUBJECTIVE"`
	Disciplines     []string               `json:"disciplines"`
	EducationLevel  *string                `json:"education_level"`
	Difficulty      *string                `json:"difficulty"`
	ExamReference   *string                `json:"exam_reference"`
	UseModelAnswers bool                   `json:"use_model_answers"`
	Alternatives    []AlternativeCreateDTO `json:"alternatives" binding:"omitempty,dive"`
	ModelAnswers    []ModelAnswerCreateDTO `json:"model_answers" binding:"omitempty,dive"`
}

// QuestionUpdateDTO updates a question. Nil fields are left untouched;
// non-nil slices fully replace the current set (empty slice clears it).
type QuestionUpdateDTO struct {
	Text            *string                 `json:"text"`
	QuestionType    *string                 `json:"question_type" binding:"omitempty,oneof=OBJECTIVE SUBJECTIVE"`
	Disciplines     *[]string               `json:"disciplines"`
	EducationLevel  *string                 `json:"education_level"`
	Difficulty      *string                 `json:"difficulty"`
	ExamReference   *string                 `json:"exam_reference"`
	UseModelAnswers *bool                   `json:"use_model_answers"`
	Alternatives    *[]AlternativeCreateDTO `json:"alternatives" binding:"omitempty,dive"`
	ModelAnswers    *[]ModelAnswerCreateDTO `json:"model_answers" binding:"omitempty,dive"`
}

type DisciplineDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type AlternativeDTO struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
	Correct bool   `json:"correct"`
}

type ModelAnswerDTO struct {
	ID      uint   `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type QuestionResponseDTO struct {
	ID              uint             `json:"id"`
	Text            string           `json:"text"`
	QuestionType    string           `json:"question_type"`
	CreatorID       uint             `json:"creator_id"`
	EducationLevel  *string          `json:"education_level,omitempty"`
	Difficulty      *string          `json:"difficulty,omitempty"`
	ExamReference   *string          `json:"exam_reference,omitempty"`
	UseModelAnswers bool             `json:"use_model_answers"`
	Disciplines     []DisciplineDTO  `json:"disciplines,omitempty"`
	Alternatives    []AlternativeDTO `json:"alternatives,omitempty"`
	ModelAnswers    []ModelAnswerDTO `json:"model_answers,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
