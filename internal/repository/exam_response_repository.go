package repository

import (
	"github.com/sistira/sistira/internal/model"
	"gorm.io/gorm"
)

type ExamResponseRepository interface {
	Create(response *model.ExamResponse) error
	FindByIDWithAnswers(id uint) (*model.ExamResponse, error)
	FindAllByExam(examID uint) ([]model.ExamResponse, error)
	FindAllByExamAndUser(examID, userID uint) ([]model.ExamResponse, error)
	FindAnswerByID(id uint) (*model.ExamAnswer, error)
	UpdateAnswer(answer *model.ExamAnswer) error
}

type examResponseRepository struct {
	db *gorm.DB
}

func NewExamResponseRepository(db *gorm.DB) ExamResponseRepository {
	return &examResponseRepository{db: db}
}

func (r *examResponseRepository) Create(response *model.ExamResponse) error {
	// GORM creates the associated answers along with the response.
	return r.db.Create(response).Error
}

func (r *examResponseRepository) FindByIDWithAnswers(id uint) (*model.ExamResponse, error) {
	var response model.ExamResponse
	err := r.db.
		Preload("Answers").
		Preload("Answers.Question").
		First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *examResponseRepository) FindAllByExam(examID uint) ([]model.ExamResponse, error) {
	var responses []model.ExamResponse
	err := r.db.
		Preload("Answers").
		Where("exam_id = ?", examID).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *examResponseRepository) FindAllByExamAndUser(examID, userID uint) ([]model.ExamResponse, error) {
	var responses []model.ExamResponse
	err := r.db.
		Preload("Answers").
		Where("exam_id = ? AND user_id = ?", examID, userID).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *examResponseRepository) FindAnswerByID(id uint) (*model.ExamAnswer, error) {
	var answer model.ExamAnswer
	err := r.db.
		Preload("Question").
		Preload("Question.ModelAnswers").
		First(&answer, id).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *examResponseRepository) UpdateAnswer(answer *model.ExamAnswer) error {
	return r.db.Save(answer).Error
}
