package repository

import (
	"github.com/sistira/sistira/internal/model"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(exam *model.Exam) error
	FindByID(id uint) (*model.Exam, error)
	FindAllByCreator(creatorID uint) ([]model.Exam, error)
	FindPublicByID(id uint) (*model.Exam, error)
	FindByAccessCode(code string) (*model.Exam, error)
	Update(exam *model.Exam) error
	DirectQuestionRows(examID uint) ([]model.ExamQuestion, error)
	BankRows(examID uint) ([]model.ExamQuestionBank, error)
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	return r.db.Create(exam).Error
}

func (r *examRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindAllByCreator(creatorID uint) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.db.Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&exams).Error
	if err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) FindPublicByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.Where("id = ? AND is_public = ?", id, true).First(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByAccessCode(code string) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.Where("access_code = ?", code).First(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) Update(exam *model.Exam) error {
	return r.db.Save(exam).Error
}

// DirectQuestionRows lists the directly linked questions in link order.
func (r *examRepository) DirectQuestionRows(examID uint) ([]model.ExamQuestion, error) {
	var rows []model.ExamQuestion
	err := r.db.
		Where("exam_id = ?", examID).
		Order("created_at ASC, question_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *examRepository) BankRows(examID uint) ([]model.ExamQuestionBank, error) {
	var rows []model.ExamQuestionBank
	err := r.db.
		Where("exam_id = ?", examID).
		Order("created_at ASC, question_bank_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
