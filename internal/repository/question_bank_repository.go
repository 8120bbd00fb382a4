package repository

import (
	"github.com/sistira/sistira/internal/model"
	"gorm.io/gorm"
)

type QuestionBankRepository interface {
	Create(bank *model.QuestionBank) error
	FindByID(id uint) (*model.QuestionBank, error)
	FindByIDWithDetails(id uint) (*model.QuestionBank, error)
	FindAllByCreator(creatorID uint) ([]model.QuestionBank, error)
	Update(bank *model.QuestionBank) error
	JoinRowsByBankIDs(bankIDs []uint) ([]model.QuestionBankQuestion, error)
}

type questionBankRepository struct {
	db *gorm.DB
}

func NewQuestionBankRepository(db *gorm.DB) QuestionBankRepository {
	return &questionBankRepository{db: db}
}

func (r *questionBankRepository) Create(bank *model.QuestionBank) error {
	return r.db.Create(bank).Error
}

func (r *questionBankRepository) FindByID(id uint) (*model.QuestionBank, error) {
	var bank model.QuestionBank
	if err := r.db.First(&bank, id).Error; err != nil {
		return nil, err
	}
	return &bank, nil
}

func (r *questionBankRepository) FindByIDWithDetails(id uint) (*model.QuestionBank, error) {
	var bank model.QuestionBank
	err := r.db.
		Preload("Questions.Disciplines").
		Preload("Disciplines", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_bank_disciplines.position ASC")
		}).
		Preload("Disciplines.Discipline").
		First(&bank, id).Error
	if err != nil {
		return nil, err
	}
	return &bank, nil
}

func (r *questionBankRepository) FindAllByCreator(creatorID uint) ([]model.QuestionBank, error) {
	var banks []model.QuestionBank
	err := r.db.
		Preload("Disciplines", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_bank_disciplines.position ASC")
		}).
		Preload("Disciplines.Discipline").
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&banks).Error
	if err != nil {
		return nil, err
	}
	return banks, nil
}

func (r *questionBankRepository) Update(bank *model.QuestionBank) error {
	return r.db.Save(bank).Error
}

// JoinRowsByBankIDs lists membership rows for a set of banks in
// insertion order, the order effective question sets are built in.
func (r *questionBankRepository) JoinRowsByBankIDs(bankIDs []uint) ([]model.QuestionBankQuestion, error) {
	if len(bankIDs) == 0 {
		return nil, nil
	}
	var rows []model.QuestionBankQuestion
	err := r.db.
		Where("question_bank_id IN ?", bankIDs).
		Order("created_at ASC, question_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
