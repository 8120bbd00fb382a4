package repository

import (
	"github.com/sistira/sistira/internal/model"
	"gorm.io/gorm"
)

type DisciplineRepository interface {
	Create(discipline *model.Discipline) error
	FindByID(id uint) (*model.Discipline, error)
	FindByNameAndCreator(name string, creatorID uint) (*model.Discipline, error)
	FindAllByCreator(creatorID uint) ([]model.Discipline, error)
	DeleteOrphans() (int64, error)
}

type disciplineRepository struct {
	db *gorm.DB
}

func NewDisciplineRepository(db *gorm.DB) DisciplineRepository {
	return &disciplineRepository{db: db}
}

func (r *disciplineRepository) Create(discipline *model.Discipline) error {
	return r.db.Create(discipline).Error
}

func (r *disciplineRepository) FindByID(id uint) (*model.Discipline, error) {
	var discipline model.Discipline
	if err := r.db.First(&discipline, id).Error; err != nil {
		return nil, err
	}
	return &discipline, nil
}

func (r *disciplineRepository) FindByNameAndCreator(name string, creatorID uint) (*model.Discipline, error) {
	var discipline model.Discipline
	if err := r.db.Where("name = ? AND creator_id = ?", name, creatorID).First(&discipline).Error; err != nil {
		return nil, err
	}
	return &discipline, nil
}

func (r *disciplineRepository) FindAllByCreator(creatorID uint) ([]model.Discipline, error) {
	var disciplines []model.Discipline
	if err := r.db.Where("creator_id = ?", creatorID).Order("name ASC").Find(&disciplines).Error; err != nil {
		return nil, err
	}
	return disciplines, nil
}

// DeleteOrphans removes every discipline no longer referenced by any
// question. Safe to run after any question mutation; idempotent.
func (r *disciplineRepository) DeleteOrphans() (int64, error) {
	sub := r.db.Model(&model.QuestionDiscipline{}).Select("discipline_id")
	res := r.db.Where("id NOT IN (?)", sub).Delete(&model.Discipline{})
	return res.RowsAffected, res.Error
}
