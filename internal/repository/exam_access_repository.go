package repository

import (
	"github.com/sistira/sistira/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamAccessRepository interface {
	Grant(userID, examID uint) error
	Exists(userID, examID uint) (bool, error)
}

type examAccessRepository struct {
	db *gorm.DB
}

func NewExamAccessRepository(db *gorm.DB) ExamAccessRepository {
	return &examAccessRepository{db: db}
}

// Grant upserts on the (user_id, exam_id) unique pair, so repeated code
// submissions stay idempotent.
func (r *examAccessRepository) Grant(userID, examID uint) error {
	access := model.ExamAccess{UserID: userID, ExamID: examID}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "exam_id"}},
		DoNothing: true,
	}).Create(&access).Error
}

func (r *examAccessRepository) Exists(userID, examID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.ExamAccess{}).
		Where("user_id = ? AND exam_id = ?", userID, examID).
		Count(&count).Error
	return count > 0, err
}
