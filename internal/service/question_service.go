package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionService interface {
	Create(userID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	FindAll(userID uint) ([]dto.QuestionResponseDTO, error)
	FindOne(id uint) (*dto.QuestionResponseDTO, error)
	Update(userID, id uint, req dto.QuestionUpdateDTO) (*dto.QuestionResponseDTO, error)
	Delete(userID, id uint) error
}

type questionService struct {
	repo           repository.QuestionRepository
	disciplineSvc  DisciplineService
	bankAggregator BankAggregator
	db             *gorm.DB
}

func NewQuestionService(
	repo repository.QuestionRepository,
	disciplineSvc DisciplineService,
	bankAggregator BankAggregator,
	db *gorm.DB,
) QuestionService {
	return &questionService{
		repo:           repo,
		disciplineSvc:  disciplineSvc,
		bankAggregator: bankAggregator,
		db:             db,
	}
}

func validateQuestionShape(questionType string, alternativeCount, modelAnswerCount int) error {
	if questionType == model.QuestionTypeSubjective && alternativeCount > 0 {
		return apperr.Validation("subjective questions must not have alternatives")
	}
	if questionType == model.QuestionTypeObjective && modelAnswerCount > 0 {
		return apperr.Validation("objective questions must not have model answers")
	}
	return nil
}

func validateModelAnswerTypes(answers []dto.ModelAnswerCreateDTO) error {
	seen := make(map[string]bool)
	for _, ma := range answers {
		if seen[ma.Type] {
			return apperr.Validation(fmt.Sprintf("duplicate model answer type %s", ma.Type))
		}
		seen[ma.Type] = true
	}
	return nil
}

func (s *questionService) Create(userID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	if err := validateQuestionShape(req.QuestionType, len(req.Alternatives), len(req.ModelAnswers)); err != nil {
		return nil, err
	}
	if err := validateModelAnswerTypes(req.ModelAnswers); err != nil {
		return nil, err
	}

	disciplineIDs, err := s.disciplineSvc.Resolve(userID, req.Disciplines)
	if err != nil {
		return nil, err
	}

	question := model.Question{
		Text:            req.Text,
		QuestionType:    req.QuestionType,
		CreatorID:       userID,
		EducationLevel:  req.EducationLevel,
		Difficulty:      req.Difficulty,
		ExamReference:   req.ExamReference,
		UseModelAnswers: req.UseModelAnswers,
	}
	for _, alt := range req.Alternatives {
		question.Alternatives = append(question.Alternatives, model.Alternative{Content: alt.Content, Correct: alt.Correct})
	}
	for _, ma := range req.ModelAnswers {
		question.ModelAnswers = append(question.ModelAnswers, model.ModelAnswer{Type: ma.Type, Content: ma.Content})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		return linkQuestionDisciplines(tx, question.ID, disciplineIDs)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create question")
		return nil, err
	}

	return s.FindOne(question.ID)
}

func linkQuestionDisciplines(tx *gorm.DB, questionID uint, disciplineIDs []uint) error {
	if len(disciplineIDs) == 0 {
		return nil
	}
	rows := make([]model.QuestionDiscipline, 0, len(disciplineIDs))
	for _, disciplineID := range disciplineIDs {
		rows = append(rows, model.QuestionDiscipline{QuestionID: questionID, DisciplineID: disciplineID})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (s *questionService) FindAll(userID uint) ([]dto.QuestionResponseDTO, error) {
	questions, err := s.repo.FindAllByCreator(userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.QuestionResponseDTO, 0, len(questions))
	for i := range questions {
		resp = append(resp, questionToDTO(&questions[i]))
	}
	return resp, nil
}

func (s *questionService) FindOne(id uint) (*dto.QuestionResponseDTO, error) {
	question, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("question not found")
		}
		return nil, err
	}
	resp := questionToDTO(question)
	return &resp, nil
}

func (s *questionService) Update(userID, id uint, req dto.QuestionUpdateDTO) (*dto.QuestionResponseDTO, error) {
	question, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("question not found")
		}
		return nil, err
	}
	if question.CreatorID != userID {
		return nil, apperr.Forbidden("you can only edit your own questions")
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.QuestionType != nil {
		question.QuestionType = *req.QuestionType
	}
	if req.EducationLevel != nil {
		question.EducationLevel = req.EducationLevel
	}
	if req.Difficulty != nil {
		question.Difficulty = req.Difficulty
	}
	if req.ExamReference != nil {
		question.ExamReference = req.ExamReference
	}
	if req.UseModelAnswers != nil {
		question.UseModelAnswers = *req.UseModelAnswers
	}

	alternativeCount := len(question.Alternatives)
	if req.Alternatives != nil {
		alternativeCount = len(*req.Alternatives)
	}
	modelAnswerCount := len(question.ModelAnswers)
	if req.ModelAnswers != nil {
		modelAnswerCount = len(*req.ModelAnswers)
		if err := validateModelAnswerTypes(*req.ModelAnswers); err != nil {
			return nil, err
		}
	}
	if err := validateQuestionShape(question.QuestionType, alternativeCount, modelAnswerCount); err != nil {
		return nil, err
	}

	var disciplineIDs []uint
	if req.Disciplines != nil {
		disciplineIDs, err = s.disciplineSvc.Resolve(userID, *req.Disciplines)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(question).Error; err != nil {
			return err
		}
		if req.Alternatives != nil {
			if err := tx.Where("question_id = ?", question.ID).Delete(&model.Alternative{}).Error; err != nil {
				return err
			}
			for _, alt := range *req.Alternatives {
				row := model.Alternative{QuestionID: question.ID, Content: alt.Content, Correct: alt.Correct}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		if req.ModelAnswers != nil {
			if err := tx.Where("question_id = ?", question.ID).Delete(&model.ModelAnswer{}).Error; err != nil {
				return err
			}
			for _, ma := range *req.ModelAnswers {
				row := model.ModelAnswer{QuestionID: question.ID, Type: ma.Type, Content: ma.Content}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		if req.Disciplines != nil {
			if err := tx.Where("question_id = ?", question.ID).Delete(&model.QuestionDiscipline{}).Error; err != nil {
				return err
			}
			if err := linkQuestionDisciplines(tx, question.ID, disciplineIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("questionID", id).Msg("Failed to update question")
		return nil, err
	}

	if req.Disciplines != nil {
		s.disciplineSvc.SweepOrphans()
	}
	return s.FindOne(id)
}

func (s *questionService) Delete(userID, id uint) error {
	question, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("question not found")
		}
		return err
	}
	if question.CreatorID != userID {
		return apperr.Forbidden("you can only delete your own questions")
	}

	// Banks this question belongs to need their ranking recomputed once
	// the membership row is gone.
	var bankRows []model.QuestionBankQuestion
	if err := s.db.Where("question_id = ?", id).Find(&bankRows).Error; err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.Alternative{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.ModelAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionDiscipline{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionBankQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.ExamAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Question{}, id).Error; err != nil {
			return err
		}
		for _, row := range bankRows {
			if err := s.bankAggregator.RecomputeCurrent(tx, row.QuestionBankID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("questionID", id).Msg("Failed to delete question")
		return err
	}

	s.disciplineSvc.SweepOrphans()
	return nil
}

func questionToDTO(question *model.Question) dto.QuestionResponseDTO {
	var resp dto.QuestionResponseDTO
	copier.Copy(&resp, question)
	return resp
}
