package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionBankService interface {
	Create(userID uint, req dto.QuestionBankCreateDTO) (*dto.QuestionBankResponseDTO, error)
	FindAll(userID uint) ([]dto.QuestionBankResponseDTO, error)
	FindOne(userID, id uint) (*dto.QuestionBankResponseDTO, error)
	Update(userID, id uint, req dto.QuestionBankUpdateDTO) (*dto.QuestionBankResponseDTO, error)
	Delete(userID, id uint) error
	AddQuestions(userID, id uint, questionIDs []uint) (*dto.QuestionBankResponseDTO, error)
	RemoveQuestions(userID, id uint, questionIDs []uint) (*dto.QuestionBankResponseDTO, error)
}

type questionBankService struct {
	repo         repository.QuestionBankRepository
	questionRepo repository.QuestionRepository
	aggregator   BankAggregator
	db           *gorm.DB
}

func NewQuestionBankService(
	repo repository.QuestionBankRepository,
	questionRepo repository.QuestionRepository,
	aggregator BankAggregator,
	db *gorm.DB,
) QuestionBankService {
	return &questionBankService{
		repo:         repo,
		questionRepo: questionRepo,
		aggregator:   aggregator,
		db:           db,
	}
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *questionBankService) ensureQuestionsExist(ids []uint) error {
	count, err := s.questionRepo.CountByIDs(ids)
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return apperr.NotFound("one or more questions not found")
	}
	return nil
}

func (s *questionBankService) findOwned(userID, id uint) (*model.QuestionBank, error) {
	bank, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("question bank not found")
		}
		return nil, err
	}
	if bank.CreatorID != userID {
		return nil, apperr.Forbidden("access denied")
	}
	return bank, nil
}

func (s *questionBankService) Create(userID uint, req dto.QuestionBankCreateDTO) (*dto.QuestionBankResponseDTO, error) {
	questionIDs := dedupeIDs(req.Questions)
	if err := s.ensureQuestionsExist(questionIDs); err != nil {
		return nil, err
	}

	bank := model.QuestionBank{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bank).Error; err != nil {
			return err
		}
		if err := insertBankQuestions(tx, bank.ID, questionIDs); err != nil {
			return err
		}
		return s.aggregator.Recompute(tx, bank.ID, questionIDs)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create question bank")
		return nil, err
	}

	return s.FindOne(userID, bank.ID)
}

func insertBankQuestions(tx *gorm.DB, bankID uint, questionIDs []uint) error {
	// Rows are inserted one by one so CreatedAt keeps the request order
	// even within a single batch.
	for _, questionID := range questionIDs {
		row := model.QuestionBankQuestion{QuestionBankID: bankID, QuestionID: questionID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *questionBankService) FindAll(userID uint) ([]dto.QuestionBankResponseDTO, error) {
	banks, err := s.repo.FindAllByCreator(userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.QuestionBankResponseDTO, 0, len(banks))
	for i := range banks {
		resp = append(resp, bankToDTO(&banks[i]))
	}
	return resp, nil
}

func (s *questionBankService) FindOne(userID, id uint) (*dto.QuestionBankResponseDTO, error) {
	if _, err := s.findOwned(userID, id); err != nil {
		return nil, err
	}
	bank, err := s.repo.FindByIDWithDetails(id)
	if err != nil {
		return nil, err
	}
	resp := bankToDTO(bank)
	return &resp, nil
}

func (s *questionBankService) Update(userID, id uint, req dto.QuestionBankUpdateDTO) (*dto.QuestionBankResponseDTO, error) {
	bank, err := s.findOwned(userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		bank.Name = *req.Name
	}
	if req.Description != nil {
		bank.Description = *req.Description
	}

	var questionIDs []uint
	if req.Questions != nil {
		questionIDs = dedupeIDs(*req.Questions)
		if err := s.ensureQuestionsExist(questionIDs); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(bank).Error; err != nil {
			return err
		}
		if req.Questions == nil {
			return nil
		}
		// Full membership replacement, then a ranking rebuild from the
		// request order.
		if err := tx.Where("question_bank_id = ?", id).Delete(&model.QuestionBankQuestion{}).Error; err != nil {
			return err
		}
		if err := insertBankQuestions(tx, id, questionIDs); err != nil {
			return err
		}
		return s.aggregator.Recompute(tx, id, questionIDs)
	})
	if err != nil {
		log.Error().Err(err).Uint("bankID", id).Msg("Failed to update question bank")
		return nil, err
	}

	return s.FindOne(userID, id)
}

func (s *questionBankService) Delete(userID, id uint) error {
	if _, err := s.findOwned(userID, id); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_bank_id = ?", id).Delete(&model.QuestionBankQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_bank_id = ?", id).Delete(&model.QuestionBankDiscipline{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_bank_id = ?", id).Delete(&model.ExamQuestionBank{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuestionBank{}, id).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("bankID", id).Msg("Failed to delete question bank")
	}
	return err
}

func (s *questionBankService) AddQuestions(userID, id uint, questionIDs []uint) (*dto.QuestionBankResponseDTO, error) {
	if _, err := s.findOwned(userID, id); err != nil {
		return nil, err
	}
	questionIDs = dedupeIDs(questionIDs)
	if err := s.ensureQuestionsExist(questionIDs); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := insertBankQuestions(tx, id, questionIDs); err != nil {
			return err
		}
		return s.aggregator.RecomputeCurrent(tx, id)
	})
	if err != nil {
		log.Error().Err(err).Uint("bankID", id).Msg("Failed to add questions to bank")
		return nil, err
	}

	return s.FindOne(userID, id)
}

func (s *questionBankService) RemoveQuestions(userID, id uint, questionIDs []uint) (*dto.QuestionBankResponseDTO, error) {
	if _, err := s.findOwned(userID, id); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("question_bank_id = ? AND question_id IN ?", id, questionIDs).
			Delete(&model.QuestionBankQuestion{}).Error; err != nil {
			return err
		}
		return s.aggregator.RecomputeCurrent(tx, id)
	})
	if err != nil {
		log.Error().Err(err).Uint("bankID", id).Msg("Failed to remove questions from bank")
		return nil, err
	}

	return s.FindOne(userID, id)
}

func bankToDTO(bank *model.QuestionBank) dto.QuestionBankResponseDTO {
	resp := dto.QuestionBankResponseDTO{
		ID:          bank.ID,
		Name:        bank.Name,
		Description: bank.Description,
		CreatorID:   bank.CreatorID,
		CreatedAt:   bank.CreatedAt,
	}
	for i := range bank.Questions {
		resp.Questions = append(resp.Questions, questionToDTO(&bank.Questions[i]))
	}
	for _, entry := range bank.Disciplines {
		resp.Disciplines = append(resp.Disciplines, dto.BankDisciplineDTO{
			DisciplineID: entry.DisciplineID,
			Name:         entry.Discipline.Name,
			Count:        entry.Count,
			Position:     entry.Position,
			Predominant:  entry.Predominant,
		})
	}
	return resp
}
