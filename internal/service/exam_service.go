package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExamService owns exam composition: reconciling directly linked
// questions with questions inherited from linked banks into one
// deduplicated, first-seen-ordered set.
type ExamService interface {
	Create(userID uint, req dto.ExamCreateDTO) (*dto.ExamResponseDTO, error)
	FindAll(userID uint) ([]dto.ExamResponseDTO, error)
	FindOne(userID, id uint) (*dto.ExamResponseDTO, error)
	Update(userID, id uint, req dto.ExamUpdateDTO) (*dto.ExamResponseDTO, error)
	Delete(userID, id uint) error
	AddQuestions(userID, id uint, questionIDs []uint) (*dto.ExamResponseDTO, error)
	RemoveQuestions(userID, id uint, questionIDs []uint) (*dto.ExamResponseDTO, error)
	AddBanks(userID, id uint, bankIDs []uint) (*dto.ExamResponseDTO, error)
	RemoveBanks(userID, id uint, bankIDs []uint) (*dto.ExamResponseDTO, error)
	CreateManualQuestion(userID, examID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	EffectiveQuestions(examID uint) ([]model.Question, error)
}

type examService struct {
	repo          repository.ExamRepository
	bankRepo      repository.QuestionBankRepository
	questionRepo  repository.QuestionRepository
	disciplineSvc DisciplineService
	db            *gorm.DB
}

func NewExamService(
	repo repository.ExamRepository,
	bankRepo repository.QuestionBankRepository,
	questionRepo repository.QuestionRepository,
	disciplineSvc DisciplineService,
	db *gorm.DB,
) ExamService {
	return &examService{
		repo:          repo,
		bankRepo:      bankRepo,
		questionRepo:  questionRepo,
		disciplineSvc: disciplineSvc,
		db:            db,
	}
}

// newAccessCode mints a shareable code. Hex-with-letters keeps codes
// visually distinct from numeric exam ids, so the single respond
// identifier rarely collides with an id.
func newAccessCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func (s *examService) findOwned(userID, id uint) (*model.Exam, error) {
	exam, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("exam not found")
		}
		return nil, err
	}
	if exam.CreatorID != userID {
		return nil, apperr.Forbidden("access denied")
	}
	return exam, nil
}

func (s *examService) ensureQuestionsExist(ids []uint) error {
	count, err := s.questionRepo.CountByIDs(ids)
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return apperr.NotFound("one or more questions not found")
	}
	return nil
}

func (s *examService) ensureBanksExist(ids []uint) error {
	for _, id := range ids {
		if _, err := s.bankRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("question bank not found")
			}
			return err
		}
	}
	return nil
}

// bankReachableSet is the union of all questions contributed by the
// given banks.
func (s *examService) bankReachableSet(bankIDs []uint) (map[uint]bool, error) {
	rows, err := s.bankRepo.JoinRowsByBankIDs(bankIDs)
	if err != nil {
		return nil, err
	}
	reachable := make(map[uint]bool, len(rows))
	for _, row := range rows {
		reachable[row.QuestionID] = true
	}
	return reachable, nil
}

func (s *examService) linkedBankIDs(examID uint) ([]uint, error) {
	rows, err := s.repo.BankRows(examID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.QuestionBankID)
	}
	return ids, nil
}

// effectiveQuestionIDs merges direct links (in link order) with every
// linked bank's members (banks in link order, members in insertion
// order), deduplicated by first appearance.
func (s *examService) effectiveQuestionIDs(examID uint) ([]uint, error) {
	directRows, err := s.repo.DirectQuestionRows(examID)
	if err != nil {
		return nil, err
	}
	bankIDs, err := s.linkedBankIDs(examID)
	if err != nil {
		return nil, err
	}
	bankJoinRows, err := s.bankRepo.JoinRowsByBankIDs(bankIDs)
	if err != nil {
		return nil, err
	}

	perBank := make(map[uint][]uint)
	for _, row := range bankJoinRows {
		perBank[row.QuestionBankID] = append(perBank[row.QuestionBankID], row.QuestionID)
	}

	seen := make(map[uint]bool)
	var ids []uint
	for _, row := range directRows {
		if !seen[row.QuestionID] {
			seen[row.QuestionID] = true
			ids = append(ids, row.QuestionID)
		}
	}
	for _, bankID := range bankIDs {
		for _, questionID := range perBank[bankID] {
			if !seen[questionID] {
				seen[questionID] = true
				ids = append(ids, questionID)
			}
		}
	}
	return ids, nil
}

// EffectiveQuestions loads the merged question set in effective order.
func (s *examService) EffectiveQuestions(examID uint) ([]model.Question, error) {
	ids, err := s.effectiveQuestionIDs(examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

func insertExamQuestions(tx *gorm.DB, examID uint, questionIDs []uint) error {
	for _, questionID := range questionIDs {
		row := model.ExamQuestion{ExamID: examID, QuestionID: questionID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertExamBanks(tx *gorm.DB, examID uint, bankIDs []uint) error {
	for _, bankID := range bankIDs {
		row := model.ExamQuestionBank{ExamID: examID, QuestionBankID: bankID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *examService) Create(userID uint, req dto.ExamCreateDTO) (*dto.ExamResponseDTO, error) {
	questionIDs := dedupeIDs(req.Questions)
	bankIDs := dedupeIDs(req.QuestionBanks)

	if err := s.ensureQuestionsExist(questionIDs); err != nil {
		return nil, err
	}
	if err := s.ensureBanksExist(bankIDs); err != nil {
		return nil, err
	}

	// Direct links already supplied by a requested bank are dropped up
	// front; presence through the bank is enough.
	reachable, err := s.bankReachableSet(bankIDs)
	if err != nil {
		return nil, err
	}
	directIDs := make([]uint, 0, len(questionIDs))
	for _, id := range questionIDs {
		if !reachable[id] {
			directIDs = append(directIDs, id)
		}
	}

	exam := model.Exam{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   userID,
		IsPublic:    req.IsPublic,
	}
	if req.GenerateAccessCode {
		code := newAccessCode()
		exam.AccessCode = &code
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&exam).Error; err != nil {
			return err
		}
		if err := insertExamQuestions(tx, exam.ID, directIDs); err != nil {
			return err
		}
		return insertExamBanks(tx, exam.ID, bankIDs)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create exam")
		return nil, err
	}

	return s.FindOne(userID, exam.ID)
}

func (s *examService) FindAll(userID uint) ([]dto.ExamResponseDTO, error) {
	exams, err := s.repo.FindAllByCreator(userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ExamResponseDTO, 0, len(exams))
	for i := range exams {
		examDTO, err := s.examToDTO(&exams[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *examDTO)
	}
	return resp, nil
}

func (s *examService) FindOne(userID, id uint) (*dto.ExamResponseDTO, error) {
	exam, err := s.findOwned(userID, id)
	if err != nil {
		return nil, err
	}
	return s.examToDTO(exam)
}

func (s *examService) Update(userID, id uint, req dto.ExamUpdateDTO) (*dto.ExamResponseDTO, error) {
	exam, err := s.findOwned(userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.IsPublic != nil {
		exam.IsPublic = *req.IsPublic
	}
	if req.GenerateAccessCode {
		code := newAccessCode()
		exam.AccessCode = &code
	} else if req.ClearAccessCode {
		// May leave a private exam locked to everyone but the creator;
		// that state is legitimate and stays as-is.
		exam.AccessCode = nil
	}

	var directIDs []uint
	if req.Questions != nil {
		questionIDs := dedupeIDs(*req.Questions)
		if err := s.ensureQuestionsExist(questionIDs); err != nil {
			return nil, err
		}
		bankIDs, err := s.linkedBankIDs(id)
		if err != nil {
			return nil, err
		}
		reachable, err := s.bankReachableSet(bankIDs)
		if err != nil {
			return nil, err
		}
		for _, questionID := range questionIDs {
			if !reachable[questionID] {
				directIDs = append(directIDs, questionID)
			}
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(exam).Error; err != nil {
			return err
		}
		if req.Questions == nil {
			return nil
		}
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		return insertExamQuestions(tx, id, directIDs)
	})
	if err != nil {
		log.Error().Err(err).Uint("examID", id).Msg("Failed to update exam")
		return nil, err
	}

	return s.FindOne(userID, id)
}

func (s *examService) Delete(userID, id uint) error {
	if _, err := s.findOwned(userID, id); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamQuestionBank{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamAccess{}).Error; err != nil {
			return err
		}
		var responseIDs []uint
		if err := tx.Model(&model.ExamResponse{}).Where("exam_id = ?", id).Pluck("id", &responseIDs).Error; err != nil {
			return err
		}
		if len(responseIDs) > 0 {
			if err := tx.Where("exam_response_id IN ?", responseIDs).Delete(&model.ExamAnswer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("exam_id = ?", id).Delete(&model.ExamResponse{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Exam{}, id).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("examID", id).Msg("Failed to delete exam")
	}
	return err
}

// AddQuestions direct-links the given questions, skipping any id that a
// linked bank already supplies. Idempotent under repeated calls.
func (s *examService) AddQuestions(userID, id uint, questionIDs []uint) (*dto.ExamResponseDTO, error) {
	if _, err := s.findOwned(userID, id); err != nil {
		return nil, err
	}
	questionIDs = dedupeIDs(questionIDs)
	if err := s.ensureQuestionsExist(questionIDs); err != nil {
		return nil, err
	}

	bankIDs, err := s.linkedBankIDs(id)
	if err != nil {
		return nil, err
	}
	reachable, err := s.bankReachableSet(bankIDs)
	if err != nil {
		return nil, err
	}

	var toLink []uint
	for _, questionID := range questionIDs {
		if !reachable[questionID] {
			toLink = append(toLink, questionID)
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return insertExamQuestions(tx, id, toLink)
	})
	if err != nil {
		log.Error().Err(err).Uint("examID", id).Msg("Failed to add questions to exam")
		return nil, err
	}

	return s.FindOne(userID, id)
}

func (s *examService) RemoveQuestions(userID, id uint, questionIDs []uint) (*dto.ExamResponseDTO, error) {
	if _, err := s.findOwned(userID, id); err != nil {
		return nil, err
	}

	err := s.db.
		Where("exam_id = ? AND question_id IN ?", id, questionIDs).
		Delete(&model.ExamQuestion{}).Error
	if err != nil {
		log.Error().Err(err).Uint("examID", id).Msg("Failed to remove questions from exam")
		return nil, err
	}

	return s.FindOne(userID, id)
}

func (s *examService) AddBanks(userID, id uint, bankIDs []uint) (*dto.ExamResponseDTO, error) {
	if _, err := s.findOwned(userID, id); err != nil {
		return nil, err
	}
	bankIDs = dedupeIDs(bankIDs)
	if err := s.ensureBanksExist(bankIDs); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return insertExamBanks(tx, id, bankIDs)
	})
	if err != nil {
		log.Error().Err(err).Uint("examID", id).Msg("Failed to add banks to exam")
		return nil, err
	}

	return s.FindOne(userID, id)
}

// RemoveBanks unlinks banks; questions that were also directly linked
// stay on the exam.
func (s *examService) RemoveBanks(userID, id uint, bankIDs []uint) (*dto.ExamResponseDTO, error) {
	if _, err := s.findOwned(userID, id); err != nil {
		return nil, err
	}

	err := s.db.
		Where("exam_id = ? AND question_bank_id IN ?", id, bankIDs).
		Delete(&model.ExamQuestionBank{}).Error
	if err != nil {
		log.Error().Err(err).Uint("examID", id).Msg("Failed to remove banks from exam")
		return nil, err
	}

	return s.FindOne(userID, id)
}

// CreateManualQuestion creates a question authored inside the exam and
// direct-links it in the same transaction, so a failed link never
// leaves an orphan question behind.
func (s *examService) CreateManualQuestion(userID, examID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	if _, err := s.findOwned(userID, examID); err != nil {
		return nil, err
	}
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
		if err := linkQuestionDisciplines(tx, question.ID, disciplineIDs); err != nil {
			return err
		}
		return insertExamQuestions(tx, examID, []uint{question.ID})
	})
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("Failed to create manual question in exam")
		return nil, err
	}

	loaded, err := s.questionRepo.FindByID(question.ID)
	if err != nil {
		return nil, err
	}
	resp := questionToDTO(loaded)
	return &resp, nil
}

func (s *examService) examToDTO(exam *model.Exam) (*dto.ExamResponseDTO, error) {
	questions, err := s.EffectiveQuestions(exam.ID)
	if err != nil {
		return nil, err
	}
	bankIDs, err := s.linkedBankIDs(exam.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.ExamResponseDTO{
		ID:          exam.ID,
		Title:       exam.Title,
		Description: exam.Description,
		CreatorID:   exam.CreatorID,
		IsPublic:    exam.IsPublic,
		AccessCode:  exam.AccessCode,
		CreatedAt:   exam.CreatedAt,
	}
	for i := range questions {
		resp.Questions = append(resp.Questions, questionToDTO(&questions[i]))
	}
	for _, bankID := range bankIDs {
		bank, err := s.bankRepo.FindByID(bankID)
		if err != nil {
			return nil, err
		}
		resp.QuestionBanks = append(resp.QuestionBanks, dto.ExamBankSummaryDTO{ID: bank.ID, Name: bank.Name})
	}
	return &resp, nil
}
