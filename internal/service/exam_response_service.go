package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"gorm.io/gorm"
)

type ExamResponseService interface {
	Respond(userID, examID uint, req dto.ExamSubmitDTO) (*dto.ExamResponseDetailDTO, error)
	ResponsesForCreator(userID, examID uint) ([]dto.ExamResponseDetailDTO, error)
	MyResponses(userID, examID uint) ([]dto.ExamResponseDetailDTO, error)
}

type examResponseService struct {
	repo       repository.ExamResponseRepository
	examRepo   repository.ExamRepository
	accessRepo repository.ExamAccessRepository
	examSvc    ExamService
	accessSvc  ExamAccessService
	db         *gorm.DB
}

func NewExamResponseService(
	repo repository.ExamResponseRepository,
	examRepo repository.ExamRepository,
	accessRepo repository.ExamAccessRepository,
	examSvc ExamService,
	accessSvc ExamAccessService,
	db *gorm.DB,
) ExamResponseService {
	return &examResponseService{
		repo:       repo,
		examRepo:   examRepo,
		accessRepo: accessRepo,
		examSvc:    examSvc,
		accessSvc:  accessSvc,
		db:         db,
	}
}

// Respond validates a full submission against the exam's effective
// question set and stores it. An access code supplied inline both
// grants and uses access in the same call.
func (s *examResponseService) Respond(userID, examID uint, req dto.ExamSubmitDTO) (*dto.ExamResponseDetailDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("exam not found")
		}
		return nil, err
	}

	if err := s.ensureAccess(userID, exam, req.AccessCode); err != nil {
		return nil, err
	}
	if len(req.Answers) == 0 {
		return nil, apperr.Validation("a submission needs at least one answer")
	}

	questions, err := s.examSvc.EffectiveQuestions(examID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	answered := make(map[uint]bool, len(req.Answers))
	answers := make([]model.ExamAnswer, 0, len(req.Answers))
	for _, submitted := range req.Answers {
		question, ok := byID[submitted.QuestionID]
		if !ok {
			return nil, apperr.Validation(fmt.Sprintf("question %d is not part of this exam", submitted.QuestionID))
		}
		if answered[submitted.QuestionID] {
			return nil, apperr.Validation(fmt.Sprintf("question %d answered more than once", submitted.QuestionID))
		}
		answered[submitted.QuestionID] = true

		answer, err := buildAnswer(question, submitted)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}

	response := model.ExamResponse{
		ExamID: examID,
		UserID: userID,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&response).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].ExamResponseID = response.ID
		}
		return tx.Create(&answers).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Uint("userID", userID).Msg("Failed to store exam response")
		return nil, err
	}

	loaded, err := s.repo.FindByIDWithAnswers(response.ID)
	if err != nil {
		return nil, err
	}
	resp := responseToDTO(loaded)
	return &resp, nil
}

func (s *examResponseService) ensureAccess(userID uint, exam *model.Exam, accessCode *string) error {
	if exam.IsPublic || exam.CreatorID == userID {
		return nil
	}
	granted, err := s.accessRepo.Exists(userID, exam.ID)
	if err != nil {
		return err
	}
	if granted {
		return nil
	}
	if accessCode != nil {
		if _, err := s.accessSvc.GrantAccess(userID, exam.ID, *accessCode); err != nil {
			return err
		}
		return nil
	}
	return apperr.Forbidden("access denied")
}

func buildAnswer(question *model.Question, submitted dto.SubmitAnswerDTO) (model.ExamAnswer, error) {
	answer := model.ExamAnswer{QuestionID: question.ID}

	switch question.QuestionType {
	case model.QuestionTypeObjective:
		if submitted.AlternativeID == nil || submitted.SubjectiveText != nil {
			return answer, apperr.Validation(fmt.Sprintf("question %d expects an alternative answer", question.ID))
		}
		valid := false
		for _, alt := range question.Alternatives {
			if alt.ID == *submitted.AlternativeID {
				valid = true
				break
			}
		}
		if !valid {
			return answer, apperr.Validation(fmt.Sprintf("alternative %d does not belong to question %d", *submitted.AlternativeID, question.ID))
		}
		answer.AlternativeID = submitted.AlternativeID
	case model.QuestionTypeSubjective:
		if submitted.SubjectiveText == nil || *submitted.SubjectiveText == "" || submitted.AlternativeID != nil {
			return answer, apperr.Validation(fmt.Sprintf("question %d expects a subjective answer", question.ID))
		}
		answer.SubjectiveText = submitted.SubjectiveText
	default:
		return answer, apperr.Validation(fmt.Sprintf("question %d has an unknown type", question.ID))
	}
	return answer, nil
}

// ResponsesForCreator lists every submission to an exam, restricted to
// the exam's creator.
func (s *examResponseService) ResponsesForCreator(userID, examID uint) ([]dto.ExamResponseDetailDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("exam not found")
		}
		return nil, err
	}
	if exam.CreatorID != userID {
		return nil, apperr.Forbidden("access denied")
	}

	responses, err := s.repo.FindAllByExam(examID)
	if err != nil {
		return nil, err
	}
	return responsesToDTOs(responses), nil
}

func (s *examResponseService) MyResponses(userID, examID uint) ([]dto.ExamResponseDetailDTO, error) {
	if _, err := s.examRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("exam not found")
		}
		return nil, err
	}
	responses, err := s.repo.FindAllByExamAndUser(examID, userID)
	if err != nil {
		return nil, err
	}
	return responsesToDTOs(responses), nil
}

func responsesToDTOs(responses []model.ExamResponse) []dto.ExamResponseDetailDTO {
	out := make([]dto.ExamResponseDetailDTO, 0, len(responses))
	for i := range responses {
		out = append(out, responseToDTO(&responses[i]))
	}
	return out
}

func responseToDTO(response *model.ExamResponse) dto.ExamResponseDetailDTO {
	resp := dto.ExamResponseDetailDTO{
		ID:        response.ID,
		ExamID:    response.ExamID,
		UserID:    response.UserID,
		CreatedAt: response.CreatedAt,
	}
	for _, answer := range response.Answers {
		resp.Answers = append(resp.Answers, dto.ExamAnswerDTO{
			ID:             answer.ID,
			QuestionID:     answer.QuestionID,
			AlternativeID:  answer.AlternativeID,
			SubjectiveText: answer.SubjectiveText,
			Score:          answer.Score,
			Feedback:       answer.Feedback,
		})
	}
	return resp
}
