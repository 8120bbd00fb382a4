package service

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"gorm.io/gorm"
)

// ExamAccessService enforces who may respond to an exam. Public exams
// are open to everyone; private exams require the access code or a
// previously recorded grant. Grants never expire, even after the code
// is rotated or cleared.
type ExamAccessService interface {
	GrantAccess(userID, examID uint, accessCode string) (*dto.AccessStatusDTO, error)
	HasAccess(userID, examID uint) (bool, error)
	GetExamForResponse(userID uint, identifier string) (*dto.ExamForResponseDTO, error)
	ResolveExam(identifier string) (*model.Exam, error)
}

type examAccessService struct {
	examRepo   repository.ExamRepository
	accessRepo repository.ExamAccessRepository
	examSvc    ExamService
}

func NewExamAccessService(
	examRepo repository.ExamRepository,
	accessRepo repository.ExamAccessRepository,
	examSvc ExamService,
) ExamAccessService {
	return &examAccessService{
		examRepo:   examRepo,
		accessRepo: accessRepo,
		examSvc:    examSvc,
	}
}

// GrantAccess records a grant when the supplied code matches the exam's
// current one. A wrong code leaves no trace.
func (s *examAccessService) GrantAccess(userID, examID uint, accessCode string) (*dto.AccessStatusDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("exam not found")
		}
		return nil, err
	}

	if exam.IsPublic {
		return &dto.AccessStatusDTO{HasAccess: true}, nil
	}
	if exam.AccessCode == nil || *exam.AccessCode != accessCode {
		return nil, apperr.Forbidden("invalid access code")
	}

	if err := s.accessRepo.Grant(userID, examID); err != nil {
		log.Error().Err(err).Uint("examID", examID).Uint("userID", userID).Msg("Failed to record exam access grant")
		return nil, err
	}
	return &dto.AccessStatusDTO{HasAccess: true}, nil
}

func (s *examAccessService) HasAccess(userID, examID uint) (bool, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.NotFound("exam not found")
		}
		return false, err
	}
	return s.hasAccessToExam(userID, exam)
}

func (s *examAccessService) hasAccessToExam(userID uint, exam *model.Exam) (bool, error) {
	if exam.IsPublic || exam.CreatorID == userID {
		return true, nil
	}
	return s.accessRepo.Exists(userID, exam.ID)
}

// GetExamForResponse resolves a respond identifier, either the numeric
// id of a public exam or an access code, and returns the answer-key-free
// view. Codes carry non-decimal characters, so the two forms do not
// collide in practice.
func (s *examAccessService) GetExamForResponse(userID uint, identifier string) (*dto.ExamForResponseDTO, error) {
	exam, err := s.ResolveExam(identifier)
	if err != nil {
		return nil, err
	}

	// Resolution by code is itself proof of access; record the grant so
	// the respondent keeps it after a code rotation.
	if !exam.IsPublic {
		if err := s.accessRepo.Grant(userID, exam.ID); err != nil {
			log.Error().Err(err).Uint("examID", exam.ID).Uint("userID", userID).Msg("Failed to record exam access grant")
			return nil, err
		}
	}

	questions, err := s.examSvc.EffectiveQuestions(exam.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.ExamForResponseDTO{
		ID:          exam.ID,
		Title:       exam.Title,
		Description: exam.Description,
		Questions:   make([]dto.RespondentQuestionDTO, 0, len(questions)),
	}
	for i := range questions {
		resp.Questions = append(resp.Questions, respondentQuestionDTO(&questions[i]))
	}
	return &resp, nil
}

// ResolveExam maps a respond identifier onto its exam without touching
// grants. The public-id form is tried first for numeric identifiers.
func (s *examAccessService) ResolveExam(identifier string) (*model.Exam, error) {
	if raw, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		exam, err := s.examRepo.FindPublicByID(uint(raw))
		if err == nil {
			return exam, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	exam, err := s.examRepo.FindByAccessCode(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("exam not found")
		}
		return nil, err
	}
	return exam, nil
}

func respondentQuestionDTO(question *model.Question) dto.RespondentQuestionDTO {
	resp := dto.RespondentQuestionDTO{
		ID:           question.ID,
		Text:         question.Text,
		QuestionType: question.QuestionType,
	}
	for _, alt := range question.Alternatives {
		resp.Alternatives = append(resp.Alternatives, dto.RespondentAlternativeDTO{ID: alt.ID, Content: alt.Content})
	}
	return resp
}
