package service

import (
	"testing"

	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
)

func TestRespondStoresAnswers(t *testing.T) {
	env := newTestEnv(t)

	objective := env.createQuestion(t, 1, model.QuestionTypeObjective)
	subjective := env.createQuestion(t, 1, model.QuestionTypeSubjective)

	exam, err := env.examSvc.Create(1, dto.ExamCreateDTO{
		Title:     "Open",
		IsPublic:  true,
		Questions: []uint{objective.ID, subjective.ID},
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}

	resp, err := env.responseSvc.Respond(2, exam.ID, dto.ExamSubmitDTO{
		Answers: []dto.SubmitAnswerDTO{
			{QuestionID: objective.ID, AlternativeID: uintPtr(objective.Alternatives[0].ID)},
			{QuestionID: subjective.ID, SubjectiveText: strPtr("Paris is the capital.")},
		},
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if len(resp.Answers) != 2 {
		t.Fatalf("expected 2 stored answers, got %d", len(resp.Answers))
	}
	for _, answer := range resp.Answers {
		if answer.Score != nil || answer.Feedback != nil {
			t.Errorf("answers are stored ungraded, got %+v", answer)
		}
	}
}

func TestRespondValidatesAnswers(t *testing.T) {
	env := newTestEnv(t)

	objective := env.createQuestion(t, 1, model.QuestionTypeObjective)
	other := env.createQuestion(t, 1, model.QuestionTypeObjective)
	outside := env.createQuestion(t, 1, model.QuestionTypeSubjective)

	exam, err := env.examSvc.Create(1, dto.ExamCreateDTO{
		Title:     "Open",
		IsPublic:  true,
		Questions: []uint{objective.ID},
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}

	cases := []struct {
		name    string
		answers []dto.SubmitAnswerDTO
	}{
		{"question outside the exam", []dto.SubmitAnswerDTO{
			{QuestionID: outside.ID, SubjectiveText: strPtr("x")},
		}},
		{"text answer to objective question", []dto.SubmitAnswerDTO{
			{QuestionID: objective.ID, SubjectiveText: strPtr("x")},
		}},
		{"alternative of another question", []dto.SubmitAnswerDTO{
			{QuestionID: objective.ID, AlternativeID: uintPtr(other.Alternatives[0].ID)},
		}},
		{"duplicate answers for one question", []dto.SubmitAnswerDTO{
			{QuestionID: objective.ID, AlternativeID: uintPtr(objective.Alternatives[0].ID)},
			{QuestionID: objective.ID, AlternativeID: uintPtr(objective.Alternatives[1].ID)},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.responseSvc.Respond(2, exam.ID, dto.ExamSubmitDTO{Answers: tc.answers})
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}

	var count int64
	env.db.Model(&model.ExamResponse{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected submissions must not be stored, got %d rows", count)
	}
}

func TestRespondEnforcesAccess(t *testing.T) {
	env := newTestEnv(t)

	q := env.createQuestion(t, 1, model.QuestionTypeSubjective)
	exam, err := env.examSvc.Create(1, dto.ExamCreateDTO{
		Title:              "Private",
		GenerateAccessCode: true,
		Questions:          []uint{q.ID},
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}

	submission := dto.ExamSubmitDTO{
		Answers: []dto.SubmitAnswerDTO{{QuestionID: q.ID, SubjectiveText: strPtr("answer")}},
	}

	if _, err := env.responseSvc.Respond(2, exam.ID, submission); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("no access: got %v, want forbidden", err)
	}

	withWrongCode := submission
	withWrongCode.AccessCode = strPtr("bogus")
	if _, err := env.responseSvc.Respond(2, exam.ID, withWrongCode); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("wrong code: got %v, want forbidden", err)
	}

	withCode := submission
	withCode.AccessCode = exam.AccessCode
	if _, err := env.responseSvc.Respond(2, exam.ID, withCode); err != nil {
		t.Fatalf("respond with inline code: %v", err)
	}

	// The inline code recorded a grant, so the next submission needs none.
	if _, err := env.responseSvc.Respond(2, exam.ID, submission); err != nil {
		t.Fatalf("respond with recorded grant: %v", err)
	}
}

func TestResponseListings(t *testing.T) {
	env := newTestEnv(t)

	q := env.createQuestion(t, 1, model.QuestionTypeSubjective)
	exam, err := env.examSvc.Create(1, dto.ExamCreateDTO{
		Title:     "Open",
		IsPublic:  true,
		Questions: []uint{q.ID},
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}

	submission := dto.ExamSubmitDTO{
		Answers: []dto.SubmitAnswerDTO{{QuestionID: q.ID, SubjectiveText: strPtr("answer")}},
	}
	if _, err := env.responseSvc.Respond(2, exam.ID, submission); err != nil {
		t.Fatalf("respond as user 2: %v", err)
	}
	if _, err := env.responseSvc.Respond(3, exam.ID, submission); err != nil {
		t.Fatalf("respond as user 3: %v", err)
	}

	all, err := env.responseSvc.ResponsesForCreator(1, exam.ID)
	if err != nil {
		t.Fatalf("list for creator: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("creator sees every response, got %d", len(all))
	}

	if _, err := env.responseSvc.ResponsesForCreator(2, exam.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("non-creator listing: got %v, want forbidden", err)
	}

	mine, err := env.responseSvc.MyResponses(2, exam.ID)
	if err != nil {
		t.Fatalf("my responses: %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != 2 {
		t.Errorf("respondents see only their own submissions, got %+v", mine)
	}
}
