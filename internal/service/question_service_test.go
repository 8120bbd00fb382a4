package service

import (
	"testing"

	"github.com/sistira/sistira/internal/apperr"
	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
)

func TestCreateQuestionRejectsMismatchedShape(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.questionSvc.Create(1, dto.QuestionCreateDTO{
		Text:         "Explain photosynthesis.",
		QuestionType: model.QuestionTypeSubjective,
		Alternatives: []dto.AlternativeCreateDTO{{Content: "A", Correct: true}},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("subjective question with alternatives: got %v, want validation error", err)
	}

	_, err = env.questionSvc.Create(1, dto.QuestionCreateDTO{
		Text:         "Pick one.",
		QuestionType: model.QuestionTypeObjective,
		ModelAnswers: []dto.ModelAnswerCreateDTO{{Type: model.ModelAnswerCorrect, Content: "x"}},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("objective question with model answers: got %v, want validation error", err)
	}

	_, err = env.questionSvc.Create(1, dto.QuestionCreateDTO{
		Text:         "Explain.",
		QuestionType: model.QuestionTypeSubjective,
		ModelAnswers: []dto.ModelAnswerCreateDTO{
			{Type: model.ModelAnswerCorrect, Content: "a"},
			{Type: model.ModelAnswerCorrect, Content: "b"},
		},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("duplicate model answer tier: got %v, want validation error", err)
	}
}

func TestCreateQuestionWithModelAnswerTiers(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.questionSvc.Create(1, dto.QuestionCreateDTO{
		Text:            "Explain the water cycle.",
		QuestionType:    model.QuestionTypeSubjective,
		UseModelAnswers: true,
		Disciplines:     []string{"Science"},
		ModelAnswers: []dto.ModelAnswerCreateDTO{
			{Type: model.ModelAnswerWrong, Content: "Water disappears."},
			{Type: model.ModelAnswerMedian, Content: "Water evaporates and rains."},
			{Type: model.ModelAnswerCorrect, Content: "Evaporation, condensation, precipitation, collection."},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(resp.ModelAnswers) != 3 {
		t.Errorf("expected 3 model answers, got %d", len(resp.ModelAnswers))
	}
	if len(resp.Disciplines) != 1 || resp.Disciplines[0].Name != "Science" {
		t.Errorf("expected Science discipline, got %+v", resp.Disciplines)
	}
}

func TestUpdateQuestionReplacesChildSets(t *testing.T) {
	env := newTestEnv(t)

	q := env.createQuestion(t, 1, model.QuestionTypeObjective, "Math")

	alts := []dto.AlternativeCreateDTO{{Content: "42", Correct: true}}
	resp, err := env.questionSvc.Update(1, q.ID, dto.QuestionUpdateDTO{
		Text:         strPtr("What is six times seven?"),
		Alternatives: &alts,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.Text != "What is six times seven?" {
		t.Errorf("text not updated: %q", resp.Text)
	}
	if len(resp.Alternatives) != 1 || resp.Alternatives[0].Content != "42" {
		t.Errorf("alternatives must be fully replaced, got %+v", resp.Alternatives)
	}

	var count int64
	env.db.Model(&model.Alternative{}).Where("question_id = ?", q.ID).Count(&count)
	if count != 1 {
		t.Errorf("stale alternative rows left behind: %d", count)
	}
}

func TestUpdateQuestionOwnership(t *testing.T) {
	env := newTestEnv(t)

	q := env.createQuestion(t, 1, model.QuestionTypeSubjective)
	_, err := env.questionSvc.Update(2, q.ID, dto.QuestionUpdateDTO{Text: strPtr("hijacked")})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("got %v, want forbidden", err)
	}
	if err := env.questionSvc.Delete(2, q.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("delete by non-creator: got %v, want forbidden", err)
	}
}

func TestDeleteQuestionCascadesAndRecomputesBanks(t *testing.T) {
	env := newTestEnv(t)

	q1 := env.createQuestion(t, 1, model.QuestionTypeObjective, "Math")
	q2 := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Art")

	bank, err := env.bankSvc.Create(1, dto.QuestionBankCreateDTO{
		Name:      "Mixed",
		Questions: []uint{q1.ID, q2.ID},
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}

	if err := env.questionSvc.Delete(1, q1.ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}

	var count int64
	env.db.Model(&model.Alternative{}).Where("question_id = ?", q1.ID).Count(&count)
	if count != 0 {
		t.Errorf("alternatives not cascaded")
	}
	env.db.Model(&model.QuestionBankQuestion{}).Where("question_id = ?", q1.ID).Count(&count)
	if count != 0 {
		t.Errorf("bank membership rows not cascaded")
	}

	reloaded, err := env.bankSvc.FindOne(1, bank.ID)
	if err != nil {
		t.Fatalf("reload bank: %v", err)
	}
	if len(reloaded.Disciplines) != 1 || reloaded.Disciplines[0].Name != "Art" {
		t.Errorf("ranking must drop the deleted question's disciplines, got %+v", reloaded.Disciplines)
	}

	// Math had its only reference on the deleted question.
	env.db.Model(&model.Discipline{}).Where("name = ?", "Math").Count(&count)
	if count != 0 {
		t.Errorf("orphaned discipline survived the sweep")
	}
}
