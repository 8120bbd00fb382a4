package service

import (
	"testing"

	"github.com/sistira/sistira/internal/dto"
	"github.com/sistira/sistira/internal/model"
)

func TestRankingCountsAndTieBreak(t *testing.T) {
	env := newTestEnv(t)

	q1 := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Math", "History")
	q2 := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Math", "History")
	q3 := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Math", "History", "Art")

	bank, err := env.bankSvc.Create(1, dto.QuestionBankCreateDTO{
		Name:      "Humanities",
		Questions: []uint{q1.ID, q2.ID, q3.ID},
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}

	if len(bank.Disciplines) != 3 {
		t.Fatalf("expected 3 ranking entries, got %d", len(bank.Disciplines))
	}

	want := []struct {
		name        string
		count       int
		predominant bool
	}{
		{"Math", 3, true},
		{"History", 3, true},
		{"Art", 1, false},
	}
	for i, w := range want {
		entry := bank.Disciplines[i]
		if entry.Name != w.name || entry.Count != w.count || entry.Predominant != w.predominant {
			t.Errorf("position %d: got {%s %d %v}, want {%s %d %v}",
				i, entry.Name, entry.Count, entry.Predominant, w.name, w.count, w.predominant)
		}
		if entry.Position != i {
			t.Errorf("position %d: stored position %d", i, entry.Position)
		}
	}
}

func TestRankingWithSingleDiscipline(t *testing.T) {
	env := newTestEnv(t)

	q := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Geography")
	bank, err := env.bankSvc.Create(1, dto.QuestionBankCreateDTO{
		Name:      "Maps",
		Questions: []uint{q.ID},
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}

	if len(bank.Disciplines) != 1 {
		t.Fatalf("expected 1 ranking entry, got %d", len(bank.Disciplines))
	}
	if !bank.Disciplines[0].Predominant {
		t.Errorf("with fewer than two disciplines every entry is predominant")
	}
}

func TestRankingRecomputedOnMembershipChange(t *testing.T) {
	env := newTestEnv(t)

	q1 := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Math")
	q2 := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Math", "Art")

	bank, err := env.bankSvc.Create(1, dto.QuestionBankCreateDTO{
		Name:      "Mixed",
		Questions: []uint{q1.ID, q2.ID},
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}

	bank, err = env.bankSvc.RemoveQuestions(1, bank.ID, []uint{q2.ID})
	if err != nil {
		t.Fatalf("remove question: %v", err)
	}
	if len(bank.Disciplines) != 1 || bank.Disciplines[0].Name != "Math" || bank.Disciplines[0].Count != 1 {
		t.Errorf("ranking must be recomputed from the remaining membership, got %+v", bank.Disciplines)
	}

	bank, err = env.bankSvc.RemoveQuestions(1, bank.ID, []uint{q1.ID})
	if err != nil {
		t.Fatalf("remove last question: %v", err)
	}
	if len(bank.Disciplines) != 0 {
		t.Errorf("empty membership must clear the ranking, got %+v", bank.Disciplines)
	}
}

func TestRankingIgnoresDuplicateAdds(t *testing.T) {
	env := newTestEnv(t)

	q := env.createQuestion(t, 1, model.QuestionTypeSubjective, "Math")
	bank, err := env.bankSvc.Create(1, dto.QuestionBankCreateDTO{
		Name:      "Dedup",
		Questions: []uint{q.ID},
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}

	bank, err = env.bankSvc.AddQuestions(1, bank.ID, []uint{q.ID, q.ID})
	if err != nil {
		t.Fatalf("re-add member: %v", err)
	}
	if len(bank.Questions) != 1 {
		t.Errorf("membership must stay deduplicated, got %d members", len(bank.Questions))
	}
	if len(bank.Disciplines) != 1 || bank.Disciplines[0].Count != 1 {
		t.Errorf("counts must not inflate on duplicate adds, got %+v", bank.Disciplines)
	}
}
