package service

import (
	"sort"

	"github.com/sistira/sistira/internal/model"
	"gorm.io/gorm"
)

// BankAggregator recomputes a question bank's cached discipline ranking.
// The ranking is always a pure function of the membership passed in,
// never of previous rankings.
type BankAggregator interface {
	Recompute(tx *gorm.DB, bankID uint, questionIDs []uint) error
	RecomputeCurrent(tx *gorm.DB, bankID uint) error
}

type bankAggregator struct{}

func NewBankAggregator() BankAggregator {
	return &bankAggregator{}
}

// Recompute tallies discipline occurrences across the given questions in
// input order, ranks disciplines by descending count (ties keep the
// first-seen discipline ahead), and replaces the bank's stored ranking.
// The top two entries are flagged predominant; with fewer than two
// disciplines, all of them are.
func (a *bankAggregator) Recompute(tx *gorm.DB, bankID uint, questionIDs []uint) error {
	counts := make(map[uint]int)
	var order []uint

	if len(questionIDs) > 0 {
		var rows []model.QuestionDiscipline
		if err := tx.
			Where("question_id IN ?", questionIDs).
			Order("discipline_id ASC").
			Find(&rows).Error; err != nil {
			return err
		}

		perQuestion := make(map[uint][]uint)
		for _, row := range rows {
			perQuestion[row.QuestionID] = append(perQuestion[row.QuestionID], row.DisciplineID)
		}
		for _, questionID := range questionIDs {
			for _, disciplineID := range perQuestion[questionID] {
				if counts[disciplineID] == 0 {
					order = append(order, disciplineID)
				}
				counts[disciplineID]++
			}
		}
	}

	// Stable sort keeps discovery order on equal counts.
	ranked := make([]uint, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	entries := make([]model.QuestionBankDiscipline, 0, len(ranked))
	for position, disciplineID := range ranked {
		entries = append(entries, model.QuestionBankDiscipline{
			QuestionBankID: bankID,
			DisciplineID:   disciplineID,
			Count:          counts[disciplineID],
			Position:       position,
			Predominant:    position < 2,
		})
	}

	if err := tx.Where("question_bank_id = ?", bankID).Delete(&model.QuestionBankDiscipline{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.Create(&entries).Error
}

// RecomputeCurrent re-runs the ranking against the bank's current full
// membership, read in insertion order inside the caller's transaction.
func (a *bankAggregator) RecomputeCurrent(tx *gorm.DB, bankID uint) error {
	var rows []model.QuestionBankQuestion
	if err := tx.
		Where("question_bank_id = ?", bankID).
		Order("created_at ASC, question_id ASC").
		Find(&rows).Error; err != nil {
		return err
	}
	questionIDs := make([]uint, 0, len(rows))
	for _, row := range rows {
		questionIDs = append(questionIDs, row.QuestionID)
	}
	return a.Recompute(tx, bankID, questionIDs)
}
