package app

import (
	"math"
	"sort"

	"quiz-proctor-service/internal/domain"
)

// Older deployments scored in points against a fixed 20-question quiz;
// the upgrade formula below converts those records so mixed result sets
// still rank. It is never applied to newly produced records.
const legacyQuestionBaseline = 20

// RankResults orders records by correct answers descending, ties broken
// by the faster submission. Legacy point-based records are upgraded on
// the fly; records that fit neither shape are dropped.
func RankResults(records []domain.ResultRecord) []domain.ResultRecord {
	ranked := make([]domain.ResultRecord, 0, len(records))
	for _, r := range records {
		if r.TotalQuestions <= 0 {
			upgraded, ok := upgradeLegacyRecord(r)
			if !ok {
				continue
			}
			r = upgraded
		}
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CorrectAnswers != ranked[j].CorrectAnswers {
			return ranked[i].CorrectAnswers > ranked[j].CorrectAnswers
		}
		return ranked[i].TimeTaken < ranked[j].TimeTaken
	})
	return ranked
}

func upgradeLegacyRecord(r domain.ResultRecord) (domain.ResultRecord, bool) {
	if r.MaxScore <= 0 {
		return domain.ResultRecord{}, false
	}
	correct := int(math.Round(float64(r.Score) / float64(r.MaxScore) * legacyQuestionBaseline))
	r.CorrectAnswers = correct
	r.TotalQuestions = legacyQuestionBaseline
	r.IncorrectAnswers = legacyQuestionBaseline - correct
	r.Accuracy = accuracy(correct, legacyQuestionBaseline)
	return r, true
}

func accuracy(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
