package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"quiz-proctor-service/internal/domain"
)

const sheetName = "Quiz Results"

var headers = []string{"Rank", "Player Name", "Correct Answers", "Total Questions", "Incorrect Answers", "Accuracy"}

// Results renders an already-ranked result set into a single-sheet
// spreadsheet: a bold header row, then one row per record in ranking
// order. Accuracy is rendered as a percentage string.
func Results(records []domain.ResultRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, domain.ErrNoResults
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, bold); err != nil {
			return nil, err
		}
	}

	for i, r := range records {
		values := []any{
			i + 1,
			r.ClientName,
			r.CorrectAnswers,
			r.TotalQuestions,
			r.IncorrectAnswers,
			fmt.Sprintf("%d%%", r.Accuracy),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
