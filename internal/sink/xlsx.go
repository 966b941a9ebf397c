package sink

import (
	"context"
	"errors"

	"capescraper/internal/cape"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Evaluations"

// XLSX writes a workbook with a header row and one row per record, unavailable values are left blank.
// The workbook is saved on every flush.
type XLSX struct {
	path string
	file *excelize.File
	row  int
}

func NewXLSX(path string) (*XLSX, error) {
	file := excelize.NewFile()
	err := file.SetSheetName("Sheet1", xlsxSheet)
	if err != nil {
		file.Close()
		return nil, err
	}

	header := make([]any, 0, len(cape.FieldNames)+1)
	header = append(header, "group")
	for _, name := range cape.FieldNames {
		header = append(header, name)
	}
	err = file.SetSheetRow(xlsxSheet, "A1", &header)
	if err != nil {
		file.Close()
		return nil, err
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		file.Close()
		return nil, err
	}
	err = file.SetRowStyle(xlsxSheet, 1, 1, bold)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &XLSX{path: path, file: file, row: 1}, nil
}

func cellValue[T int | float64](o cape.Optional[T]) any {
	v, ok := o.Get()
	if !ok {
		return nil
	}
	return v
}

func (s *XLSX) Write(_ context.Context, query cape.Query, records []cape.EvaluationRecord) error {
	for _, r := range records {
		s.row++
		cell, err := excelize.CoordinatesToCellName(1, s.row)
		if err != nil {
			return err
		}
		values := []any{
			query.Group(),
			r.Instructor,
			r.CourseCode,
			r.CourseTitle,
			r.Term,
			cellValue(r.Enrolled),
			cellValue(r.EvaluationsMade),
			cellValue(r.RecommendClass),
			cellValue(r.RecommendInstructor),
			cellValue(r.StudyHoursPerWeek),
			cellValue(r.AvgGradeExpected),
			cellValue(r.AvgGradeReceived),
		}
		err = s.file.SetSheetRow(xlsxSheet, cell, &values)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *XLSX) Flush() error {
	return s.file.SaveAs(s.path)
}

func (s *XLSX) Close() error {
	return errors.Join(s.Flush(), s.file.Close())
}
