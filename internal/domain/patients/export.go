package patients

import (
	"bytes"
	"fmt"
	"strings"

	"pet-discharge-portal/internal/domain/adherence"

	"github.com/xuri/excelize/v2"
)

var adherenceExportHeader = []string{
	"Medication",
	"Scheduled",
	"On Time",
	"Late",
	"Missed",
	"Skipped",
	"Unlogged",
	"Rate %",
	"Visits",
}

var timelineExportHeader = []string{
	"Date",
	"Scheduled",
	"Given",
	"Missed",
	"Rate %",
}

// ExportAdherenceXLSX genera el reporte de adherencia de un paciente como
// workbook: una hoja con el desglose por medicación y otra con la línea de
// tiempo diaria. El resumen total va arriba de la primera hoja.
func ExportAdherenceXLSX(patientName string, m adherence.Metrics) ([]byte, error) {
	f := excelize.NewFile()

	const medsSheet = "Adherence"
	const timelineSheet = "Timeline"

	index, err := f.NewSheet(medsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(timelineSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// Resumen total arriba
	summary := [][]any{
		{"Patient", patientName},
		{"Overall Rate %", m.Rate},
		{"Scheduled", m.Scheduled},
		{"On Time", m.Given},
		{"Late", m.Late},
		{"Missed", m.Missed},
		{"Skipped", m.Skipped},
		{"Unlogged", m.Unlogged},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(medsSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	// Desglose por medicación
	tableStart := len(summary) + 2
	if err := writeHeaderRow(f, medsSheet, tableStart, adherenceExportHeader, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	for i, med := range m.PerMedication {
		row := []any{
			med.Name,
			med.Scheduled,
			med.Given,
			med.Late,
			med.Missed,
			med.Skipped,
			med.Unlogged,
			med.Rate,
			strings.Join(med.VisitIDs, ", "),
		}
		if err := f.SetSheetRow(medsSheet, fmt.Sprintf("A%d", tableStart+1+i), &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write medication row: %w", err)
		}
	}
	if err := f.SetColWidth(medsSheet, "A", "A", 28); err != nil {
		f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(medsSheet, "I", "I", 44); err != nil {
		f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}

	// Línea de tiempo diaria
	if err := writeHeaderRow(f, timelineSheet, 1, timelineExportHeader, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	for i, day := range m.Timeline {
		row := []any{
			day.Date.Format("2006-01-02"),
			day.Scheduled,
			day.Given,
			day.Missed,
			day.Rate,
		}
		if err := f.SetSheetRow(timelineSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write timeline row: %w", err)
		}
	}
	if err := f.SetColWidth(timelineSheet, "A", "A", 14); err != nil {
		f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeaderRow(f *excelize.File, sheet string, row int, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("set header style: %w", err)
		}
	}
	return nil
}
