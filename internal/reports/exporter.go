package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/kizunalink/kizuna-backend/internal/attendance"
	"github.com/kizunalink/kizuna-backend/internal/event"
)

// RosterExporter renders an event's attendee roster as CSV, Excel, or
// PDF for the host.
type RosterExporter interface {
	Export(format string, ev *event.Event, entries []attendance.RosterEntry) ([]byte, string, string, error)
}

type rosterExporter struct{}

func NewRosterExporter() RosterExporter {
	return &rosterExporter{}
}

// Export returns (payload, filename, content type).
func (e *rosterExporter) Export(format string, ev *event.Event, entries []attendance.RosterEntry) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")
	base := fmt.Sprintf("roster_event_%d_%s", ev.ID, timestamp)

	switch format {
	case "csv":
		return e.exportCSV(base, entries)
	case "excel", "xlsx":
		return e.exportExcel(base, ev, entries)
	case "pdf":
		return e.exportPDF(base, ev, entries)
	default:
		return nil, "", "", fmt.Errorf("unsupported format: %s (use csv, excel, or pdf)", format)
	}
}

func (e *rosterExporter) exportCSV(base string, entries []attendance.RosterEntry) ([]byte, string, string, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	headers := []string{"user_id", "full_name", "greeting", "after_party_interest", "joined_at"}
	if err := w.Write(headers); err != nil {
		return nil, "", "", err
	}

	for _, r := range entries {
		record := []string{
			fmt.Sprint(r.UserID),
			r.FullName,
			r.Greeting,
			fmt.Sprint(r.AfterPartyInterest),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, "", "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), base + ".csv", "text/csv", nil
}

func (e *rosterExporter) exportExcel(base string, ev *event.Event, entries []attendance.RosterEntry) ([]byte, string, string, error) {
	f := excelize.NewFile()
	sheet := "Roster"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", "", err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s (%s, %s)", ev.Title, ev.City, ev.StartsAt.Format("2006-01-02 15:04")))

	headers := []string{"user_id", "full_name", "greeting", "after_party_interest", "joined_at"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, "", "", err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range entries {
		row := rIdx + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.UserID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.FullName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Greeting)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.AfterPartyInterest)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), base + ".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
}

func (e *rosterExporter) exportPDF(base string, ev *event.Event, entries []attendance.RosterEntry) ([]byte, string, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, fmt.Sprintf("Attendee Roster: %s", ev.Title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 8, fmt.Sprintf("%s / %s / %s", ev.City, ev.Category, ev.StartsAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	headers := []string{"User ID", "Name", "After-party", "Joined At"}
	widths := []float64{25, 80, 30, 50}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, r := range entries {
		afterParty := "no"
		if r.AfterPartyInterest {
			afterParty = "yes"
		}
		pdf.CellFormat(widths[0], 6, fmt.Sprint(r.UserID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.FullName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, afterParty, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.CreatedAt.Format("2006-01-02 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), base + ".pdf", "application/pdf", nil
}
