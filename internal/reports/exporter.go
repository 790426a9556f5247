package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/nomenalista/guestlist-backend/internal/event"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// GuestListExporter renders a guest list into a downloadable file.
type GuestListExporter interface {
	Export(format string, ev *event.Event, guests []event.Guest) ([]byte, string, string, error)
}

type guestListExporter struct{}

func NewGuestListExporter() GuestListExporter {
	return &guestListExporter{}
}

// Export returns the file bytes, a filename, and the content type.
func (e *guestListExporter) Export(format string, ev *event.Event, guests []event.Guest) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := e.exportCSV(ev, guests)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("guest_list_%s.csv", timestamp)
		return data, filename, "text/csv", nil

	case FormatExcel, "xlsx":
		data, err := e.exportExcel(ev, guests)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("guest_list_%s.xlsx", timestamp)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportPDF(ev, guests)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("guest_list_%s.pdf", timestamp)
		return data, filename, "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format: %s", format)
	}
}

func guestRow(ev *event.Event, g *event.Guest) []string {
	addedBy := ev.OwnerName
	switch g.AddedBy.Kind {
	case event.RefPromoter:
		if p := ev.PromoterByID(g.AddedBy.ID); p != nil {
			addedBy = p.Name
		} else {
			addedBy = "removed promoter"
		}
	case event.RefPublicLink:
		addedBy = "public link"
	}

	confirmed := "no"
	if g.Confirmed {
		confirmed = "yes"
	}
	checkedIn := "no"
	if g.CheckedIn {
		checkedIn = "yes"
	}

	return []string{
		g.Name,
		g.Phone,
		g.Email,
		string(g.ListType),
		confirmed,
		checkedIn,
		addedBy,
		g.Timestamp.Format("2006-01-02 15:04:05"),
	}
}

var guestHeaders = []string{"Name", "Phone", "Email", "List", "Confirmed", "Checked In", "Added By", "Added At"}

func (e *guestListExporter) exportCSV(ev *event.Event, guests []event.Guest) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(guestHeaders); err != nil {
		return nil, err
	}
	for i := range guests {
		if err := writer.Write(guestRow(ev, &guests[i])); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *guestListExporter) exportExcel(ev *event.Event, guests []event.Guest) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Guest List"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range guestHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx := range guests {
		row := guestRow(ev, &guests[rIdx])
		for cIdx, v := range row {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *guestListExporter) exportPDF(ev *event.Event, guests []event.Guest) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(100, 10, fmt.Sprintf("Guest List - %s (%s)", ev.Name, ev.Date))
	pdf.Ln(10)

	widths := []float64{50, 35, 50, 25, 22, 22, 40, 36}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range guestHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for i := range guests {
		row := guestRow(ev, &guests[i])
		for j, v := range row {
			pdf.CellFormat(widths[j], 6, v, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
