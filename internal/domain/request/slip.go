package request

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"hrforms/internal/domain/profile"
)

type slipLine struct {
	label string
	value string
}

// WriteSlip renders a one-page PDF summary of req for printing and writes it
// to w.
func WriteSlip(w io.Writer, req Request, p profile.Profile) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, req.FormType.Title())
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []slipLine{
		{"Employee", p.DisplayName()},
		{"Employee ID", p.EmployeeID},
		{"Department", p.Department},
		{"Position", p.Position},
		{"Request ID", req.ID},
		{"Filed", req.CreatedAt.Format("2006-01-02 15:04")},
		{"Status", string(req.Status)},
	}
	writeSlipLines(pdf, header)
	pdf.Ln(4)
	writeSlipLines(pdf, payloadLines(req.Payload))
	if req.AdminComment != "" {
		pdf.Ln(4)
		writeSlipLines(pdf, []slipLine{{"Admin comment", req.AdminComment}})
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render slip: %w", err)
	}
	return nil
}

func writeSlipLines(pdf *gofpdf.Fpdf, lines []slipLine) {
	for _, line := range lines {
		if line.value == "" {
			continue
		}
		pdf.CellFormat(45, 8, line.label+":", "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 8, line.value, "", "L", false)
	}
}

func payloadLines(p Payload) []slipLine {
	switch v := p.(type) {
	case Leave:
		attachment := "No"
		if v.HasAttachment {
			attachment = "Yes"
		}
		return []slipLine{
			{"Leave type", string(v.LeaveType)},
			{"Start date", v.StartDate.String()},
			{"End date", v.EndDate.String()},
			{"Days", strconv.Itoa(v.Days)},
			{"Attachment", attachment},
			{"Remarks", v.Remarks},
		}
	case BusinessTrip:
		return []slipLine{
			{"Destination", v.Destination},
			{"Departure", v.DepartureDate.String()},
			{"Return", v.ReturnDate.String()},
			{"Purpose", v.Purpose},
		}
	case Overtime:
		return []slipLine{
			{"Date", v.Date.String()},
			{"Day type", string(v.DayType)},
			{"Time in", v.TimeIn.String()},
			{"Time out", v.TimeOut.String()},
			{"Duty hours", strconv.FormatFloat(v.DutyHours, 'f', 2, 64)},
			{"Overtime hours", strconv.FormatFloat(v.TotalHours, 'f', 2, 64)},
			{"Remarks", v.Remarks},
		}
	case Attendance:
		return []slipLine{
			{"Category", string(v.Category)},
			{"From", v.FromDate.String()},
			{"To", v.EndDate.String()},
			{"Time in", v.TimeIn.String()},
			{"Time out", v.TimeOut.String()},
			{"Remarks", v.Remarks},
		}
	case Letter:
		return []slipLine{
			{"Letter type", string(v.LetterType)},
			{"Template", v.TemplateName},
			{"Date needed", v.DateNeeded.String()},
			{"Remarks", v.Remarks},
		}
	}
	return nil
}
