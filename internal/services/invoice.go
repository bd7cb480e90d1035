package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/rentmart/server/internal/models"
)

// BuildInvoicePDF renders a booking invoice. names maps product ids (hex)
// to display names; unknown products fall back to the id.
func BuildInvoicePDF(b *models.Booking, names map[string]string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	invNo := fmt.Sprintf("INV-%s", strings.ToUpper(b.ID.Hex()[:12]))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date       : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Status     : %s / %s", b.Status, b.PaymentStatus))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Name  : %s", safe(b.User.Name, "-")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Email : %s", safe(b.User.Email, "-")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Items:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for i, item := range b.Items {
		name := names[item.ProductID.Hex()]
		if name == "" {
			name = item.ProductID.Hex()
		}
		line := fmt.Sprintf("%d) %s x%d  %s - %s (%d day(s))",
			i+1, name, item.Quantity,
			item.StartDate.Format("2006-01-02"), item.EndDate.Format("2006-01-02"),
			RentalDays(item.StartDate, item.EndDate),
		)
		pdf.MultiCell(0, 6, line, "", "", false)
		pdf.Ln(1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", b.TotalAmount))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Thank you for renting with us.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("INVOICE_%s.pdf", b.ID.Hex())
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
