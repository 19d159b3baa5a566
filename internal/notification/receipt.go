package notification

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const receiptTimeLayout = "02/01/2006 15:04"

// RenderReceipt produces the order receipt as PDF bytes. Output is
// deterministic for a given snapshot: the document creation date is pinned to
// the order's own createdAt instead of the wall clock.
func RenderReceipt(snap OrderSnapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(snap.CreatedAt.UTC())
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr(snap.CompanyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(snap.StoreName), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Ordem de Serviço %s", snap.OrderNumber)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Cliente", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(snap.Client.Name), "", 1, "L", false, 0, "")
	if snap.Client.Phone != "" {
		pdf.CellFormat(0, 5, tr("Telefone: "+snap.Client.Phone), "", 1, "L", false, 0, "")
	}
	if snap.Client.HasEmail() {
		pdf.CellFormat(0, 5, tr("E-mail: "+*snap.Client.Email), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Item table header repeats on every page break.
	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(90, 7, tr("Serviço"), "1", 0, "L", true, 0, "")
		pdf.CellFormat(20, 7, "Qtd", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, tr("Preço"), "1", 0, "R", true, 0, "")
		pdf.CellFormat(40, 7, "Subtotal", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	for _, item := range snap.Items {
		if pdf.GetY() > pageHeight-30 {
			pdf.AddPage()
			writeHeader()
		}
		pdf.CellFormat(90, 6, tr(item.ServiceName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, FormatAmount(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, FormatAmount(item.LineTotal()), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(150, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, FormatAmount(snap.TotalAmount), "1", 1, "R", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "", 9)
	writeTimestamp(pdf, tr, "Criada em", &snap.CreatedAt)
	writeTimestamp(pdf, tr, "Finalizada em", snap.FinishedAt)
	writeTimestamp(pdf, tr, "Paga em", snap.PaidAt)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTimestamp(pdf *gofpdf.Fpdf, tr func(string) string, label string, t *time.Time) {
	if t == nil {
		return
	}
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s: %s", label, t.Format(receiptTimeLayout))), "", 1, "L", false, 0, "")
}

// EncodeReceipt returns the base64 form the provider's media send requires.
func EncodeReceipt(pdfBytes []byte) string {
	return base64.StdEncoding.EncodeToString(pdfBytes)
}

// ReceiptFilename names the attached document after the order.
func ReceiptFilename(orderNumber string) string {
	return fmt.Sprintf("recibo-%s.pdf", orderNumber)
}
