package receipt

import (
	"bytes"
	"fmt"

	"storefront/internal/domain/model"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// PDFRenderer はレシートをA4縦のPDFにする。QRにはレシートIDを載せる
type PDFRenderer struct {
	storeName string
}

func NewPDFRenderer(storeName string) *PDFRenderer {
	return &PDFRenderer{storeName: storeName}
}

func (r *PDFRenderer) Render(sale model.Sale) ([]byte, error) {
	qrPNG, err := qrcode.Encode("sale:"+sale.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, r.storeName)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Receipt: %s", sale.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Date: %s", sale.CreatedAt.Format("2006-01-02 15:04:05")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Payment: %s", sale.PaymentMethod))
	pdf.Ln(12)

	// 明細
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, it := range sale.Items {
		pdf.CellFormat(90, 7, it.ProductName, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", it.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(140, 9, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 9, fmt.Sprintf("%d", sale.Total), "T", 1, "R", false, 0, "")

	imageOpts := gofpdf.ImageOptions{
		ImageType: "PNG",
	}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
