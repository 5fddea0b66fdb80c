package infra

// pdf.go renders a receipt-sized PDF for a Venta using go-pdf/fpdf.
// Layout: store header, venta number and date, one row per line item,
// bold total and payment method. The document is returned in memory so
// handlers can stream it without touching the filesystem.

import (
	"bytes"
	"fmt"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// TicketLinea is one printable row of a ticket.
type TicketLinea struct {
	Descripcion string
	Cantidad    int
	Subtotal    decimal.Decimal
}

// GenerarTicketPDF returns the PDF bytes of a receipt for venta.
// lineas may be empty for point-of-sale ventas that carry no items.
func GenerarTicketPDF(tienda string, venta *model.Venta, lineas []TicketLinea) ([]byte, error) {
	if venta == nil {
		return nil, fmt.Errorf("pdf: venta is nil")
	}

	alto := 70.0 + float64(len(lineas))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(tienda), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comprobante de Venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Venta #%d", venta.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	if venta.PedidoID != nil {
		pdf.CellFormat(contentW, 4, fmt.Sprintf("Pedido #%d", *venta.PedidoID), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	if len(lineas) > 0 {
		pdf.SetFont("Helvetica", "B", 7)
		pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 7)
		for _, l := range lineas {
			nombre := []rune(l.Descripcion)
			if len(nombre) > 22 {
				nombre = append(nombre[:21], '.')
			}
			pdf.CellFormat(col1, 5, tr(string(nombre)), "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", l.Cantidad), "", 0, "C", false, 0, "")
			pdf.CellFormat(col3, 5, "$"+l.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(2)
		pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
		pdf.Ln(2)
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+venta.Total.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Pago: "+venta.MetodoPago), "", 1, "L", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
