package infra

import (
	"bytes"
	"testing"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerarTicketPDF(t *testing.T) {
	pedidoID := uint(12)
	venta := &model.Venta{
		ID:         7,
		PedidoID:   &pedidoID,
		Total:      decimal.RequireFromString("25.00"),
		MetodoPago: "efectivo",
		CreatedAt:  time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC),
	}
	lineas := []TicketLinea{
		{Descripcion: "Cargador USB-C de carga rápida 65W", Cantidad: 2, Subtotal: decimal.RequireFromString("20.00")},
		{Descripcion: "Funda", Cantidad: 1, Subtotal: decimal.RequireFromString("5.00")},
	}

	out, err := GenerarTicketPDF("Técnico Joel", venta, lineas)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	sinItems, err := GenerarTicketPDF("Técnico Joel", &model.Venta{ID: 8, Total: decimal.NewFromInt(3), MetodoPago: "debito"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, sinItems)

	_, err = GenerarTicketPDF("x", nil, nil)
	assert.Error(t, err)
}
