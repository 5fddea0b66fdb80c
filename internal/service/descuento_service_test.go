package service

import (
	"context"
	"sync"
	"testing"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescuento_Validar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedCodigo(t, f.db, "TECNICO5", "5", 10, 3, true)
	testutil.SeedCodigo(t, f.db, "EXPIRED", "10", 5, 5, true)
	testutil.SeedCodigo(t, f.db, "APAGADO", "10", 5, 0, false)

	snap, err := f.descuentos.Validar(ctx, "tecnico5")
	require.NoError(t, err)
	assert.Equal(t, "TECNICO5", snap.Codigo)
	assert.Equal(t, 7, snap.UsosRestantes)
	assert.True(t, snap.Porcentaje.Equal(dec("5")))

	_, err = f.descuentos.Validar(ctx, "EXPIRED")
	assert.True(t, apperror.Is(err, apperror.CodeLimitReached))

	_, err = f.descuentos.Validar(ctx, "APAGADO")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	_, err = f.descuentos.Validar(ctx, "NOEXISTE")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	assert.Equal(t, 3, testutil.Codigo(t, f.db, "TECNICO5").UsosActuales, "Validar no debe modificar el contador")
}

func TestDescuento_Consumir(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedCodigo(t, f.db, "TECNICO5", "5", 2, 1, true)

	snap, err := f.descuentos.Consumir(ctx, "Tecnico5")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.UsosActuales)
	assert.Equal(t, 0, snap.UsosRestantes)

	_, err = f.descuentos.Consumir(ctx, "TECNICO5")
	assert.True(t, apperror.Is(err, apperror.CodeLimitReached))
	assert.Equal(t, 2, testutil.Codigo(t, f.db, "TECNICO5").UsosActuales)
}

func TestDescuento_ConsumirExhaustedLeavesCounter(t *testing.T) {
	f := newFixture(t)
	testutil.SeedCodigo(t, f.db, "EXPIRED", "10", 5, 5, true)

	_, err := f.descuentos.Consumir(context.Background(), "EXPIRED")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeLimitReached, apperror.CodeOf(err))
	assert.Equal(t, 5, testutil.Codigo(t, f.db, "EXPIRED").UsosActuales)
}

func TestDescuento_ConsumirConcurrenteNoSuperaElLimite(t *testing.T) {
	f := newFixture(t)
	testutil.SeedCodigo(t, f.db, "FLASH", "20", 3, 0, true)

	const intentos = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		exitos  int
		rechazo = map[apperror.Code]int{}
	)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.descuentos.Consumir(context.Background(), "FLASH")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				exitos++
				return
			}
			rechazo[apperror.CodeOf(err)]++
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, exitos)
	assert.Equal(t, intentos-3, rechazo[apperror.CodeLimitReached]+rechazo[apperror.CodeConcurrentExhaustion])
	assert.Equal(t, 3, testutil.Codigo(t, f.db, "FLASH").UsosActuales)
}

func TestDescuento_Liberar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedCodigo(t, f.db, "TECNICO5", "5", 10, 1, true)

	snap, err := f.descuentos.Liberar(ctx, "tecnico5")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.UsosActuales)

	// already at zero: unchanged, not an error
	snap, err = f.descuentos.Liberar(ctx, "TECNICO5")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.UsosActuales)

	snap, err = f.descuentos.Liberar(ctx, "BORRADO")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestDescuento_Crear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snap, err := f.descuentos.Crear(ctx, dto.CrearCodigoRequest{Codigo: " verano ", Porcentaje: dec("15"), UsosMaximos: 50})
	require.NoError(t, err)
	assert.Equal(t, "VERANO", snap.Codigo)
	assert.True(t, snap.Activo)
	assert.Equal(t, 50, snap.UsosRestantes)

	_, err = f.descuentos.Crear(ctx, dto.CrearCodigoRequest{Codigo: "Verano", Porcentaje: dec("10"), UsosMaximos: 5})
	assert.True(t, apperror.Is(err, apperror.CodeConflict), "código duplicado")

	_, err = f.descuentos.Crear(ctx, dto.CrearCodigoRequest{Codigo: "CERO", Porcentaje: dec("0"), UsosMaximos: 1})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	_, err = f.descuentos.Crear(ctx, dto.CrearCodigoRequest{Codigo: "MUCHO", Porcentaje: dec("100.5"), UsosMaximos: 1})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	_, err = f.descuentos.Crear(ctx, dto.CrearCodigoRequest{Codigo: "   ", Porcentaje: dec("5"), UsosMaximos: 1})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	lista, err := f.descuentos.Listar(ctx)
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, "VERANO", lista[0].Codigo)
}
