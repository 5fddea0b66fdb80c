//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/config"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/metrics"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/middleware"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/testutil"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type e2eEnv struct {
	*app
	rdb        *redis.Client
	svcs       Services
	dispatcher *worker.Dispatcher
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("tienda_test"),
		tcPostgres.WithUsername("tienda"),
		tcPostgres.WithPassword("tienda"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                     "test",
		JWTSecret:               secret,
		DatabaseURL:             pgURL,
		RedisURL:                rdURL,
		WorkerPoolSize:          2,
		MovimientoMaxReintentos: 3,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig("redis"))
	dispatcher := worker.NewDispatcher(rdb, cb)
	reg := prometheus.NewRegistry()
	svcs := BuildServices(db, dispatcher, infra.NoopPublisher{}, metrics.New(reg), "Tienda E2E")

	workerCtx, cancel := context.WithCancel(ctx)
	mw := worker.NewMovimientoWorker(svcs.Inventario, dispatcher, rdb, cfg.MovimientoMaxReintentos)
	wg := worker.StartWorkerPool(workerCtx, rdb, cfg.WorkerPoolSize, worker.QueueMovimientos, mw)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	engine := New(cfg, Deps{
		DB:       db,
		Redis:    rdb,
		Services: svcs,
		Gatherer: reg,
		Breakers: []*infra.CircuitBreaker{cb},
	})
	return &e2eEnv{
		app:        &app{t: t, db: db, engine: engine},
		rdb:        rdb,
		svcs:       svcs,
		dispatcher: dispatcher,
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_HealthConRedis(t *testing.T) {
	e := setupE2E(t)

	w := e.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "connected", body["redis"])
}

func TestE2E_ConsumoConcurrenteRespetaElLimite(t *testing.T) {
	e := setupE2E(t)
	testutil.SeedCodigo(t, e.db, "TECNICO5", "5", 3, 0, true)

	const intentos = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		rechazo = map[apperror.Code]int{}
	)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svcs.Descuentos.Consumir(context.Background(), "tecnico5")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			rechazo[apperror.CodeOf(err)]++
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, intentos-3, rechazo[apperror.CodeLimitReached]+rechazo[apperror.CodeConcurrentExhaustion])
	assert.Equal(t, 3, testutil.Codigo(t, e.db, "TECNICO5").UsosActuales)
}

func TestE2E_LimiteEnLaBase(t *testing.T) {
	e := setupE2E(t)
	testutil.SeedCodigo(t, e.db, "TOPE", "10", 1, 1, true)

	err := e.db.Exec("UPDATE codigos_descuento SET usos_actuales = usos_actuales + 1 WHERE codigo = ?", "TOPE").Error
	assert.Error(t, err, "el CHECK de usos_actuales <= usos_maximos debe rechazar el update")
}

func TestE2E_FinalizacionConcurrenteUnaSolaVenta(t *testing.T) {
	e := setupE2E(t)
	prod := e.crearProducto("Teclado", "20.00", 10)

	w := e.do(http.MethodPost, "/v1/pedidos", "", map[string]any{
		"items": []map[string]any{{"producto_id": prod.ID, "cantidad": 3, "precio_unitario": "20.00"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pedido := decode[dto.PedidoResponse](t, w)

	estado := "finalizado"
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.svcs.Pedidos.Transicionar(context.Background(), pedido.ID, dto.ActualizarPedidoRequest{Estado: &estado})
		}()
	}
	wg.Wait()

	var ventas int64
	require.NoError(t, e.db.Model(&model.Venta{}).Where("pedido_id = ?", pedido.ID).Count(&ventas).Error)
	assert.EqualValues(t, 1, ventas)
	assert.Equal(t, 7, testutil.Stock(t, e.db, prod.ID))

	w = e.do(http.MethodGet, fmt.Sprintf("/v1/pedidos/%d", pedido.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.EstadoCompletado, decode[dto.PedidoResponse](t, w).Estado)
}

func TestE2E_ReintentoDeMovimientos(t *testing.T) {
	e := setupE2E(t)
	ctx := context.Background()
	prod := e.crearProducto("Mouse", "8.00", 5)

	require.NoError(t, e.dispatcher.EncolarMovimiento(ctx, 42, dto.MovimientoRequest{
		ProductoID: &prod.ID, Tipo: model.MovimientoSalida, Cantidad: 2, Descripcion: "pedido 42",
	}))
	require.Eventually(t, func() bool {
		var p model.Producto
		return e.db.First(&p, prod.ID).Error == nil && p.Stock == 3
	}, 10*time.Second, 100*time.Millisecond)

	// unknown product is permanent and lands in the DLQ
	inexistente := uint(99999)
	require.NoError(t, e.dispatcher.EncolarMovimiento(ctx, 43, dto.MovimientoRequest{
		ProductoID: &inexistente, Tipo: model.MovimientoSalida, Cantidad: 1,
	}))
	require.Eventually(t, func() bool {
		n, err := worker.DLQLength(ctx, e.rdb, worker.QueueMovimientos)
		return err == nil && n == 1
	}, 10*time.Second, 100*time.Millisecond)

	w := e.do(http.MethodGet, "/v1/inventario/reconciliacion", middleware.RolOperador, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["total"])
}
