package router

import (
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/config"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/handler"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/metrics"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/middleware"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/repository"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/service"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Descuentos service.DescuentoService
	Inventario service.InventarioService
	Ventas     service.VentaService
	Pedidos    service.PedidoService
}

// BuildServices wires repositories into services.
// Dependency graph: Service ← Repository ← DB.
// reintentos and eventos may be nil.
func BuildServices(db *gorm.DB, reintentos service.MovimientoReintentos, eventos infra.EventPublisher, m *metrics.Metrics, tienda string) Services {
	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	codigoRepo := repository.NewCodigoDescuentoRepository(db)

	descuentoSvc := service.NewDescuentoService(codigoRepo, m)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoRepo, m)
	ventaSvc := service.NewVentaService(ventaRepo, pedidoRepo, productoRepo, m, tienda)
	pedidoSvc := service.NewPedidoService(pedidoRepo, pedidoRepo, descuentoSvc, inventarioSvc, ventaSvc, reintentos, eventos, m)

	return Services{
		Descuentos: descuentoSvc,
		Inventario: inventarioSvc,
		Ventas:     ventaSvc,
		Pedidos:    pedidoSvc,
	}
}

// Deps are the collaborators New needs besides the config. Redis, Gatherer
// and RateLimit are optional; a nil Gatherer disables /metrics.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Services  Services
	Gatherer  prometheus.Gatherer
	RateLimit *middleware.RateLimitStore
	Breakers  []*infra.CircuitBreaker
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service (built by BuildServices).
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()...))
	r.Use(middleware.ErrorHandler())
	if d.RateLimit != nil {
		r.Use(middleware.RateLimiter(d.RateLimit))
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	pedidosH := handler.NewPedidosHandler(d.Services.Pedidos)
	ventasH := handler.NewVentasHandler(d.Services.Ventas)
	inventarioH := handler.NewInventarioHandler(d.Services.Inventario)
	productosH := handler.NewProductosHandler(d.Services.Inventario)
	descuentosH := handler.NewDescuentosHandler(d.Services.Descuentos)

	// a nil *redis.Client must not become a non-nil worker.Queue
	var dlq worker.Queue
	if d.Redis != nil {
		dlq = d.Redis
	}

	// ── Routes ───────────────────────────────────────────────────────────────

	// Infra
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Breakers...))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Storefront (public)
	pub := r.Group("/v1")
	{
		pub.POST("/pedidos", pedidosH.Crear)
		pub.GET("/pedidos/:id", pedidosH.Obtener)
		pub.POST("/descuentos/validar", descuentosH.Validar)
	}

	// Staff
	staff := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(middleware.RolAdmin, middleware.RolOperador))
	{
		staff.GET("/pedidos", pedidosH.Listar)
		staff.PUT("/pedidos/:id", pedidosH.Actualizar)
		staff.DELETE("/pedidos/:id", pedidosH.Eliminar)

		staff.POST("/ventas", ventasH.Registrar)
		staff.GET("/ventas", ventasH.Listar)
		staff.GET("/ventas/:id", ventasH.Obtener)
		staff.GET("/ventas/:id/ticket", ventasH.Ticket)
		staff.PATCH("/ventas/:id/metodo-pago", ventasH.ActualizarMetodoPago)
		staff.DELETE("/ventas/:id", ventasH.Eliminar)

		staff.POST("/descuentos/consumir", descuentosH.Consumir)
		staff.POST("/descuentos/liberar", descuentosH.Liberar)

		staff.POST("/productos", productosH.Crear)
		staff.GET("/productos/:id", productosH.Obtener)

		inv := staff.Group("/inventario")
		{
			inv.POST("/movimientos", inventarioH.RegistrarMovimiento)
			inv.POST("/movimientos/lote", inventarioH.RegistrarLote)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
			inv.DELETE("/movimientos/:id", inventarioH.EliminarMovimiento)
			inv.GET("/alertas", inventarioH.ObtenerAlertas)
			inv.GET("/reconciliacion", inventarioH.Reconciliar)
			inv.GET("/reintentos/fallidos", handler.ReintentosFallidos(dlq))
		}
	}

	// Code management (admin only)
	admin := r.Group("/v1/descuentos", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(middleware.RolAdmin))
	{
		admin.POST("", descuentosH.Crear)
		admin.GET("", descuentosH.Listar)
	}

	return r
}
