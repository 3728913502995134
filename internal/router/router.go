package router

import (
	"time"

	"modapos/internal/config"
	"modapos/internal/handler"
	"modapos/internal/model"
	"modapos/internal/middleware"
	"modapos/internal/repository"
	"modapos/internal/service"
	"modapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	inventarioRepo := repository.NewInventarioRepository(db)
	marcaRepo := repository.NewMarcaRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	catalogoSvc := service.NewCatalogoService(productoRepo, inventarioRepo, marcaRepo, categoriaRepo, rdb)
	inventarioSvc := service.NewInventarioService(inventarioRepo, productoRepo)
	ventaSvc := service.NewVentaService(
		ventaRepo, inventarioRepo, comprobanteRepo, dispatcher,
		time.Duration(cfg.VentaTimeoutSeconds)*time.Second,
	)
	reporteSvc := service.NewReporteService(reporteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(catalogoSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	todosLosRoles := middleware.RequireRole(model.RolAdmin, model.RolPromotora, model.RolDeveloper)
	soloAdmin := middleware.RequireRole(model.RolAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Ventas — every role sells; promotoras get their own price tier
		ventas := v1.Group("/ventas", todosLosRoles)
		{
			ventas.POST("", ventasH.Finalizar)
			ventas.GET("", ventasH.Listar)
			ventas.GET("/:id", ventasH.Detalle)
			ventas.POST("/:id/articulos", ventasH.AgregarArticulo)
		}

		// Productos — reads for everyone, writes admin only
		v1.GET("/productos", todosLosRoles, productosH.Listar)
		v1.GET("/productos/:id", todosLosRoles, productosH.Obtener)
		v1.GET("/productos/consulta/:codigo", todosLosRoles, productosH.ConsultaPorCodigo)
		prods := v1.Group("/productos", soloAdmin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.POST("/:id/reactivar", productosH.Reactivar)
		}

		// Inventario — reads for everyone, mutations admin only
		v1.GET("/inventario/alertas", todosLosRoles, inventarioH.Alertas)
		v1.GET("/inventario/:id", todosLosRoles, inventarioH.Obtener)
		v1.GET("/inventario/:id/movimientos", todosLosRoles, inventarioH.Movimientos)
		v1.GET("/inventario/producto/:producto_id", todosLosRoles, inventarioH.ListarPorProducto)
		inv := v1.Group("/inventario", soloAdmin)
		{
			inv.POST("", inventarioH.Crear)
			inv.PUT("/:id", inventarioH.Actualizar)
			inv.DELETE("/:id", inventarioH.Desactivar)
			inv.POST("/:id/ajustar", inventarioH.AjustarStock)
		}

		// Marcas / Categorías
		v1.GET("/marcas", todosLosRoles, catalogoH.ListarMarcas)
		v1.GET("/categorias", todosLosRoles, catalogoH.ListarCategorias)
		marcas := v1.Group("/marcas", soloAdmin)
		{
			marcas.POST("", catalogoH.CrearMarca)
			marcas.DELETE("/:id", catalogoH.DesactivarMarca)
		}
		categorias := v1.Group("/categorias", soloAdmin)
		{
			categorias.POST("", catalogoH.CrearCategoria)
			categorias.DELETE("/:id", catalogoH.DesactivarCategoria)
		}

		// Usuarios — admin only
		usuarios := v1.Group("/usuarios", soloAdmin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.POST("/:id/reactivar", usuariosH.Reactivar)
		}

		// Reportes — admin and developer
		reportes := v1.Group("/reportes", middleware.RequireRole(model.RolAdmin, model.RolDeveloper))
		{
			reportes.GET("/ventas-por-dia", reportesH.VentasPorDia)
			reportes.GET("/top-productos", reportesH.TopProductos)
			reportes.GET("/resumen", reportesH.Resumen)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
