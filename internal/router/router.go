package router

import (
	"time"

	"tienda/internal/config"
	"tienda/internal/handler"
	"tienda/internal/importer"
	"tienda/internal/infra"
	"tienda/internal/middleware"
	"tienda/internal/model"
	"tienda/internal/repository"
	"tienda/internal/service"
	"tienda/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Media builds the image locations from config.
func Media(cfg *config.Config) service.Media {
	return service.Media{Root: cfg.MediaRoot, URL: cfg.MediaURL, Placeholder: cfg.PlaceholderImageURL}
}

// NewCatalogoService is shared by the HTTP API and the catalog email worker.
func NewCatalogoService(cfg *config.Config, db *gorm.DB, cola service.EncoladorCatalogo) service.CatalogoService {
	return service.NewCatalogoService(repository.NewProductoRepository(db), Media(cfg), service.CatalogoConfig{
		WhatsAppURL:   cfg.WhatsAppURL,
		WhatsAppLabel: cfg.WhatsAppLabel,
		InstagramURL:  cfg.InstagramURL,
		MarcaAguaPath: cfg.WatermarkImage,
	}, cola)
}

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
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(rdb, "api", cfg.RateLimit, time.Minute))
	r.MaxMultipartMemory = 32 << 20

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	varianteRepo := repository.NewVarianteRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	loteRepo := repository.NewLotePrecioRepository(db)
	ingresoRepo := repository.NewIngresoStockRepository(db)
	precioCache := repository.NewPrecioCache(rdb)
	candidatos := repository.NewCandidatoStore(rdb, time.Duration(cfg.ImportCandidatesTTLMinutes)*time.Minute)

	// ── Services ─────────────────────────────────────────────────────────────
	media := Media(cfg)
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, varianteRepo, categoriaRepo, precioCache, media)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	preciosSvc := service.NewPreciosService(productoRepo, loteRepo, precioCache)
	importacionSvc := service.NewImportacionService(
		productoRepo, varianteRepo, candidatos, precioCache,
		infra.NewPDFTexto(),
		importer.NuevoExtractor(cfg.HeaderMarkers()),
		cfg.ImportMatchThreshold,
	)
	stockSvc := service.NewStockService(productoRepo, varianteRepo, ingresoRepo, precioCache)
	var cola service.EncoladorCatalogo
	if dispatcher != nil {
		cola = dispatcher
	}
	catalogoSvc := NewCatalogoService(cfg, db, cola)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoSvc)
	preciosH := handler.NewPreciosHandler(preciosSvc)
	importacionH := handler.NewImportacionHandler(importacionSvc)
	stockH := handler.NewStockHandler(stockSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, worker.QueueCatalogo, worker.DLQPrefix+worker.QueueCatalogo))
	if cfg.MediaRoot != "" {
		r.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(rdb), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check, no auth
	r.GET("/v1/precio/:sku", consultaH.GetPrecioPorSKU)

	// Protected routes
	todos := middleware.RequireRole(model.RolAdministrador, model.RolOperador)
	soloAdmin := middleware.RequireRole(model.RolAdministrador)
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		precios := v1.Group("/precios", soloAdmin)
		{
			precios.POST("/masivo", preciosH.Aplicar)
			precios.GET("/lotes", preciosH.ListarLotes)
			precios.GET("/lotes/:id", preciosH.ObtenerLote)
			precios.POST("/lotes/:id/revertir", preciosH.Revertir)
		}

		imp := v1.Group("/importacion", soloAdmin)
		{
			imp.POST("/pdf", importacionH.Previsualizar)
			imp.POST("/pdf/confirmar", importacionH.Confirmar)
		}

		prods := v1.Group("/productos", todos)
		{
			prods.POST("", productosH.Crear)
			prods.GET("", productosH.Buscar)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.GET("/:id/variantes", productosH.ListarVariantes)
			prods.PATCH("/:id/tecnica", productosH.ActualizarTecnica)
			prods.PATCH("/:id/categoria", productosH.ActualizarCategoria)
		}

		categorias := v1.Group("/categorias", todos)
		{
			categorias.GET("", categoriasH.Listar)
			categorias.POST("", categoriasH.Crear)
		}

		stock := v1.Group("/stock", todos)
		{
			stock.POST("/ingresos", stockH.Registrar)
			stock.POST("/ingresos/lote", stockH.RegistrarLote)
			stock.GET("/bitacora", stockH.Bitacora)
			stock.GET("/bitacora.xlsx", stockH.ExportarBitacora)
		}

		catalogo := v1.Group("/catalogo", todos)
		{
			catalogo.GET("/pdf", catalogoH.PDF)
			catalogo.POST("/enviar", catalogoH.Enviar)
		}
	}

	montarSwagger(r, cfg.Env)

	return r
}

// montarSwagger serves the Swagger UI outside production.
func montarSwagger(r *gin.Engine, env string) {
	if env == "production" {
		return
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
