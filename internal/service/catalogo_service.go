package service

import (
	"context"
	"encoding/json"
	"time"

	"modapos/internal/dto"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// consultaCacheTTL is short: the payload carries live stock counts, so a
// stale entry may only overstate availability for a few seconds — the sale
// transaction re-validates stock anyway.
const consultaCacheTTL = 60 * time.Second

// CatalogoService owns products, brands, categories and the cart-building
// lookup (product by public code with its in-stock variants).
type CatalogoService interface {
	CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ListarProductos(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	ActualizarProducto(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	DesactivarProducto(ctx context.Context, id uuid.UUID) error
	ReactivarProducto(ctx context.Context, id uuid.UUID) error

	// ConsultaPorCodigo resolves a product by its public code together with
	// every variant that has stock, through the Redis cache.
	ConsultaPorCodigo(ctx context.Context, codigo string) (*dto.ConsultaProductoResponse, error)

	CrearMarca(ctx context.Context, req dto.CrearMarcaRequest) (*dto.MarcaResponse, error)
	ListarMarcas(ctx context.Context) ([]dto.MarcaResponse, error)
	DesactivarMarca(ctx context.Context, id uuid.UUID) error
	CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error)
	DesactivarCategoria(ctx context.Context, id uuid.UUID) error
}

type catalogoService struct {
	productoRepo   repository.ProductoRepository
	inventarioRepo repository.InventarioRepository
	marcaRepo      repository.MarcaRepository
	categoriaRepo  repository.CategoriaRepository
	rdb            *redis.Client
}

func NewCatalogoService(
	productoRepo repository.ProductoRepository,
	inventarioRepo repository.InventarioRepository,
	marcaRepo repository.MarcaRepository,
	categoriaRepo repository.CategoriaRepository,
	rdb *redis.Client,
) CatalogoService {
	return &catalogoService{
		productoRepo:   productoRepo,
		inventarioRepo: inventarioRepo,
		marcaRepo:      marcaRepo,
		categoriaRepo:  categoriaRepo,
		rdb:            rdb,
	}
}

// ── Productos ────────────────────────────────────────────────────────────────

func (s *catalogoService) CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	marcaID, err := uuid.Parse(req.MarcaID)
	if err != nil {
		return nil, err
	}
	categoriaID, err := uuid.Parse(req.CategoriaID)
	if err != nil {
		return nil, err
	}
	if _, err := s.marcaRepo.FindByID(ctx, marcaID); err != nil {
		return nil, ErrProductoNoEncontrado
	}
	if _, err := s.categoriaRepo.FindByID(ctx, categoriaID); err != nil {
		return nil, ErrProductoNoEncontrado
	}

	p := &model.Producto{
		Codigo:          req.Codigo,
		Nombre:          req.Nombre,
		Descripcion:     req.Descripcion,
		MarcaID:         marcaID,
		CategoriaID:     categoriaID,
		PrecioVentaBase: req.PrecioVentaBase,
		Activo:          true,
	}
	if err := s.productoRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.bustConsultaCache(ctx, p.Codigo)
	return s.ObtenerProducto(ctx, p.ID)
}

func (s *catalogoService) ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.productoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *catalogoService) ListarProductos(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, total, err := s.productoRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *catalogoService) ActualizarProducto(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.productoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.MarcaID != nil {
		marcaID, err := uuid.Parse(*req.MarcaID)
		if err != nil {
			return nil, err
		}
		p.MarcaID = marcaID
	}
	if req.CategoriaID != nil {
		categoriaID, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, err
		}
		p.CategoriaID = categoriaID
	}
	if req.PrecioVentaBase != nil {
		p.PrecioVentaBase = *req.PrecioVentaBase
	}
	if err := s.productoRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.bustConsultaCache(ctx, p.Codigo)
	return s.ObtenerProducto(ctx, p.ID)
}

func (s *catalogoService) DesactivarProducto(ctx context.Context, id uuid.UUID) error {
	p, err := s.productoRepo.FindByID(ctx, id)
	if err != nil {
		return ErrProductoNoEncontrado
	}
	if err := s.productoRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.bustConsultaCache(ctx, p.Codigo)
	return nil
}

func (s *catalogoService) ReactivarProducto(ctx context.Context, id uuid.UUID) error {
	return s.productoRepo.Reactivar(ctx, id)
}

// ── Consulta por código (cacheada) ──────────────────────────────────────────

func (s *catalogoService) ConsultaPorCodigo(ctx context.Context, codigo string) (*dto.ConsultaProductoResponse, error) {
	cacheKey := "consulta:producto:" + codigo

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.ConsultaProductoResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.productoRepo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}
	variantes, err := s.inventarioRepo.FindByProductoID(ctx, p.ID, true)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConsultaProductoResponse{
		Producto:  productoToResponse(p),
		Variantes: make([]dto.VarianteDisponibleResponse, 0, len(variantes)),
	}
	for _, v := range variantes {
		resp.Variantes = append(resp.Variantes, dto.VarianteDisponibleResponse{
			ID:            v.ID.String(),
			CodigoInterno: v.CodigoInterno,
			Talla:         v.Talla,
			Color:         v.Color,
			StockActual:   v.StockActual,
			Ubicacion:     v.Ubicacion,
		})
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, consultaCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("codigo", codigo).Msg("no se pudo cachear la consulta")
			}
		}
	}
	return resp, nil
}

func (s *catalogoService) bustConsultaCache(ctx context.Context, codigo string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "consulta:producto:"+codigo).Err(); err != nil {
		log.Debug().Err(err).Str("codigo", codigo).Msg("no se pudo invalidar la cache de consulta")
	}
}

// ── Marcas / Categorías ─────────────────────────────────────────────────────

func (s *catalogoService) CrearMarca(ctx context.Context, req dto.CrearMarcaRequest) (*dto.MarcaResponse, error) {
	m := &model.Marca{Nombre: req.Nombre, Activo: true}
	if err := s.marcaRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return &dto.MarcaResponse{ID: m.ID.String(), Nombre: m.Nombre, Activo: m.Activo}, nil
}

func (s *catalogoService) ListarMarcas(ctx context.Context) ([]dto.MarcaResponse, error) {
	marcas, err := s.marcaRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MarcaResponse, 0, len(marcas))
	for _, m := range marcas {
		out = append(out, dto.MarcaResponse{ID: m.ID.String(), Nombre: m.Nombre, Activo: m.Activo})
	}
	return out, nil
}

func (s *catalogoService) DesactivarMarca(ctx context.Context, id uuid.UUID) error {
	return s.marcaRepo.SoftDelete(ctx, id)
}

func (s *catalogoService) CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	c := &model.Categoria{Nombre: req.Nombre, Activo: true}
	if err := s.categoriaRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoriaResponse{ID: c.ID.String(), Nombre: c.Nombre, Activo: c.Activo}, nil
}

func (s *catalogoService) ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.categoriaRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for _, c := range categorias {
		out = append(out, dto.CategoriaResponse{ID: c.ID.String(), Nombre: c.Nombre, Activo: c.Activo})
	}
	return out, nil
}

func (s *catalogoService) DesactivarCategoria(ctx context.Context, id uuid.UUID) error {
	return s.categoriaRepo.SoftDelete(ctx, id)
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	resp := dto.ProductoResponse{
		ID:              p.ID.String(),
		Codigo:          p.Codigo,
		Nombre:          p.Nombre,
		Descripcion:     p.Descripcion,
		PrecioVentaBase: p.PrecioVentaBase,
		PrecioPromotora: p.PrecioPromotora(),
		Activo:          p.Activo,
	}
	if p.Marca != nil {
		resp.Marca = p.Marca.Nombre
	}
	if p.Categoria != nil {
		resp.Categoria = p.Categoria.Nombre
	}
	return resp
}
