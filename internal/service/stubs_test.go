package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"tienda/internal/dto"
	"tienda/internal/importer"
	"tienda/internal/model"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory tables shared by the repository stubs ──────────────────────────

type memDB struct {
	productos  []*model.Producto
	variantes  []*model.Variante
	categorias []*model.Categoria
	lotes      []*model.LotePrecio
	ingresos   []*model.IngresoStock
	usuarios   []*model.Usuario
}

func newMemDB() *memDB { return &memDB{} }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (m *memDB) addProducto(sku, nombre string, tec model.Tecnica, precio string, activo bool) *model.Producto {
	p := &model.Producto{
		ID:         uuid.New(),
		SKU:        sku,
		Nombre:     nombre,
		Tecnica:    tec,
		PrecioBase: dec(precio),
		Activo:     activo,
		CreatedAt:  time.Now(),
	}
	m.productos = append(m.productos, p)
	return p
}

func (m *memDB) addVariante(p *model.Producto, color, talle string, stock int, activo bool) *model.Variante {
	v := &model.Variante{ID: uuid.New(), ProductoID: p.ID, Color: color, Talle: talle, Stock: stock, Activo: activo}
	m.variantes = append(m.variantes, v)
	return v
}

func (m *memDB) producto(id uuid.UUID) *model.Producto {
	for _, p := range m.productos {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *memDB) productoPorSKU(sku string) *model.Producto {
	for _, p := range m.productos {
		if p.SKU == sku {
			return p
		}
	}
	return nil
}

// hidratar returns a copy with Categoria and the variants (sorted by color,
// talle) attached, the way the gorm preloads do.
func (m *memDB) hidratar(p *model.Producto, soloActivas bool) model.Producto {
	out := *p
	out.Variantes = nil
	for _, v := range m.variantes {
		if v.ProductoID == p.ID && (!soloActivas || v.Activo) {
			out.Variantes = append(out.Variantes, *v)
		}
	}
	sort.Slice(out.Variantes, func(i, j int) bool {
		a, b := out.Variantes[i], out.Variantes[j]
		if a.Color != b.Color {
			return a.Color < b.Color
		}
		return a.Talle < b.Talle
	})
	out.Categoria = nil
	if p.CategoriaID != nil {
		for _, c := range m.categorias {
			if c.ID == *p.CategoriaID {
				cc := *c
				out.Categoria = &cc
			}
		}
	}
	return out
}

// ── ProductoRepository ───────────────────────────────────────────────────────

type stubProductoRepo struct{ db *memDB }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	return r.CreateTx(nil, p)
}

func (r *stubProductoRepo) CreateTx(_ *gorm.DB, p *model.Producto) error {
	for _, o := range r.db.productos {
		if strings.EqualFold(o.SKU, p.SKU) {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	cp := *p
	cp.Variantes, cp.Categoria = nil, nil
	r.db.productos = append(r.db.productos, &cp)
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p := r.db.producto(id)
	if p == nil {
		return nil, gorm.ErrRecordNotFound
	}
	out := r.db.hidratar(p, false)
	return &out, nil
}

func (r *stubProductoRepo) FindBySKU(_ context.Context, sku string) (*model.Producto, error) {
	p := r.db.productoPorSKU(sku)
	if p == nil || !p.Activo {
		return nil, gorm.ErrRecordNotFound
	}
	out := r.db.hidratar(p, true)
	return &out, nil
}

func (r *stubProductoRepo) ExisteSKU(_ context.Context, sku string) (bool, error) {
	for _, p := range r.db.productos {
		if strings.EqualFold(p.SKU, strings.TrimSpace(sku)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductoRepo) FindExactoTx(_ *gorm.DB, clave string) (*model.Producto, error) {
	clave = strings.TrimSpace(clave)
	for _, p := range r.db.productos {
		if strings.EqualFold(p.SKU, clave) {
			out := *p
			return &out, nil
		}
	}
	for _, p := range r.db.productos {
		if strings.EqualFold(p.Nombre, clave) {
			out := *p
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, f dto.ProductoFilter) ([]model.Producto, error) {
	q := strings.ToLower(strings.TrimSpace(f.Q))
	var out []model.Producto
	for _, p := range r.db.productos {
		if f.SoloActivos && !p.Activo {
			continue
		}
		if f.Tecnica != "" && string(p.Tecnica) != f.Tecnica {
			continue
		}
		if q != "" {
			hay := strings.Contains(strings.ToLower(p.Nombre), q) || strings.Contains(strings.ToLower(p.SKU), q)
			if !hay && f.EnDescripcion && p.Descripcion != nil {
				hay = strings.Contains(strings.ToLower(*p.Descripcion), q)
			}
			if !hay {
				continue
			}
		}
		out = append(out, r.db.hidratar(p, true))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nombre != out[j].Nombre {
			return out[i].Nombre < out[j].Nombre
		}
		return out[i].SKU < out[j].SKU
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *stubProductoRepo) ListReferencias(_ context.Context) ([]model.Producto, error) {
	out := make([]model.Producto, 0, len(r.db.productos))
	for _, p := range r.db.productos {
		out = append(out, model.Producto{ID: p.ID, SKU: p.SKU, Nombre: p.Nombre})
	}
	return out, nil
}

func (r *stubProductoRepo) ListActivosTx(_ *gorm.DB) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.db.productos {
		if p.Activo {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *stubProductoRepo) UpdatePrecioTx(_ *gorm.DB, id uuid.UUID, precio decimal.Decimal) error {
	p := r.db.producto(id)
	if p == nil {
		return gorm.ErrRecordNotFound
	}
	p.PrecioBase = precio
	return nil
}

func (r *stubProductoRepo) UpdateCampos(_ context.Context, id uuid.UUID, campos map[string]interface{}) error {
	p := r.db.producto(id)
	if p == nil {
		return gorm.ErrRecordNotFound
	}
	for k, v := range campos {
		switch k {
		case "tecnica":
			p.Tecnica = v.(model.Tecnica)
		case "categoria_id":
			p.CategoriaID = v.(*uuid.UUID)
		}
	}
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

// ── VarianteRepository ───────────────────────────────────────────────────────

type stubVarianteRepo struct{ db *memDB }

var _ repository.VarianteRepository = (*stubVarianteRepo)(nil)

func (r *stubVarianteRepo) ListActivas(_ context.Context, productoID uuid.UUID) ([]model.Variante, error) {
	p := r.db.producto(productoID)
	if p == nil {
		return nil, nil
	}
	return r.db.hidratar(p, true).Variantes, nil
}

func (r *stubVarianteRepo) CreateTx(_ *gorm.DB, v *model.Variante) error {
	for _, o := range r.db.variantes {
		if o.ProductoID == v.ProductoID && o.Color == v.Color && o.Talle == v.Talle {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	cp := *v
	r.db.variantes = append(r.db.variantes, &cp)
	return nil
}

func (r *stubVarianteRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Variante, error) {
	for _, v := range r.db.variantes {
		if v.ID == id {
			out := *v
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVarianteRepo) PrimeraActivaTx(_ *gorm.DB, productoID uuid.UUID) (*model.Variante, error) {
	vs, _ := r.ListActivas(context.Background(), productoID)
	if len(vs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &vs[0], nil
}

func (r *stubVarianteRepo) ObtenerOCrearTx(_ *gorm.DB, productoID uuid.UUID, color, talle string) (*model.Variante, bool, error) {
	for _, v := range r.db.variantes {
		if v.ProductoID == productoID && v.Color == color && v.Talle == talle {
			out := *v
			return &out, false, nil
		}
	}
	v := &model.Variante{ID: uuid.New(), ProductoID: productoID, Color: color, Talle: talle, Activo: true}
	r.db.variantes = append(r.db.variantes, v)
	out := *v
	return &out, true, nil
}

func (r *stubVarianteRepo) SumarStockTx(_ *gorm.DB, id uuid.UUID, delta int) (int, error) {
	for _, v := range r.db.variantes {
		if v.ID == id {
			v.Stock += delta
			return v.Stock, nil
		}
	}
	return 0, gorm.ErrRecordNotFound
}

// ── LotePrecioRepository ─────────────────────────────────────────────────────

type stubLoteRepo struct{ db *memDB }

var _ repository.LotePrecioRepository = (*stubLoteRepo)(nil)

func (r *stubLoteRepo) lote(id uuid.UUID) *model.LotePrecio {
	for _, l := range r.db.lotes {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (r *stubLoteRepo) conItems(l *model.LotePrecio) *model.LotePrecio {
	out := *l
	out.Items = make([]model.ItemLotePrecio, len(l.Items))
	for i, it := range l.Items {
		if p := r.db.producto(it.ProductoID); p != nil {
			cp := *p
			it.Producto = &cp
		}
		out.Items[i] = it
	}
	return &out
}

func (r *stubLoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LotePrecio, error) {
	l := r.lote(id)
	if l == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.conItems(l), nil
}

func (r *stubLoteRepo) List(_ context.Context, limit int) ([]model.LotePrecio, error) {
	var out []model.LotePrecio
	for i := len(r.db.lotes) - 1; i >= 0 && len(out) < limit; i-- {
		l := *r.db.lotes[i]
		l.Items = nil
		out = append(out, l)
	}
	return out, nil
}

func (r *stubLoteRepo) CreateTx(_ *gorm.DB, l *model.LotePrecio) error {
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	for i := range l.Items {
		l.Items[i].ID = uuid.New()
		l.Items[i].LoteID = l.ID
	}
	cp := *l
	cp.Items = append([]model.ItemLotePrecio(nil), l.Items...)
	r.db.lotes = append(r.db.lotes, &cp)
	return nil
}

func (r *stubLoteRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.LotePrecio, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubLoteRepo) MarcarRevertidoTx(_ *gorm.DB, id uuid.UUID) error {
	l := r.lote(id)
	if l == nil {
		return gorm.ErrRecordNotFound
	}
	l.Revertido = true
	return nil
}

// ── IngresoStockRepository ───────────────────────────────────────────────────

type stubIngresoRepo struct{ db *memDB }

var _ repository.IngresoStockRepository = (*stubIngresoRepo)(nil)

func (r *stubIngresoRepo) CreateTx(_ *gorm.DB, in *model.IngresoStock) error {
	in.ID = uuid.New()
	in.CreatedAt = time.Now()
	cp := *in
	r.db.ingresos = append(r.db.ingresos, &cp)
	return nil
}

func (r *stubIngresoRepo) List(_ context.Context, limit int) ([]model.IngresoStock, error) {
	var out []model.IngresoStock
	for i := len(r.db.ingresos) - 1; i >= 0 && len(out) < limit; i-- {
		in := *r.db.ingresos[i]
		if p := r.db.producto(in.ProductoID); p != nil {
			cp := *p
			in.Producto = &cp
		}
		if in.VarianteID != nil {
			for _, v := range r.db.variantes {
				if v.ID == *in.VarianteID {
					cv := *v
					in.Variante = &cv
				}
			}
		}
		out = append(out, in)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return out, nil
}

// ── CategoriaRepository ──────────────────────────────────────────────────────

type stubCategoriaRepo struct{ db *memDB }

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

func (r *stubCategoriaRepo) Crear(_ context.Context, c *model.Categoria) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.db.categorias = append(r.db.categorias, &cp)
	return nil
}

func (r *stubCategoriaRepo) Listar(_ context.Context, q string) ([]model.Categoria, error) {
	var out []model.Categoria
	for _, c := range r.db.categorias {
		if c.Activo && strings.Contains(strings.ToLower(c.Nombre), strings.ToLower(q)) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubCategoriaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	for _, c := range r.db.categorias {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) ObtenerPorSlug(_ context.Context, slug string) (*model.Categoria, error) {
	for _, c := range r.db.categorias {
		if c.Slug == slug {
			out := *c
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) ObtenerOCrearTx(_ *gorm.DB, c *model.Categoria) error {
	if existente, err := r.ObtenerPorSlug(context.Background(), c.Slug); err == nil {
		*c = *existente
		return nil
	}
	return r.Crear(context.Background(), c)
}

func (r *stubCategoriaRepo) DB() *gorm.DB { return nil }

// ── UsuarioRepository ────────────────────────────────────────────────────────

type stubUsuarioRepo struct{ db *memDB }

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	u.ID = uuid.New()
	r.db.usuarios = append(r.db.usuarios, u)
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.db.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	for _, u := range r.db.usuarios {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Redis-backed stores ──────────────────────────────────────────────────────

type stubCandidatoStore struct {
	porUsuario map[uuid.UUID][]importer.Candidato
}

var _ repository.CandidatoStore = (*stubCandidatoStore)(nil)

func newStubCandidatoStore() *stubCandidatoStore {
	return &stubCandidatoStore{porUsuario: make(map[uuid.UUID][]importer.Candidato)}
}

func (s *stubCandidatoStore) Guardar(_ context.Context, id uuid.UUID, cs []importer.Candidato) error {
	s.porUsuario[id] = append([]importer.Candidato(nil), cs...)
	return nil
}

func (s *stubCandidatoStore) Obtener(_ context.Context, id uuid.UUID) ([]importer.Candidato, error) {
	cs, ok := s.porUsuario[id]
	if !ok || len(cs) == 0 {
		return nil, repository.ErrSinCandidatos
	}
	return cs, nil
}

func (s *stubCandidatoStore) Borrar(_ context.Context, id uuid.UUID) error {
	delete(s.porUsuario, id)
	return nil
}

type stubPrecioCache struct {
	entradas    map[string]dto.ConsultaPreciosResponse
	invalidados []string
}

var _ repository.PrecioCache = (*stubPrecioCache)(nil)

func newStubPrecioCache() *stubPrecioCache {
	return &stubPrecioCache{entradas: make(map[string]dto.ConsultaPreciosResponse)}
}

func (c *stubPrecioCache) Get(_ context.Context, sku string) (*dto.ConsultaPreciosResponse, bool) {
	r, ok := c.entradas[sku]
	if !ok {
		return nil, false
	}
	return &r, true
}

func (c *stubPrecioCache) Set(_ context.Context, sku string, r dto.ConsultaPreciosResponse) error {
	c.entradas[sku] = r
	return nil
}

func (c *stubPrecioCache) Invalidar(_ context.Context, skus ...string) error {
	for _, s := range skus {
		delete(c.entradas, s)
	}
	c.invalidados = append(c.invalidados, skus...)
	return nil
}

// stubLector returns fixed lines instead of parsing a PDF.
type stubLector struct {
	lineas []string
	err    error
}

func (l stubLector) Lineas([]byte) ([]string, error) { return l.lineas, l.err }
