package service

import (
	"context"
	"strings"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/metrics"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DescuentoService tracks how many times each shared discount code was used.
type DescuentoService interface {
	// Validar is a pure read: NOT_FOUND when absent or inactive,
	// LIMIT_REACHED when exhausted.
	Validar(ctx context.Context, codigo string) (*dto.CodigoSnapshot, error)
	// Consumir validates and then takes one use with a conditional update.
	// Losing the race after a successful validation is CONCURRENT_EXHAUSTION.
	Consumir(ctx context.Context, codigo string) (*dto.CodigoSnapshot, error)
	// Liberar gives one use back. Unknown codes return (nil, nil); a counter
	// already at zero is left unchanged. Only store failures are errors.
	Liberar(ctx context.Context, codigo string) (*dto.CodigoSnapshot, error)

	Crear(ctx context.Context, req dto.CrearCodigoRequest) (*dto.CodigoSnapshot, error)
	Listar(ctx context.Context) ([]dto.CodigoSnapshot, error)
}

type descuentoService struct {
	repo    repository.CodigoDescuentoRepository
	metrics *metrics.Metrics
}

func NewDescuentoService(repo repository.CodigoDescuentoRepository, m *metrics.Metrics) DescuentoService {
	return &descuentoService{repo: repo, metrics: m}
}

func (s *descuentoService) Validar(ctx context.Context, codigo string) (*dto.CodigoSnapshot, error) {
	c, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if !c.Activo {
		return nil, apperror.NotFound("código de descuento no encontrado")
	}
	if c.UsosActuales >= c.UsosMaximos {
		return nil, apperror.Newf(apperror.CodeLimitReached, "el código %s alcanzó su límite de usos", c.Codigo)
	}
	return snapshot(c), nil
}

func (s *descuentoService) Consumir(ctx context.Context, codigo string) (*dto.CodigoSnapshot, error) {
	snap, err := s.consumir(ctx, codigo)
	s.metrics.Descuento("consumir", err)
	return snap, err
}

func (s *descuentoService) consumir(ctx context.Context, codigo string) (*dto.CodigoSnapshot, error) {
	if _, err := s.Validar(ctx, codigo); err != nil {
		return nil, err
	}

	n, err := s.repo.IncrementarUso(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		log.Info().Str("codigo", strings.ToUpper(codigo)).Msg("descuento: último uso tomado por otra transacción")
		return nil, apperror.Newf(apperror.CodeConcurrentExhaustion,
			"el código %s se agotó mientras se aplicaba", strings.ToUpper(codigo))
	}

	c, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, err
	}
	return snapshot(c), nil
}

func (s *descuentoService) Liberar(ctx context.Context, codigo string) (*dto.CodigoSnapshot, error) {
	snap, err := s.liberar(ctx, codigo)
	s.metrics.Descuento("liberar", err)
	return snap, err
}

func (s *descuentoService) liberar(ctx context.Context, codigo string) (*dto.CodigoSnapshot, error) {
	if _, err := s.repo.DecrementarUso(ctx, codigo); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByCodigo(ctx, codigo)
	if apperror.Is(err, apperror.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot(c), nil
}

func (s *descuentoService) Crear(ctx context.Context, req dto.CrearCodigoRequest) (*dto.CodigoSnapshot, error) {
	codigo := strings.ToUpper(strings.TrimSpace(req.Codigo))
	if codigo == "" {
		return nil, apperror.Validation("el código no puede estar vacío")
	}
	if !req.Porcentaje.GreaterThan(decimal.Zero) || req.Porcentaje.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperror.Validation("el porcentaje debe estar entre 0 (exclusivo) y 100")
	}
	if req.UsosMaximos < 0 {
		return nil, apperror.Validation("usos_maximos no puede ser negativo")
	}

	c := &model.CodigoDescuento{
		Codigo:      codigo,
		Porcentaje:  req.Porcentaje,
		UsosMaximos: req.UsosMaximos,
		Activo:      req.Activo == nil || *req.Activo,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Str("codigo", c.Codigo).Int("usos_maximos", c.UsosMaximos).Msg("descuento: código creado")
	return snapshot(c), nil
}

func (s *descuentoService) Listar(ctx context.Context) ([]dto.CodigoSnapshot, error) {
	codigos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CodigoSnapshot, 0, len(codigos))
	for i := range codigos {
		out = append(out, *snapshot(&codigos[i]))
	}
	return out, nil
}

func snapshot(c *model.CodigoDescuento) *dto.CodigoSnapshot {
	return &dto.CodigoSnapshot{
		Codigo:        c.Codigo,
		Porcentaje:    c.Porcentaje,
		UsosMaximos:   c.UsosMaximos,
		UsosActuales:  c.UsosActuales,
		UsosRestantes: c.UsosRestantes(),
		Activo:        c.Activo,
	}
}
