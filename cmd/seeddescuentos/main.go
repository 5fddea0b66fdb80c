// cmd/seeddescuentos/main.go: crea/actualiza los códigos de descuento de demo.
// Uso: go run ./cmd/seeddescuentos
package main

import (
	"context"
	"fmt"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/config"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

var demo = []model.CodigoDescuento{
	{Codigo: "TECNICO5", Porcentaje: decimal.NewFromInt(5), UsosMaximos: 100, Activo: true},
	{Codigo: "BIENVENIDA10", Porcentaje: decimal.NewFromInt(10), UsosMaximos: 50, Activo: true},
	// exhausted on purpose, for trying the 409 path
	{Codigo: "EXPIRED", Porcentaje: decimal.NewFromInt(15), UsosMaximos: 5, UsosActuales: 5, Activo: true},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	for i := range demo {
		c := demo[i]
		err := db.WithContext(context.Background()).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "codigo"}},
			DoUpdates: clause.AssignmentColumns([]string{"porcentaje", "usos_maximos", "usos_actuales", "activo", "updated_at"}),
		}).Create(&c).Error
		if err != nil {
			log.Fatal().Err(err).Str("codigo", c.Codigo).Msg("upsert error")
		}
		fmt.Printf("✅ Código '%s' (%s%%, %d/%d usos)\n", c.Codigo, c.Porcentaje.String(), c.UsosActuales, c.UsosMaximos)
	}
}
