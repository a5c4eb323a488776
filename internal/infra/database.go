package infra

import (
	"fmt"

	"tienda/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the
// schema up to date (AutoMigrate plus the idempotent SQL patches GORM cannot
// express).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates all tables and applies schema patches.
// Safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Producto{},
		&model.Variante{},
		&model.IngresoStock{},
		&model.LotePrecio{},
		&model.ItemLotePrecio{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot express. Each one uses IF NOT EXISTS so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// case-insensitive exact lookups by SKU / name (PDF import, stock intake)
		`CREATE INDEX IF NOT EXISTS idx_productos_lower_sku ON productos (lower(sku))`,
		`CREATE INDEX IF NOT EXISTS idx_productos_lower_nombre ON productos (lower(nombre))`,
		// recent-first batch listing
		`CREATE INDEX IF NOT EXISTS idx_lotes_precio_created_at ON lotes_precio (created_at DESC)`,
		// price floor after any recalculation
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_precio_base_no_negativo') THEN
		    ALTER TABLE productos ADD CONSTRAINT chk_productos_precio_base_no_negativo CHECK (precio_base >= 0);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_variantes_stock_no_negativo') THEN
		    ALTER TABLE variantes ADD CONSTRAINT chk_variantes_stock_no_negativo CHECK (stock >= 0);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
