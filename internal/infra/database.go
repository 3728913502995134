package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"modapos/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies any idempotent SQL patches that GORM
// cannot express (sequences, partial indexes).
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

// RunMigrations creates the schema. Also used by integration tests against a
// fresh container database.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() default on the uuid PKs needs pgcrypto on PG < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Marca{},
		&model.Categoria{},
		&model.Producto{},
		&model.Inventario{},
		&model.MovimientoStock{},
		&model.Venta{},
		&model.VentaDetalle{},
		&model.Comprobante{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Sale numbers come from a dedicated sequence so they stay gapless
		// per insert and survive concurrent registers.
		{"ventas numero sequence",
			`CREATE SEQUENCE IF NOT EXISTS ventas_numero_seq START 1`},
		// Partial index backing the retry cron scan.
		{"comprobantes retry index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_comprobantes_pending_retry') THEN
    CREATE INDEX idx_comprobantes_pending_retry
        ON comprobantes (next_retry_at)
        WHERE estado = 'error' AND next_retry_at IS NOT NULL;
  END IF;
END $$`},
		// Low stock alert scan hits this predicate constantly.
		{"inventario low stock index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_inventario_bajo_stock') THEN
    CREATE INDEX idx_inventario_bajo_stock
        ON inventario (stock_actual)
        WHERE activo = true;
  END IF;
END $$`},
		// Daily sales reports filter by date range and estado.
		{"ventas fecha index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ventas_fecha_estado') THEN
    CREATE INDEX idx_ventas_fecha_estado ON ventas (created_at, estado);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
