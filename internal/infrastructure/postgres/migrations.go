package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver database/sql para goose
	"github.com/pressly/goose/v3"
	"github.com/tu-usuario/inventario-pos/pkg/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations aplica las migraciones pendientes embebidas en el binario.
// Usa una conexión database/sql propia (goose no habla pgx nativo) que se
// cierra al terminar.
func RunMigrations(ctx context.Context, dsn string, log *logger.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("abrir conexión para migraciones: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	log.Info().Msg("verificando migraciones pendientes")
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	log.Info().Msg("migraciones al día")
	return nil
}
