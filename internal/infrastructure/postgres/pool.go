package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Onboarding-api/pkg/config"
)

// connectTimeout acota la construcción del pool y el ping inicial: si la base
// no responde rápido, la aplicación arranca en modo solo-local sin esperarla.
const connectTimeout = 5 * time.Second

// NewPool crea el pool de conexiones PostgreSQL y lo verifica con un ping.
// El backend remoto es opcional: sin DATABASE_URL ni DB_PASSWORD se considera
// no configurado y se devuelve error de inmediato, de modo que el llamador
// continúe en modo solo-local sin esperar un timeout de red.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("PostgreSQL sin configurar: defina DATABASE_URL o DB_PASSWORD")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("interpretando el DSN: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creando el pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("verificando la conexión: %w", err)
	}
	return pool, nil
}
