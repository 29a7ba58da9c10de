package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// changeChannel es el canal de pg_notify por el que se anuncian los cambios.
const changeChannel = "onboarding_changes"

// schema define la tabla única de documentos. Los índices parciales imponen
// desde la base la unicidad de correo de usuarios y de nombre de roles,
// ambos sin distinguir mayúsculas.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT        NOT NULL,
    id         UUID        NOT NULL,
    doc        JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (collection, id)
);
CREATE UNIQUE INDEX IF NOT EXISTS documents_users_email_key
    ON documents (lower(doc->>'email')) WHERE collection = 'users';
CREATE UNIQUE INDEX IF NOT EXISTS documents_roles_name_key
    ON documents (lower(doc->>'name')) WHERE collection = 'roles';
CREATE INDEX IF NOT EXISTS documents_collection_idx
    ON documents (collection, created_at);
`

// DocStore implementa el puerto de documentos sobre una tabla JSONB única.
// Cada escritura emite pg_notify para que los demás procesos refresquen.
type DocStore struct {
	pool     *pgxpool.Pool
	log      zerolog.Logger
	listener *listener
}

var _ store.Store = (*DocStore)(nil)

// NewDocStore construye el almacén remoto sobre el pool dado.
func NewDocStore(pool *pgxpool.Pool, log zerolog.Logger) *DocStore {
	l := log.With().Str("componente", "docstore").Logger()
	return &DocStore{
		pool:     pool,
		log:      l,
		listener: newListener(pool, l),
	}
}

// EnsureSchema crea la tabla de documentos y sus índices si no existen.
func (d *DocStore) EnsureSchema(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("inicializando esquema de documentos: %w", err)
	}
	return nil
}

// Close detiene el listener de notificaciones.
func (d *DocStore) Close() {
	d.listener.close()
}

// List devuelve todos los documentos de la colección en orden de inserción.
func (d *DocStore) List(ctx context.Context, collection string) (store.Snapshot, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT doc || jsonb_build_object('id', id::text)
		   FROM documents
		  WHERE collection = $1
		  ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("listando %s: %w", collection, err)
	}
	defer rows.Close()

	snap := store.Snapshot{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("leyendo fila de %s: %w", collection, err)
		}
		snap = append(snap, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recorriendo %s: %w", collection, err)
	}
	return snap, nil
}

// Get devuelve un documento por id.
func (d *DocStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var raw []byte
	err := d.pool.QueryRow(ctx,
		`SELECT doc || jsonb_build_object('id', id::text)
		   FROM documents
		  WHERE collection = $1 AND id::text = $2`, collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFound(collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("consultando %s %q: %w", collection, id, err)
	}
	return raw, nil
}

// Create inserta el documento con un UUID nuevo y devuelve la versión almacenada.
func (d *DocStore) Create(ctx context.Context, collection string, doc map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializando documento de %s: %w", collection, err)
	}

	var raw []byte
	err = d.pool.QueryRow(ctx,
		`INSERT INTO documents (collection, id, doc)
		 VALUES ($1, $2, $3::jsonb)
		 RETURNING doc || jsonb_build_object('id', id::text)`,
		collection, uuid.NewString(), string(body)).Scan(&raw)
	if err != nil {
		if conflict := conflictError(err, collection); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insertando en %s: %w", collection, err)
	}
	d.notify(ctx, collection)
	return raw, nil
}

// Update mezcla el parche sobre el documento (concatenación JSONB de primer nivel).
func (d *DocStore) Update(ctx context.Context, collection, id string, partial map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(partial)
	if err != nil {
		return nil, fmt.Errorf("serializando parche de %s: %w", collection, err)
	}

	var raw []byte
	err = d.pool.QueryRow(ctx,
		`UPDATE documents
		    SET doc = doc || $3::jsonb, updated_at = now()
		  WHERE collection = $1 AND id::text = $2
		 RETURNING doc || jsonb_build_object('id', id::text)`,
		collection, id, string(body)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFound(collection, id)
	}
	if err != nil {
		if conflict := conflictError(err, collection); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("actualizando %s %q: %w", collection, id, err)
	}
	d.notify(ctx, collection)
	return raw, nil
}

// Delete elimina el documento; un id inexistente no es error.
func (d *DocStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := d.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id::text = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("eliminando %s %q: %w", collection, id, err)
	}
	if tag.RowsAffected() > 0 {
		d.notify(ctx, collection)
	}
	return nil
}

// Query devuelve los documentos cuyo campo de primer nivel coincide con value.
func (d *DocStore) Query(ctx context.Context, collection, field, value string) (store.Snapshot, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT doc || jsonb_build_object('id', id::text)
		   FROM documents
		  WHERE collection = $1 AND doc->>$2 = $3
		  ORDER BY created_at, id`, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("consultando %s por %s: %w", collection, field, err)
	}
	defer rows.Close()

	snap := store.Snapshot{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("leyendo fila de %s: %w", collection, err)
		}
		snap = append(snap, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recorriendo %s: %w", collection, err)
	}
	return snap, nil
}

// Subscribe arranca (una sola vez) el LISTEN compartido y registra el
// observador. El snapshot inicial se entrega de inmediato; los cambios llegan
// cuando cualquier proceso emite pg_notify sobre la colección.
func (d *DocStore) Subscribe(ctx context.Context, collection string, fn func(store.Snapshot)) (func(), error) {
	if err := d.listener.ensureStarted(ctx, d.fetch); err != nil {
		return nil, err
	}
	cancel := d.listener.add(collection, fn)

	snap, err := d.List(ctx, collection)
	if err != nil {
		cancel()
		return nil, err
	}
	go fn(snap)
	return cancel, nil
}

// fetch es el recargador que usa el listener al recibir una notificación.
func (d *DocStore) fetch(ctx context.Context, collection string) (store.Snapshot, error) {
	return d.List(ctx, collection)
}

// notify anuncia el cambio de la colección a los demás procesos. Es de mejor
// esfuerzo: un fallo se registra y no interrumpe la escritura ya confirmada.
func (d *DocStore) notify(ctx context.Context, collection string) {
	payload, err := json.Marshal(map[string]string{"collection": collection})
	if err != nil {
		return
	}
	if _, err := d.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, changeChannel, string(payload)); err != nil {
		d.log.Warn().Err(err).Str("coleccion", collection).Msg("no se pudo emitir la notificación de cambio")
	}
}
