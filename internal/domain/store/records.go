package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Records expone una colección del Store con tipos concretos, encargándose de
// la conversión entre la entidad y el documento JSON almacenado.
type Records[T any] struct {
	store      Store
	collection string
}

// NewRecords construye la vista tipada de una colección.
func NewRecords[T any](s Store, collection string) Records[T] {
	return Records[T]{store: s, collection: collection}
}

// Collection devuelve el nombre de colección subyacente.
func (r Records[T]) Collection() string { return r.collection }

// List devuelve todos los registros decodificados de la colección.
func (r Records[T]) List(ctx context.Context) ([]T, error) {
	snap, err := r.store.List(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](snap), nil
}

// Get devuelve el registro con el id indicado.
func (r Records[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	raw, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decodificando %s %q: %w", r.collection, id, err)
	}
	return out, nil
}

// Create inserta la entidad como documento nuevo y devuelve la versión almacenada.
func (r Records[T]) Create(ctx context.Context, v T) (T, error) {
	var out T
	doc, err := ToDoc(v)
	if err != nil {
		return out, err
	}
	raw, err := r.store.Create(ctx, r.collection, doc)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decodificando %s creado: %w", r.collection, err)
	}
	return out, nil
}

// Update aplica un parche parcial y devuelve el registro resultante.
func (r Records[T]) Update(ctx context.Context, id string, partial map[string]any) (T, error) {
	var out T
	raw, err := r.store.Update(ctx, r.collection, id, partial)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decodificando %s %q: %w", r.collection, id, err)
	}
	return out, nil
}

// Delete elimina el registro indicado.
func (r Records[T]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}

// Query devuelve los registros cuyo campo de primer nivel coincide con value.
func (r Records[T]) Query(ctx context.Context, field, value string) ([]T, error) {
	snap, err := r.store.Query(ctx, r.collection, field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](snap), nil
}

// Subscribe observa la colección con entregas ya decodificadas.
func (r Records[T]) Subscribe(ctx context.Context, fn func([]T)) (func(), error) {
	return r.store.Subscribe(ctx, r.collection, func(snap Snapshot) {
		fn(decodeAll[T](snap))
	})
}

// ToDoc convierte una entidad en el mapa de documento que espera el Store,
// descartando el id (lo asigna el almacén) y las marcas de tiempo cero.
func ToDoc(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializando documento: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("normalizando documento: %w", err)
	}
	delete(doc, "id")
	zero := time.Time{}.Format(time.RFC3339Nano)
	for k, val := range doc {
		if s, ok := val.(string); ok && s == zero {
			delete(doc, k)
		}
	}
	return doc, nil
}

// decodeAll decodifica cada documento del snapshot, descartando los que no
// puedan interpretarse como T para que un registro dañado no inutilice la lista.
func decodeAll[T any](snap Snapshot) []T {
	out := make([]T, 0, len(snap))
	for _, raw := range snap {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
