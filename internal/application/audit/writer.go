// Package audit escribe la bitácora de la aplicación.
//
// Los casos de uso llaman al Writer explícitamente después de cada mutación.
// Escribir en bitácora es best-effort: un fallo se registra en el log y nunca
// se propaga ni revierte la operación de negocio.
package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

// Campos que nunca se reportan como editados.
var ignoredFields = map[string]struct{}{
	"created_at":                {},
	"updated_at":                {},
	"deleted_at":                {},
	"password":                  {},
	"password_hash":             {},
	"remember_token":            {},
	"two_factor_secret":         {},
	"two_factor_recovery_codes": {},
	"two_factor_confirmed_at":   {},
}

const estadoField = "estado"

// Writer agrega registros a la bitácora.
type Writer struct {
	repo repository.BitacoraRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewWriter construye el escritor de bitácora.
func NewWriter(repo repository.BitacoraRepository, log zerolog.Logger) *Writer {
	return &Writer{repo: repo, log: log, now: time.Now}
}

// Created registra la creación de una entidad.
func (w *Writer) Created(ctx context.Context, actorID, entidad, entidadID, label string) {
	w.Record(ctx, actorID, entidad, entidadID, entity.BitacoraCreacion,
		fmt.Sprintf("%s creado: %s", entidad, label))
}

// Deleted registra la eliminación de una entidad.
func (w *Writer) Deleted(ctx context.Context, actorID, entidad, entidadID, label string) {
	w.Record(ctx, actorID, entidad, entidadID, entity.BitacoraEliminacion,
		fmt.Sprintf("%s eliminado: %s", entidad, label))
}

// Updated compara las instantáneas before/after y registra a lo sumo una fila:
// Cambio de Estado si cambió el estado, Edición si cambiaron otros campos, nada
// si solo cambiaron marcas de tiempo o campos sensibles.
func (w *Writer) Updated(ctx context.Context, actorID, entidad, entidadID string, before, after map[string]string) {
	tipo, detalle, ok := Describe(entidad, before, after)
	if !ok {
		return
	}
	w.Record(ctx, actorID, entidad, entidadID, tipo, detalle)
}

// Record agrega un registro arbitrario. Nunca devuelve error.
func (w *Writer) Record(ctx context.Context, actorID, entidad, entidadID, tipo, detalle string) {
	b := &entity.Bitacora{
		ID:        uuid.New().String(),
		UserID:    actorID,
		Entidad:   entidad,
		EntidadID: entidadID,
		Tipo:      tipo,
		Detalle:   detalle,
		CreatedAt: w.now(),
	}
	if err := w.repo.Append(ctx, b); err != nil {
		w.log.Warn().Err(err).
			Str("entidad", entidad).
			Str("entidad_id", entidadID).
			Str("tipo", tipo).
			Msg("no se pudo escribir en bitácora")
	}
}

// ChangedFields devuelve los nombres de campo cuyo valor difiere, ordenados y sin
// marcas de tiempo ni campos sensibles.
func ChangedFields(before, after map[string]string) []string {
	var changed []string
	seen := make(map[string]struct{}, len(after))
	for k, v := range after {
		seen[k] = struct{}{}
		if _, skip := ignoredFields[k]; skip {
			continue
		}
		if old, ok := before[k]; !ok || old != v {
			changed = append(changed, k)
		}
	}
	for k := range before {
		if _, ok := seen[k]; ok {
			continue
		}
		if _, skip := ignoredFields[k]; skip {
			continue
		}
		changed = append(changed, k)
	}
	sort.Strings(changed)
	return changed
}

// Describe calcula el tipo y el detalle de una actualización. ok es false si no
// hay nada que registrar.
func Describe(entidad string, before, after map[string]string) (tipo, detalle string, ok bool) {
	changed := ChangedFields(before, after)
	if len(changed) == 0 {
		return "", "", false
	}
	others := make([]string, 0, len(changed))
	estadoChanged := false
	for _, f := range changed {
		if f == estadoField {
			estadoChanged = true
			continue
		}
		others = append(others, f)
	}
	if estadoChanged {
		detalle = fmt.Sprintf("Estado cambiado de %q a %q", before[estadoField], after[estadoField])
		if len(others) > 0 {
			detalle += "; campos editados: " + strings.Join(others, ", ")
		}
		return entity.BitacoraCambioEstado, detalle, true
	}
	return entity.BitacoraEdicion, fmt.Sprintf("%s editado: %s", entidad, strings.Join(others, ", ")), true
}
