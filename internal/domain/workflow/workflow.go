// Package workflow define la máquina de estados del expediente.
//
//	Borrador ──EnviarRevision──▶ En Revisión ──RevisionCompleta──▶ Completo ──Aprobar──▶ Aprobado ──┐
//	    ▲                              │                               └──Rechazar──▶ Rechazado ──┤
//	    └──────Corregir──── Incompleto ◀┘ RevisionIncompleta                                   Archivar
//	                                                                                           ▼
//	                                                                                       Archivado
//
// Cualquier par (estado, evento) fuera de la tabla es una transición inválida y
// se rechaza antes de tocar la base de datos.
package workflow

import (
	"fmt"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// Evento es un disparador de transición.
type Evento string

const (
	EventoEnviarRevision     Evento = "enviar_revision"
	EventoRevisionCompleta   Evento = "revision_completa"
	EventoRevisionIncompleta Evento = "revision_incompleta"
	EventoCorregir           Evento = "corregir"
	EventoAprobar            Evento = "aprobar"
	EventoRechazar           Evento = "rechazar"
	EventoArchivar           Evento = "archivar"
)

type edge struct {
	from entity.Estado
	ev   Evento
}

var transitions = map[edge]entity.Estado{
	{entity.EstadoBorrador, EventoEnviarRevision}:       entity.EstadoEnRevision,
	{entity.EstadoEnRevision, EventoRevisionCompleta}:   entity.EstadoCompleto,
	{entity.EstadoEnRevision, EventoRevisionIncompleta}: entity.EstadoIncompleto,
	{entity.EstadoIncompleto, EventoCorregir}:           entity.EstadoBorrador,
	{entity.EstadoCompleto, EventoAprobar}:              entity.EstadoAprobado,
	{entity.EstadoCompleto, EventoRechazar}:             entity.EstadoRechazado,
	{entity.EstadoAprobado, EventoArchivar}:             entity.EstadoArchivado,
	{entity.EstadoRechazado, EventoArchivar}:            entity.EstadoArchivado,
}

// Next devuelve el estado destino de aplicar ev sobre from.
// Si la transición no existe devuelve un error que envuelve domain.ErrInvalidTransition.
func Next(from entity.Estado, ev Evento) (entity.Estado, error) {
	to, ok := transitions[edge{from, ev}]
	if !ok {
		return from, fmt.Errorf("%w: %s desde %q", domain.ErrInvalidTransition, ev, from)
	}
	return to, nil
}

// Can indica si ev está definido para el estado from.
func Can(from entity.Estado, ev Evento) bool {
	_, ok := transitions[edge{from, ev}]
	return ok
}

// IsTerminal indica si desde el estado no sale ninguna transición.
func IsTerminal(e entity.Estado) bool {
	for k := range transitions {
		if k.from == e {
			return false
		}
	}
	return true
}

// InitialEstado es el estado con el que nace todo expediente.
func InitialEstado() entity.Estado {
	return entity.EstadoBorrador
}
