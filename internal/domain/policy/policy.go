// Package policy evalúa permisos por rol, municipio y estado.
//
// Todas las funciones son puras: reciben el actor de forma explícita y no
// consultan estado global. La denegación nunca es un panic ni un error
// inesperado; el llamador decide cómo responder (403/422).
package policy

import (
	"fmt"

	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/workflow"
)

// Action es una acción sobre un recurso.
type Action string

const (
	ActionViewAny           Action = "viewAny"
	ActionView              Action = "view"
	ActionCreate            Action = "create"
	ActionUpdate            Action = "update"
	ActionDelete            Action = "delete"
	ActionRestore           Action = "restore"
	ActionForceDelete       Action = "forceDelete"
	ActionEnviarRevision    Action = "enviarRevision"
	ActionRevisarFinanciera Action = "revisarFinanciera"
	ActionResolver          Action = "resolver"
	ActionArchivar          Action = "archivar"
	ActionRetry             Action = "retry"
	ActionGenerate          Action = "generate"
)

// Recursos sin instancia (para acciones de colección o recursos sin estado).
type (
	GuiaResource         struct{}
	MunicipioResource    struct{}
	UserResource         struct{}
	NotificacionResource struct{}
	ReportResource       struct{}
)

// CanPerform devuelve true si actor puede ejecutar action sobre resource.
func CanPerform(actor *entity.User, action Action, resource any) bool {
	return Authorize(actor, action, resource) == nil
}

// Authorize devuelve nil si la acción está permitida. Si no, devuelve un error
// que envuelve domain.ErrForbidden (rol o alcance) o domain.ErrInvalidTransition
// (rol y alcance permiten la acción pero el estado actual no).
func Authorize(actor *entity.User, action Action, resource any) error {
	if actor == nil || !actor.Active || !actor.Role.Valid() {
		return forbidden(action, resource)
	}
	switch r := resource.(type) {
	case *entity.Expediente:
		return authorizeExpediente(actor, action, r)
	case *entity.Guia, GuiaResource:
		return allowIf(guia(actor, action), action, resource)
	case *entity.Municipio, MunicipioResource:
		return allowIf(adminOnly(actor, action), action, resource)
	case *entity.User, UserResource:
		return allowIf(adminOnly(actor, action), action, resource)
	case *entity.NotificacionEnviada, NotificacionResource:
		return allowIf(notificacion(actor, action), action, resource)
	case ReportResource:
		return allowIf(report(actor, action), action, resource)
	default:
		return forbidden(action, resource)
	}
}

// CanExpediente es un atajo tipado de CanPerform para expedientes.
// exp puede ser nil para acciones de colección (viewAny, create).
func CanExpediente(actor *entity.User, action Action, exp *entity.Expediente) bool {
	return CanPerform(actor, action, exp)
}

func authorizeExpediente(actor *entity.User, action Action, exp *entity.Expediente) error {
	if !expedienteScope(actor, action, exp) {
		return forbidden(action, exp)
	}
	if exp == nil {
		return nil
	}
	ev, ok := transitionFor(action)
	if ok && !workflow.Can(exp.Estado, ev) {
		return fmt.Errorf("%w: %s no permitido en estado %q", domain.ErrInvalidTransition, action, exp.Estado)
	}
	if action == ActionUpdate && !editableBy(actor, exp.Estado) {
		return fmt.Errorf("%w: el expediente no es editable en estado %q", domain.ErrInvalidTransition, exp.Estado)
	}
	return nil
}

// expedienteScope evalúa rol y asignación de municipio, sin condiciones de estado
// propias de las transiciones. La vista del Jefe Financiero sí depende del estado
// porque define qué expedientes puede ver, no una transición.
func expedienteScope(actor *entity.User, action Action, exp *entity.Expediente) bool {
	role := actor.Role
	assigned := exp != nil && actor.IsAssignedTo(exp.MunicipioID)

	switch action {
	case ActionViewAny:
		return true
	case ActionView:
		if exp == nil {
			return false
		}
		switch role {
		case entity.RoleAdministrador, entity.RoleDirectorGeneral:
			return true
		case entity.RoleJefeFinanciero:
			return exp.Estado == entity.EstadoEnRevision
		case entity.RoleTecnico, entity.RoleMunicipal:
			return assigned
		}
	case ActionCreate:
		return role == entity.RoleAdministrador || role == entity.RoleTecnico
	case ActionUpdate:
		if exp == nil {
			return false
		}
		return role == entity.RoleAdministrador || (role == entity.RoleTecnico && assigned)
	case ActionEnviarRevision:
		return exp != nil && role == entity.RoleTecnico && assigned
	case ActionRevisarFinanciera:
		return exp != nil && role == entity.RoleJefeFinanciero
	case ActionResolver:
		return exp != nil && role == entity.RoleDirectorGeneral
	case ActionArchivar, ActionDelete:
		return exp != nil && role == entity.RoleAdministrador
	case ActionRestore, ActionForceDelete:
		return false
	}
	return false
}

// transitionFor devuelve el evento de workflow que exige la acción, si lo hay.
func transitionFor(action Action) (workflow.Evento, bool) {
	switch action {
	case ActionEnviarRevision:
		return workflow.EventoEnviarRevision, true
	case ActionRevisarFinanciera:
		// Completo e Incompleto salen del mismo estado; basta con uno.
		return workflow.EventoRevisionCompleta, true
	case ActionResolver:
		return workflow.EventoAprobar, true
	case ActionArchivar:
		return workflow.EventoArchivar, true
	}
	return "", false
}

// editableBy: Aprobado y Archivado no admiten ediciones para nadie; el Técnico
// además solo edita en Borrador, Rechazado o Incompleto.
func editableBy(actor *entity.User, estado entity.Estado) bool {
	if estado == entity.EstadoAprobado || estado == entity.EstadoArchivado {
		return false
	}
	if actor.Role == entity.RoleAdministrador {
		return true
	}
	return estado.Editable()
}

func guia(actor *entity.User, action Action) bool {
	switch action {
	case ActionViewAny, ActionView:
		return true
	case ActionCreate, ActionUpdate:
		return actor.Role == entity.RoleAdministrador
	}
	return false
}

func adminOnly(actor *entity.User, action Action) bool {
	switch action {
	case ActionViewAny, ActionView, ActionCreate, ActionUpdate, ActionDelete:
		return actor.Role == entity.RoleAdministrador
	}
	return false
}

func notificacion(actor *entity.User, action Action) bool {
	switch action {
	case ActionViewAny, ActionView, ActionRetry:
		return actor.Role == entity.RoleAdministrador
	}
	return false
}

func report(actor *entity.User, action Action) bool {
	if action != ActionGenerate {
		return false
	}
	return actor.Role.HasGlobalAccess()
}

func allowIf(ok bool, action Action, resource any) error {
	if ok {
		return nil
	}
	return forbidden(action, resource)
}

func forbidden(action Action, resource any) error {
	return fmt.Errorf("%w: %s sobre %s", domain.ErrForbidden, action, resourceName(resource))
}

func resourceName(resource any) string {
	switch resource.(type) {
	case *entity.Expediente:
		return entity.EntidadExpediente
	case *entity.Guia, GuiaResource:
		return entity.EntidadGuia
	case *entity.Municipio, MunicipioResource:
		return entity.EntidadMunicipio
	case *entity.User, UserResource:
		return entity.EntidadUsuario
	case *entity.NotificacionEnviada, NotificacionResource:
		return entity.EntidadNotificacion
	case ReportResource:
		return entity.EntidadReporte
	}
	return fmt.Sprintf("%T", resource)
}
