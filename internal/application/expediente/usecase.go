// Package expediente implementa los casos de uso del ciclo de vida de un expediente.
//
// Cada operación recibe el actor explícitamente, autoriza con policy, valida la
// transición con workflow, persiste y después escribe bitácora y notificaciones.
// Bitácora y notificaciones nunca hacen fallar la operación.
package expediente

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/application/notification"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/policy"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
	"github.com/jhoicas/Expedientes-api/internal/domain/workflow"
)

const dateLayout = "2006-01-02"

// UseCase casos de uso de expedientes.
type UseCase struct {
	repo          repository.ExpedienteRepository
	revisionRepo  repository.RevisionFinancieraRepository
	municipioRepo repository.MunicipioRepository
	txRunner      TxRunner
	audit         *audit.Writer
	notifier      Notifier
	now           func() time.Time
}

// NewUseCase construye el caso de uso con sus puertos.
func NewUseCase(
	repo repository.ExpedienteRepository,
	revisionRepo repository.RevisionFinancieraRepository,
	municipioRepo repository.MunicipioRepository,
	txRunner TxRunner,
	auditWriter *audit.Writer,
	notifier Notifier,
) *UseCase {
	return &UseCase{
		repo:          repo,
		revisionRepo:  revisionRepo,
		municipioRepo: municipioRepo,
		txRunner:      txRunner,
		audit:         auditWriter,
		notifier:      notifier,
		now:           time.Now,
	}
}

// Create registra un expediente en estado inicial (Borrador).
// Administrador y Técnico pasan por la misma regla; el Técnico además debe tener
// asignado el municipio destino.
func (uc *UseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateExpedienteRequest) (*dto.ExpedienteResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, (*entity.Expediente)(nil)); err != nil {
		return nil, err
	}
	if !actor.Role.HasGlobalAccess() && !actor.IsAssignedTo(in.MunicipioID) {
		return nil, fmt.Errorf("%w: municipio no asignado", domain.ErrForbidden)
	}
	codigo := strings.TrimSpace(in.Codigo)
	if codigo == "" || strings.TrimSpace(in.NombreProyecto) == "" {
		return nil, fmt.Errorf("%w: código y nombre del proyecto son requeridos", domain.ErrInvalidInput)
	}
	fecha, err := time.Parse(dateLayout, in.FechaRecepcion)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha_recepcion debe tener formato AAAA-MM-DD", domain.ErrInvalidInput)
	}
	if in.MontoContratado.IsNegative() {
		return nil, fmt.Errorf("%w: monto_contratado no puede ser negativo", domain.ErrInvalidInput)
	}
	if err := uc.requireMunicipio(ctx, in.MunicipioID); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCodigo(ctx, codigo)
	if err != nil {
		return nil, fmt.Errorf("verificar código: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un expediente con código %s", domain.ErrDuplicate, codigo)
	}

	responsable := in.ResponsableID
	if responsable == "" && actor.Role == entity.RoleTecnico {
		responsable = actor.ID
	}
	now := uc.now()
	exp := &entity.Expediente{
		ID:              uuid.New().String(),
		Codigo:          codigo,
		NombreProyecto:  strings.TrimSpace(in.NombreProyecto),
		MunicipioID:     in.MunicipioID,
		ResponsableID:   responsable,
		TipoSolicitud:   in.TipoSolicitud,
		FechaRecepcion:  fecha,
		Estado:          workflow.InitialEstado(),
		MontoContratado: in.MontoContratado,
		Adjudicatario:   in.Adjudicatario,
		Etiquetas:       cleanTags(in.Etiquetas),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("crear expediente: %w", err)
	}
	uc.audit.Created(ctx, actor.ID, entity.EntidadExpediente, exp.ID, exp.Codigo)
	return toExpedienteResponse(exp), nil
}

// Get devuelve un expediente si el actor puede verlo.
func (uc *UseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.ExpedienteResponse, error) {
	exp, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionView, exp); err != nil {
		return nil, err
	}
	return toExpedienteResponse(exp), nil
}

// List devuelve los expedientes visibles para el actor.
func (uc *UseCase) List(ctx context.Context, actor *entity.User, in dto.ListExpedientesRequest) (*dto.ExpedienteListResponse, error) {
	if err := policy.Authorize(actor, policy.ActionViewAny, (*entity.Expediente)(nil)); err != nil {
		return nil, err
	}
	in.DefaultPage()
	f := repository.ExpedienteFilter{Search: in.Search, Limit: in.Limit, Offset: in.Offset}
	if in.Estado != "" {
		st, err := entity.ParseEstado(in.Estado)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		f.Estado = st
	}
	if !actor.Role.HasGlobalAccess() {
		f.MunicipioIDs = append([]string{}, actor.MunicipioIDs...)
	}
	if actor.Role == entity.RoleJefeFinanciero {
		// Solo ve expedientes en revisión financiera.
		if f.Estado != 0 && f.Estado != entity.EstadoEnRevision {
			return &dto.ExpedienteListResponse{Items: []dto.ExpedienteResponse{}, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
		}
		f.Estado = entity.EstadoEnRevision
	}
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar expedientes: %w", err)
	}
	total, err := uc.repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("contar expedientes: %w", err)
	}
	out := &dto.ExpedienteListResponse{
		Items: make([]dto.ExpedienteResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, e := range list {
		out.Items = append(out.Items, *toExpedienteResponse(e))
	}
	return out, nil
}

// Update edita los campos generales. No modifica el estado, salvo que un Técnico
// corrija un expediente Incompleto: en ese caso vuelve a Borrador.
func (uc *UseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateExpedienteRequest) (*dto.ExpedienteResponse, error) {
	exp, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, exp); err != nil {
		return nil, err
	}
	before := exp.AuditFields()

	if in.NombreProyecto != nil {
		if strings.TrimSpace(*in.NombreProyecto) == "" {
			return nil, fmt.Errorf("%w: nombre_proyecto vacío", domain.ErrInvalidInput)
		}
		exp.NombreProyecto = strings.TrimSpace(*in.NombreProyecto)
	}
	if in.ResponsableID != nil {
		exp.ResponsableID = *in.ResponsableID
	}
	if in.TipoSolicitud != nil {
		exp.TipoSolicitud = *in.TipoSolicitud
	}
	if in.FechaRecepcion != nil {
		fecha, err := time.Parse(dateLayout, *in.FechaRecepcion)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha_recepcion debe tener formato AAAA-MM-DD", domain.ErrInvalidInput)
		}
		exp.FechaRecepcion = fecha
	}
	if in.MontoContratado != nil {
		if in.MontoContratado.IsNegative() {
			return nil, fmt.Errorf("%w: monto_contratado no puede ser negativo", domain.ErrInvalidInput)
		}
		exp.MontoContratado = *in.MontoContratado
	}
	if in.Adjudicatario != nil {
		exp.Adjudicatario = *in.Adjudicatario
	}
	if in.Etiquetas != nil {
		exp.Etiquetas = cleanTags(in.Etiquetas)
	}
	if actor.Role == entity.RoleTecnico && exp.Estado == entity.EstadoIncompleto {
		next, err := workflow.Next(exp.Estado, workflow.EventoCorregir)
		if err != nil {
			return nil, err
		}
		exp.Estado = next
	}
	exp.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, exp); err != nil {
		return nil, fmt.Errorf("actualizar expediente: %w", err)
	}
	uc.audit.Updated(ctx, actor.ID, entity.EntidadExpediente, exp.ID, before, exp.AuditFields())
	return toExpedienteResponse(exp), nil
}

// EnviarRevision pasa un expediente Borrador a En Revisión y avisa al área financiera.
func (uc *UseCase) EnviarRevision(ctx context.Context, actor *entity.User, id string) (*dto.ExpedienteResponse, error) {
	exp, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionEnviarRevision, exp); err != nil {
		return nil, err
	}
	next, err := workflow.Next(exp.Estado, workflow.EventoEnviarRevision)
	if err != nil {
		return nil, err
	}
	before := exp.AuditFields()
	now := uc.now()
	exp.Estado = next
	exp.FechaRecibidoFinanciero = &now
	exp.UpdatedAt = now
	if err := uc.repo.Update(ctx, exp); err != nil {
		return nil, fmt.Errorf("enviar a revisión: %w", err)
	}
	uc.audit.Updated(ctx, actor.ID, entity.EntidadExpediente, exp.ID, before, exp.AuditFields())
	uc.notifier.Notify(ctx, notification.Event{Tipo: entity.NotifEnviadoRevision, Expediente: exp, Actor: actor})
	return toExpedienteResponse(exp), nil
}

// RevisarFinanciera registra la revisión del Jefe Financiero. El resultado
// Incompleto, o la acción SolicitarCorrecciones, deja el expediente Incompleto;
// si no, pasa a Completo. La acción Aprobar/Rechazar queda como recomendación.
func (uc *UseCase) RevisarFinanciera(ctx context.Context, actor *entity.User, id string, in dto.RevisionFinancieraRequest) (*dto.RevisionFinancieraResponse, error) {
	exp, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionRevisarFinanciera, exp); err != nil {
		return nil, err
	}
	resultado, err := reviewOutcome(in)
	if err != nil {
		return nil, err
	}
	ev := workflow.EventoRevisionCompleta
	if resultado == entity.ResultadoIncompleto {
		ev = workflow.EventoRevisionIncompleta
	}
	next, err := workflow.Next(exp.Estado, ev)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	since := exp.FechaRecepcion
	if exp.FechaRecibidoFinanciero != nil {
		since = *exp.FechaRecibidoFinanciero
	}
	rev := &entity.RevisionFinanciera{
		ID:                uuid.New().String(),
		ExpedienteID:      exp.ID,
		RevisorID:         actor.ID,
		Resultado:         resultado,
		Accion:            in.Accion,
		Comentarios:       strings.TrimSpace(in.Comentarios),
		DiasTranscurridos: entity.DaysBetween(since, now),
		CreatedAt:         now,
	}
	if in.MontoAprobado != nil {
		rev.MontoAprobado = decimal.NewNullDecimal(*in.MontoAprobado)
	}
	before := exp.AuditFields()
	exp.Estado = next
	exp.RevisorID = actor.ID
	exp.FechaRevisado = &now
	exp.ComentariosFinancieros = rev.Comentarios
	if rev.MontoAprobado.Valid {
		exp.MontoAprobado = rev.MontoAprobado
	}
	if next == entity.EstadoIncompleto {
		exp.FechaComplemento = &now
	}
	exp.UpdatedAt = now

	// La revisión y el cambio de estado se confirman juntos: sin expediente
	// actualizado no queda revisión huérfana.
	err = uc.txRunner.RunReview(ctx, func(expRepo repository.ExpedienteRepository, revisionRepo repository.RevisionFinancieraRepository) error {
		if err := revisionRepo.Create(ctx, rev); err != nil {
			return fmt.Errorf("registrar revisión: %w", err)
		}
		if err := expRepo.Update(ctx, exp); err != nil {
			return fmt.Errorf("actualizar expediente revisado: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actor.ID, entity.EntidadExpediente, exp.ID, entity.BitacoraRevision,
		fmt.Sprintf("Revisión financiera: %s%s (%d días)", resultado, accionSuffix(in.Accion), rev.DiasTranscurridos))
	uc.audit.Updated(ctx, actor.ID, entity.EntidadExpediente, exp.ID, before, exp.AuditFields())

	tipo := entity.NotifRevisionCompleta
	if next == entity.EstadoIncompleto {
		tipo = entity.NotifRevisionIncompleta
	}
	uc.notifier.Notify(ctx, notification.Event{Tipo: tipo, Expediente: exp, Actor: actor, Comentarios: rev.Comentarios})
	return toRevisionResponse(rev), nil
}

// Resolver aprueba o rechaza un expediente Completo (Director General).
func (uc *UseCase) Resolver(ctx context.Context, actor *entity.User, id string, in dto.ResolverRequest) (*dto.ExpedienteResponse, error) {
	exp, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionResolver, exp); err != nil {
		return nil, err
	}
	var ev workflow.Evento
	tipo := ""
	switch in.Decision {
	case entity.AccionAprobar:
		ev, tipo = workflow.EventoAprobar, entity.NotifExpedienteAprobado
	case entity.AccionRechazar:
		ev, tipo = workflow.EventoRechazar, entity.NotifExpedienteRechazado
	default:
		return nil, fmt.Errorf("%w: decisión debe ser Aprobar o Rechazar", domain.ErrInvalidInput)
	}
	next, err := workflow.Next(exp.Estado, ev)
	if err != nil {
		return nil, err
	}
	before := exp.AuditFields()
	now := uc.now()
	exp.Estado = next
	if next == entity.EstadoAprobado {
		exp.FechaAprobacion = &now
	}
	exp.UpdatedAt = now
	if err := uc.repo.Update(ctx, exp); err != nil {
		return nil, fmt.Errorf("resolver expediente: %w", err)
	}
	uc.audit.Updated(ctx, actor.ID, entity.EntidadExpediente, exp.ID, before, exp.AuditFields())
	uc.notifier.Notify(ctx, notification.Event{Tipo: tipo, Expediente: exp, Actor: actor, Comentarios: strings.TrimSpace(in.Comentarios)})
	return toExpedienteResponse(exp), nil
}

// Archivar cierra un expediente Aprobado o Rechazado (Administrador).
func (uc *UseCase) Archivar(ctx context.Context, actor *entity.User, id string) (*dto.ExpedienteResponse, error) {
	exp, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionArchivar, exp); err != nil {
		return nil, err
	}
	next, err := workflow.Next(exp.Estado, workflow.EventoArchivar)
	if err != nil {
		return nil, err
	}
	before := exp.AuditFields()
	exp.Estado = next
	exp.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, exp); err != nil {
		return nil, fmt.Errorf("archivar expediente: %w", err)
	}
	uc.audit.Updated(ctx, actor.ID, entity.EntidadExpediente, exp.ID, before, exp.AuditFields())
	return toExpedienteResponse(exp), nil
}

// Delete elimina lógicamente un expediente (Administrador).
func (uc *UseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	exp, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, exp); err != nil {
		return err
	}
	if err := uc.repo.SoftDelete(ctx, exp.ID); err != nil {
		return fmt.Errorf("eliminar expediente: %w", err)
	}
	uc.audit.Deleted(ctx, actor.ID, entity.EntidadExpediente, exp.ID, exp.Codigo)
	return nil
}

// ListRevisiones devuelve el historial de revisiones financieras de un expediente.
func (uc *UseCase) ListRevisiones(ctx context.Context, actor *entity.User, id string) ([]dto.RevisionFinancieraResponse, error) {
	exp, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionView, exp); err != nil {
		return nil, err
	}
	list, err := uc.revisionRepo.ListByExpediente(ctx, exp.ID)
	if err != nil {
		return nil, fmt.Errorf("listar revisiones: %w", err)
	}
	out := make([]dto.RevisionFinancieraResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toRevisionResponse(r))
	}
	return out, nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*entity.Expediente, error) {
	exp, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener expediente: %w", err)
	}
	if exp == nil {
		return nil, domain.ErrNotFound
	}
	return exp, nil
}

func (uc *UseCase) requireMunicipio(ctx context.Context, id string) error {
	m, err := uc.municipioRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("obtener municipio: %w", err)
	}
	if m == nil || !m.Active {
		return fmt.Errorf("%w: municipio inexistente o inactivo", domain.ErrInvalidInput)
	}
	return nil
}

// reviewOutcome valida la combinación resultado/acción y devuelve el resultado efectivo.
func reviewOutcome(in dto.RevisionFinancieraRequest) (string, error) {
	switch in.Resultado {
	case entity.ResultadoCompleto, entity.ResultadoIncompleto:
	default:
		return "", fmt.Errorf("%w: resultado debe ser Completo o Incompleto", domain.ErrInvalidInput)
	}
	switch in.Accion {
	case "", entity.AccionAprobar, entity.AccionRechazar, entity.AccionSolicitarCorrecciones:
	default:
		return "", fmt.Errorf("%w: acción desconocida %q", domain.ErrInvalidInput, in.Accion)
	}
	if in.Resultado == entity.ResultadoIncompleto && in.Accion == entity.AccionAprobar {
		return "", fmt.Errorf("%w: un expediente incompleto no puede recomendarse para aprobación", domain.ErrInvalidInput)
	}
	if in.MontoAprobado != nil && in.MontoAprobado.IsNegative() {
		return "", fmt.Errorf("%w: monto_aprobado no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.Accion == entity.AccionSolicitarCorrecciones {
		return entity.ResultadoIncompleto, nil
	}
	return in.Resultado, nil
}

func accionSuffix(accion string) string {
	if accion == "" {
		return ""
	}
	return ", acción " + accion
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toExpedienteResponse(e *entity.Expediente) *dto.ExpedienteResponse {
	out := &dto.ExpedienteResponse{
		ID:                      e.ID,
		Codigo:                  e.Codigo,
		NombreProyecto:          e.NombreProyecto,
		MunicipioID:             e.MunicipioID,
		ResponsableID:           e.ResponsableID,
		TipoSolicitud:           e.TipoSolicitud,
		FechaRecepcion:          e.FechaRecepcion,
		Estado:                  e.Estado.String(),
		FechaAprobacion:         e.FechaAprobacion,
		MontoContratado:         e.MontoContratado,
		Adjudicatario:           e.Adjudicatario,
		Etiquetas:               e.Etiquetas,
		RevisorID:               e.RevisorID,
		FechaRecibidoFinanciero: e.FechaRecibidoFinanciero,
		FechaRevisado:           e.FechaRevisado,
		FechaComplemento:        e.FechaComplemento,
		ComentariosFinancieros:  e.ComentariosFinancieros,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
	if out.Etiquetas == nil {
		out.Etiquetas = []string{}
	}
	if e.MontoAprobado.Valid {
		m := e.MontoAprobado.Decimal
		out.MontoAprobado = &m
	}
	return out
}

func toRevisionResponse(r *entity.RevisionFinanciera) *dto.RevisionFinancieraResponse {
	out := &dto.RevisionFinancieraResponse{
		ID:                r.ID,
		ExpedienteID:      r.ExpedienteID,
		RevisorID:         r.RevisorID,
		Resultado:         r.Resultado,
		Accion:            r.Accion,
		Comentarios:       r.Comentarios,
		DiasTranscurridos: r.DiasTranscurridos,
		CreatedAt:         r.CreatedAt,
	}
	if r.MontoAprobado.Valid {
		m := r.MontoAprobado.Decimal
		out.MontoAprobado = &m
	}
	return out
}
