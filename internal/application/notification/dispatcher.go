// Package notification compone, encola y entrega los correos del flujo de expedientes.
//
// Notify persiste una NotificacionEnviada por destinatario (Pendiente) y la encola;
// un pool de workers la entrega con hasta MaxAttempts intentos y la marca Enviado o
// Fallido. Ningún error de entrega llega a la acción que originó la notificación.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/dto"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/policy"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var errQueueUnavailable = errors.New("cola de notificaciones llena o detenida")

// Config parámetros del pool de entrega.
type Config struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration // espera lineal: intento * Backoff
	JobTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Backoff < 0 {
		c.Backoff = 0
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 30 * time.Second
	}
	return c
}

// Event describe una transición notificable.
type Event struct {
	Tipo        string
	Expediente  *entity.Expediente
	Actor       *entity.User
	Comentarios string
}

// Dispatcher implementa la cola de notificaciones y su entrega.
type Dispatcher struct {
	repo          repository.NotificacionRepository
	userRepo      repository.UserRepository
	municipioRepo repository.MunicipioRepository
	sender        Sender
	audit         *audit.Writer
	log           zerolog.Logger
	cfg           Config
	now           func() time.Time

	mu     sync.Mutex
	closed bool
	queue  chan *entity.NotificacionEnviada
}

// NewDispatcher construye el dispatcher. Run debe ejecutarse para que la cola se procese.
func NewDispatcher(
	repo repository.NotificacionRepository,
	userRepo repository.UserRepository,
	municipioRepo repository.MunicipioRepository,
	sender Sender,
	auditWriter *audit.Writer,
	log zerolog.Logger,
	cfg Config,
) *Dispatcher {
	cfg = cfg.withDefaults()
	return &Dispatcher{
		repo:          repo,
		userRepo:      userRepo,
		municipioRepo: municipioRepo,
		sender:        sender,
		audit:         auditWriter,
		log:           log.With().Str("component", "notification").Logger(),
		cfg:           cfg,
		now:           time.Now,
		queue:         make(chan *entity.NotificacionEnviada, cfg.QueueSize),
	}
}

// Run arranca los workers y bloquea hasta que la cola se cierre (Close) o ctx termine.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case n, ok := <-d.queue:
					if !ok {
						return nil
					}
					d.deliver(gctx, n, "")
				}
			}
		})
	}
	return g.Wait()
}

// Close deja de aceptar trabajos; los workers terminan al vaciar la cola.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
}

// Recover vuelve a encolar las filas que quedaron Pendiente tras un apagado que
// agotó su plazo. Las que no caben en la cola pasan a Fallido para reintento manual.
// Debe llamarse al arrancar, antes de aceptar peticiones.
func (d *Dispatcher) Recover(ctx context.Context) (int, error) {
	const batch = 100
	var pending []*entity.NotificacionEnviada
	for offset := 0; ; offset += batch {
		rows, err := d.repo.List(ctx, entity.NotificacionPendiente, batch, offset)
		if err != nil {
			return 0, fmt.Errorf("listar notificaciones pendientes: %w", err)
		}
		pending = append(pending, rows...)
		if len(rows) < batch {
			break
		}
	}

	requeued := 0
	for _, n := range pending {
		if err := d.enqueue(n); err != nil {
			n.Estado = entity.NotificacionFallido
			n.UltimoError = err.Error()
			n.UpdatedAt = d.now()
			if uerr := d.repo.Update(ctx, n); uerr != nil {
				d.log.Error().Err(uerr).Str("id", n.ID).Msg("marcar notificación fallida")
			}
			continue
		}
		requeued++
	}
	if len(pending) > 0 {
		d.log.Info().Int("pendientes", len(pending)).Int("reencoladas", requeued).Msg("notificaciones recuperadas")
	}
	return requeued, nil
}

// Notify resuelve destinatarios, persiste una fila Pendiente por cada uno y la encola.
// Nunca devuelve error: los fallos se registran en el log.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	if ev.Expediente == nil {
		return
	}
	exp := ev.Expediente
	municipio, err := d.municipioRepo.GetByID(ctx, exp.MunicipioID)
	if err != nil {
		d.log.Warn().Err(err).Str("municipio_id", exp.MunicipioID).Msg("cargar municipio para notificación")
	}
	recipients, err := d.recipients(ctx, ev.Tipo, exp, municipio)
	if err != nil {
		d.log.Warn().Err(err).Str("tipo", ev.Tipo).Str("expediente", exp.Codigo).Msg("resolver destinatarios")
	}
	if len(recipients) == 0 {
		d.log.Info().Str("tipo", ev.Tipo).Str("expediente", exp.Codigo).Msg("notificación sin destinatarios")
		return
	}

	data := templateData{
		Codigo:      exp.Codigo,
		Proyecto:    exp.NombreProyecto,
		Estado:      exp.Estado.String(),
		Comentarios: ev.Comentarios,
		Fecha:       d.now().Format("02/01/2006"),
	}
	if municipio != nil {
		data.Municipio = municipio.Name
	}
	if ev.Actor != nil {
		data.Remitente = ev.Actor.Name
	}
	subject, body, err := render(ev.Tipo, data)
	if err != nil {
		d.log.Error().Err(err).Msg("componer notificación")
		return
	}

	for _, to := range recipients {
		now := d.now()
		n := &entity.NotificacionEnviada{
			ID:           uuid.New().String(),
			Tipo:         ev.Tipo,
			ExpedienteID: exp.ID,
			Destinatario: to,
			Asunto:       subject,
			Mensaje:      body,
			Estado:       entity.NotificacionPendiente,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := d.repo.Create(ctx, n); err != nil {
			d.log.Error().Err(err).Str("destinatario", to).Msg("persistir notificación")
			continue
		}
		if err := d.enqueue(n); err != nil {
			n.Estado = entity.NotificacionFallido
			n.UltimoError = err.Error()
			n.UpdatedAt = d.now()
			if uerr := d.repo.Update(ctx, n); uerr != nil {
				d.log.Error().Err(uerr).Str("id", n.ID).Msg("marcar notificación fallida")
			}
			d.log.Warn().Str("id", n.ID).Msg("notificación no encolada")
		}
	}
}

func (d *Dispatcher) enqueue(n *entity.NotificacionEnviada) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errQueueUnavailable
	}
	select {
	case d.queue <- n:
		return nil
	default:
		return errQueueUnavailable
	}
}

// recipients devuelve los correos destino sin duplicados ni vacíos.
func (d *Dispatcher) recipients(ctx context.Context, tipo string, exp *entity.Expediente, municipio *entity.Municipio) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(email string) {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			return
		}
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	addRole := func(role entity.Role) error {
		users, err := d.userRepo.ListActiveByRole(ctx, role)
		if err != nil {
			return fmt.Errorf("usuarios con rol %s: %w", role, err)
		}
		for _, u := range users {
			add(u.Email)
		}
		return nil
	}
	addResponsable := func() error {
		if exp.ResponsableID == "" {
			return nil
		}
		u, err := d.userRepo.GetByID(ctx, exp.ResponsableID)
		if err != nil {
			return fmt.Errorf("responsable: %w", err)
		}
		if u != nil && u.Active {
			add(u.Email)
		}
		return nil
	}
	addContacto := func() {
		if municipio != nil {
			add(municipio.ContactEmail)
		}
	}

	var err error
	switch tipo {
	case entity.NotifEnviadoRevision:
		err = addRole(entity.RoleJefeFinanciero)
	case entity.NotifRevisionCompleta:
		err = errors.Join(addResponsable(), addRole(entity.RoleDirectorGeneral))
	case entity.NotifRevisionIncompleta, entity.NotifExpedienteAprobado, entity.NotifExpedienteRechazado:
		err = addResponsable()
		addContacto()
	default:
		return nil, fmt.Errorf("tipo de notificación desconocido %q", tipo)
	}
	return out, err
}

// deliver ejecuta un ciclo de hasta MaxAttempts intentos y persiste el resultado.
// Usa su propio contexto para que un apagado no deje la fila a medio actualizar.
func (d *Dispatcher) deliver(parent context.Context, n *entity.NotificacionEnviada, actorID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.cfg.JobTimeout)
	defer cancel()

	msg := Message{To: n.Destinatario, Subject: n.Asunto, Body: n.Mensaje}
	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		n.Intentos++
		lastErr = d.sender.Send(ctx, msg)
		if lastErr == nil {
			break
		}
		d.log.Warn().Err(lastErr).
			Str("id", n.ID).
			Int("intento", attempt).
			Msg("entrega de notificación fallida")
		if attempt < d.cfg.MaxAttempts && !sleep(ctx, time.Duration(attempt)*d.cfg.Backoff) {
			break
		}
	}

	now := d.now()
	n.UpdatedAt = now
	if lastErr == nil {
		n.Estado = entity.NotificacionEnviado
		n.UltimoError = ""
		n.EnviadoAt = &now
	} else {
		n.Estado = entity.NotificacionFallido
		n.UltimoError = lastErr.Error()
	}
	if err := d.repo.Update(ctx, n); err != nil {
		d.log.Error().Err(err).Str("id", n.ID).Msg("actualizar notificación")
	}
	d.audit.Record(ctx, actorID, entity.EntidadNotificacion, n.ID, entity.BitacoraNotificacion,
		fmt.Sprintf("Notificación %s a %s: %s (%d intentos)", n.Tipo, n.Destinatario, n.Estado, n.Intentos))
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// List devuelve las notificaciones, opcionalmente filtradas por estado (solo Administrador).
func (d *Dispatcher) List(ctx context.Context, actor *entity.User, estado string, limit, offset int) ([]dto.NotificacionResponse, error) {
	if err := policy.Authorize(actor, policy.ActionViewAny, policy.NotificacionResource{}); err != nil {
		return nil, err
	}
	list, err := d.repo.List(ctx, estado, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar notificaciones: %w", err)
	}
	out := make([]dto.NotificacionResponse, 0, len(list))
	for _, n := range list {
		out = append(out, *toNotificacionResponse(n))
	}
	return out, nil
}

// Retry reintenta de forma síncrona una notificación Fallido (solo Administrador).
func (d *Dispatcher) Retry(ctx context.Context, actor *entity.User, id string) (*dto.NotificacionResponse, error) {
	if err := policy.Authorize(actor, policy.ActionRetry, policy.NotificacionResource{}); err != nil {
		return nil, err
	}
	n, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener notificación: %w", err)
	}
	if n == nil {
		return nil, domain.ErrNotFound
	}
	if n.Estado != entity.NotificacionFallido {
		return nil, fmt.Errorf("%w: solo se reintentan notificaciones en estado Fallido (actual %s)",
			domain.ErrInvalidTransition, n.Estado)
	}
	d.deliver(ctx, n, actor.ID)
	return toNotificacionResponse(n), nil
}

func toNotificacionResponse(n *entity.NotificacionEnviada) *dto.NotificacionResponse {
	return &dto.NotificacionResponse{
		ID:           n.ID,
		Tipo:         n.Tipo,
		ExpedienteID: n.ExpedienteID,
		Destinatario: n.Destinatario,
		Asunto:       n.Asunto,
		Mensaje:      n.Mensaje,
		Estado:       n.Estado,
		Intentos:     n.Intentos,
		UltimoError:  n.UltimoError,
		EnviadoAt:    n.EnviadoAt,
		CreatedAt:    n.CreatedAt,
	}
}
