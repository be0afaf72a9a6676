package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Expedientes-api/internal/application/audit"
	"github.com/jhoicas/Expedientes-api/internal/application/notification"
	"github.com/jhoicas/Expedientes-api/internal/domain"
	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/infrastructure/memory"
)

// stubSender falla las primeras failures llamadas y registra los mensajes entregados.
type stubSender struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []notification.Message
}

func (s *stubSender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp: conexión rechazada")
	}
	s.sent = append(s.sent, msg)
	return nil
}

type fixture struct {
	notifs   *memory.NotificacionRepository
	bitacora *memory.BitacoraRepository
	sender   *stubSender
	d        *notification.Dispatcher
	exp      *entity.Expediente
	admin    *entity.User
}

func newFixture(failures int) *fixture {
	users := memory.NewUserRepository(
		&entity.User{ID: "jefe-1", Name: "Jefe", Email: "jefe@gob.test", Role: entity.RoleJefeFinanciero, Active: true},
		&entity.User{ID: "jefe-2", Name: "Jefa inactiva", Email: "jefa2@gob.test", Role: entity.RoleJefeFinanciero},
		&entity.User{ID: "dir-1", Name: "Director", Email: "director@gob.test", Role: entity.RoleDirectorGeneral, Active: true},
		&entity.User{ID: "tec-1", Name: "Técnica", Email: "tecnica@gob.test", Role: entity.RoleTecnico, Active: true, MunicipioIDs: []string{"mun-1"}},
	)
	municipios := memory.NewMunicipioRepository(&entity.Municipio{
		ID: "mun-1", Name: "San Marcos", ContactEmail: "alcaldia@sanmarcos.test", Active: true,
	})
	f := &fixture{
		notifs:   memory.NewNotificacionRepository(),
		bitacora: memory.NewBitacoraRepository(),
		sender:   &stubSender{failures: failures},
		exp: &entity.Expediente{
			ID: "exp-1", Codigo: "SM-2024-001", NombreProyecto: "Acueducto rural",
			MunicipioID: "mun-1", ResponsableID: "tec-1", Estado: entity.EstadoEnRevision,
		},
		admin: &entity.User{ID: "admin-1", Role: entity.RoleAdministrador, Active: true},
	}
	f.d = notification.NewDispatcher(f.notifs, users, municipios, f.sender,
		audit.NewWriter(f.bitacora, zerolog.Nop()), zerolog.Nop(),
		notification.Config{Workers: 2, QueueSize: 10, MaxAttempts: 3, Backoff: time.Millisecond})
	return f
}

// drain procesa la cola completa y espera a que los workers terminen.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- f.d.Run(context.Background()) }()
	f.d.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("el dispatcher no terminó")
	}
}

func (f *fixture) all(t *testing.T) []*entity.NotificacionEnviada {
	t.Helper()
	list, err := f.notifs.List(context.Background(), "", 0, 0)
	require.NoError(t, err)
	return list
}

func TestNotify_EnviarRevision_JefesActivos(t *testing.T) {
	f := newFixture(0)
	f.d.Notify(context.Background(), notification.Event{Tipo: entity.NotifEnviadoRevision, Expediente: f.exp})
	f.drain(t)

	list := f.all(t)
	require.Len(t, list, 1, "solo el jefe financiero activo recibe la notificación")
	n := list[0]
	assert.Equal(t, "jefe@gob.test", n.Destinatario)
	assert.Equal(t, entity.NotificacionEnviado, n.Estado)
	assert.Equal(t, 1, n.Intentos)
	assert.NotNil(t, n.EnviadoAt)
	assert.Contains(t, n.Asunto, "SM-2024-001")
	assert.Contains(t, n.Mensaje, "San Marcos")
}

func TestNotify_RevisionIncompleta_ResponsableYContacto(t *testing.T) {
	f := newFixture(0)
	f.d.Notify(context.Background(), notification.Event{
		Tipo: entity.NotifRevisionIncompleta, Expediente: f.exp, Comentarios: "Falta el presupuesto",
	})
	f.drain(t)

	var dest []string
	for _, n := range f.all(t) {
		dest = append(dest, n.Destinatario)
		assert.Contains(t, n.Mensaje, "Falta el presupuesto")
	}
	assert.ElementsMatch(t, []string{"tecnica@gob.test", "alcaldia@sanmarcos.test"}, dest)
}

func TestNotify_RevisionCompleta_ResponsableYDirector(t *testing.T) {
	f := newFixture(0)
	f.d.Notify(context.Background(), notification.Event{Tipo: entity.NotifRevisionCompleta, Expediente: f.exp})
	f.drain(t)

	var dest []string
	for _, n := range f.all(t) {
		dest = append(dest, n.Destinatario)
	}
	assert.ElementsMatch(t, []string{"tecnica@gob.test", "director@gob.test"}, dest)
}

func TestNotify_SenderFalla_QuedaFallidoTrasTresIntentos(t *testing.T) {
	f := newFixture(100)
	assert.NotPanics(t, func() {
		f.d.Notify(context.Background(), notification.Event{Tipo: entity.NotifEnviadoRevision, Expediente: f.exp})
	})
	f.drain(t)

	list := f.all(t)
	require.Len(t, list, 1)
	assert.Equal(t, entity.NotificacionFallido, list[0].Estado)
	assert.Equal(t, 3, list[0].Intentos)
	assert.Contains(t, list[0].UltimoError, "conexión rechazada")
	assert.Nil(t, list[0].EnviadoAt)

	rows := f.bitacora.All()
	require.Len(t, rows, 1)
	assert.Equal(t, entity.BitacoraNotificacion, rows[0].Tipo)
	assert.Contains(t, rows[0].Detalle, "Fallido")
}

func TestNotify_ColaCerrada_MarcaFallido(t *testing.T) {
	f := newFixture(0)
	f.d.Close()
	f.d.Notify(context.Background(), notification.Event{Tipo: entity.NotifEnviadoRevision, Expediente: f.exp})

	list := f.all(t)
	require.Len(t, list, 1)
	assert.Equal(t, entity.NotificacionFallido, list[0].Estado)
	assert.Zero(t, f.sender.calls)
}

func TestRetry_SoloFallidoYSoloAdmin(t *testing.T) {
	f := newFixture(3)
	ctx := context.Background()
	f.d.Notify(ctx, notification.Event{Tipo: entity.NotifEnviadoRevision, Expediente: f.exp})
	f.drain(t)
	n := f.all(t)[0]
	require.Equal(t, entity.NotificacionFallido, n.Estado)

	tecnico := &entity.User{ID: "tec-1", Role: entity.RoleTecnico, Active: true}
	_, err := f.d.Retry(ctx, tecnico, n.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.d.Retry(ctx, f.admin, n.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificacionEnviado, out.Estado)
	assert.Equal(t, 4, out.Intentos)
	assert.Empty(t, out.UltimoError)

	_, err = f.d.Retry(ctx, f.admin, n.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "una notificación enviada no se reintenta")

	_, err = f.d.Retry(ctx, f.admin, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()
	f.d.Notify(ctx, notification.Event{Tipo: entity.NotifExpedienteAprobado, Expediente: f.exp})
	f.drain(t)

	fallidas, err := f.d.List(ctx, f.admin, entity.NotificacionFallido, 10, 0)
	require.NoError(t, err)
	assert.Len(t, fallidas, 2)

	enviadas, err := f.d.List(ctx, f.admin, entity.NotificacionEnviado, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, enviadas)
}

func TestRecover_ReencolaPendientesTrasApagadoAbrupto(t *testing.T) {
	f := newFixture(0)
	f.d.Notify(context.Background(), notification.Event{Tipo: entity.NotifRevisionCompleta, Expediente: f.exp})

	// Los workers arrancan con el contexto ya cancelado: la cola puede quedar sin procesar.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.d.Run(cancelled))
	f.d.Close()
	require.Len(t, f.all(t), 2)

	users := memory.NewUserRepository()
	municipios := memory.NewMunicipioRepository()
	restarted := notification.NewDispatcher(f.notifs, users, municipios, f.sender,
		audit.NewWriter(f.bitacora, zerolog.Nop()), zerolog.Nop(),
		notification.Config{Workers: 1, QueueSize: 10, MaxAttempts: 1})
	_, err := restarted.Recover(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- restarted.Run(context.Background()) }()
	restarted.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("el dispatcher no terminó")
	}

	for _, n := range f.all(t) {
		assert.Equal(t, entity.NotificacionEnviado, n.Estado, n.Destinatario)
	}
	assert.Len(t, f.sender.sent, 2)
}

func TestRecover_ColaLlenaMarcaFallido(t *testing.T) {
	f := newFixture(0)
	f.d.Notify(context.Background(), notification.Event{Tipo: entity.NotifRevisionCompleta, Expediente: f.exp})
	f.d.Close()

	restarted := notification.NewDispatcher(f.notifs, memory.NewUserRepository(), memory.NewMunicipioRepository(), f.sender,
		audit.NewWriter(f.bitacora, zerolog.Nop()), zerolog.Nop(),
		notification.Config{Workers: 1, QueueSize: 1, MaxAttempts: 1})
	n, err := restarted.Recover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fallidas, err := f.d.List(context.Background(), f.admin, entity.NotificacionFallido, 10, 0)
	require.NoError(t, err)
	require.Len(t, fallidas, 1)
	_, err = restarted.Retry(context.Background(), f.admin, fallidas[0].ID)
	require.NoError(t, err)
}
