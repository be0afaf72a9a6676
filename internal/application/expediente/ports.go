package expediente

import (
	"context"

	"github.com/jhoicas/Expedientes-api/internal/application/notification"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

// Notifier encola notificaciones de una transición (implementado por notification.Dispatcher).
type Notifier interface {
	Notify(ctx context.Context, ev notification.Event)
}

// TxRunner ejecuta fn dentro de una transacción con repos de expedientes y revisiones
// atados a ella. Si fn retorna error no queda ninguna escritura.
type TxRunner interface {
	RunReview(ctx context.Context, fn func(
		expRepo repository.ExpedienteRepository,
		revisionRepo repository.RevisionFinancieraRepository,
	) error) error
}
