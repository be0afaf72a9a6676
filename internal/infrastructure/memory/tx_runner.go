package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

// TxRunner imita una transacción sobre los repos en memoria: las escrituras hechas
// dentro de fn quedan pendientes y se aplican solo si fn termina sin error.
// Las lecturas ven el estado confirmado.
type TxRunner struct {
	mu           sync.Mutex
	expRepo      repository.ExpedienteRepository
	revisionRepo repository.RevisionFinancieraRepository
}

func NewTxRunner(expRepo repository.ExpedienteRepository, revisionRepo repository.RevisionFinancieraRepository) *TxRunner {
	return &TxRunner{expRepo: expRepo, revisionRepo: revisionRepo}
}

func (r *TxRunner) RunReview(ctx context.Context, fn func(
	expRepo repository.ExpedienteRepository,
	revisionRepo repository.RevisionFinancieraRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exps := &stagedExpedientes{ExpedienteRepository: r.expRepo}
	revs := &stagedRevisiones{RevisionFinancieraRepository: r.revisionRepo}
	if err := fn(exps, revs); err != nil {
		return err
	}
	for _, e := range exps.updates {
		if err := r.expRepo.Update(ctx, e); err != nil {
			return err
		}
	}
	for _, rev := range revs.creates {
		if err := r.revisionRepo.Create(ctx, rev); err != nil {
			return err
		}
	}
	return nil
}

type stagedExpedientes struct {
	repository.ExpedienteRepository
	updates []*entity.Expediente
}

func (s *stagedExpedientes) Update(_ context.Context, e *entity.Expediente) error {
	c := cloneExpediente(e)
	s.updates = append(s.updates, &c)
	return nil
}

type stagedRevisiones struct {
	repository.RevisionFinancieraRepository
	creates []*entity.RevisionFinanciera
}

func (s *stagedRevisiones) Create(_ context.Context, rev *entity.RevisionFinanciera) error {
	c := *rev
	s.creates = append(s.creates, &c)
	return nil
}
