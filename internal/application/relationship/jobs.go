package relationship

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

// phases orden fijo de la conversión masiva.
var phases = []entity.EntityType{entity.EntityItem, entity.EntityPurchase, entity.EntitySale, entity.EntityAsset}

// ErrJobInterrupted motivo con el que se cierra un trabajo cortado por el apagado del proceso.
var ErrJobInterrupted = errors.New("conversión interrumpida por apagado del servidor")

// JobRunner ejecuta la conversión masiva en segundo plano, un trabajo a la vez por proceso.
type JobRunner struct {
	converter *Converter
	repos     ports.Repositories
	jobs      repository.ConversionJobRepository
	log       zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	running string
	stopped bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewJobRunner construye el runner.
func NewJobRunner(converter *Converter, repos ports.Repositories, jobs repository.ConversionJobRepository, log zerolog.Logger) *JobRunner {
	return &JobRunner{
		converter: converter,
		repos:     repos,
		jobs:      jobs,
		log:       log.With().Str("component", "conversion-job").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		stop:      make(chan struct{}),
	}
}

// RecoverInterrupted marca como failed los trabajos que quedaron en running tras
// una caída anterior. Llamar al arrancar, antes de aceptar trabajos nuevos.
func (r *JobRunner) RecoverInterrupted(ctx context.Context) (int, error) {
	n, err := r.jobs.FailRunning(ctx, ErrJobInterrupted.Error(), r.now())
	if err != nil {
		return 0, fmt.Errorf("recuperar trabajos interrumpidos: %w", err)
	}
	if n > 0 {
		r.log.Warn().Int("jobs", n).Msg("trabajos de conversión interrumpidos marcados como fallidos")
	}
	return n, nil
}

// Stop pide al trabajo en curso que se cierre como failed tras la entidad actual
// y rechaza trabajos nuevos. Es idempotente.
func (r *JobRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}
}

// StartConvertAll registra un trabajo en estado running y lo lanza sin esperar.
// Devuelve domain.ErrConflict si ya hay uno en curso.
func (r *JobRunner) StartConvertAll(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return "", fmt.Errorf("%w: servidor en apagado", domain.ErrConflict)
	}
	if r.running != "" {
		return "", fmt.Errorf("%w: trabajo %s en curso", domain.ErrConflict, r.running)
	}
	now := r.now()
	job := &entity.ConversionJob{
		ID:        uuid.New().String(),
		Status:    entity.JobStatusRunning,
		Phase:     phases[0],
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := r.jobs.Create(ctx, job); err != nil {
		return "", fmt.Errorf("crear trabajo de conversión: %w", err)
	}
	r.running = job.ID
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(context.WithoutCancel(ctx), job)
	}()
	r.log.Info().Str("job_id", job.ID).Msg("conversión masiva iniciada")
	return job.ID, nil
}

// Status devuelve el estado de un trabajo; domain.ErrNotFound si no existe.
func (r *JobRunner) Status(ctx context.Context, id string) (*entity.ConversionJob, error) {
	job, err := r.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// Running id del trabajo en curso ("" si no hay).
func (r *JobRunner) Running() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Wait bloquea hasta que terminen los trabajos lanzados.
func (r *JobRunner) Wait() {
	r.wg.Wait()
}

func (r *JobRunner) run(ctx context.Context, job *entity.ConversionJob) {
	defer func() {
		r.mu.Lock()
		r.running = ""
		r.mu.Unlock()
	}()
	defer func() {
		if p := recover(); p != nil {
			r.finish(ctx, job, fmt.Errorf("panic: %v", p))
		}
	}()

	for _, phase := range phases {
		job.Phase = phase
		ids, err := r.legacyIDs(ctx, phase)
		if err != nil {
			r.finish(ctx, job, fmt.Errorf("cargar %s: %w", phase, err))
			return
		}
		cat := job.Progress.Category(phase)
		cat.Total = len(ids)
		r.save(ctx, job)

		for _, id := range ids {
			if r.interrupted() {
				r.finish(ctx, job, ErrJobInterrupted)
				return
			}
			res, err := r.converter.ConvertEntity(ctx, phase, id)
			cat.Processed++
			switch {
			case err != nil:
				cat.Errors++
				r.log.Warn().Err(err).Str("entity_type", string(phase)).Str("entity_id", id).Msg("conversión fallida")
			case res.Result.Errors > 0:
				cat.Errors++
			default:
				cat.Converted++
			}
			r.save(ctx, job)
		}
	}
	r.finish(ctx, job, nil)
}

func (r *JobRunner) interrupted() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

func (r *JobRunner) finish(ctx context.Context, job *entity.ConversionJob, err error) {
	now := r.now()
	job.CompletedAt = &now
	if err != nil {
		job.Status = entity.JobStatusFailed
		job.Error = err.Error()
		r.log.Error().Err(err).Str("job_id", job.ID).Msg("conversión masiva fallida")
	} else {
		job.Status = entity.JobStatusCompleted
		t := job.Totals()
		r.log.Info().Str("job_id", job.ID).Int("converted", t.Converted).Int("errors", t.Errors).
			Msg("conversión masiva completada")
	}
	r.save(ctx, job)
}

func (r *JobRunner) save(ctx context.Context, job *entity.ConversionJob) {
	job.UpdatedAt = r.now()
	if err := r.jobs.Save(ctx, job); err != nil {
		r.log.Error().Err(err).Str("job_id", job.ID).Msg("guardar progreso")
	}
}

func (r *JobRunner) legacyIDs(ctx context.Context, et entity.EntityType) ([]string, error) {
	var ids []string
	switch et {
	case entity.EntityItem:
		list, err := r.repos.Items.ListWithLegacyReferences(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range list {
			ids = append(ids, v.ID)
		}
	case entity.EntityPurchase:
		list, err := r.repos.Purchases.ListWithLegacyReferences(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range list {
			ids = append(ids, v.ID)
		}
	case entity.EntitySale:
		list, err := r.repos.Sales.ListWithLegacyReferences(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range list {
			ids = append(ids, v.ID)
		}
	case entity.EntityAsset:
		list, err := r.repos.Assets.ListWithLegacyReferences(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range list {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}
