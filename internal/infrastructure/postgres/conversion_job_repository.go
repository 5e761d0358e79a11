package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

var _ repository.ConversionJobRepository = (*ConversionJobRepo)(nil)

// ConversionJobRepo persiste el estado de los trabajos de conversión masiva.
type ConversionJobRepo struct {
	q Querier
}

// NewConversionJobRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConversionJobRepository(q Querier) *ConversionJobRepo {
	return &ConversionJobRepo{q: q}
}

func (r *ConversionJobRepo) Create(ctx context.Context, job *entity.ConversionJob) error {
	progress, err := toJSON(job.Progress)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO conversion_jobs (id, status, phase, progress, error, started_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.Status, string(job.Phase), progress, job.Error, job.StartedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert conversion job: %w", err)
	}
	return nil
}

// Save sobrescribe estado, fase, progreso y error del trabajo.
func (r *ConversionJobRepo) Save(ctx context.Context, job *entity.ConversionJob) error {
	progress, err := toJSON(job.Progress)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE conversion_jobs SET status = $2, phase = $3, progress = $4, error = $5, updated_at = $6, completed_at = $7
		WHERE id = $1`,
		job.ID, job.Status, string(job.Phase), progress, job.Error, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("save conversion job: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConversionJobRepo) GetByID(ctx context.Context, id string) (*entity.ConversionJob, error) {
	var (
		job      entity.ConversionJob
		phase    string
		progress []byte
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, status, phase, progress, error, started_at, updated_at, completed_at
		FROM conversion_jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.Status, &phase, &progress, &job.Error, &job.StartedAt, &job.UpdatedAt, &job.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversion job: %w", err)
	}
	job.Phase = entity.EntityType(phase)
	if err := fromJSON(progress, &job.Progress); err != nil {
		return nil, err
	}
	return &job, nil
}

// FailRunning cierra los trabajos que quedaron en running tras una caída del proceso.
func (r *ConversionJobRepo) FailRunning(ctx context.Context, reason string, at time.Time) (int, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE conversion_jobs SET status = $1, error = $2, updated_at = $3, completed_at = $3
		WHERE status = $4`,
		entity.JobStatusFailed, reason, at, entity.JobStatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("fail running conversion jobs: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
