package repository

import (
	"context"
	"time"

	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// ConversionJobRepository persiste el estado de los trabajos de conversión.
// GetByID devuelve (nil, nil) si no existe. FailRunning marca como failed todo
// trabajo que siga en running y devuelve cuántos cambió.
type ConversionJobRepository interface {
	Create(ctx context.Context, job *entity.ConversionJob) error
	Save(ctx context.Context, job *entity.ConversionJob) error
	GetByID(ctx context.Context, id string) (*entity.ConversionJob, error)
	FailRunning(ctx context.Context, reason string, at time.Time) (int, error)
}
