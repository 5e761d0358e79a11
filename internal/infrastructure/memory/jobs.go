package memory

import (
	"context"
	"time"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/repository"
)

var _ repository.ConversionJobRepository = (*ConversionJobRepo)(nil)

// ConversionJobRepo implementa repository.ConversionJobRepository.
type ConversionJobRepo struct{ s *Store }

func (r *ConversionJobRepo) Create(_ context.Context, job *entity.ConversionJob) error {
	return r.s.write(func(st *state) error {
		job.ID = newID(job.ID)
		if _, ok := st.jobs[job.ID]; ok {
			return domain.ErrDuplicate
		}
		st.jobs[job.ID] = cloneJob(*job)
		return nil
	})
}

func (r *ConversionJobRepo) Save(_ context.Context, job *entity.ConversionJob) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.jobs[job.ID]; !ok {
			return domain.ErrNotFound
		}
		st.jobs[job.ID] = cloneJob(*job)
		return nil
	})
}

func (r *ConversionJobRepo) GetByID(_ context.Context, id string) (*entity.ConversionJob, error) {
	var out *entity.ConversionJob
	r.s.read(func(st *state) {
		if v, ok := st.jobs[id]; ok {
			c := cloneJob(v)
			out = &c
		}
	})
	return out, nil
}

func (r *ConversionJobRepo) FailRunning(_ context.Context, reason string, at time.Time) (int, error) {
	n := 0
	err := r.s.write(func(st *state) error {
		for id, job := range st.jobs {
			if job.Status != entity.JobStatusRunning {
				continue
			}
			job.Status = entity.JobStatusFailed
			job.Error = reason
			done := at
			job.UpdatedAt = at
			job.CompletedAt = &done
			st.jobs[id] = job
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
