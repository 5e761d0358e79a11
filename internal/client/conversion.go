package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// Límites del intervalo de sondeo de trabajos.
const (
	MinPollInterval = 250 * time.Millisecond
	MaxPollInterval = 30 * time.Second
)

// ConvertAllRelationships dispara la conversión masiva y devuelve el id del trabajo sin esperarlo.
func (c *Client) ConvertAllRelationships(ctx context.Context) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, relationshipsPath+"/convert-all", nil)
	if err != nil {
		return "", err
	}
	out, err := unwrapOne[dto.ConvertAllResponse](raw)
	if err != nil {
		return "", newAPIError(0, nil, err)
	}
	if out.JobID == "" {
		return "", newAPIError(0, nil, fmt.Errorf("respuesta sin jobId"))
	}
	return out.JobID, nil
}

// GetConversionJobStatus estado del trabajo. Un trabajo fallido es un estado, no un error.
func (c *Client) GetConversionJobStatus(ctx context.Context, jobID string) (*dto.JobStatusResponse, error) {
	raw, err := c.do(ctx, http.MethodGet, relationshipsPath+"/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}
	// el estado desnudo trae "status" propio; sólo se desenvuelve si hay "data"
	status, err := unwrapOne[dto.JobStatusResponse](raw)
	if err != nil {
		return nil, newAPIError(0, nil, err)
	}
	return &status, nil
}

// ConvertLegacyRelationships convierte las referencias embebidas de una entidad y
// luego invalida sus consultas para que la siguiente lectura vuelva al servidor.
func (c *Client) ConvertLegacyRelationships(ctx context.Context, entityID string, t entity.EntityType) (*dto.ConversionResult, error) {
	path := relationshipsPath + "/convert/" + url.PathEscape(string(t)) + "/" + url.PathEscape(entityID)
	raw, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}
	res, err := unwrapOne[dto.ConversionResult](raw)
	if err != nil {
		return nil, newAPIError(0, nil, err)
	}
	c.invalidateEntity(entityID, t)
	return &res, nil
}

// WaitForJob sondea el trabajo cada interval (acotado a [MinPollInterval, MaxPollInterval])
// hasta que llegue a completed o failed. Un sondeo fallido corta el ciclo y devuelve el error.
// onProgress puede ser nil.
func (c *Client) WaitForJob(ctx context.Context, jobID string, interval time.Duration, onProgress func(*dto.JobStatusResponse)) (*dto.JobStatusResponse, error) {
	interval = clampInterval(interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetConversionJobStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(status)
		}
		if status.IsTerminal() {
			if status.Status == entity.JobStatusCompleted {
				c.cache.Invalidate(keyRelationships)
			}
			return status, nil
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}

func clampInterval(d time.Duration) time.Duration {
	switch {
	case d < MinPollInterval:
		return MinPollInterval
	case d > MaxPollInterval:
		return MaxPollInterval
	default:
		return d
	}
}
