// Package client accede a la API REST de relaciones desde procesos externos (bizctl).
// Las consultas de listas nunca devuelven error: ante fallos registran y devuelven un slice vacío.
// Las mutaciones y lecturas de una sola entidad sí propagan *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/biztracker/pkg/config"
)

const (
	// DefaultTimeout timeout por petición si la configuración no trae uno.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize límite del cuerpo de respuesta (10MB).
	maxResponseSize = 10 * 1024 * 1024
)

// Client cliente HTTP de la API con caché de consultas.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   *Cache
	log     zerolog.Logger
}

// Option modifica el cliente al construirlo.
type Option func(*Client)

// WithHTTPClient reemplaza el *http.Client (tests, transportes propios).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New construye el cliente a partir de la configuración CLIENT_*.
func New(cfg config.ClientConfig, log zerolog.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		cache:   NewCache(),
		log:     log.With().Str("component", "api-client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache expone la caché de consultas (inspección e invalidación manual).
func (c *Client) Cache() *Cache {
	return c.cache
}

// do ejecuta la petición y devuelve el cuerpo de una respuesta 2xx.
// Cualquier otro resultado es un *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("petición fallida")
		return nil, newAPIError(0, nil, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, newAPIError(resp.StatusCode, nil, fmt.Errorf("read response: %w", err))
	}
	if len(raw) > maxResponseSize {
		return nil, newAPIError(resp.StatusCode, nil, fmt.Errorf("response body too large"))
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, raw, nil)
	}
	return raw, nil
}
