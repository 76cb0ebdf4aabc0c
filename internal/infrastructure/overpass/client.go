package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/geo-gateway/internal/config"
	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const providerName = "overpass"

type client struct {
	httpClient   *http.Client
	baseURL      string
	queryTimeout time.Duration
	callTimeout  time.Duration
	throttle     *rate.Limiter
	logger       *zap.Logger
}

// NewOverpassClient создает клиент Overpass API
func NewOverpassClient(cfg *config.OverpassConfig, logger *zap.Logger) repository.POIProvider {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		queryTimeout: cfg.QueryTimeout,
		callTimeout:  cfg.RequestTimeout,
		throttle:     rate.NewLimiter(rate.Limit(rps), 1),
		logger:       logger,
	}
}

// FetchNearby выполняет запрос к /interpreter. Элементы, которые не удалось
// разобрать, пропускаются с предупреждением в логе.
// Ожидание троттлинга, запрос и разбор ответа укладываются в один RequestTimeout.
func (c *client) FetchNearby(ctx context.Context, q domain.SpatialQuery) ([]domain.RawElement, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	query := BuildQuery(q, c.queryTimeout)

	c.logger.Debug("Calling Overpass API",
		zap.String("tag", q.Tag),
		zap.Int("radius_m", q.RadiusMeters),
		zap.Int("limit", q.Limit))

	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: overpass throttle: %v", domain.ErrUpstreamUnavailable, err)
	}

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/interpreter", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Overpass request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Overpass API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, &domain.UpstreamStatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		c.logger.Error("Failed to decode Overpass response", zap.Error(err))
		return nil, &domain.UpstreamStatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: "invalid JSON body"}
	}
	if payload.Remark != "" {
		c.logger.Warn("Overpass remark", zap.String("remark", payload.Remark))
	}

	elements := make([]domain.RawElement, 0, len(payload.Elements))
	for i, raw := range payload.Elements {
		el, err := decodeElement(raw)
		if err != nil {
			c.logger.Warn("Skipping malformed Overpass element", zap.Int("index", i), zap.Error(err))
			continue
		}
		elements = append(elements, el)
	}

	c.logger.Debug("Overpass API call successful",
		zap.Int("elements", len(payload.Elements)),
		zap.Int("decoded", len(elements)))

	return elements, nil
}
