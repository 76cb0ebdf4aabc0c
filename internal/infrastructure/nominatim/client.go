package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/geo-gateway/internal/config"
	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const providerName = "nominatim"

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	throttle   *rate.Limiter
	logger     *zap.Logger
}

// NewNominatimClient создает клиент Nominatim. Политика использования публичного
// сервера требует User-Agent и не более одного запроса в секунду.
func NewNominatimClient(cfg *config.NominatimConfig, logger *zap.Logger) repository.Geocoder {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.RequestTimeout,
		throttle:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:    logger,
	}
}

// Search - прямое геокодирование через /search
func (c *client) Search(ctx context.Context, q domain.GeocodeQuery) ([]domain.RawElement, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(domain.ClampLimit(q.Limit, domain.DefaultGeocodeLimit, domain.MaxGeocodeLimit)))
	if q.Country != "" {
		params.Set("countrycodes", strings.ToLower(q.Country))
	}

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		c.logger.Error("Failed to decode Nominatim search response", zap.Error(err))
		return nil, &domain.UpstreamStatusError{Provider: providerName, StatusCode: http.StatusOK, Body: "invalid JSON body"}
	}

	elements := make([]domain.RawElement, 0, len(raws))
	for i, raw := range raws {
		el, err := decodePlace(raw)
		if err != nil {
			c.logger.Warn("Skipping malformed Nominatim place", zap.Int("index", i), zap.Error(err))
			continue
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// Reverse - обратное геокодирование через /reverse
func (c *client) Reverse(ctx context.Context, q domain.ReverseQuery) (*domain.RawElement, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(q.Point.Lat, 'f', 7, 64))
	params.Set("lon", strconv.FormatFloat(q.Point.Lon, 'f', 7, 64))
	params.Set("zoom", strconv.Itoa(domain.ClampZoom(q.Zoom)))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")

	body, err := c.get(ctx, "/reverse", params)
	if err != nil {
		return nil, err
	}

	// Nominatim отвечает 200 с {"error": "..."} если по координатам ничего нет
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && probe.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, probe.Error)
	}

	el, err := decodePlace(body)
	if err != nil {
		c.logger.Error("Failed to decode Nominatim reverse response", zap.Error(err))
		return nil, &domain.UpstreamStatusError{Provider: providerName, StatusCode: http.StatusOK, Body: "invalid JSON body"}
	}
	return &el, nil
}

// get ограничивает ожидание троттлинга и чтение ответа общим timeout:
// если токен не успеет освободиться до дедлайна, Wait вернёт ошибку сразу.
func (c *client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: nominatim throttle: %v", domain.ErrUpstreamUnavailable, err)
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	c.logger.Debug("Calling Nominatim API", zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Nominatim request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Nominatim API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, &domain.UpstreamStatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamUnavailable, err)
	}
	return body, nil
}
