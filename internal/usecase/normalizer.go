package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/pkg/utils"
)

const distancePrecision = 2

// detailTags - теги, которые попадают в Details как есть
var detailTags = []string{
	"phone", "website", "email", "opening_hours", "cuisine", "operator", "brand", "wheelchair",
}

// Normalizer приводит элементы провайдеров к LocationResult
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer - создание нового Normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize преобразует один элемент. false означает, что элемент пропущен:
// нет координаты или центра, либо координаты вне допустимых диапазонов.
// Расстояние считается только при известном origin.
func (n *Normalizer) Normalize(raw domain.RawElement, origin *domain.GeoPoint, category string) (domain.LocationResult, bool) {
	pos, ok := raw.Position()
	if !ok || math.IsNaN(pos.Lat) || math.IsNaN(pos.Lon) || !pos.Valid() {
		return domain.LocationResult{}, false
	}

	id := raw.ID
	if id == "" {
		id = uuid.NewString()
	}

	cat := raw.Category
	if cat == "" {
		cat = category
	}

	result := domain.LocationResult{
		ID:       id,
		Name:     displayName(raw, cat, id),
		Category: cat,
		Type:     raw.Type,
		Lat:      pos.Lat,
		Lon:      pos.Lon,
		Address:  prefixedTags(raw.Tags, "addr:"),
		Details:  detailsFromTags(raw.Tags),
	}

	if origin != nil {
		d := utils.RoundTo(utils.DistanceKm(*origin, pos), distancePrecision)
		result.DistanceKm = &d
	}

	return result, true
}

// NormalizeBatch нормализует все элементы, отбрасывая непригодные.
// Паника на одном элементе не прерывает обработку остальных.
func (n *Normalizer) NormalizeBatch(raws []domain.RawElement, origin *domain.GeoPoint, category string) []domain.LocationResult {
	results := make([]domain.LocationResult, 0, len(raws))
	for i := range raws {
		result, ok := n.safeNormalize(raws[i], origin, category)
		if !ok {
			n.logger.Debug("Dropping element",
				zap.String("type", raws[i].Type),
				zap.String("id", raws[i].ID),
				zap.Stringer("geometry", raws[i].Kind))
			continue
		}
		results = append(results, result)
	}
	return results
}

func (n *Normalizer) safeNormalize(raw domain.RawElement, origin *domain.GeoPoint, category string) (result domain.LocationResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Panic while normalizing element",
				zap.String("id", raw.ID),
				zap.Any("panic", r))
			result, ok = domain.LocationResult{}, false
		}
	}()
	return n.Normalize(raw, origin, category)
}

func displayName(raw domain.RawElement, category, id string) string {
	if name := strings.TrimSpace(raw.Tags["name"]); name != "" {
		return name
	}
	if name := strings.TrimSpace(raw.DisplayName); name != "" {
		return name
	}

	label := strings.ReplaceAll(category, "_", " ")
	if label == "" {
		label = "place"
	}
	// Caser хранит состояние, поэтому создаётся на каждый вызов
	return fmt.Sprintf("%s #%s", cases.Title(language.Und).String(label), id)
}

func prefixedTags(tags map[string]string, prefix string) map[string]string {
	var out map[string]string
	for k, v := range tags {
		if !strings.HasPrefix(k, prefix) || v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[strings.TrimPrefix(k, prefix)] = v
	}
	return out
}

func detailsFromTags(tags map[string]string) map[string]string {
	var out map[string]string
	set := func(k, v string) {
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = v
	}

	for _, key := range detailTags {
		if v := tags[key]; v != "" {
			set(key, v)
		}
	}
	for k, v := range tags {
		if strings.HasPrefix(k, "contact:") && v != "" {
			set(k, v)
		}
	}
	return out
}
