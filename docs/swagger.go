// Package docs Geo Gateway API.
//
// Бэкенд голосовой карты: поиск мест рядом по разговорной категории (Overpass API),
// прямое и обратное геокодирование (Nominatim), история поисков и маркеры для офлайн-синхронизации.
//
// Основные возможности:
// - Поиск POI в радиусе с сортировкой по расстоянию
// - Геокодирование с кешированием в Redis
// - Лимит запросов на клиента в фиксированном окне
// - Асинхронная запись истории через Redis Streams
//
// Спецификация регистрируется в swag в docs.go и отдаётся по /swagger/doc.json.
package docs
