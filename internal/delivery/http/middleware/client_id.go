package middleware

import (
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderClientID - явный идентификатор клиента (установка приложения)
	HeaderClientID = "X-Client-ID"

	clientIDKey    = "client_id"
	maxClientIDLen = 128
)

// ClientID определяет идентичность клиента для rate limit и истории:
// X-Client-ID, затем первый адрес X-Forwarded-For (если прокси доверенный), затем адрес соединения.
func ClientID(trustForwardedFor bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(clientIDKey, resolveClientID(c, trustForwardedFor))
		return c.Next()
	}
}

// GetClientID возвращает идентичность, сохранённую middleware ClientID
func GetClientID(c *fiber.Ctx) string {
	if id, ok := c.Locals(clientIDKey).(string); ok && id != "" {
		return id
	}
	return c.IP()
}

func resolveClientID(c *fiber.Ctx, trustForwardedFor bool) string {
	if id := truncateID(strings.TrimSpace(c.Get(HeaderClientID)), maxClientIDLen); id != "" {
		return id
	}

	if trustForwardedFor {
		forwarded := c.Get(fiber.HeaderXForwardedFor)
		if first, _, _ := strings.Cut(forwarded, ","); strings.TrimSpace(first) != "" {
			return strings.TrimSpace(first)
		}
	}

	return c.IP()
}

// truncateID обрезает id до max байт по границе руны; невалидные байты UTF-8 выбрасываются
func truncateID(id string, max int) string {
	id = strings.ToValidUTF8(id, "")
	if len(id) <= max {
		return id
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(id[cut]) {
		cut--
	}
	return id[:cut]
}
