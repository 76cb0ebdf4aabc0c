package handler

import (
	"strconv"

	"github.com/geo-gateway/internal/pkg/utils"
	"github.com/geo-gateway/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
)

// setRateLimitHeaders выставляет X-RateLimit-*; Reset - unix-время конца окна
func setRateLimitHeaders(c *fiber.Ctx, d *ratelimit.Decision) {
	if d == nil {
		return
	}
	c.Set(utils.HeaderRateLimitLimit, strconv.Itoa(d.Limit))
	c.Set(utils.HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
	c.Set(utils.HeaderRateLimitReset, strconv.FormatInt(d.ResetAt.Unix(), 10))
}
