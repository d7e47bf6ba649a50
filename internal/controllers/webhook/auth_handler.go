package webhook

import (
	"crypto/subtle"
	"errors"

	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// SecretTokenHeader carries the secret token given to setWebhook on every webhook push.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// SecretTokenMiddleware rejects webhook requests whose secret token header does not
// match secretToken. An empty secretToken disables the check.
func SecretTokenMiddleware(secretToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secretToken == "" {
			return c.Next()
		}
		got := c.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secretToken)) != 1 {
			zerolog.Ctx(c.UserContext()).Warn().Str("remote", c.IP()).Msg("Webhook request with invalid secret token")
			return richerrors.Error{
				ExternalMsg: "Invalid secret token",
				Err:         errors.New("secret token header missing or mismatched"),
				Code:        fiber.StatusUnauthorized,
			}
		}
		return c.Next()
	}
}
