package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCronApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/cron", CronSecret(secret, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendString("ran")
	})
	return app
}

func TestCronSecret(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		target string
		header string
		status int
	}{
		{name: "header", secret: "s3cret", target: "/cron", header: "s3cret", status: fiber.StatusOK},
		{name: "query token", secret: "s3cret", target: "/cron?token=s3cret", status: fiber.StatusOK},
		{name: "wrong header", secret: "s3cret", target: "/cron", header: "nope", status: fiber.StatusUnauthorized},
		{name: "missing", secret: "s3cret", target: "/cron", status: fiber.StatusUnauthorized},
		{name: "unconfigured", secret: "", target: "/cron?token=", status: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.target, nil)
			if tc.header != "" {
				req.Header.Set("x-cron-secret", tc.header)
			}
			resp, err := newCronApp(tc.secret).Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
