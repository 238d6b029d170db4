package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })

	for _, path := range []string{"/ok", "/missing"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(200) {
		t.Errorf("expected status 200, got %v", got)
	}
	second := entries[1].ContextMap()
	if second["status"] != int64(404) || second["path"] != "/missing" {
		t.Errorf("unexpected fields: %v", second)
	}
	if entries[1].Level != zap.WarnLevel {
		t.Errorf("expected warn level for handler errors, got %s", entries[1].Level)
	}
}
