package server_test

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"dirsync/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfig_Address(t *testing.T) {
	tests := []struct {
		name string
		cfg  server.Config
		want string
	}{
		{"Port", server.Config{Port: "8080"}, ":8080"},
		{"AutoIgnoresPort", server.Config{Port: "8080", Auto: true}, "0.0.0.0:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Address())
		})
	}
}

func TestConfig_CertFiles(t *testing.T) {
	cert, key := server.Config{CertPath: "/etc/dirsync"}.CertFiles()
	assert.Equal(t, filepath.Join("/etc/dirsync", "cert.pem"), cert)
	assert.Equal(t, filepath.Join("/etc/dirsync", "key.pem"), key)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler(zap.NewNop())})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	tests := []struct {
		path string
		code int
	}{
		{"/missing", fiber.StatusNotFound},
		{"/teapot", fiber.StatusTeapot},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.code, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "<p>Error Status: <span style='color:red;'>"+strconv.Itoa(tt.code)+"</span></p>", string(body))
	}
}
