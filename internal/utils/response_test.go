package utils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, handler fiber.Handler) (int, APIResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload APIResponse
	require.NoError(t, json.Unmarshal(body, &payload))

	return resp.StatusCode, payload
}

func TestSendSuccess(t *testing.T) {
	status, payload := perform(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "fetched", fiber.Map{"id": 1})
	})

	require.Equal(t, fiber.StatusOK, status)
	require.True(t, payload.Success)
	require.Equal(t, "fetched", payload.Message)
	require.NotNil(t, payload.Data)
}

func TestSendCreated(t *testing.T) {
	status, payload := perform(t, func(c *fiber.Ctx) error {
		return SendCreated(c, "created", nil)
	})

	require.Equal(t, fiber.StatusCreated, status)
	require.True(t, payload.Success)
	require.Equal(t, "created", payload.Message)
}

func TestSendSuccessWithStatusDefaults(t *testing.T) {
	status, payload := perform(t, func(c *fiber.Ctx) error {
		return SendSuccessWithStatus(c, 0, "", nil)
	})

	require.Equal(t, fiber.StatusOK, status)
	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
}

func TestSendError(t *testing.T) {
	status, payload := perform(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusNotFound, "record not found")
	})

	require.Equal(t, fiber.StatusNotFound, status)
	require.False(t, payload.Success)
	require.Equal(t, "record not found", payload.Message)
	require.Nil(t, payload.Data)
}
