package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
		logged  bool
	}{
		{
			name:    "client error is not logged",
			err:     echo.NewHTTPError(http.StatusBadRequest, "Title and URL are required"),
			code:    http.StatusBadRequest,
			message: "Title and URL are required",
		},
		{
			name:    "not found is not logged",
			err:     echo.NewHTTPError(http.StatusNotFound, "Link not found"),
			code:    http.StatusNotFound,
			message: "Link not found",
		},
		{
			name:    "server error logs the cause",
			err:     internalError(errors.New("disk I/O error"), "Failed to fetch links"),
			code:    http.StatusInternalServerError,
			message: "Failed to fetch links",
			logged:  true,
		},
		{
			name:    "plain error becomes a generic 500",
			err:     errors.New("disk I/O error"),
			code:    http.StatusInternalServerError,
			message: "Internal server error",
			logged:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/links", nil)
			rec := httptest.NewRecorder()
			ErrorHandler(tt.err, e.NewContext(req, rec))

			assert.Equal(t, tt.code, rec.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
			assert.NotContains(t, rec.Body.String(), "disk I/O")

			if tt.logged {
				assert.Contains(t, buf.String(), "disk I/O error")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
