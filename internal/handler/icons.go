package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/abdusco/linkhub/internal/icon"
	"github.com/labstack/echo/v4"
)

// UploadIcon handles POST /icons. It reads the multipart "file" field and
// answers with the normalized icon; nothing is stored server side.
func UploadIcon(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if file.Size > icon.MaxSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, icon.ErrTooLarge.Error())
	}

	src, err := file.Open()
	if err != nil {
		return internalError(err, "Failed to read file")
	}
	defer src.Close()

	body, err := io.ReadAll(io.LimitReader(src, icon.MaxSize+1))
	if err != nil {
		return internalError(err, "Failed to read file")
	}

	created, err := icon.FromUpload(file.Filename, file.Header.Get(echo.HeaderContentType), body)
	switch {
	case errors.Is(err, icon.ErrTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return respond(c, http.StatusOK, created)
}
