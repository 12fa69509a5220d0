package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONErrorHandler renders every error that escapes a handler as an
// ErrorResponse. Echo's own errors keep their status and message; anything
// else becomes a 500 whose cause is only exposed in dev mode.
func JSONErrorHandler(devMode bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok || msg == "" {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, ErrorResponse{Error: msg, Code: he.Code})
			return
		}

		resp := ErrorResponse{Error: "internal server error", Code: http.StatusInternalServerError}
		if devMode {
			resp.Details = err.Error()
		}
		_ = c.JSON(http.StatusInternalServerError, resp)
	}
}
