package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	applogger "FinScope/pkg/logger"
)

// Recover turns a handler panic into a logged 500 using the API envelope.
// Nothing is written when the response was already committed, which is the
// case for upgraded websocket connections.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				l.Error("handler panic",
					applogger.String("panic", fmt.Sprint(r)),
					applogger.String("route", routeLabel(c)),
					applogger.String("method", c.Request().Method),
					applogger.String("stack", string(debug.Stack())),
				)
				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"status":  http.StatusInternalServerError,
					"message": http.StatusText(http.StatusInternalServerError),
					"data": []map[string]string{{
						"code":    "INTERNAL_ERROR",
						"message": "unexpected server error",
					}},
				})
			}()
			return next(c)
		}
	}
}
