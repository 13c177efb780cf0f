package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint probed by load balancers.  It does not
// touch the database, Redis or the broker: the process being able to answer
// is the signal.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
