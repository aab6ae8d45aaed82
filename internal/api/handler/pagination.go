package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

const (
	headerTotalCount      = "X-Total-Count"
	headerContentRange    = "Content-Range"
	headerIdempotencyKey  = "Idempotency-Key"
	headerReplayed        = "Idempotent-Replayed"
	headerContractsClosed = "X-Contracts-Closed"
)

// queryInt reads an optional integer query parameter.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

// pageParams reads the 0-based page and the page size. Bounds are applied by
// the services.
func pageParams(c echo.Context) (page, size int, err error) {
	if page, err = queryInt(c, "page"); err != nil {
		return 0, 0, err
	}
	if size, err = queryInt(c, "size"); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be a date formatted as 2006-01-02")
	}
	return d, nil
}

// queryInstant reads an optional RFC 3339 timestamp; a bare date means
// midnight UTC of that day.
func queryInstant(c echo.Context, name string) (time.Time, bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true, nil
	}
	if d, err := domain.ParseDate(raw); err == nil {
		return d, true, nil
	}
	return time.Time{}, false, echo.NewHTTPError(http.StatusBadRequest, name+" must be an RFC 3339 timestamp or a date")
}

// writePage renders one page of a listing. X-Total-Count is always set. When
// the page holds fewer items than total the response is 206 with a
// Content-Range of "<unit> first-last/total".
func writePage(c echo.Context, unit string, body any, count, page, size int, total int64) error {
	h := c.Response().Header()
	h.Set(headerTotalCount, strconv.FormatInt(total, 10))

	if int64(count) >= total {
		return c.JSON(http.StatusOK, body)
	}

	if count == 0 {
		h.Set(headerContentRange, fmt.Sprintf("%s */%d", unit, total))
	} else {
		first := page * size
		h.Set(headerContentRange, fmt.Sprintf("%s %d-%d/%d", unit, first, first+count-1, total))
	}
	return c.JSON(http.StatusPartialContent, body)
}
