package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/middleware"
	"github.com/example/vibrantflight/internal/models"
)

var errNotFinite = errors.New("number must be finite")

// number accepts a JSON number or a numeric string, as storefront forms send both.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		return n.assign(v)
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return n.assign(v)
}

func (n *number) assign(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errNotFinite
	}
	n.value, n.set = v, true
	return nil
}

// intOr returns the value as a whole number within ±limit, or fallback when absent.
func (n number) intOr(fallback, limit int) (int, bool) {
	if !n.set {
		return fallback, true
	}
	if n.value != math.Trunc(n.value) || math.Abs(n.value) > float64(limit) {
		return 0, false
	}
	return int(n.value), true
}

// firstSet picks the first value present in the request.
func firstSet(values ...number) number {
	for _, v := range values {
		if v.set {
			return v
		}
	}
	return number{}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return nil
}

func parseID(value, message string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, apperrors.Validation(message)
	}
	return id, nil
}

// principal returns the authenticated caller. Routes using it sit behind AuthMiddleware.
func principal(c *fiber.Ctx) (models.Principal, error) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return models.Principal{}, apperrors.Unauthorized("No token provided")
	}
	return p, nil
}
