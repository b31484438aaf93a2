package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	fundingDomain "microlending-engine/internal/domain/funding"
	"microlending-engine/internal/domain/ledger"
	"microlending-engine/internal/domain/loan"
	repaymentDomain "microlending-engine/internal/domain/repayment"
	"microlending-engine/internal/usecase/defaultclaim"
)

// ---- helpers ----

const headerCallerID = "Ax-Caller-Id"

// callerID extracts the session-authenticated identity injected by the
// gateway. The engine only checks equality against it; session verification
// is not its job.
func callerID(c echo.Context) (string, bool) {
	v := strings.TrimSpace(c.Request().Header.Get(headerCallerID))
	if !reHex32.MatchString(v) {
		return "", false
	}
	return v, true
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid Ax-Caller-Id"})
}

// writeDomainErr maps the engine's error taxonomy onto HTTP statuses.
func writeDomainErr(c echo.Context, err error) error {
	var code int
	switch {
	case errors.Is(err, loan.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, loan.ErrUnauthorized), errors.Is(err, fundingDomain.ErrNoContribution):
		code = http.StatusForbidden
	case errors.Is(err, loan.ErrInvalidStatus), errors.Is(err, fundingDomain.ErrAlreadyClaimed):
		code = http.StatusConflict
	case errors.Is(err, fundingDomain.ErrOverFunding),
		errors.Is(err, repaymentDomain.ErrOverRepayment),
		errors.Is(err, defaultclaim.ErrNotInDefault):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrInvalidAmount),
		errors.Is(err, loan.ErrInvalidDuration),
		errors.Is(err, loan.ErrInvalidRate),
		errors.Is(err, loan.ErrInvalidCollateral):
		code = http.StatusBadRequest
	case errors.Is(err, ledger.ErrTransferFailed):
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
