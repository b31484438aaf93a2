package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"microlending-engine/internal/usecase/defaultclaim"
)

type ClaimHandler struct{ uc *defaultclaim.Usecase }

func NewClaimHandler(uc *defaultclaim.Usecase) *ClaimHandler { return &ClaimHandler{uc: uc} }

func (h *ClaimHandler) ClaimDefault(c echo.Context) error {
	lender, ok := callerID(c)
	if !ok {
		return unauthenticated(c)
	}
	dto, err := h.uc.ClaimDefault(c.Request().Context(), lender, c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ClaimHandler) DefaultStatus(c echo.Context) error {
	inDefault, err := h.uc.CheckDefaultStatus(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loan_id":    c.Param("loan_id"),
		"in_default": inDefault,
	})
}
