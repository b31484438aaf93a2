package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"microlending-engine/internal/usecase/repayment"
)

type RepaymentHandler struct{ uc *repayment.Usecase }

func NewRepaymentHandler(uc *repayment.Usecase) *RepaymentHandler { return &RepaymentHandler{uc: uc} }

type repayReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *RepaymentHandler) Repay(c echo.Context) error {
	borrower, ok := callerID(c)
	if !ok {
		return unauthenticated(c)
	}
	var req repayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Repay(c.Request().Context(), borrower, c.Param("loan_id"), req.Amount)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RepaymentHandler) TotalDue(c echo.Context) error {
	due, err := h.uc.TotalDue(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loan_id":   c.Param("loan_id"),
		"total_due": due,
	})
}
