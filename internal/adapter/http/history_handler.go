package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"microlending-engine/internal/usecase/history"
)

type HistoryHandler struct{ uc *history.Usecase }

func NewHistoryHandler(uc *history.Usecase) *HistoryHandler { return &HistoryHandler{uc: uc} }

func (h *HistoryHandler) GetLoanFundings(c echo.Context) error {
	out, err := h.uc.GetLoanFundings(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HistoryHandler) GetLoanRepayments(c echo.Context) error {
	out, err := h.uc.GetLoanRepayments(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HistoryHandler) GetLoanHistory(c echo.Context) error {
	out, err := h.uc.GetLoanHistory(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HistoryHandler) GetBorrowerLoans(c echo.Context) error {
	out, err := h.uc.GetBorrowerLoans(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"borrower": c.Param("id"), "loan_ids": out})
}

func (h *HistoryHandler) GetLenderLoans(c echo.Context) error {
	out, err := h.uc.GetLenderLoans(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"lender": c.Param("id"), "loan_ids": out})
}

func (h *HistoryHandler) GetBorrowerMetrics(c echo.Context) error {
	out, err := h.uc.GetBorrowerMetrics(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HistoryHandler) GetSystemStats(c echo.Context) error {
	out, err := h.uc.GetSystemStats(c.Request().Context())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
