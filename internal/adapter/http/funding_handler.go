package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"microlending-engine/internal/usecase/funding"
)

type FundingHandler struct{ uc *funding.Usecase }

func NewFundingHandler(uc *funding.Usecase) *FundingHandler { return &FundingHandler{uc: uc} }

type fundReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *FundingHandler) Fund(c echo.Context) error {
	lender, ok := callerID(c)
	if !ok {
		return unauthenticated(c)
	}
	var req fundReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Fund(c.Request().Context(), lender, c.Param("loan_id"), req.Amount)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// LenderShare serves both the absolute share and the basis-point share for
// ?lender=<id>.
func (h *FundingHandler) LenderShare(c echo.Context) error {
	lender := c.QueryParam("lender")
	if !reHex32.MatchString(lender) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lender query param must be 32-char lowercase hex"})
	}
	loanID := c.Param("loan_id")
	ctx := c.Request().Context()
	share, err := h.uc.CalculateLenderShare(ctx, lender, loanID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	bps, err := h.uc.CalculateLenderSharePercent(ctx, lender, loanID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loan_id":   loanID,
		"lender":    lender,
		"share":     share,
		"share_bps": bps,
	})
}
