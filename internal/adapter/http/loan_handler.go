package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"microlending-engine/internal/usecase/request"
)

type LoanHandler struct{ uc *request.Usecase }

func NewLoanHandler(uc *request.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type collateralReq struct {
	AssetType        string `json:"asset_type" validate:"required,max=100"`
	EstimatedValue   int64  `json:"estimated_value" validate:"required,gt=0"`
	VerificationHash string `json:"verification_hash" validate:"required,hex64"`
}

type loanReq struct {
	Amount          int64         `json:"amount" validate:"required,gt=0"`
	Purpose         string        `json:"purpose" validate:"required,max=500"`
	DurationDays    uint32        `json:"duration_days" validate:"required,gte=1,lte=1095"`
	InterestRateBps uint32        `json:"interest_rate_bps" validate:"lte=10000"`
	Collateral      collateralReq `json:"collateral" validate:"required"`
}

func (r loanReq) toInput() request.LoanInput {
	return request.LoanInput{
		Amount:          r.Amount,
		Purpose:         r.Purpose,
		DurationDays:    r.DurationDays,
		InterestRateBps: r.InterestRateBps,
		Collateral: request.CollateralInput{
			AssetType:        r.Collateral.AssetType,
			EstimatedValue:   r.Collateral.EstimatedValue,
			VerificationHash: r.Collateral.VerificationHash,
		},
	}
}

func bindLoanReq(c echo.Context) (*loanReq, error) {
	var req loanReq
	if err := c.Bind(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return &req, nil
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	borrower, ok := callerID(c)
	if !ok {
		return unauthenticated(c)
	}
	req, errResp := bindLoanReq(c)
	if req == nil {
		return errResp
	}
	dto, err := h.uc.Create(c.Request().Context(), borrower, req.toInput())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) UpdateLoan(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthenticated(c)
	}
	req, errResp := bindLoanReq(c)
	if req == nil {
		return errResp
	}
	dto, err := h.uc.Update(c.Request().Context(), caller, c.Param("loan_id"), req.toInput())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) CancelLoan(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := h.uc.Cancel(c.Request().Context(), caller, c.Param("loan_id")); err != nil {
		return writeDomainErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
