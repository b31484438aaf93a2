package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	fundingDomain "microlending-engine/internal/domain/funding"
	domain "microlending-engine/internal/domain/loan"
	"microlending-engine/internal/domain/uow"
	"microlending-engine/internal/testutil/fundingmock"
	"microlending-engine/internal/testutil/ledgermock"
	"microlending-engine/internal/testutil/loanmock"
	"microlending-engine/internal/testutil/uowmock"
	uc "microlending-engine/internal/usecase/funding"

	"github.com/labstack/echo/v4"
)

var (
	testLender = strings.Repeat("1", 32)
	testEscrow = strings.Repeat("e", 32)
	testLoanID = strings.Repeat("a", 32)
)

// newFundingHandler wires the handler against one pending loan and an
// in-memory ledger where the lender holds 10_000.
func newFundingHandler(l *domain.LoanRequest) (*FundingHandler, *ledgermock.Ledger) {
	led := ledgermock.New()
	led.Deposit(testLender, 10_000)

	var contribs []fundingDomain.Contribution
	loans := &loanmock.Repo{
		GetByLoanIDFn: func(ctx context.Context, id string) (*domain.LoanRequest, error) {
			if l != nil && l.LoanID == id {
				return l, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	fundings := &fundingmock.Repo{
		AppendFn: func(ctx context.Context, c *fundingDomain.Contribution) error {
			contribs = append(contribs, *c)
			return nil
		},
		ListByLoanFn: func(ctx context.Context, id uint64) ([]fundingDomain.Contribution, error) {
			return contribs, nil
		},
	}
	uw := uowmock.Passthrough(
		uow.Repos{Loans: loans, Fundings: fundings, Ledger: led},
		func(id string) (*domain.LoanRequest, error) { return loans.GetByLoanID(context.Background(), id) },
	)
	return NewFundingHandler(uc.NewUsecase(loans, fundings, uw, testEscrow)), led
}

func pendingLoanFixture() *domain.LoanRequest {
	return &domain.LoanRequest{
		ID:              7,
		LoanID:          testLoanID,
		Borrower:        testBorrower,
		Amount:          1_000,
		DurationDays:    90,
		InterestRateBps: 1000,
		Collateral:      domain.CollateralInfo{AssetType: "Harvest", EstimatedValue: 1_500},
		Status:          domain.StatusPending,
	}
}

func doFund(t *testing.T, h *FundingHandler, caller, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans/"+testLoanID+"/fund", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerCallerID, caller)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(testLoanID)
	if err := h.Fund(c); err != nil {
		t.Fatalf("Fund error: %v", err)
	}
	return rec
}

func TestFund_Created(t *testing.T) {
	h, led := newFundingHandler(pendingLoanFixture())

	rec := doFund(t, h, testLender, `{"amount":600}`)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	if bal, _ := led.Balance(context.Background(), testEscrow); bal != 600 {
		t.Fatalf("escrow = %d, want 600", bal)
	}
}

func TestFund_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(l *domain.LoanRequest)
		caller   string
		body     string
		wantCode int
	}{
		{"overshoot", func(l *domain.LoanRequest) { l.FundedAmount = 950 }, testLender, `{"amount":100}`, stdhttp.StatusUnprocessableEntity},
		{"self funding", nil, testBorrower, `{"amount":100}`, stdhttp.StatusForbidden},
		{"already funded", func(l *domain.LoanRequest) { l.Status = domain.StatusFunded }, testLender, `{"amount":100}`, stdhttp.StatusConflict},
		{"zero amount", nil, testLender, `{"amount":0}`, stdhttp.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := pendingLoanFixture()
			if tc.setup != nil {
				tc.setup(l)
			}
			h, _ := newFundingHandler(l)
			if rec := doFund(t, h, tc.caller, tc.body); rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d, body=%s", rec.Code, tc.wantCode, rec.Body.String())
			}
		})
	}
}

func TestLenderShare(t *testing.T) {
	l := pendingLoanFixture()
	h, _ := newFundingHandler(l)

	// Seed via the handler itself.
	if rec := doFund(t, h, testLender, `{"amount":600}`); rec.Code != stdhttp.StatusCreated {
		t.Fatalf("seed fund: %d", rec.Code)
	}

	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/"+testLoanID+"/share?lender="+testLender, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(testLoanID)

	if err := h.LenderShare(c); err != nil {
		t.Fatalf("LenderShare error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"share":600`) || !strings.Contains(body, `"share_bps":10000`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestLenderShare_BadQueryParam(t *testing.T) {
	h, _ := newFundingHandler(pendingLoanFixture())

	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/"+testLoanID+"/share?lender=nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(testLoanID)

	if err := h.LenderShare(c); err != nil {
		t.Fatalf("LenderShare error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
