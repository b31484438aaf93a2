package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "microlending-engine/internal/domain/loan"
	"microlending-engine/internal/domain/uow"
	"microlending-engine/internal/testutil/loanmock"
	"microlending-engine/internal/testutil/uowmock"
	uc "microlending-engine/internal/usecase/request"
	"microlending-engine/pkg/id"

	"github.com/labstack/echo/v4"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func validLoanBody() map[string]any {
	return map[string]any{
		"amount":            1000,
		"purpose":           "Seed purchase",
		"duration_days":     90,
		"interest_rate_bps": 1000,
		"collateral": map[string]any{
			"asset_type":        "Future harvest",
			"estimated_value":   1500,
			"verification_hash": id.NewHash64(),
		},
	}
}

var testBorrower = strings.Repeat("b", 32)

// -------- tests --------

func TestCreateLoan_Success(t *testing.T) {
	e := newEchoWithValidator()
	h := NewLoanHandler(uc.NewUsecase(&loanmock.Repo{}, uowmock.New()))

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(validLoanBody()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerCallerID, testBorrower)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	var got uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Borrower != testBorrower || got.Amount != 1000 {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.Status != string(domain.StatusPending) {
		t.Fatalf("status = %s, want pending", got.Status)
	}
	if got.TotalDue != 1100 {
		t.Fatalf("total_due = %d, want 1100", got.TotalDue)
	}
}

func TestCreateLoan_MissingCaller(t *testing.T) {
	e := newEchoWithValidator()
	h := NewLoanHandler(uc.NewUsecase(&loanmock.Repo{
		CreateFn: func(ctx context.Context, l *domain.LoanRequest) error {
			t.Fatalf("Create must not be called without a caller identity")
			return nil
		},
	}, uowmock.New()))

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(validLoanBody()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	// Header absent entirely, and again with a malformed value.
	for _, caller := range []string{"", "not-hex", strings.Repeat("B", 32)} {
		if caller != "" {
			req.Header.Set(headerCallerID, caller)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h.CreateLoan(c); err != nil {
			t.Fatalf("CreateLoan error: %v", err)
		}
		if rec.Code != stdhttp.StatusUnauthorized {
			t.Fatalf("caller=%q status = %d, want 401", caller, rec.Code)
		}
	}
}

func TestCreateLoan_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := NewLoanHandler(uc.NewUsecase(&loanmock.Repo{}, uowmock.New()))

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", strings.NewReader(`{"amount":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerCallerID, testBorrower)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateLoan_ValidationDetails(t *testing.T) {
	e := newEchoWithValidator()
	h := NewLoanHandler(uc.NewUsecase(&loanmock.Repo{}, uowmock.New()))

	body := validLoanBody()
	body["duration_days"] = 2000
	body["collateral"].(map[string]any)["verification_hash"] = "short"

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerCallerID, testBorrower)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !containsFieldMsg(er.Details, "DurationDays", "less than or equal") {
		t.Fatalf("missing duration detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "VerificationHash", "64-char") {
		t.Fatalf("missing hash detail: %+v", er.Details)
	}
}

func TestGetLoan_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	h := NewLoanHandler(uc.NewUsecase(&loanmock.Repo{}, uowmock.New()))

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/"+strings.Repeat("f", 32), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(strings.Repeat("f", 32))

	if err := h.GetLoan(c); err != nil {
		t.Fatalf("GetLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCancelLoan(t *testing.T) {
	loanID := strings.Repeat("1", 32)

	newHandler := func(status domain.Status) (*LoanHandler, *domain.LoanRequest) {
		l := &domain.LoanRequest{LoanID: loanID, Borrower: testBorrower, Status: status}
		repo := &loanmock.Repo{}
		uw := uowmock.Passthrough(uow.Repos{Loans: repo}, func(id string) (*domain.LoanRequest, error) {
			if id == loanID {
				return l, nil
			}
			return nil, domain.ErrNotFound
		})
		return NewLoanHandler(uc.NewUsecase(repo, uw)), l
	}

	do := func(h *LoanHandler, caller string) *httptest.ResponseRecorder {
		e := newEchoWithValidator()
		req := httptest.NewRequest(stdhttp.MethodDelete, "/loans/"+loanID, nil)
		req.Header.Set(headerCallerID, caller)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("loan_id")
		c.SetParamValues(loanID)
		if err := h.CancelLoan(c); err != nil {
			t.Fatalf("CancelLoan error: %v", err)
		}
		return rec
	}

	t.Run("success", func(t *testing.T) {
		h, l := newHandler(domain.StatusPending)
		if rec := do(h, testBorrower); rec.Code != stdhttp.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if l.Status != domain.StatusCancelled {
			t.Fatalf("loan status = %s, want cancelled", l.Status)
		}
	})

	t.Run("wrong caller", func(t *testing.T) {
		h, _ := newHandler(domain.StatusPending)
		if rec := do(h, strings.Repeat("c", 32)); rec.Code != stdhttp.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("already funded", func(t *testing.T) {
		h, _ := newHandler(domain.StatusFunded)
		if rec := do(h, testBorrower); rec.Code != stdhttp.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})
}

func TestWriteDomainErr_Unknown(t *testing.T) {
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := writeDomainErr(c, errors.New("disk on fire")); err != nil {
		t.Fatalf("writeDomainErr: %v", err)
	}
	if rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
