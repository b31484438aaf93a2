package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "microlending-engine/internal/adapter/http"
	"microlending-engine/internal/adapter/middleware"
	"microlending-engine/internal/adapter/repository/mysql"
	"microlending-engine/internal/config"
	"microlending-engine/internal/infrastructure/cache"
	"microlending-engine/internal/infrastructure/db"
	"microlending-engine/internal/usecase/defaultclaim"
	"microlending-engine/internal/usecase/funding"
	"microlending-engine/internal/usecase/history"
	"microlending-engine/internal/usecase/repayment"
	"microlending-engine/internal/usecase/request"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	loans := mysql.NewLoanRepository(gdb)
	fundings := mysql.NewFundingRepository(gdb)
	repayments := mysql.NewRepaymentRepository(gdb)
	uw := mysql.NewGormUoW(gdb)
	grace := time.Duration(cfg.DefaultGraceDays) * 24 * time.Hour

	requestUC := request.NewUsecase(loans, uw)
	fundingUC := funding.NewUsecase(loans, fundings, uw, cfg.EscrowAccount)
	repaymentUC := repayment.NewUsecase(loans, repayments, uw, cfg.EscrowAccount)
	claimUC := defaultclaim.NewUsecase(loans, uw, cfg.EscrowAccount, grace)
	historyUC := history.NewUsecase(loans, fundings, repayments, grace)

	h := httpadp.NewHandler(gdb)
	loanH := httpadp.NewLoanHandler(requestUC)
	fundingH := httpadp.NewFundingHandler(fundingUC)
	repaymentH := httpadp.NewRepaymentHandler(repaymentUC)
	claimH := httpadp.NewClaimHandler(claimUC)
	historyH := httpadp.NewHistoryHandler(historyUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	// routes
	e.GET("/health", h.Health)

	e.POST("/loans", loanH.CreateLoan)
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.PUT("/loans/:loan_id", loanH.UpdateLoan)
	e.DELETE("/loans/:loan_id", loanH.CancelLoan)

	e.POST("/loans/:loan_id/fund", fundingH.Fund)
	e.GET("/loans/:loan_id/share", fundingH.LenderShare)

	e.POST("/loans/:loan_id/repay", repaymentH.Repay)
	e.GET("/loans/:loan_id/due", repaymentH.TotalDue)

	e.POST("/loans/:loan_id/claim", claimH.ClaimDefault)
	e.GET("/loans/:loan_id/default", claimH.DefaultStatus)

	e.GET("/loans/:loan_id/fundings", historyH.GetLoanFundings)
	e.GET("/loans/:loan_id/repayments", historyH.GetLoanRepayments)
	e.GET("/loans/:loan_id/history", historyH.GetLoanHistory)
	e.GET("/borrowers/:id/loans", historyH.GetBorrowerLoans)
	e.GET("/borrowers/:id/metrics", historyH.GetBorrowerMetrics)
	e.GET("/lenders/:id/loans", historyH.GetLenderLoans)
	e.GET("/stats", historyH.GetSystemStats)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
