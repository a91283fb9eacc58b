package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/dma/backend/internal/application/identity"
	applending "github.com/dma/backend/internal/application/lending"
	"github.com/dma/backend/internal/infrastructure/auth"
	"github.com/dma/backend/internal/infrastructure/config"
	"github.com/dma/backend/internal/infrastructure/persistence"
	"github.com/dma/backend/internal/infrastructure/persistence/models"
	"github.com/dma/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnvelope mirrors the standard response envelope for assertions
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.LoanModel{},
		&models.EmiScheduleModel{},
		&models.PaymentModel{},
	))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "dma-backend-test",
		MaxRefreshCount:        10,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	log := zap.NewNop()

	uow := persistence.NewGormUnitOfWork(db)
	loanRepo := persistence.NewGormLoanRepository(db)
	emiRepo := persistence.NewGormEmiScheduleRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	userRepo := persistence.NewGormUserRepository(db)

	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, log)
	loanService := applending.NewLoanService(uow, loanRepo, emiRepo, log)
	repaymentService := applending.NewRepaymentService(uow, loanRepo, paymentRepo, log)

	r := router.New(router.Config{
		Environment:    "test",
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	r.Register(NewSystemHandler(db, "test"))
	r.Register(NewAuthHandler(authService))
	r.Register(NewLoanHandler(loanService))
	r.Register(NewRepaymentHandler(repaymentService))
	return r.Setup()
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

// doRequest performs a JSON request against the test router
func doRequest(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var envelope testEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	envelope := decodeEnvelope(t, w)
	require.True(t, envelope.Success, "expected success envelope, got: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

// registerAndLogin creates an account and returns its access token
func registerAndLogin(t *testing.T, engine *gin.Engine, email string) string {
	t.Helper()

	w := doRequest(t, engine, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email:    email,
		Name:     "Alice",
		Password: "password1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, engine, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email:    email,
		Password: "password1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login LoginResponse
	decodeData(t, w, &login)
	require.NotEmpty(t, login.Token.AccessToken)
	return login.Token.AccessToken
}

// createTestLoan creates a standard loan and returns its detail response
func createTestLoan(t *testing.T, engine *gin.Engine, token string, mutate func(*CreateLoanRequest)) LoanDetailResponse {
	t.Helper()

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	emiStart := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	req := CreateLoanRequest{
		Name:          "Bike loan",
		Category:      "VEHICLE",
		Lender:        "City Bank",
		Principal:     mustDecimal(t, "100000"),
		InterestRate:  mustDecimal(t, "12"),
		TenureMonths:  12,
		StartDate:     &start,
		EmiStartDate:  &emiStart,
		EmiDayOfMonth: 10,
	}
	if mutate != nil {
		mutate(&req)
	}

	w := doRequest(t, engine, http.MethodPost, "/api/v1/loans", token, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var detail LoanDetailResponse
	decodeData(t, w, &detail)
	return detail
}
