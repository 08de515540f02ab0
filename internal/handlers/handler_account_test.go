package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/dto"
	"github.com/SscSPs/ledgerbook/internal/handlers"
	"github.com/SscSPs/ledgerbook/internal/middleware"
	"github.com/SscSPs/ledgerbook/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, accountID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter, actor domain.Actor) ([]domain.Account, error) {
	args := m.Called(ctx, filter, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, actor domain.Actor) error {
	args := m.Called(ctx, accountID, actor)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) GetTrialBalance(ctx context.Context, asOf time.Time, filter domain.TrialBalanceFilter, actor domain.Actor) (*domain.TrialBalanceReport, error) {
	args := m.Called(ctx, asOf, filter, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalanceReport), args.Error(1)
}
func (m *MockReportingService) GetProfitAndLoss(ctx context.Context, from, to time.Time, actor domain.Actor) (*domain.ProfitAndLossReport, error) {
	args := m.Called(ctx, from, to, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitAndLossReport), args.Error(1)
}
func (m *MockReportingService) GetBalanceSheet(ctx context.Context, asOf time.Time, actor domain.Actor) (*domain.BalanceSheetReport, error) {
	args := m.Called(ctx, asOf, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheetReport), args.Error(1)
}
func (m *MockReportingService) GetAccountLedger(ctx context.Context, accountID string, from, to *time.Time, actor domain.Actor) (*domain.LedgerReport, error) {
	args := m.Called(ctx, accountID, from, to, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerReport), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ReportingService = (*MockReportingService)(nil)

const (
	testJWTSecret = "test-secret-key-that-is-long-enough"
	testIssuer    = "ledgerbook-test"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           testJWTSecret,
		JWTIssuer:           testIssuer,
		BalanceTolerance:    decimal.New(1, -2),
		JournalNumberPrefix: "JE",
		JournalNumberWidth:  6,
		DefaultCurrency:     "USD",
	}
}

// newTestRouter builds the full route tree around the given services.
func newTestRouter(services *portssvc.ServiceContainer) (*gin.Engine, error) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	err := handlers.RegisterRoutes(r, testConfig(), services)
	return r, err
}

func bearer(actor domain.Actor) string {
	token, err := middleware.NewToken(testJWTSecret, testIssuer, actor, time.Hour)
	if err != nil {
		panic(err)
	}
	return "Bearer " + token
}

func doJSON(r http.Handler, method, url, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router               *gin.Engine
	mockAccountService   *MockAccountService
	mockReportingService *MockReportingService
	actor                domain.Actor
	auth                 string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	suite.mockAccountService = new(MockAccountService)
	suite.mockReportingService = new(MockReportingService)
	router, err := newTestRouter(&portssvc.ServiceContainer{
		Account:   suite.mockAccountService,
		Reporting: suite.mockReportingService,
	})
	suite.Require().NoError(err)
	suite.router = router
	suite.actor = domain.Actor{ID: uuid.NewString(), Role: domain.RoleAccountant}
	suite.auth = bearer(suite.actor)
}

func (suite *AccountHandlerTestSuite) decodeError(w *httptest.ResponseRecorder) handlers.ErrorResponse {
	var res handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	created := &domain.Account{
		AccountID:    uuid.NewString(),
		Code:         "1001",
		Name:         "Cash",
		AccountType:  domain.Asset,
		SubType:      domain.CurrentAsset,
		CurrencyCode: "USD",
		IsActive:     true,
		Balance:      decimal.Zero,
	}
	suite.mockAccountService.On("CreateAccount",
		mock.Anything,
		mock.MatchedBy(func(req dto.CreateAccountRequest) bool {
			return req.Code == "1001" && req.AccountType == domain.Asset && req.SubType == domain.CurrentAsset
		}),
		suite.actor,
	).Return(created, nil).Once()

	w := doJSON(suite.router, http.MethodPost, "/api/v1/accounts", suite.auth, map[string]any{
		"code":        "1001",
		"name":        "Cash",
		"accountType": "asset",
		"subType":     "current_asset",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var res dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal(created.AccountID, res.AccountID)
	suite.Equal("1001", res.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_BindingErrors() {
	w := doJSON(suite.router, http.MethodPost, "/api/v1/accounts", suite.auth, map[string]any{
		"code":           "1001",
		"name":           "Cash",
		"accountType":    "treasure",
		"subType":        "current_asset",
		"openingBalance": "-5",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	res := suite.decodeError(w)
	suite.Equal(apperrors.CodeInvalidInput, res.Code)
	suite.Equal(apperrors.KindValidation, res.Kind)
	suite.Equal("account_type", res.Details["AccountType"])
	suite.Equal("decimal_gte0", res.Details["OpeningBalance"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewBufferString(`{"code":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", suite.auth)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestServiceErrorsMapToStatus() {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"conflict", apperrors.Conflictf(apperrors.CodeDuplicateCode, "account code '1001' already exists"), http.StatusConflict, apperrors.CodeDuplicateCode},
		{"integrity", apperrors.Integrityf(apperrors.CodeTypeMismatch, "parent type mismatch"), http.StatusUnprocessableEntity, apperrors.CodeTypeMismatch},
		{"not found", apperrors.NotFoundf(apperrors.CodeInvalidParent, "parent missing"), http.StatusNotFound, apperrors.CodeInvalidParent},
		{"forbidden", apperrors.Forbiddenf("role 'auditor' may not write the ledger"), http.StatusForbidden, apperrors.CodeForbidden},
		{"internal", fmt.Errorf("db down: %w", context.DeadlineExceeded), http.StatusInternalServerError, apperrors.CodeInternal},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.mockAccountService.On("CreateAccount", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := doJSON(suite.router, http.MethodPost, "/api/v1/accounts", suite.auth, map[string]any{
				"code": "1001", "name": "Cash", "accountType": "asset", "subType": "current_asset",
			})

			suite.Equal(tt.status, w.Code)
			res := suite.decodeError(w)
			suite.Equal(tt.code, res.Code)
			if tt.status == http.StatusInternalServerError {
				suite.Equal("Failed to create account", res.Error, "internal detail is hidden")
			}
		})
	}
}

func (suite *AccountHandlerTestSuite) TestRequiresAuthentication() {
	w := doJSON(suite.router, http.MethodGet, "/api/v1/accounts", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("UNAUTHORIZED", suite.decodeError(w).Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_Filter() {
	accounts := []domain.Account{
		{AccountID: uuid.NewString(), Code: "5001", AccountType: domain.Expense, IsActive: true},
	}
	suite.mockAccountService.On("ListAccounts", mock.Anything,
		domain.AccountFilter{AccountType: domain.Expense, ActiveOnly: true, Limit: 100},
		suite.actor,
	).Return(accounts, nil).Once()

	w := doJSON(suite.router, http.MethodGet, "/api/v1/accounts?accountType=expense&activeOnly=true", suite.auth, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ListAccountsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Require().Len(res.Accounts, 1)
	suite.Equal("5001", res.Accounts[0].Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("GetAccountByID", mock.Anything, accountID, suite.actor).Return(nil, apperrors.ErrNotFound).Once()

	w := doJSON(suite.router, http.MethodGet, "/api/v1/accounts/"+accountID, suite.auth, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal(apperrors.KindNotFound, suite.decodeError(w).Kind)
}

func (suite *AccountHandlerTestSuite) TestUpdateAccount_PassesPatch() {
	accountID := uuid.NewString()
	updated := &domain.Account{AccountID: accountID, Code: "1001", Name: "Petty Cash", AccountType: domain.Asset}
	suite.mockAccountService.On("UpdateAccount", mock.Anything, accountID,
		mock.MatchedBy(func(req dto.UpdateAccountRequest) bool {
			return req.Name != nil && *req.Name == "Petty Cash" && req.Code == nil && req.ParentAccountID == nil
		}),
		suite.actor,
	).Return(updated, nil).Once()

	w := doJSON(suite.router, http.MethodPatch, "/api/v1/accounts/"+accountID, suite.auth, map[string]any{"name": "Petty Cash"})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeactivateAccount() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("DeactivateAccount", mock.Anything, accountID, suite.actor).Return(nil).Once()

	w := doJSON(suite.router, http.MethodDelete, "/api/v1/accounts/"+accountID, suite.auth, nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccountLedger() {
	accountID := uuid.NewString()
	report := &domain.LedgerReport{
		Account:        domain.Account{AccountID: accountID, Code: "1001", AccountType: domain.Asset},
		OpeningBalance: decimal.NewFromInt(10),
		Rows: []domain.LedgerRow{{
			Date:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			JournalNumber: "JE000001",
			Debit:         decimal.NewFromInt(5),
			Credit:        decimal.Zero,
			Balance:       decimal.NewFromInt(15),
		}},
		ClosingBalance: decimal.NewFromInt(15),
	}
	suite.mockReportingService.On("GetAccountLedger", mock.Anything, accountID,
		mock.MatchedBy(func(from *time.Time) bool { return from != nil && from.Format(dto.DateLayout) == "2024-01-01" }),
		(*time.Time)(nil),
		suite.actor,
	).Return(report, nil).Once()

	w := doJSON(suite.router, http.MethodGet, "/api/v1/accounts/"+accountID+"/ledger?from=2024-01-01", suite.auth, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.LedgerResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Require().Len(res.Rows, 1)
	suite.Equal("2024-02-01", res.Rows[0].Date)
	suite.True(res.ClosingBalance.Equal(decimal.NewFromInt(15)))

	w = doJSON(suite.router, http.MethodGet, "/api/v1/accounts/"+accountID+"/ledger?from=01-01-2024", suite.auth, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReportingService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
