package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/services"
)

// --- mock account service ---

type mockAccountService struct {
	createAccountFn    func(ctx context.Context, name string, accountType models.AccountType, openingBalance money.Amount) (*models.Account, error)
	getAccountByIDFn   func(ctx context.Context, id string) (*models.Account, error)
	getAccountByNameFn func(ctx context.Context, name string) (*models.Account, error)
	updateAccountFn    func(ctx context.Context, id string, fields services.AccountUpdate) (*models.Account, error)
	deleteAccountFn    func(ctx context.Context, id string) error
}

func (m *mockAccountService) CreateAccount(ctx context.Context, name string, accountType models.AccountType, openingBalance money.Amount) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(ctx, name, accountType, openingBalance)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(ctx, id)
	}
	return &models.Account{Base: models.Base{ID: id}}, nil
}

func (m *mockAccountService) GetAccountByName(ctx context.Context, name string) (*models.Account, error) {
	if m.getAccountByNameFn != nil {
		return m.getAccountByNameFn(ctx, name)
	}
	return &models.Account{Name: name}, nil
}

func (m *mockAccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return []models.Account{}, nil
}

func (m *mockAccountService) UpdateAccount(ctx context.Context, id string, fields services.AccountUpdate) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(ctx, id, fields)
	}
	return &models.Account{Base: models.Base{ID: id}}, nil
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, id string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(ctx, id)
	}
	return nil
}

// verify interface compliance
var _ services.AccountServicer = (*mockAccountService)(nil)

func setupAccountRouter(handler *AccountHandler) *gin.Engine {
	r := gin.New()
	r.POST("/accounts", handler.CreateAccount)
	r.GET("/accounts", handler.ListAccounts)
	r.GET("/accounts/lookup", handler.GetAccountByName)
	r.GET("/accounts/:id", handler.GetAccountByID)
	r.PUT("/accounts/:id", handler.UpdateAccount)
	r.DELETE("/accounts/:id", handler.DeleteAccount)
	return r
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		acctSvc := &mockAccountService{
			createAccountFn: func(_ context.Context, name string, accountType models.AccountType, opening money.Amount) (*models.Account, error) {
				return &models.Account{
					Base:    models.Base{ID: "acc-1"},
					Name:    name,
					Type:    accountType,
					Balance: opening,
				}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Checking","type":"bank","opening_balance":"100.50"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		acct := result["account"].(map[string]interface{})
		if acct["name"] != "Checking" {
			t.Errorf("expected name Checking, got %v", acct["name"])
		}
		if acct["balance"] != "100.50" {
			t.Errorf("expected opening balance \"100.50\", got %v", acct["balance"])
		}
		if result["balance"] != "100.50" {
			t.Errorf("expected balance \"100.50\", got %v", result["balance"])
		}
	})

	t.Run("accepts numeric amounts", func(t *testing.T) {
		var got money.Amount
		acctSvc := &mockAccountService{
			createAccountFn: func(_ context.Context, _ string, _ models.AccountType, opening money.Amount) (*models.Account, error) {
				got = opening
				return &models.Account{Balance: opening}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Cash","opening_balance":12.5}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Cents() != 1250 {
			t.Errorf("expected 1250 cents, got %d", got.Cents())
		}
	})

	t.Run("returns 400 for missing name", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockViewService{}))

		rec := doRequest(r, "POST", "/accounts", `{"type":"cash"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 for unknown type", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockViewService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Broker","type":"investment"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 for too many decimals", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockViewService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Cash","opening_balance":"1.005"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("passes service validation errors through with field", func(t *testing.T) {
		acctSvc := &mockAccountService{
			createAccountFn: func(context.Context, string, models.AccountType, money.Amount) (*models.Account, error) {
				return nil, apperrors.WithField(apperrors.ErrInvalidInput, "name", "account name is required")
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":" "}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "name")
	})
}

func TestAccountHandler_ListAccounts(t *testing.T) {
	views := &mockViewService{
		accountBalancesFn: func(context.Context) ([]services.AccountBalance, error) {
			return []services.AccountBalance{
				{AccountID: "a", Name: "Checking", OpeningBalance: cents(100), Balance: cents(150)},
			}, nil
		},
	}
	r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, views))

	rec := doRequest(r, "GET", "/accounts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	accounts := parseJSON(t, rec)["accounts"].([]interface{})
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	first := accounts[0].(map[string]interface{})
	if first["balance"] != "150.00" || first["opening_balance"] != "100.00" {
		t.Errorf("unexpected balances: %v", first)
	}
}

func TestAccountHandler_GetAccountByID(t *testing.T) {
	t.Run("returns account with derived balance", func(t *testing.T) {
		views := &mockViewService{
			accountBalanceFn: func(_ context.Context, id string) (*services.AccountBalance, error) {
				return &services.AccountBalance{AccountID: id, Balance: cents(42)}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, views))

		rec := doRequest(r, "GET", "/accounts/acc-1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["balance"] != "42.00" {
			t.Errorf("expected balance 42.00, got %v", result["balance"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getAccountByIDFn: func(context.Context, string) (*models.Account, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "GET", "/accounts/missing", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_NOT_FOUND")
	})
}

func TestAccountHandler_GetAccountByName(t *testing.T) {
	t.Run("looks up by name", func(t *testing.T) {
		var asked string
		acctSvc := &mockAccountService{
			getAccountByNameFn: func(_ context.Context, name string) (*models.Account, error) {
				asked = name
				return &models.Account{Base: models.Base{ID: "acc-1"}, Name: name}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "GET", "/accounts/lookup?name=Main%20Wallet", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if asked != "Main Wallet" {
			t.Errorf("expected lookup of %q, got %q", "Main Wallet", asked)
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockViewService{}))

		rec := doRequest(r, "GET", "/accounts/lookup", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "name")
	})
}

func TestAccountHandler_UpdateAccount(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var got services.AccountUpdate
		acctSvc := &mockAccountService{
			updateAccountFn: func(_ context.Context, id string, fields services.AccountUpdate) (*models.Account, error) {
				got = fields
				return &models.Account{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "PUT", "/accounts/acc-1", `{"opening_balance":"10"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name != nil || got.Type != nil {
			t.Errorf("expected name and type to be untouched, got %+v", got)
		}
		if got.OpeningBalance == nil || got.OpeningBalance.Cents() != 1000 {
			t.Errorf("expected opening balance 1000 cents, got %v", got.OpeningBalance)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		acctSvc := &mockAccountService{
			updateAccountFn: func(context.Context, string, services.AccountUpdate) (*models.Account, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "PUT", "/accounts/missing", `{"name":"x"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deleted string
		acctSvc := &mockAccountService{
			deleteAccountFn: func(_ context.Context, id string) error {
				deleted = id
				return nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "DELETE", "/accounts/acc-1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != "acc-1" {
			t.Errorf("expected acc-1 to be deleted, got %q", deleted)
		}
	})

	t.Run("returns 500 on storage failure", func(t *testing.T) {
		acctSvc := &mockAccountService{
			deleteAccountFn: func(context.Context, string) error {
				return apperrors.ErrStorage
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockViewService{}))

		rec := doRequest(r, "DELETE", "/accounts/acc-1", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STORAGE_ERROR")
	})
}
