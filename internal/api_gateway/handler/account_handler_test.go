package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paystream-engine/internal/domain/account"
	"github.com/paystream-engine/internal/domain/money"
	"github.com/paystream-engine/internal/domain/shared"
	"github.com/paystream-engine/internal/engine"
)

// MockAccountService mocks service.AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context) []account.Snapshot {
	args := m.Called(ctx)
	return args.Get(0).([]account.Snapshot)
}

func (m *MockAccountService) GetAccount(ctx context.Context, client shared.ClientID) (account.Snapshot, error) {
	args := m.Called(ctx, client)
	return args.Get(0).(account.Snapshot), args.Error(1)
}

func accountRouter(h *AccountHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/accounts", h.List)
	r.GET("/accounts/:id", h.GetByID)
	return r
}

func mustParseMoney(t *testing.T, text string) money.Money {
	t.Helper()
	m, err := money.Parse(text)
	require.NoError(t, err)
	return m
}

func TestAccountHandler_List(t *testing.T) {
	logger := slog.Default()

	t.Run("ReturnsAllSnapshots", func(t *testing.T) {
		mockService := &MockAccountService{}
		mockService.On("ListAccounts", mock.Anything).Return([]account.Snapshot{
			{Client: 1, Available: mustParseMoney(t, "1.5"), Held: mustParseMoney(t, "0.5")},
			{Client: 2, Available: mustParseMoney(t, "0"), Held: mustParseMoney(t, "0"), Locked: true},
		}).Once()

		h := NewAccountHandler(logger, mockService)
		w := httptest.NewRecorder()
		accountRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data AccountListResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Accounts, 2)
		assert.Equal(t, AccountResponse{Client: 1, Available: "1.5000", Held: "0.5000", Total: "2.0000"}, resp.Data.Accounts[0])
		assert.Equal(t, AccountResponse{Client: 2, Available: "0.0000", Held: "0.0000", Total: "0.0000", Locked: true}, resp.Data.Accounts[1])
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyLedgerReturnsEmptyList", func(t *testing.T) {
		mockService := &MockAccountService{}
		mockService.On("ListAccounts", mock.Anything).Return([]account.Snapshot{}).Once()

		h := NewAccountHandler(logger, mockService)
		w := httptest.NewRecorder()
		accountRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"accounts":[]`)
	})
}

func TestAccountHandler_GetByID(t *testing.T) {
	logger := slog.Default()

	t.Run("ReturnsSnapshot", func(t *testing.T) {
		mockService := &MockAccountService{}
		mockService.On("GetAccount", mock.Anything, shared.ClientID(7)).Return(account.Snapshot{
			Client:    7,
			Available: mustParseMoney(t, "3.0"),
			Held:      mustParseMoney(t, "0"),
		}, nil).Once()

		h := NewAccountHandler(logger, mockService)
		w := httptest.NewRecorder()
		accountRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/7", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"available":"3.0000"`)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownAccountReturns404", func(t *testing.T) {
		mockService := &MockAccountService{}
		mockService.On("GetAccount", mock.Anything, shared.ClientID(9)).
			Return(account.Snapshot{}, engine.AccountNotFoundError{Client: 9}).Once()

		h := NewAccountHandler(logger, mockService)
		w := httptest.NewRecorder()
		accountRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/9", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidClientIDReturns400", func(t *testing.T) {
		mockService := &MockAccountService{}
		h := NewAccountHandler(logger, mockService)

		for _, id := range []string{"abc", "-1", "70000"} {
			w := httptest.NewRecorder()
			accountRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/"+id, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
		}
		mockService.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
	})

	t.Run("OverflowingTotalIsOmitted", func(t *testing.T) {
		mockService := &MockAccountService{}
		mockService.On("GetAccount", mock.Anything, shared.ClientID(3)).Return(account.Snapshot{
			Client:    3,
			Available: money.Max(),
			Held:      mustParseMoney(t, "0.0001"),
		}, nil).Once()

		h := NewAccountHandler(logger, mockService)
		w := httptest.NewRecorder()
		accountRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/3", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data AccountResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data.Total)
		assert.Equal(t, money.Max().String(), resp.Data.Available)
	})
}
