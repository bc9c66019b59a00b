package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubCartService struct {
	lastToken   string
	lastOp      string
	lastID      string
	lastProduct uuid.UUID
	checkout    cart.CheckoutInput
	err         error
}

func (s *stubCartService) record(op, token, id string) (*cart.CartView, error) {
	s.lastOp, s.lastToken, s.lastID = op, token, id
	if s.err != nil {
		return nil, s.err
	}
	return &cart.CartView{Items: []cart.Line{}, Saved: []cart.Line{}, Total: decimal.Zero, Changed: id == "known"}, nil
}

func (s *stubCartService) View(_ context.Context, token string) (*cart.CartView, error) {
	return s.record("view", token, "")
}

func (s *stubCartService) AddItem(_ context.Context, token string, productID uuid.UUID) (*cart.CartView, error) {
	s.lastProduct = productID
	return s.record("add", token, productID.String())
}

func (s *stubCartService) IncreaseQuantity(_ context.Context, token, id string) (*cart.CartView, error) {
	return s.record("increase", token, id)
}

func (s *stubCartService) DecreaseQuantity(_ context.Context, token, id string) (*cart.CartView, error) {
	return s.record("decrease", token, id)
}

func (s *stubCartService) Remove(_ context.Context, token, id string) (*cart.CartView, error) {
	return s.record("remove", token, id)
}

func (s *stubCartService) MoveToSaved(_ context.Context, token, id string) (*cart.CartView, error) {
	return s.record("save", token, id)
}

func (s *stubCartService) MoveToCart(_ context.Context, token, id string) (*cart.CartView, error) {
	return s.record("restore", token, id)
}

func (s *stubCartService) Checkout(_ context.Context, token string, input cart.CheckoutInput) (*payments.Confirmation, error) {
	s.lastOp, s.lastToken, s.checkout = "checkout", token, input
	if s.err != nil {
		return nil, s.err
	}
	return &payments.Confirmation{PaymentID: uuid.New(), Message: payments.ConfirmationMessage}, nil
}

func (s *stubCartService) PaymentInfo(context.Context) cart.PaymentInfo {
	return cart.PaymentInfo{UPIID: "shop@upi"}
}

func cartRequest(method, target, body, token string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithCartToken(req.Context(), token))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCartViewUsesContextToken(t *testing.T) {
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartView(svc, nil).ServeHTTP(resp, cartRequest(http.MethodGet, "/api/cart", "", "tok-1"))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "tok-1", svc.lastToken)

	var envelope struct {
		Data struct {
			Items []any `json:"items"`
			Saved []any `json:"saved"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.NotNil(t, envelope.Data.Items)
	assert.NotNil(t, envelope.Data.Saved)
}

func TestCartAddItemDecodesProductID(t *testing.T) {
	svc := &stubCartService{}
	productID := uuid.New()
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/cart/items", `{"product_id":"`+productID.String()+`"}`, "tok"))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, productID, svc.lastProduct)
}

func TestCartAddItemRejectsClientPrice(t *testing.T) {
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	body := `{"product_id":"` + uuid.NewString() + `","price":"0.01"}`
	CartAddItem(svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/cart/items", body, "tok"))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, svc.lastOp)
}

func TestCartLineRoutesDispatch(t *testing.T) {
	cases := []struct {
		name    string
		handler func(cart.Service) http.HandlerFunc
		op      string
	}{
		{"increase", func(s cart.Service) http.HandlerFunc { return CartIncrease(s, nil) }, "increase"},
		{"decrease", func(s cart.Service) http.HandlerFunc { return CartDecrease(s, nil) }, "decrease"},
		{"remove", func(s cart.Service) http.HandlerFunc { return CartRemove(s, nil) }, "remove"},
		{"save", func(s cart.Service) http.HandlerFunc { return CartSaveForLater(s, nil) }, "save"},
		{"restore", func(s cart.Service) http.HandlerFunc { return CartRestoreSaved(s, nil) }, "restore"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubCartService{}
			req := withURLParam(cartRequest(http.MethodPost, "/", "", "tok"), "id", "unknown")
			resp := httptest.NewRecorder()
			tc.handler(svc).ServeHTTP(resp, req)

			require.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, tc.op, svc.lastOp)
			assert.Equal(t, "unknown", svc.lastID)
			assert.Contains(t, resp.Body.String(), `"changed":false`)
		})
	}
}

func TestCartCheckoutCreated(t *testing.T) {
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartCheckout(svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/cart/checkout", `{"email":"a@b.co","txnId":"TXN123"}`, "tok"))

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "a@b.co", svc.checkout.Email)
	assert.Equal(t, "TXN123", svc.checkout.TxnID)
	assert.Contains(t, resp.Body.String(), payments.ConfirmationMessage)
}

func TestCartCheckoutSurfacesServiceError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	resp := httptest.NewRecorder()
	CartCheckout(svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/cart/checkout", `{"email":"a@b.co","txnId":"TXN123"}`, "tok"))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "cart is empty")
}

func TestCartPaymentInfo(t *testing.T) {
	resp := httptest.NewRecorder()
	CartPaymentInfo(&stubCartService{}, nil).ServeHTTP(resp, cartRequest(http.MethodGet, "/api/cart/payment-info", "", "tok"))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"upi_id":"shop@upi"`)
}

func TestCartHandlersWithoutService(t *testing.T) {
	resp := httptest.NewRecorder()
	CartView(nil, nil).ServeHTTP(resp, cartRequest(http.MethodGet, "/api/cart", "", "tok"))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
