package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type lineOp func(ctx context.Context, token, productID string) (*cart.CartView, error)

func cartUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
}

func CartView(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		view, err := svc.View(r.Context(), middleware.CartTokenFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem adds a catalog product by id. Name and price are looked up server side.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.AddItem(r.Context(), middleware.CartTokenFromContext(r.Context()), body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartIncrease(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(s cart.Service) lineOp { return s.IncreaseQuantity })
}

func CartDecrease(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(s cart.Service) lineOp { return s.DecreaseQuantity })
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(s cart.Service) lineOp { return s.Remove })
}

func CartSaveForLater(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(s cart.Service) lineOp { return s.MoveToSaved })
}

func CartRestoreSaved(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(s cart.Service) lineOp { return s.MoveToCart })
}

// cartLineHandler serves the per-line routes. Unknown ids are not an error; the
// view comes back with changed=false.
func cartLineHandler(svc cart.Service, logg *logger.Logger, pick func(cart.Service) lineOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		view, err := pick(svc)(r.Context(), middleware.CartTokenFromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartCheckout submits the server-side cart as a manual payment claim.
func CartCheckout(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		var body cart.CheckoutInput
		if err := validators.DecodeJSON(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		confirmation, err := svc.Checkout(r.Context(), middleware.CartTokenFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}

func CartPaymentInfo(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		responses.WriteSuccess(w, svc.PaymentInfo(r.Context()))
	}
}
