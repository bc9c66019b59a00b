package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const (
	opView     = "view"
	opAdd      = "add"
	opIncrease = "increase"
	opDecrease = "decrease"
	opRemove   = "remove"
	opSave     = "move_to_saved"
	opRestore  = "move_to_cart"
	opCheckout = "checkout"

	emptyCartMessage = "cart is empty"
)

// CartView is what every cart endpoint returns.
type CartView struct {
	Items     []Line          `json:"items"`
	Saved     []Line          `json:"saved"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Changed   bool            `json:"changed"`
	Warnings  RestoreWarnings `json:"warnings,omitempty"`
}

// CheckoutInput is the customer's manual transfer claim for the active list.
type CheckoutInput struct {
	Email string `json:"email"`
	TxnID string `json:"txnId"`
}

// PaymentInfo tells the storefront where to send a manual transfer.
type PaymentInfo struct {
	UPIID string `json:"upi_id"`
}

// Service runs one engine operation per request against the cart named by token.
type Service interface {
	View(ctx context.Context, token string) (*CartView, error)
	AddItem(ctx context.Context, token string, productID uuid.UUID) (*CartView, error)
	IncreaseQuantity(ctx context.Context, token, productID string) (*CartView, error)
	DecreaseQuantity(ctx context.Context, token, productID string) (*CartView, error)
	Remove(ctx context.Context, token, productID string) (*CartView, error)
	MoveToSaved(ctx context.Context, token, productID string) (*CartView, error)
	MoveToCart(ctx context.Context, token, productID string) (*CartView, error)
	Checkout(ctx context.Context, token string, input CheckoutInput) (*payments.Confirmation, error)
	PaymentInfo(ctx context.Context) PaymentInfo
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error)
}

// CheckoutSubmitter records a manual payment claim.
type CheckoutSubmitter interface {
	SubmitManualPayment(ctx context.Context, input payments.ManualPaymentInput) (*payments.Confirmation, error)
}

// ServiceParams bundles the cart dependencies. Locker and Metrics are optional.
type ServiceParams struct {
	Store    SlotStore
	Products productLoader
	Checkout CheckoutSubmitter
	Locker   Locker
	Metrics  *metrics.CartMetrics
	Logger   *logger.Logger
	UPIID    string
}

type service struct {
	store    SlotStore
	products productLoader
	checkout CheckoutSubmitter
	locker   Locker
	metrics  *metrics.CartMetrics
	logg     *logger.Logger
	upiID    string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("slot store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout submitter required")
	}
	locker := params.Locker
	if locker == nil {
		locker = noopLocker{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:    params.Store,
		products: params.Products,
		checkout: params.Checkout,
		locker:   locker,
		metrics:  params.Metrics,
		logg:     logg,
		upiID:    strings.TrimSpace(params.UPIID),
	}, nil
}

func (s *service) View(ctx context.Context, token string) (*CartView, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	ctx = s.logg.WithCartToken(ctx, token)
	engine, warnings, err := s.restore(ctx, token)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveOperation(opView, "ok")
	return viewOf(engine, false, warnings), nil
}

func (s *service) AddItem(ctx context.Context, token string, productID uuid.UUID) (*CartView, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	// Price and name always come from the catalog, never from the client.
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	item := Product{
		ProductID: product.ProductID.String(),
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
	}
	return s.apply(ctx, token, opAdd, func(e *Engine) (bool, error) {
		return e.AddItem(ctx, item)
	})
}

func (s *service) IncreaseQuantity(ctx context.Context, token, productID string) (*CartView, error) {
	return s.apply(ctx, token, opIncrease, func(e *Engine) (bool, error) {
		return e.IncreaseQuantity(ctx, productID)
	})
}

func (s *service) DecreaseQuantity(ctx context.Context, token, productID string) (*CartView, error) {
	return s.apply(ctx, token, opDecrease, func(e *Engine) (bool, error) {
		return e.DecreaseQuantity(ctx, productID)
	})
}

func (s *service) Remove(ctx context.Context, token, productID string) (*CartView, error) {
	return s.apply(ctx, token, opRemove, func(e *Engine) (bool, error) {
		return e.RemoveFromCart(ctx, productID)
	})
}

func (s *service) MoveToSaved(ctx context.Context, token, productID string) (*CartView, error) {
	return s.apply(ctx, token, opSave, func(e *Engine) (bool, error) {
		return e.MoveToSaved(ctx, productID)
	})
}

func (s *service) MoveToCart(ctx context.Context, token, productID string) (*CartView, error) {
	return s.apply(ctx, token, opRestore, func(e *Engine) (bool, error) {
		return e.MoveToCart(ctx, productID)
	})
}

// Checkout submits the active list as a manual payment claim. The cart itself is
// left untouched whether or not the submission succeeds.
func (s *service) Checkout(ctx context.Context, token string, input CheckoutInput) (*payments.Confirmation, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	ctx = s.logg.WithCartToken(ctx, token)
	engine, _, err := s.restore(ctx, token)
	if err != nil {
		return nil, err
	}

	payload := engine.CheckoutPayload(strings.TrimSpace(input.Email), strings.TrimSpace(input.TxnID))
	if len(payload.Items) == 0 {
		s.metrics.ObserveOperation(opCheckout, "rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage)
	}

	items := make([]payments.Item, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, payments.Item{Name: item.Name, Price: item.Price, Quantity: item.Quantity})
	}
	cartToken := token
	confirmation, err := s.checkout.SubmitManualPayment(ctx, payments.ManualPaymentInput{
		Email:     payload.Email,
		TxnID:     payload.TxnID,
		Total:     payload.Total,
		Items:     items,
		CartToken: &cartToken,
	})
	if err != nil {
		s.metrics.ObserveOperation(opCheckout, "error")
		return nil, err
	}
	s.metrics.ObserveOperation(opCheckout, "ok")
	s.logg.Info(s.logg.WithField(ctx, "payment_id", confirmation.PaymentID.String()), "cart.checkout.submitted")
	return confirmation, nil
}

func (s *service) PaymentInfo(context.Context) PaymentInfo {
	return PaymentInfo{UPIID: s.upiID}
}

// apply restores the cart, runs op under the per-token lock and reports the outcome.
func (s *service) apply(ctx context.Context, token, op string, fn func(*Engine) (bool, error)) (*CartView, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	ctx = s.logg.WithCartToken(ctx, token)

	unlock, err := s.locker.Lock(ctx, token)
	if err != nil {
		s.metrics.ObserveOperation(op, "error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
	}
	defer unlock()

	engine, warnings, err := s.restore(ctx, token)
	if err != nil {
		return nil, err
	}
	// Writing on top of an unread cart would replace it with an empty one.
	if warnings.Has(SlotActive, WarningUnavailable) {
		s.metrics.ObserveOperation(op, "error")
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart store unavailable")
	}
	changed, err := fn(engine)
	if err != nil {
		s.metrics.ObserveOperation(op, "error")
		s.logg.Error(s.logg.WithField(ctx, "op", op), "cart.persist.failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}

	result := "noop"
	if changed {
		result = "changed"
	}
	s.metrics.ObserveOperation(op, result)
	return viewOf(engine, changed, warnings), nil
}

func (s *service) restore(ctx context.Context, token string) (*Engine, RestoreWarnings, error) {
	engine, warnings, err := Restore(ctx, s.store, token)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore cart")
	}
	degraded := make(RestoreWarnings, 0, len(warnings))
	for _, w := range warnings {
		if w.Kind == WarningMissing {
			continue
		}
		degraded = append(degraded, w)
		s.metrics.ObserveRestoreWarning(w.Slot, string(w.Kind))
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"slot":    w.Slot,
			"kind":    string(w.Kind),
			"dropped": w.Dropped,
			"detail":  w.Detail,
		}), "cart.restore.degraded")
	}
	if len(degraded) == 0 {
		degraded = nil
	}
	return engine, degraded, nil
}

func viewOf(engine *Engine, changed bool, warnings RestoreWarnings) *CartView {
	state := engine.State()
	return &CartView{
		Items:     nonNil(state.Active),
		Saved:     nonNil(state.Saved),
		Total:     engine.Total(),
		ItemCount: engine.ItemCount(),
		Changed:   changed,
		Warnings:  warnings,
	}
}

func nonNil(lines []Line) []Line {
	if lines == nil {
		return []Line{}
	}
	return lines
}

func requireToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart token required")
	}
	return nil
}
