package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records manual payment claims. No money moves here; the claim is stored and
// relayed to staff through the outbox.
type Service interface {
	SubmitManualPayment(ctx context.Context, input ManualPaymentInput) (*Confirmation, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	outbox   outbox.Emitter
	validate *validator.Validate
	logg     *logger.Logger
}

func NewService(repo *Repository, tx txRunner, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   emitter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logg:     logg,
	}, nil
}

func (s *service) SubmitManualPayment(ctx context.Context, input ManualPaymentInput) (*Confirmation, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.TxnID = strings.TrimSpace(input.TxnID)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	items := make([]payloads.ManualPaymentItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, payloads.ManualPaymentItem{
			Name:     strings.TrimSpace(item.Name),
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payment items")
	}

	payment := &models.ManualPayment{
		Email: input.Email,
		TxnID: input.TxnID,
		Total: input.Total,
		Items: dbtypes.JSON(itemsJSON),
	}
	cartTokenHash := digestCartToken(input.CartToken)
	if cartTokenHash != "" {
		payment.CartTokenHash = &cartTokenHash
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record manual payment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventManualPaymentReceived,
			AggregateType: enums.AggregateManualPayment,
			AggregateID:   payment.ID,
			Actor:         actorFor(cartTokenHash),
			Data: payloads.ManualPaymentReceivedEvent{
				PaymentID: payment.ID,
				Email:     payment.Email,
				TxnID:     payment.TxnID,
				Total:     payment.Total,
				Items:     items,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record manual payment")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"payment_id": payment.ID.String(),
		"items":      len(items),
		"total":      payment.Total.StringFixed(2),
	})
	s.logg.Info(logCtx, "manual payment received")

	return &Confirmation{PaymentID: payment.ID, Message: ConfirmationMessage}, nil
}

func (s *service) validateInput(input ManualPaymentInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment details").
			WithDetails(validationDetails(err))
	}
	sum := decimal.Zero
	for _, item := range input.Items {
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price must be non-negative")
		}
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !sum.Equal(input.Total) {
		return pkgerrors.New(pkgerrors.CodeValidation, "total does not match items").
			WithDetails(map[string]string{"expected": sum.StringFixed(2), "got": input.Total.StringFixed(2)})
	}
	return nil
}

func validationDetails(err error) map[string]string {
	out := map[string]string{}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			out[fe.Namespace()] = fe.Tag()
		}
	}
	return out
}

func digestCartToken(token *string) string {
	if token == nil || *token == "" {
		return ""
	}
	return security.DigestToken(*token)
}

func actorFor(cartTokenHash string) *outbox.ActorRef {
	if cartTokenHash == "" {
		return nil
	}
	return &outbox.ActorRef{CartTokenHash: cartTokenHash}
}
