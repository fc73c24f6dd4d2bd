package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifecert/lifecert-backend/pkg/enums"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

// Input describes one settlement: who paid, who is owed, where platform fees
// go, how much the mutation requires, and what was actually attached.
type Input struct {
	Payer         uuid.UUID
	Payee         uuid.UUID
	Treasury      uuid.UUID
	RequiredCents int64
	AttachedCents int64
	FeePercent    int64
}

// Breakdown reports how a settled amount was divided.
type Breakdown struct {
	PlatformCents   int64
	PayeeShareCents int64
	RefundCents     int64
}

// Engine splits a required payment between the platform treasury and a payee,
// refunding any excess to the payer. Callers must have completed all record
// and guard mutations before invoking it; a failing leg aborts the whole
// mutation.
type Engine interface {
	Settle(ctx context.Context, rail Rail, input Input) (Breakdown, error)
	SettleToPlatform(ctx context.Context, rail Rail, input Input) (Breakdown, error)
}

type engine struct{}

// NewEngine returns the stateless settlement engine. The treasury is supplied
// per call because it is a mutable admin setting.
func NewEngine() Engine {
	return &engine{}
}

// Settle divides the required amount by the fee percentage using integer
// floor division: platformShare = required*fee/100, payeeShare = the
// remainder, so the two legs always conserve the required amount exactly.
func (e *engine) Settle(ctx context.Context, rail Rail, input Input) (Breakdown, error) {
	if err := validate(rail, input); err != nil {
		return Breakdown{}, err
	}
	if input.Payee == uuid.Nil {
		return Breakdown{}, apperrors.New(apperrors.CodeValidation, "payee is required")
	}

	fee := input.RequiredCents * input.FeePercent / 100
	breakdown := Breakdown{
		PlatformCents:   fee,
		PayeeShareCents: input.RequiredCents - fee,
		RefundCents:     input.AttachedCents - input.RequiredCents,
	}

	if err := pay(ctx, rail, Transfer{
		From:        input.Payer,
		To:          input.Treasury,
		Kind:        enums.LedgerEntryKindPlatformFee,
		AmountCents: breakdown.PlatformCents,
	}); err != nil {
		return Breakdown{}, err
	}
	if err := pay(ctx, rail, Transfer{
		From:        input.Payer,
		To:          input.Payee,
		Kind:        enums.LedgerEntryKindPayeeShare,
		AmountCents: breakdown.PayeeShareCents,
	}); err != nil {
		return Breakdown{}, err
	}
	if err := refund(ctx, rail, input, breakdown.RefundCents); err != nil {
		return Breakdown{}, err
	}
	return breakdown, nil
}

// SettleToPlatform routes the entire required amount to the treasury in a
// single leg. Used where no third-party payee exists: content refreshes and
// the batch append path.
func (e *engine) SettleToPlatform(ctx context.Context, rail Rail, input Input) (Breakdown, error) {
	if err := validate(rail, input); err != nil {
		return Breakdown{}, err
	}

	breakdown := Breakdown{
		PlatformCents: input.RequiredCents,
		RefundCents:   input.AttachedCents - input.RequiredCents,
	}
	if err := pay(ctx, rail, Transfer{
		From:        input.Payer,
		To:          input.Treasury,
		Kind:        enums.LedgerEntryKindPlatformFee,
		AmountCents: breakdown.PlatformCents,
	}); err != nil {
		return Breakdown{}, err
	}
	if err := refund(ctx, rail, input, breakdown.RefundCents); err != nil {
		return Breakdown{}, err
	}
	return breakdown, nil
}

func validate(rail Rail, input Input) error {
	if rail == nil {
		return fmt.Errorf("payment rail required")
	}
	if input.Payer == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "payer is required")
	}
	if input.Treasury == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "treasury is required")
	}
	if input.RequiredCents < 0 || input.AttachedCents < 0 {
		return apperrors.New(apperrors.CodeValidation, "amounts must be non-negative")
	}
	if input.FeePercent < 0 || input.FeePercent > 100 {
		return apperrors.New(apperrors.CodeValidation, "fee percent out of range")
	}
	if input.AttachedCents < input.RequiredCents {
		return apperrors.New(apperrors.CodePaymentRequired, "attached value below required amount").
			WithDetails(map[string]int64{
				"required_cents": input.RequiredCents,
				"attached_cents": input.AttachedCents,
			})
	}
	return nil
}

func pay(ctx context.Context, rail Rail, transfer Transfer) error {
	if transfer.AmountCents <= 0 {
		return nil
	}
	if err := rail.Pay(ctx, transfer); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, fmt.Sprintf("%s transfer leg failed", transfer.Kind))
	}
	return nil
}

func refund(ctx context.Context, rail Rail, input Input, refundCents int64) error {
	return pay(ctx, rail, Transfer{
		From:        input.Treasury,
		To:          input.Payer,
		Kind:        enums.LedgerEntryKindRefund,
		AmountCents: refundCents,
	})
}
