package usecase

import (
	"context"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// Engine is the single entry point for state-changing commands.
type Engine struct {
	wallets        *WalletUseCase
	ledger         *LedgerUseCase
	holds          *HoldUseCase
	transfers      *TransferUseCase
	reconciliation *ReconciliationUseCase
	entries        *EntryUseCase
	metrics        *metrics.Metrics
}

// NewEngine builds every use case from one set of dependencies.
func NewEngine(d Dependencies) *Engine {
	return &Engine{
		wallets:        NewWalletUseCase(d),
		ledger:         NewLedgerUseCase(d),
		holds:          NewHoldUseCase(d),
		transfers:      NewTransferUseCase(d),
		reconciliation: NewReconciliationUseCase(d),
		entries:        NewEntryUseCase(d),
		metrics:        d.Metrics,
	}
}

func (e *Engine) Wallets() *WalletUseCase                { return e.wallets }
func (e *Engine) Holds() *HoldUseCase                    { return e.holds }
func (e *Engine) Entries() *EntryUseCase                 { return e.entries }
func (e *Engine) Reconciliation() *ReconciliationUseCase { return e.reconciliation }

// Execute validates cmd and dispatches it to the owning use case.
func (e *Engine) Execute(ctx context.Context, cmd Command) (res *Result, err error) {
	if cmd == nil {
		return nil, domain.ErrUnknownCommand
	}

	name := cmd.commandName()
	start := time.Now()
	defer func() {
		if e.metrics == nil {
			return
		}
		e.metrics.OperationLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err != nil {
			e.metrics.OperationErrors.WithLabelValues(name, string(domain.KindOf(err))).Inc()
		}
	}()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	switch c := cmd.(type) {
	case CreateWalletCommand:
		w, err := e.wallets.CreateWallet(ctx, CreateWalletInput{TenantID: c.TenantID, Type: c.Type, OwnerID: c.OwnerID})
		if err != nil {
			return nil, err
		}
		return &Result{Wallet: w}, nil

	case CreditCommand:
		return e.mutate(ctx, c.input())

	case DebitCommand:
		return e.mutate(ctx, c.input())

	case HoldCommand:
		r, err := e.holds.PlaceHold(ctx, c.input())
		if err != nil {
			return nil, err
		}
		return &Result{Wallet: r.Wallet, Hold: r.Hold}, nil

	case ReleaseCommand:
		r, err := e.holds.ReleaseHold(ctx, c.input())
		if err != nil {
			return nil, err
		}
		return &Result{Wallet: r.Wallet, Hold: r.Hold}, nil

	case CaptureCommand:
		r, err := e.holds.CaptureHold(ctx, c.input())
		if err != nil {
			return nil, err
		}
		return &Result{Wallet: r.Wallet, Hold: r.Hold, Entry: r.Entry}, nil

	case TransferCommand:
		r, err := e.transfers.Transfer(ctx, c.input())
		if err != nil {
			return nil, err
		}
		return &Result{Wallet: r.FromWallet, Entry: r.DebitEntry, Transfer: r, IsDuplicate: r.IsDuplicate}, nil

	case UpdateStatusCommand:
		w, err := e.wallets.UpdateStatus(ctx, c.input())
		if err != nil {
			return nil, err
		}
		return &Result{Wallet: w}, nil

	case RecalculateCommand:
		r, err := e.reconciliation.Recalculate(ctx, c.TenantID, c.WalletID)
		if err != nil {
			return nil, err
		}
		return &Result{Report: r}, nil

	default:
		return nil, domain.ErrUnknownCommand
	}
}

func (e *Engine) mutate(ctx context.Context, in MutateInput) (*Result, error) {
	r, err := e.ledger.Mutate(ctx, in)
	if err != nil {
		return nil, err
	}
	return &Result{Wallet: r.Wallet, Entry: r.Entry, IsDuplicate: r.IsDuplicate}, nil
}
