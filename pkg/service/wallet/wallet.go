// Package wallet exposes per-currency balances. Every change is a single
// atomic delta at the storage layer.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/money"
	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/amirasaad/fxpay/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service reads and adjusts wallet balances.
type Service struct {
	uow        repository.UnitOfWork
	currencies *money.Table
	logger     *slog.Logger
}

// New creates a wallet Service.
func New(uow repository.UnitOfWork, currencies *money.Table, logger *slog.Logger) *Service {
	return &Service{
		uow:        uow,
		currencies: currencies,
		logger:     logger.With("service", "wallet"),
	}
}

// Balance is one wallet in both representations.
type Balance struct {
	Currency string
	Minor    int64
	Amount   decimal.Decimal
}

// Balances lists the user's wallets with major-unit amounts.
func (s *Service) Balances(ctx context.Context, userID uuid.UUID) ([]Balance, error) {
	repo, err := s.uow.WalletRepository()
	if err != nil {
		return nil, err
	}
	wallets, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list wallets", Err: err}
	}
	out := make([]Balance, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, Balance{
			Currency: w.Currency,
			Minor:    w.Balance,
			Amount:   s.currencies.ToMajorUnits(w.Balance, money.Code(w.Currency)),
		})
	}
	return out, nil
}

// TransferInput moves Amount of Currency from one user's wallet to the
// wallet of the user registered under ToEmail.
type TransferInput struct {
	FromUserID uuid.UUID
	ToEmail    string
	Currency   money.Code
	Amount     decimal.Decimal
}

// Transfer debits the sender and credits the recipient in one unit of work
// and records a completed transfer_out and transfer_in pair. The sender's
// record is returned. A balance that does not cover the amount yields
// domain.ErrInsufficientFunds and nothing is written.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (*domain.Transaction, error) {
	minor, err := s.currencies.ToMinorUnits(in.Amount, in.Currency)
	if err != nil || minor <= 0 {
		return nil, domain.NewValidationError(domain.CodeInvalidAmount, "amount must be a positive number")
	}
	currency := in.Currency.String()
	log := s.logger.With("from_user_id", in.FromUserID, "currency", currency, "amount", minor)

	var out *domain.Transaction
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return &domain.PersistenceError{Op: "load recipient", Err: err}
		}
		email := utils.NormalizeEmail(in.ToEmail)
		recipient, err := users.GetByEmail(ctx, email)
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Resource: "recipient", ID: email}
		}
		if err != nil {
			return &domain.PersistenceError{Op: "load recipient", Err: err}
		}
		if recipient.ID == in.FromUserID {
			return domain.NewValidationError(domain.CodeInvalidRecipient, "cannot transfer to your own wallet")
		}

		wallets, err := uow.WalletRepository()
		if err != nil {
			return &domain.PersistenceError{Op: "transfer", Err: err}
		}
		if err := wallets.Debit(ctx, in.FromUserID, currency, minor); err != nil {
			if errors.Is(err, domain.ErrInsufficientFunds) {
				return fmt.Errorf("transfer %s: %w", s.currencies.Format(minor, in.Currency), err)
			}
			return &domain.PersistenceError{Op: "debit wallet", Err: err}
		}
		if err := wallets.Credit(ctx, recipient.ID, currency, minor); err != nil {
			return &domain.PersistenceError{Op: "credit wallet", Err: err}
		}

		txs, err := uow.TransactionRepository()
		if err != nil {
			return &domain.PersistenceError{Op: "record transfer", Err: err}
		}
		sender, receiver := in.FromUserID, recipient.ID
		out = transferRecord(&sender, domain.TransactionTypeTransferOut, minor, currency)
		if err := txs.Create(ctx, out); err != nil {
			return &domain.PersistenceError{Op: "record transfer", Err: err}
		}
		if err := txs.Create(ctx, transferRecord(&receiver, domain.TransactionTypeTransferIn, minor, currency)); err != nil {
			return &domain.PersistenceError{Op: "record transfer", Err: err}
		}
		return nil
	})
	if err != nil {
		log.Warn("Transfer rejected", "error", err)
		return nil, err
	}
	log.Info("Transfer completed", "transaction_id", out.ID)
	return out, nil
}

func transferRecord(userID *uuid.UUID, t domain.TransactionType, amount int64, currency string) *domain.Transaction {
	return &domain.Transaction{
		ID:       uuid.New(),
		UserID:   userID,
		Amount:   amount,
		Currency: currency,
		Type:     t,
		Status:   domain.TransactionStatusCompleted,
	}
}
