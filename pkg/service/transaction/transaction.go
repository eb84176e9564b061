// Package transaction records exchange and funding requests and moves them
// to their final status exactly once.
package transaction

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/repository"
	txrepo "github.com/amirasaad/fxpay/pkg/repository/transaction"
	"github.com/google/uuid"
)

// Service writes transaction records.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a transaction Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger.With("service", "transaction")}
}

// PendingInput describes a record created alongside a payment intent.
type PendingInput struct {
	UserID          *uuid.UUID
	Amount          int64
	Currency        string
	Type            domain.TransactionType
	PaymentIntentID string
}

// RecordPending inserts a pending record and returns its id. When a record
// for the same payment intent already exists its id is returned instead.
// Storage failures are returned as *domain.PersistenceError.
func (s *Service) RecordPending(ctx context.Context, in PendingInput) (uuid.UUID, error) {
	tx := &domain.Transaction{
		ID:       uuid.New(),
		UserID:   in.UserID,
		Amount:   in.Amount,
		Currency: in.Currency,
		Type:     in.Type,
		Status:   domain.TransactionStatusPending,
	}
	if in.PaymentIntentID != "" {
		pi := in.PaymentIntentID
		tx.PaymentIntentID = &pi
	}

	repo, err := s.uow.TransactionRepository()
	if err == nil {
		err = repo.Create(ctx, tx)
	}
	if errors.Is(err, domain.ErrAlreadyExists) && tx.PaymentIntentID != nil {
		// A replayed idempotency key returns the same intent; reuse its record.
		existing, lookupErr := repo.GetByPaymentIntentID(ctx, *tx.PaymentIntentID)
		if lookupErr == nil {
			s.logger.Info("Pending transaction already recorded",
				"transaction_id", existing.ID,
				"payment_intent_id", in.PaymentIntentID,
			)
			return existing.ID, nil
		}
		err = lookupErr
	}
	if err != nil {
		s.logger.Error("failed to record pending transaction",
			"payment_intent_id", in.PaymentIntentID,
			"type", in.Type,
			"error", err,
		)
		return uuid.Nil, &domain.PersistenceError{Op: "record pending transaction", Err: err}
	}
	s.logger.Info("Recorded pending transaction",
		"transaction_id", tx.ID,
		"payment_intent_id", in.PaymentIntentID,
		"type", in.Type,
	)
	return tx.ID, nil
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list transactions", Err: err}
	}
	txs, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list transactions", Err: err}
	}
	return txs, nil
}

// Get returns one record owned by userID. Records of other users, and
// anonymous records, are reported as not found.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load transaction", Err: err}
	}
	tx, err := repo.Get(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "transaction", id.String())
	}
	if tx.UserID == nil || *tx.UserID != userID {
		return nil, &domain.NotFoundError{Resource: "transaction", ID: id.String()}
	}
	return tx, nil
}

// MarkFinal sets a terminal status. Repeating the same status is a no-op;
// a different terminal status yields domain.ErrStatusConflict.
func (s *Service) MarkFinal(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return &domain.PersistenceError{Op: "mark final", Err: err}
	}
	tx, err := repo.Get(ctx, id)
	if err != nil {
		return wrapLookup(err, "transaction", id.String())
	}
	_, err = finalize(ctx, repo, tx, status)
	return err
}

// MarkFinalByPaymentIntent finalizes the record correlated with a payment intent.
func (s *Service) MarkFinalByPaymentIntent(
	ctx context.Context,
	paymentIntentID string,
	status domain.TransactionStatus,
) (*domain.Transaction, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "mark final", Err: err}
	}
	tx, err := repo.GetByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		return nil, wrapLookup(err, "transaction for payment intent", paymentIntentID)
	}
	if _, err := finalize(ctx, repo, tx, status); err != nil {
		return nil, err
	}
	tx.Status = status
	return tx, nil
}

// Settlement is a verified terminal outcome reported for a payment intent.
// Amount and Currency come from the processor, not from the caller.
type Settlement struct {
	PaymentIntentID string
	Status          domain.TransactionStatus
	Amount          int64
	Currency        string
}

// SettleResult reports what Settle changed.
type SettleResult struct {
	Transaction  *domain.Transaction
	Transitioned bool
	Credited     bool
}

// Settle finalizes the record for a payment intent and, for wallet funding
// that moves from pending to completed, credits the wallet in the same unit
// of work. Replays of the same outcome change nothing.
func (s *Service) Settle(ctx context.Context, in Settlement) (*SettleResult, error) {
	log := s.logger.With("payment_intent_id", in.PaymentIntentID, "status", in.Status)
	res := &SettleResult{}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return &domain.PersistenceError{Op: "settle", Err: err}
		}
		tx, err := repo.GetByPaymentIntentID(ctx, in.PaymentIntentID)
		if err != nil {
			return wrapLookup(err, "transaction for payment intent", in.PaymentIntentID)
		}
		res.Transaction = tx

		changed, err := finalize(ctx, repo, tx, in.Status)
		if err != nil {
			return err
		}
		tx.Status = in.Status
		res.Transitioned = changed
		if !changed || in.Status != domain.TransactionStatusCompleted ||
			tx.Type != domain.TransactionTypeWalletFunding {
			return nil
		}
		if tx.UserID == nil {
			log.Warn("wallet funding without user; nothing to credit", "transaction_id", tx.ID)
			return nil
		}

		amount, currency := in.Amount, in.Currency
		if amount <= 0 || currency == "" {
			amount, currency = tx.Amount, tx.Currency
		}
		wallets, err := uow.WalletRepository()
		if err != nil {
			return &domain.PersistenceError{Op: "credit wallet", Err: err}
		}
		if err := wallets.Credit(ctx, *tx.UserID, currency, amount); err != nil {
			return &domain.PersistenceError{Op: "credit wallet", Err: err}
		}
		res.Credited = true
		return nil
	})
	if err != nil {
		log.Error("settlement failed", "error", err)
		return nil, err
	}
	if res.Transitioned {
		log.Info("✅ Transaction settled",
			"transaction_id", res.Transaction.ID,
			"credited", res.Credited,
		)
	}
	return res, nil
}

// finalize applies status with a conditional pending -> status update and
// reports whether this call made the change.
func finalize(
	ctx context.Context,
	repo txrepo.Repository,
	tx *domain.Transaction,
	status domain.TransactionStatus,
) (bool, error) {
	if !status.IsTerminal() {
		return false, domain.ErrInvalidStatus
	}
	if tx.Status == status {
		return false, nil
	}
	if tx.Status.IsTerminal() {
		return false, domain.ErrStatusConflict
	}
	changed, err := repo.TransitionStatus(ctx, tx.ID, tx.Status, status)
	if err != nil {
		return false, &domain.PersistenceError{Op: "update transaction status", Err: err}
	}
	if changed {
		return true, nil
	}
	// Lost a race; the winner's status decides.
	current, err := repo.Get(ctx, tx.ID)
	if err != nil {
		return false, &domain.PersistenceError{Op: "reload transaction", Err: err}
	}
	if current.Status == status {
		return false, nil
	}
	return false, domain.ErrStatusConflict
}

func wrapLookup(err error, resource, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Resource: resource, ID: id}
	}
	return &domain.PersistenceError{Op: "load " + resource, Err: err}
}
