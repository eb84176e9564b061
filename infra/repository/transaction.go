package repository

import (
	"context"
	"time"

	"github.com/amirasaad/fxpay/pkg/domain"
	repo "github.com/amirasaad/fxpay/pkg/repository/transaction"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository bound to db.
func NewTransactionRepository(db *gorm.DB) repo.Repository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	m := toTransactionModel(tx)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	tx.CreatedAt, tx.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var m Transaction
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	}); err != nil {
		return nil, err
	}
	return toTransactionDomain(&m), nil
}

func (r *transactionRepository) GetByPaymentIntentID(
	ctx context.Context,
	paymentIntentID string,
) (*domain.Transaction, error) {
	var m Transaction
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("payment_intent_id = ?", paymentIntentID).
			First(&m).Error
	}); err != nil {
		return nil, err
	}
	return toTransactionDomain(&m), nil
}

func (r *transactionRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.TransactionStatus,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *transactionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Transaction, error) {
	var rows []Transaction
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&rows).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, toTransactionDomain(&rows[i]))
	}
	return out, nil
}

func toTransactionModel(tx *domain.Transaction) Transaction {
	return Transaction{
		ID:              tx.ID,
		UserID:          tx.UserID,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Type:            string(tx.Type),
		Status:          string(tx.Status),
		PaymentIntentID: tx.PaymentIntentID,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

func toTransactionDomain(m *Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:              m.ID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Type:            domain.TransactionType(m.Type),
		Status:          domain.TransactionStatus(m.Status),
		PaymentIntentID: m.PaymentIntentID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
