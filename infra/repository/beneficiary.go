package repository

import (
	"context"

	"github.com/amirasaad/fxpay/pkg/domain"
	repo "github.com/amirasaad/fxpay/pkg/repository/beneficiary"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type beneficiaryRepository struct {
	db *gorm.DB
}

// NewBeneficiaryRepository creates a beneficiary repository bound to db.
func NewBeneficiaryRepository(db *gorm.DB) repo.Repository {
	return &beneficiaryRepository{db: db}
}

// Create relies on the unique (user_id, currency, details_hash) index for
// duplicate detection.
func (r *beneficiaryRepository) Create(ctx context.Context, b *domain.Beneficiary) error {
	m := Beneficiary{
		ID:           b.ID,
		UserID:       b.UserID,
		Name:         b.Name,
		Currency:     b.Currency,
		BankName:     b.BankName,
		BankDetails:  b.BankDetails,
		DetailsHash:  domain.BankDetailsFingerprint(b.Currency, b.BankDetails),
		AddressLine1: b.AddressLine1,
		City:         b.City,
		State:        b.State,
		PostalCode:   b.PostalCode,
		Country:      b.Country,
		CreatedAt:    b.CreatedAt,
	}
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	b.CreatedAt = m.CreatedAt
	return nil
}

func (r *beneficiaryRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Beneficiary, error) {
	var rows []Beneficiary
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at").
			Find(&rows).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*domain.Beneficiary, 0, len(rows))
	for _, m := range rows {
		out = append(out, &domain.Beneficiary{
			ID:           m.ID,
			UserID:       m.UserID,
			Name:         m.Name,
			Currency:     m.Currency,
			BankName:     m.BankName,
			BankDetails:  m.BankDetails,
			AddressLine1: m.AddressLine1,
			City:         m.City,
			State:        m.State,
			PostalCode:   m.PostalCode,
			Country:      m.Country,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out, nil
}
