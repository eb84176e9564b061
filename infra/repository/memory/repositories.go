package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/google/uuid"
)

type transactionRepository struct{ uow *UoW }

func (r *transactionRepository) Create(_ context.Context, tx *domain.Transaction) (err error) {
	now := time.Now().UTC()
	r.uow.with(func(s *state) {
		if _, ok := s.transactions[tx.ID]; ok {
			err = domain.ErrAlreadyExists
			return
		}
		if tx.PaymentIntentID != nil {
			for _, existing := range s.transactions {
				if existing.PaymentIntentID != nil && *existing.PaymentIntentID == *tx.PaymentIntentID {
					err = domain.ErrAlreadyExists
					return
				}
			}
		}
		tx.CreatedAt, tx.UpdatedAt = now, now
		s.transactions[tx.ID] = *tx
	})
	return err
}

func (r *transactionRepository) Get(_ context.Context, id uuid.UUID) (out *domain.Transaction, err error) {
	r.uow.with(func(s *state) {
		tx, ok := s.transactions[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		out = &tx
	})
	return out, err
}

func (r *transactionRepository) GetByPaymentIntentID(
	_ context.Context,
	paymentIntentID string,
) (out *domain.Transaction, err error) {
	r.uow.with(func(s *state) {
		for _, tx := range s.transactions {
			if tx.PaymentIntentID != nil && *tx.PaymentIntentID == paymentIntentID {
				out = &tx
				return
			}
		}
		err = domain.ErrNotFound
	})
	return out, err
}

func (r *transactionRepository) TransitionStatus(
	_ context.Context,
	id uuid.UUID,
	from, to domain.TransactionStatus,
) (changed bool, err error) {
	r.uow.with(func(s *state) {
		tx, ok := s.transactions[id]
		if !ok || tx.Status != from {
			return
		}
		tx.Status = to
		tx.UpdatedAt = time.Now().UTC()
		s.transactions[id] = tx
		changed = true
	})
	return changed, nil
}

func (r *transactionRepository) ListByUser(_ context.Context, userID uuid.UUID) (out []*domain.Transaction, err error) {
	r.uow.with(func(s *state) {
		for _, tx := range s.transactions {
			if tx.UserID != nil && *tx.UserID == userID {
				out = append(out, &tx)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type walletRepository struct{ uow *UoW }

func (r *walletRepository) Credit(_ context.Context, userID uuid.UUID, currency string, amount int64) error {
	r.uow.with(func(s *state) {
		k := walletKey{userID, currency}
		w := s.wallets[k]
		w.UserID, w.Currency = userID, currency
		w.Balance += amount
		w.UpdatedAt = time.Now().UTC()
		s.wallets[k] = w
	})
	return nil
}

func (r *walletRepository) Debit(_ context.Context, userID uuid.UUID, currency string, amount int64) (err error) {
	r.uow.with(func(s *state) {
		k := walletKey{userID, currency}
		w, ok := s.wallets[k]
		if !ok || w.Balance < amount {
			err = domain.ErrInsufficientFunds
			return
		}
		w.Balance -= amount
		w.UpdatedAt = time.Now().UTC()
		s.wallets[k] = w
	})
	return err
}

func (r *walletRepository) Get(_ context.Context, userID uuid.UUID, currency string) (out *domain.Wallet, err error) {
	r.uow.with(func(s *state) {
		w, ok := s.wallets[walletKey{userID, currency}]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		out = &w
	})
	return out, err
}

func (r *walletRepository) ListByUser(_ context.Context, userID uuid.UUID) (out []*domain.Wallet, err error) {
	r.uow.with(func(s *state) {
		for k, w := range s.wallets {
			if k.userID == userID {
				out = append(out, &w)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

type beneficiaryRepository struct{ uow *UoW }

func (r *beneficiaryRepository) Create(_ context.Context, b *domain.Beneficiary) (err error) {
	fp := domain.BankDetailsFingerprint(b.Currency, b.BankDetails)
	r.uow.with(func(s *state) {
		for _, existing := range s.beneficiaries {
			if existing.UserID == b.UserID && existing.Currency == b.Currency &&
				domain.BankDetailsFingerprint(existing.Currency, existing.BankDetails) == fp {
				err = domain.ErrAlreadyExists
				return
			}
		}
		b.CreatedAt = time.Now().UTC()
		s.beneficiaries[b.ID] = *b
	})
	return err
}

func (r *beneficiaryRepository) ListByUser(_ context.Context, userID uuid.UUID) (out []*domain.Beneficiary, err error) {
	r.uow.with(func(s *state) {
		for _, b := range s.beneficiaries {
			if b.UserID == userID {
				out = append(out, &b)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type userRepository struct{ uow *UoW }

func (r *userRepository) Create(_ context.Context, u *domain.User) (err error) {
	key := strings.ToLower(u.Email)
	r.uow.with(func(s *state) {
		if _, ok := s.users[key]; ok {
			err = domain.ErrAlreadyExists
			return
		}
		u.CreatedAt = time.Now().UTC()
		s.users[key] = *u
	})
	return err
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (out *domain.User, err error) {
	r.uow.with(func(s *state) {
		u, ok := s.users[strings.ToLower(email)]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		out = &u
	})
	return out, err
}
