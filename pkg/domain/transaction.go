package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes why a payment intent was created.
type TransactionType string

const (
	TransactionTypeExchange      TransactionType = "exchange"
	TransactionTypeWalletFunding TransactionType = "wallet_funding"
	TransactionTypeTransferOut   TransactionType = "transfer_out"
	TransactionTypeTransferIn    TransactionType = "transfer_in"
)

// TransactionStatus is the lifecycle state of a transaction record.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsTerminal reports whether no further transition is expected.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction is the persisted record of a requested exchange or wallet funding.
// Amount is in minor units of Currency.
type Transaction struct {
	ID              uuid.UUID
	UserID          *uuid.UUID
	Amount          int64
	Currency        string
	Type            TransactionType
	Status          TransactionStatus
	PaymentIntentID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Wallet holds a user's balance in one currency, in minor units.
type Wallet struct {
	UserID    uuid.UUID
	Currency  string
	Balance   int64
	UpdatedAt time.Time
}

// Beneficiary is a payee bank profile.
type Beneficiary struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Currency     string
	BankName     string
	BankDetails  map[string]string
	AddressLine1 string
	City         string
	State        string
	PostalCode   string
	Country      string
	CreatedAt    time.Time
}

// User is an account holder able to authenticate.
type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	CreatedAt      time.Time
}
