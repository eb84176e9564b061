package repository

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is the gorm model of the transactions table.
type Transaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID          *uuid.UUID `gorm:"type:uuid;index"`
	Amount          int64      `gorm:"not null"`
	Currency        string     `gorm:"type:varchar(3);not null"`
	Type            string     `gorm:"type:varchar(32);not null"`
	Status          string     `gorm:"type:varchar(16);not null"`
	PaymentIntentID *string    `gorm:"type:varchar(255);column:payment_intent_id"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Transaction) TableName() string { return "transactions" }

// Wallet is the gorm model of the wallets table.
type Wallet struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Currency  string    `gorm:"type:varchar(3);primaryKey"`
	Balance   int64     `gorm:"not null"`
	UpdatedAt time.Time
}

func (Wallet) TableName() string { return "wallets" }

// Beneficiary is the gorm model of the beneficiaries table.
// DetailsHash fingerprints BankDetails for the duplicate check.
type Beneficiary struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null"`
	Name         string    `gorm:"not null"`
	Currency     string    `gorm:"type:varchar(3);not null"`
	BankName     string
	BankDetails  map[string]string `gorm:"serializer:json;type:jsonb;not null"`
	DetailsHash  string            `gorm:"type:char(64);not null"`
	AddressLine1 string            `gorm:"column:address_line1"`
	City         string
	State        string
	PostalCode   string
	Country      string
	CreatedAt    time.Time
}

func (Beneficiary) TableName() string { return "beneficiaries" }

// User is the gorm model of the users table.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time
}

func (User) TableName() string { return "users" }
