package infra

import (
	"errors"

	"github.com/amirasaad/fxpay/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrDatabaseURLNotSet is returned when no connection string is configured.
var ErrDatabaseURLNotSet = errors.New("DATABASE_URL is not set")

// NewDBConnection opens the postgres pool described by cnf.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, ErrDatabaseURLNotSet
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	connection, err := gorm.Open(postgres.Open(cnf.Url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cnf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cnf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cnf.ConnMaxLifetime)

	return connection, nil
}
