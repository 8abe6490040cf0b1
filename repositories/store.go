package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups the repositories that share one gorm handle. A Store created by
// ExecTx is bound to the open transaction.
type Store struct {
	db *gorm.DB

	Products     *ProductRepository
	Categories   *CategoryRepository
	Transactions *TransactionRepository
	Users        *UserRepository
	Audit        *AuditRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Products:     &ProductRepository{db: db},
		Categories:   &CategoryRepository{db: db},
		Transactions: &TransactionRepository{db: db},
		Users:        &UserRepository{db: db},
		Audit:        &AuditRepository{db: db},
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// ExecTx runs fn inside a single database transaction. Any error returned by
// fn, or a panic, rolls everything back.
func (s *Store) ExecTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsUniqueViolation reports whether err came from a unique constraint on any
// of the supported backends.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// forUpdate adds a row lock where the dialect supports one. SQLite runs on a
// single connection and is already serialized.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
