package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"storefront/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// PostgresAddressStore keeps the address in a one-to-one table keyed by
// user id.
type PostgresAddressStore struct {
	db     *sql.DB
	userID int64
}

func (s *PostgresAddressStore) Key() string {
	return fmt.Sprintf("user:%d", s.userID)
}

func (s *PostgresAddressStore) Get(ctx context.Context) (*domain.Address, error) {
	a := &domain.Address{UserID: &s.userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT address, city, postcode, email, phonenumber
		 FROM addresses WHERE user_id = $1`, s.userID,
	).Scan(&a.Address, &a.City, &a.Postcode, &a.Email, &a.Phonenumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("address not found")
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to load address").WithCause(err)
	}
	return a, nil
}

func (s *PostgresAddressStore) Create(ctx context.Context, a *domain.Address) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO addresses (user_id, address, city, postcode, email, phonenumber)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.userID, a.Address, a.City, a.Postcode, a.Email, a.Phonenumber)
	if err != nil {
		return mapWriteError(err, "address")
	}
	a.UserID = &s.userID
	return nil
}

func (s *PostgresAddressStore) Update(ctx context.Context, a *domain.Address) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE addresses SET address = $2, city = $3, postcode = $4, email = $5, phonenumber = $6
		 WHERE user_id = $1`,
		s.userID, a.Address, a.City, a.Postcode, a.Email, a.Phonenumber)
	if err != nil {
		return domain.DatabaseError("failed to update address").WithCause(err)
	}
	return requireMatch(res, "address not found")
}

func (s *PostgresAddressStore) Delete(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM addresses WHERE user_id = $1`, s.userID)
	if err != nil {
		return domain.DatabaseError("failed to delete address").WithCause(err)
	}
	return requireMatch(res, "address not found")
}

// PostgresPersonStore keeps the person record in a one-to-one table keyed by
// user id.
type PostgresPersonStore struct {
	db     *sql.DB
	userID int64
}

func (s *PostgresPersonStore) Key() string {
	return fmt.Sprintf("user:%d", s.userID)
}

func (s *PostgresPersonStore) Get(ctx context.Context) (*domain.Person, error) {
	p := &domain.Person{UserID: &s.userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT firstname, lastname, company_name
		 FROM persons WHERE user_id = $1`, s.userID,
	).Scan(&p.Firstname, &p.Lastname, &p.CompanyName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("person not found")
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to load person").WithCause(err)
	}
	return p, nil
}

func (s *PostgresPersonStore) Create(ctx context.Context, p *domain.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persons (user_id, firstname, lastname, company_name)
		 VALUES ($1, $2, $3, $4)`,
		s.userID, p.Firstname, p.Lastname, p.CompanyName)
	if err != nil {
		return mapWriteError(err, "person")
	}
	p.UserID = &s.userID
	return nil
}

func (s *PostgresPersonStore) Update(ctx context.Context, p *domain.Person) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE persons SET firstname = $2, lastname = $3, company_name = $4
		 WHERE user_id = $1`,
		s.userID, p.Firstname, p.Lastname, p.CompanyName)
	if err != nil {
		return domain.DatabaseError("failed to update person").WithCause(err)
	}
	return requireMatch(res, "person not found")
}

func (s *PostgresPersonStore) Delete(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM persons WHERE user_id = $1`, s.userID)
	if err != nil {
		return domain.DatabaseError("failed to delete person").WithCause(err)
	}
	return requireMatch(res, "person not found")
}

func mapWriteError(err error, entity string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return domain.AlreadyExists(fmt.Sprintf("%s already exists", entity))
		case pqForeignKeyViolation:
			return domain.NotFound("user not found")
		}
	}
	return domain.DatabaseError(fmt.Sprintf("failed to create %s", entity)).WithCause(err)
}

func requireMatch(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DatabaseError("failed to read result").WithCause(err)
	}
	if n == 0 {
		return domain.NotFound(notFoundMsg)
	}
	return nil
}
