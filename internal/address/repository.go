package address

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarthaksaklani/enakart/internal/db"
)

var ErrNotFound = errors.New("address not found")

type Repository interface {
	List(ctx context.Context, userID uuid.UUID) ([]Address, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	// Create makes the address the default when it is the user's first one.
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	// Delete promotes the newest remaining address when the default is removed.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const addressColumns = `id, user_id, full_name, phone, address_line1, address_line2, city, state, postal_code,
	country, address_type, is_default, created_at, updated_at`

func scanAddress(row pgx.Row) (*Address, error) {
	var a Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.AddressType, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan address: %w", err)
		}
		addresses = append(addresses, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating addresses: %w", err)
	}
	return addresses, nil
}

func (r *repository) Get(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`
	a, err := scanAddress(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select address %s: %w", id, err)
	}
	return a, nil
}

func clearDefault(ctx context.Context, tx pgx.Tx, userID, keep uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND id <> $2 AND is_default`, userID, keep)
	if err != nil {
		return fmt.Errorf("repository: failed to clear default address: %w", err)
	}
	return nil
}

func (r *repository) Create(ctx context.Context, a *Address) error {
	if a.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate address id: %w", err)
		}
		a.ID = id
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, a.UserID).Scan(&count); err != nil {
			return fmt.Errorf("repository: failed to count addresses: %w", err)
		}
		if count == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := clearDefault(ctx, tx, a.UserID, a.ID); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO addresses (id, user_id, full_name, phone, address_line1, address_line2, city, state,
				postal_code, country, address_type, is_default, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		_, err := tx.Exec(ctx, query,
			a.ID, a.UserID, a.FullName, a.Phone, a.AddressLine1, a.AddressLine2, a.City, a.State,
			a.PostalCode, a.Country, a.AddressType, a.IsDefault, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert address: %w", err)
		}
		return nil
	})
}

func (r *repository) Update(ctx context.Context, a *Address) error {
	a.UpdatedAt = time.Now().UTC()

	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if a.IsDefault {
			if err := clearDefault(ctx, tx, a.UserID, a.ID); err != nil {
				return err
			}
		}

		query := `
			UPDATE addresses
			SET full_name = $1, phone = $2, address_line1 = $3, address_line2 = $4, city = $5, state = $6,
				postal_code = $7, country = $8, address_type = $9, is_default = $10, updated_at = $11
			WHERE id = $12 AND user_id = $13
		`
		cmdTag, err := tx.Exec(ctx, query,
			a.FullName, a.Phone, a.AddressLine1, a.AddressLine2, a.City, a.State,
			a.PostalCode, a.Country, a.AddressType, a.IsDefault, a.UpdatedAt, a.ID, a.UserID,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to update address %s: %w", a.ID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var wasDefault bool
		err := tx.QueryRow(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2 RETURNING is_default`, id, userID).Scan(&wasDefault)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("repository: failed to delete address %s: %w", id, err)
		}
		if !wasDefault {
			return nil
		}

		query := `
			UPDATE addresses SET is_default = TRUE, updated_at = NOW()
			WHERE id = (SELECT id FROM addresses WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1)
		`
		if _, err := tx.Exec(ctx, query, userID); err != nil {
			return fmt.Errorf("repository: failed to promote default address: %w", err)
		}
		return nil
	})
}
