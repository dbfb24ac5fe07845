package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"eventreg/internal/registration/models"
	id "eventreg/pkg/domain"
	"eventreg/pkg/platform/sentinel"
)

const selectColumns = `
	id, nome_completo, email_corporativo, departamento, nivel_automacao,
	acessibilidade, detalhe_acessibilidade, dia_participacao, observacoes, created_at`

// PostgresStore persists registrations in the inscricoes table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, registration *models.Registration) error {
	if registration == nil {
		return fmt.Errorf("registration is required: %w", sentinel.ErrInvalidInput)
	}
	query := `
		INSERT INTO inscricoes (
			id, nome_completo, email_corporativo, departamento, nivel_automacao,
			acessibilidade, detalhe_acessibilidade, dia_participacao, observacoes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(registration.ID),
		registration.FullName,
		registration.CorporateEmail,
		registration.Department,
		registration.AutomationLevel,
		registration.NeedsAccessibility,
		nullString(registration.AccessibilityDetail),
		registration.ParticipationDay.String(),
		nullString(registration.Notes),
		registration.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("registration %s exists: %w", registration.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// List returns every registration, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM inscricoes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var registrations []*models.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return registrations, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM inscricoes WHERE id = $1`, uuid.UUID(registrationID))
	r, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("registration not found: %w", sentinel.ErrNotFound)
		}
		return nil, err
	}
	return r, nil
}

// Update overwrites the nine editable columns; id and created_at never change.
func (s *PostgresStore) Update(ctx context.Context, registration *models.Registration) error {
	if registration == nil {
		return fmt.Errorf("registration is required: %w", sentinel.ErrInvalidInput)
	}
	query := `
		UPDATE inscricoes SET
			nome_completo = $2,
			email_corporativo = $3,
			departamento = $4,
			nivel_automacao = $5,
			acessibilidade = $6,
			detalhe_acessibilidade = $7,
			dia_participacao = $8::date,
			observacoes = $9
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(registration.ID),
		registration.FullName,
		registration.CorporateEmail,
		registration.Department,
		registration.AutomationLevel,
		registration.NeedsAccessibility,
		nullString(registration.AccessibilityDetail),
		registration.ParticipationDay.String(),
		nullString(registration.Notes),
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	return requireAffected(res, "update registration")
}

func (s *PostgresStore) Delete(ctx context.Context, registrationID id.RegistrationID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inscricoes WHERE id = $1`, uuid.UUID(registrationID))
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return requireAffected(res, "delete registration")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var (
		rawID     uuid.UUID
		detail    sql.NullString
		notes     sql.NullString
		day       time.Time
		createdAt time.Time
		r         models.Registration
	)
	err := row.Scan(
		&rawID,
		&r.FullName,
		&r.CorporateEmail,
		&r.Department,
		&r.AutomationLevel,
		&r.NeedsAccessibility,
		&detail,
		&day,
		&notes,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	r.ID = id.RegistrationID(rawID)
	r.ParticipationDay = models.DayOf(day)
	r.CreatedAt = createdAt
	if detail.Valid {
		r.AccessibilityDetail = &detail.String
	}
	if notes.Valid {
		r.Notes = &notes.String
	}
	return &r, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("registration not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
