package postgres

import (
	"context"
	"database/sql"

	"receiptguard/internal/model"
	"receiptguard/internal/repository"
)

// StudentPostgres is a PostgreSQL implementation of repository.StudentRepository.
type StudentPostgres struct {
	db *sql.DB
}

// NewStudentPostgres creates a new StudentPostgres repository.
func NewStudentPostgres(db *sql.DB) *StudentPostgres {
	return &StudentPostgres{db: db}
}

var _ repository.StudentRepository = (*StudentPostgres)(nil)

// FindByID fetches a single student by ID.
func (r *StudentPostgres) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	const q = `
		SELECT id, name, email, iban, card_id
		FROM students
		WHERE id = $1
	`
	var s model.Student
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID,
		&s.Name,
		&s.Email,
		&s.IBAN,
		&s.CardID,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
