package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/store"
)

// memberColumns is the ordered list of columns selected in member queries.
// Must match the scan order in scanMember.
const memberColumns = `id, created_at, updated_at, name, email`

// scanMember scans a sql.Row (or sql.Rows via its Scan method) into a domain.Member.
func scanMember(scanner interface{ Scan(dest ...any) error }) (*domain.Member, error) {
	var m domain.Member

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&m.ID,
		&createdAt,
		&updatedAt,
		&m.Name,
		&m.Email,
	)
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// CreateMember inserts a new member into the database.
// Returns store.ErrEmailExists if the email is already registered.
func (s *Store) CreateMember(ctx context.Context, member *domain.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, created_at, updated_at, name, email)
		VALUES (?, ?, ?, ?, ?)`,
		member.ID,
		formatTime(member.CreatedAt),
		formatTime(member.UpdatedAt),
		member.Name,
		member.Email,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrEmailExists
		}
		return err
	}
	return nil
}

// GetMember retrieves a member by ID.
// Returns store.ErrMemberNotFound if the member does not exist.
func (s *Store) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id)

	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMembers returns all members ordered by name.
func (s *Store) ListMembers(ctx context.Context) ([]*domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateMember performs a full update on an existing member.
// Returns store.ErrMemberNotFound if the member does not exist and
// store.ErrEmailExists on an email collision.
func (s *Store) UpdateMember(ctx context.Context, member *domain.Member) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE members SET
			updated_at = ?,
			name = ?,
			email = ?
		WHERE id = ?`,
		formatTime(member.UpdatedAt),
		member.Name,
		member.Email,
		member.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrEmailExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrMemberNotFound
	}
	return nil
}

// DeleteMember removes a member.
// Returns store.ErrMemberNotFound if the member does not exist.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrMemberNotFound
	}
	return nil
}

// TopActiveMembers returns up to limit members ranked by their count of
// active loans (unreturned, due on or after the date of now), computed in
// a single aggregation query. Ties are broken by member ID for a
// deterministic order. Members with zero active loans are included so the
// result is always populated when members exist.
func (s *Store) TopActiveMembers(ctx context.Context, now time.Time, limit int) ([]*store.MemberActivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.created_at, m.updated_at, m.name, m.email,
			COUNT(l.id) AS active_loans
		FROM members m
		LEFT JOIN loans l
			ON l.member_id = m.id AND l.is_returned = 0 AND l.due_date >= ?
		GROUP BY m.id
		ORDER BY active_loans DESC, m.id
		LIMIT ?`,
		formatDate(now),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranked []*store.MemberActivity
	for rows.Next() {
		var (
			ma        store.MemberActivity
			createdAt string
			updatedAt string
		)

		err := rows.Scan(
			&ma.ID,
			&createdAt,
			&updatedAt,
			&ma.Name,
			&ma.Email,
			&ma.ActiveLoans,
		)
		if err != nil {
			return nil, err
		}

		ma.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		ma.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, err
		}

		ranked = append(ranked, &ma)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ranked, nil
}
