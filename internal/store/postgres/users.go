package postgres

import (
	"context"
	"strings"
	"time"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/store"
)

func (d *DB) InsertUser(ctx context.Context, user *models.User) error {
	_, err := d.db.ExecContext(ctx, `
INSERT INTO users (id, stud_id, full_name, age, sex, department, email, password_hash, role, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
`, user.ID, user.StudentID, user.FullName, user.Age, user.Sex, user.Department,
		strings.ToLower(user.Email), user.PasswordHash, user.Role, user.CreatedAt)
	if isUniqueViolation(err, "uq_users_email") {
		return store.ErrDuplicateEmail
	}
	return err
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.db.GetContext(ctx, &user, `
SELECT id, stud_id, full_name, age, sex, department, email, password_hash, role, created_at, updated_at
FROM users
WHERE lower(email) = $1
`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &user, nil
}

func (d *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.db.GetContext(ctx, &user, `
SELECT id, stud_id, full_name, age, sex, department, email, password_hash, role, created_at, updated_at
FROM users
WHERE id = $1
`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &user, nil
}

func (d *DB) ListUsers(ctx context.Context, search string) ([]models.User, error) {
	query := `
SELECT id, stud_id, full_name, age, sex, department, email, password_hash, role, created_at, updated_at
FROM users
`
	args := []interface{}{}
	if search = strings.TrimSpace(search); search != "" {
		query += "WHERE lower(full_name) LIKE $1 OR lower(email) LIKE $1\n"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += "ORDER BY created_at DESC"
	users := []models.User{}
	if err := d.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (d *DB) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := d.db.ExecContext(ctx, `
UPDATE users
SET full_name = $2, age = $3, sex = $4, department = $5, email = $6, role = $7, updated_at = $8
WHERE id = $1
`, user.ID, user.FullName, user.Age, user.Sex, user.Department,
		strings.ToLower(user.Email), user.Role, time.Now().UTC())
	if isUniqueViolation(err, "uq_users_email") {
		return store.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) SetUserPassword(ctx context.Context, id, passwordHash string) error {
	result, err := d.db.ExecContext(ctx, `
UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
`, id, passwordHash, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
