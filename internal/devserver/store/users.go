package store

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (display_name, email, hashed_password, role)
	          VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query, user.DisplayName, user.Email, user.HashedPassword, user.Role)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("user with given display name or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("UserStore.Create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("UserStore.Create: %w", err)
	}
	user.UserID = uint(id)
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT user_id, display_name, email, hashed_password, role
	          FROM users WHERE email = ?`
	user := &model.User{}
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.UserID, &user.DisplayName, &user.Email, &user.HashedPassword, &user.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("UserStore.FindByEmail: %w", err)
	}
	return user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	query := `SELECT user_id, display_name, email, hashed_password, role
	          FROM users WHERE user_id = ?`
	user := &model.User{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.UserID, &user.DisplayName, &user.Email, &user.HashedPassword, &user.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("UserStore.FindByID: %w", err)
	}
	return user, nil
}

func (s *UserStore) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("UserStore.Count: %w", err)
	}
	return total, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, userID uint, role string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE user_id = ?`, role, userID)
	if err != nil {
		return fmt.Errorf("UserStore.UpdateRole: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UserStore.UpdateRole: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

var userSortColumns = map[string]string{
	"userid":      "user_id",
	"displayname": "display_name",
	"email":       "email",
	"role":        "role",
}

func (s *UserStore) Paginate(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[model.User], error) {
	where := ""
	args := []interface{}{}
	if q.Search != "" {
		where = ` WHERE display_name LIKE ? OR email LIKE ?`
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("UserStore.Paginate: %w", err)
	}

	query := `SELECT user_id, display_name, email, role FROM users` + where +
		` ORDER BY ` + orderClause(userSortColumns, q.Sort, q.Order, "user_id") +
		` LIMIT ? OFFSET ?`
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("UserStore.Paginate: %w", err)
	}
	defer rows.Close()

	result := &model.PaginationResult[model.User]{Total: total, Items: []model.User{}}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.UserID, &u.DisplayName, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("UserStore.Paginate: %w", err)
		}
		result.Items = append(result.Items, u)
	}
	return result, rows.Err()
}

// orderClause resolves a client-supplied sort field against a whitelist so
// nothing unquoted reaches the SQL text.
func orderClause(columns map[string]string, sort, order, fallback string) string {
	col, ok := columns[sort]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if order == model.OrderDesc {
		dir = "DESC"
	}
	return col + " " + dir
}
