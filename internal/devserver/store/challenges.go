package store

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type ChallengeStore struct {
	db *sql.DB
}

func NewChallengeStore(db *sql.DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

// Create inserts a challenge and its initial test cases in one transaction.
// Only create-intent rows are expected here; anything else in the batch is a
// client error.
func (s *ChallengeStore) Create(ctx context.Context, ch *model.Challenge, testcases []model.TestcaseModify) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ChallengeStore.Create: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO challenges (name, description, user_id) VALUES (?, ?, ?)`,
		ch.Name, ch.Description, ch.UserID)
	if err != nil {
		return fmt.Errorf("ChallengeStore.Create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("ChallengeStore.Create: %w", err)
	}
	ch.ChallengeID = uint(id)

	for i, tc := range testcases {
		if tc.Action != model.ActionCreate {
			return fmt.Errorf("testcase #%d: only create actions are valid on a new challenge: %w", i, common.ErrBadRequest)
		}
		if err := insertTestcase(ctx, tx, ch.ChallengeID, tc); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ChallengeStore.Create: %w", err)
	}
	return nil
}

// ApplyBatch applies a whole-set batch mutation transactionally: the
// challenge header is updated and every record's action is applied.
// Action-neutral rows are left alone.
func (s *ChallengeStore) ApplyBatch(ctx context.Context, req model.ChallengeUpdateRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ChallengeStore.ApplyBatch: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE challenges SET name = ?, description = ? WHERE challenge_id = ?`,
		req.Name, req.Description, req.ChallengeID)
	if err != nil {
		return fmt.Errorf("ChallengeStore.ApplyBatch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ChallengeStore.ApplyBatch: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	for i, tc := range req.Testcases {
		switch tc.Action {
		case model.ActionCreate:
			if err := insertTestcase(ctx, tx, req.ChallengeID, tc); err != nil {
				return err
			}
		case model.ActionUpdate:
			_, err := tx.ExecContext(ctx,
				`UPDATE testcases SET input = ?, expected_output = ?, limit_memory = ?, limit_time_ms = ?
				 WHERE testcase_id = ? AND challenge_id = ?`,
				tc.Input, tc.ExpectedOutput, tc.LimitMemory, tc.LimitTimeMs, tc.TestcaseID, req.ChallengeID)
			if err != nil {
				return fmt.Errorf("ChallengeStore.ApplyBatch: %w", err)
			}
		case model.ActionDelete:
			if tc.TestcaseID == 0 {
				return fmt.Errorf("testcase #%d: delete without a testcase_id: %w", i, common.ErrBadRequest)
			}
			_, err := tx.ExecContext(ctx,
				`DELETE FROM testcases WHERE testcase_id = ? AND challenge_id = ?`,
				tc.TestcaseID, req.ChallengeID)
			if err != nil {
				return fmt.Errorf("ChallengeStore.ApplyBatch: %w", err)
			}
		case model.ActionNone:
			// Untouched server row, nothing to do.
		default:
			return fmt.Errorf("testcase #%d: unknown action %q: %w", i, tc.Action, common.ErrBadRequest)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ChallengeStore.ApplyBatch: %w", err)
	}
	return nil
}

func insertTestcase(ctx context.Context, tx *sql.Tx, challengeID uint, tc model.TestcaseModify) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO testcases (challenge_id, input, expected_output, limit_memory, limit_time_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		challengeID, tc.Input, tc.ExpectedOutput, tc.LimitMemory, tc.LimitTimeMs)
	if err != nil {
		return fmt.Errorf("insert testcase: %w", err)
	}
	return nil
}

func (s *ChallengeStore) FindByID(ctx context.Context, id uint) (*model.Challenge, error) {
	ch := &model.Challenge{}
	user := model.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT c.challenge_id, c.name, c.description, c.user_id, u.user_id, u.display_name, u.email, u.role
		 FROM challenges c JOIN users u ON u.user_id = c.user_id
		 WHERE c.challenge_id = ?`, id).Scan(
		&ch.ChallengeID, &ch.Name, &ch.Description, &ch.UserID,
		&user.UserID, &user.DisplayName, &user.Email, &user.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("ChallengeStore.FindByID: %w", err)
	}
	ch.User = &user

	rows, err := s.db.QueryContext(ctx,
		`SELECT testcase_id, input, expected_output, limit_memory, limit_time_ms, challenge_id
		 FROM testcases WHERE challenge_id = ? ORDER BY testcase_id`, id)
	if err != nil {
		return nil, fmt.Errorf("ChallengeStore.FindByID: %w", err)
	}
	defer rows.Close()

	ch.Testcases = []model.ChallengeTestcase{}
	for rows.Next() {
		var tc model.ChallengeTestcase
		if err := rows.Scan(&tc.TestcaseID, &tc.Input, &tc.ExpectedOutput, &tc.LimitMemory, &tc.LimitTimeMs, &tc.ChallengeID); err != nil {
			return nil, fmt.Errorf("ChallengeStore.FindByID: %w", err)
		}
		ch.Testcases = append(ch.Testcases, tc)
	}
	return ch, rows.Err()
}

func (s *ChallengeStore) Delete(ctx context.Context, id uint) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE challenge_id = ?`, id)
	if err != nil {
		return fmt.Errorf("ChallengeStore.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ChallengeStore.Delete: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

var challengeSortColumns = map[string]string{
	"challenge_id": "c.challenge_id",
	"id":           "c.challenge_id",
	"name":         "c.name",
}

// Paginate lists challenges with the requesting user's latest submission
// status folded in, the way the dashboard's table renders them.
func (s *ChallengeStore) Paginate(ctx context.Context, q model.PaginationQuery, viewerID uint) (*model.PaginationResult[model.Challenge], error) {
	where := ""
	args := []interface{}{}
	if q.Search != "" {
		where = ` WHERE c.name LIKE ? OR c.description LIKE ?`
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges c`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("ChallengeStore.Paginate: %w", err)
	}

	query := `SELECT c.challenge_id, c.name, c.description, c.user_id,
	                 u.display_name,
	                 COALESCE((SELECT s.status FROM submissions s
	                           WHERE s.challenge_id = c.challenge_id AND s.user_id = ?
	                           ORDER BY s.submission_id DESC LIMIT 1), '')
	          FROM challenges c JOIN users u ON u.user_id = c.user_id` + where +
		` ORDER BY ` + orderClause(challengeSortColumns, q.Sort, q.Order, "c.challenge_id") +
		` LIMIT ? OFFSET ?`
	args = append([]interface{}{viewerID}, args...)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ChallengeStore.Paginate: %w", err)
	}
	defer rows.Close()

	result := &model.PaginationResult[model.Challenge]{Total: total, Items: []model.Challenge{}}
	for rows.Next() {
		var ch model.Challenge
		var displayName string
		if err := rows.Scan(&ch.ChallengeID, &ch.Name, &ch.Description, &ch.UserID, &displayName, &ch.SubmissionStatus); err != nil {
			return nil, fmt.Errorf("ChallengeStore.Paginate: %w", err)
		}
		ch.User = &model.User{UserID: ch.UserID, DisplayName: displayName}
		result.Items = append(result.Items, ch)
	}
	return result, rows.Err()
}
