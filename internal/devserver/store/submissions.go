package store

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SubmissionStore struct {
	db *sql.DB
}

func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// Create inserts a submission with its per-testcase results in one
// transaction. The devserver grades synchronously, so the rows arrive
// already settled.
func (s *SubmissionStore) Create(ctx context.Context, sub *model.Submission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SubmissionStore.Create: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (challenge_id, user_id, language, source_code, status)
		 VALUES (?, ?, ?, ?, ?)`,
		sub.ChallengeID, sub.UserID, sub.Language, sub.SourceCode, sub.Status)
	if err != nil {
		return fmt.Errorf("SubmissionStore.Create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("SubmissionStore.Create: %w", err)
	}
	sub.SubmissionID = uint(id)

	for i := range sub.SubmissionTestcases {
		row := &sub.SubmissionTestcases[i]
		row.SubmissionID = sub.SubmissionID
		res, err := tx.ExecContext(ctx,
			`INSERT INTO submission_testcases (submission_id, challenge_testcase_id, status, output, note)
			 VALUES (?, ?, ?, ?, ?)`,
			row.SubmissionID, row.ChallengeTestcaseID, row.Status, row.Output, row.Note)
		if err != nil {
			return fmt.Errorf("SubmissionStore.Create: %w", err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("SubmissionStore.Create: %w", err)
		}
		row.SubmissionTestcaseID = uint(rowID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SubmissionStore.Create: %w", err)
	}
	return nil
}

func (s *SubmissionStore) FindByID(ctx context.Context, id uint) (*model.Submission, error) {
	sub := &model.Submission{}
	var challengeName string
	err := s.db.QueryRowContext(ctx,
		`SELECT s.submission_id, s.challenge_id, s.user_id, s.language, s.source_code, s.status, c.name
		 FROM submissions s JOIN challenges c ON c.challenge_id = s.challenge_id
		 WHERE s.submission_id = ?`, id).Scan(
		&sub.SubmissionID, &sub.ChallengeID, &sub.UserID, &sub.Language, &sub.SourceCode, &sub.Status, &challengeName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("SubmissionStore.FindByID: %w", err)
	}
	sub.Challenge = &model.Challenge{ChallengeID: sub.ChallengeID, Name: challengeName}

	rows, err := s.db.QueryContext(ctx,
		`SELECT st.submission_testcase_id, st.status, st.output, st.submission_id, st.challenge_testcase_id, st.note,
		        t.input, t.expected_output
		 FROM submission_testcases st
		 LEFT JOIN testcases t ON t.testcase_id = st.challenge_testcase_id
		 WHERE st.submission_id = ? ORDER BY st.submission_testcase_id`, id)
	if err != nil {
		return nil, fmt.Errorf("SubmissionStore.FindByID: %w", err)
	}
	defer rows.Close()

	sub.SubmissionTestcases = []model.SubmissionTestcase{}
	for rows.Next() {
		var st model.SubmissionTestcase
		var input, expected sql.NullString
		if err := rows.Scan(&st.SubmissionTestcaseID, &st.Status, &st.Output, &st.SubmissionID,
			&st.ChallengeTestcaseID, &st.Note, &input, &expected); err != nil {
			return nil, fmt.Errorf("SubmissionStore.FindByID: %w", err)
		}
		// The challenge testcase may have been deleted since grading.
		if input.Valid {
			st.ChallengeTestcase = &model.ChallengeTestcase{
				TestcaseID:     st.ChallengeTestcaseID,
				Input:          input.String,
				ExpectedOutput: expected.String,
			}
		}
		sub.SubmissionTestcases = append(sub.SubmissionTestcases, st)
	}
	return sub, rows.Err()
}

var submissionSortColumns = map[string]string{
	"submission_id": "s.submission_id",
	"id":            "s.submission_id",
	"status":        "s.status",
	"language":      "s.language",
}

func (s *SubmissionStore) Paginate(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[model.Submission], error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if q.Search != "" {
		where += ` AND (s.language LIKE ? OR s.status LIKE ? OR c.name LIKE ?)`
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if q.ChallengeID != 0 {
		where += ` AND s.challenge_id = ?`
		args = append(args, q.ChallengeID)
	}
	if q.UserID != 0 {
		where += ` AND s.user_id = ?`
		args = append(args, q.UserID)
	}

	from := ` FROM submissions s JOIN challenges c ON c.challenge_id = s.challenge_id
	          JOIN users u ON u.user_id = s.user_id`

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("SubmissionStore.Paginate: %w", err)
	}

	query := `SELECT s.submission_id, s.challenge_id, s.user_id, s.language, s.status, c.name, u.display_name` +
		from + where +
		` ORDER BY ` + orderClause(submissionSortColumns, q.Sort, q.Order, "s.submission_id") +
		` LIMIT ? OFFSET ?`
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SubmissionStore.Paginate: %w", err)
	}
	defer rows.Close()

	result := &model.PaginationResult[model.Submission]{Total: total, Items: []model.Submission{}}
	for rows.Next() {
		var sub model.Submission
		var challengeName, displayName string
		if err := rows.Scan(&sub.SubmissionID, &sub.ChallengeID, &sub.UserID, &sub.Language, &sub.Status,
			&challengeName, &displayName); err != nil {
			return nil, fmt.Errorf("SubmissionStore.Paginate: %w", err)
		}
		sub.Challenge = &model.Challenge{ChallengeID: sub.ChallengeID, Name: challengeName}
		sub.User = &model.User{UserID: sub.UserID, DisplayName: displayName}
		result.Items = append(result.Items, sub)
	}
	return result, rows.Err()
}
