package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-bot/internal/model"
)

type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionColumns = `id, user_id, lesson_id, answer_text, quiz_answers, status, curator_comment, reviewed_at, created_at`

func scanSubmission(row pgx.Row) (*model.HomeworkSubmission, error) {
	var s model.HomeworkSubmission
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.LessonID,
		&s.AnswerText,
		&s.QuizAnswers,
		&s.Status,
		&s.CuratorComment,
		&s.ReviewedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create создаёт сдачу со статусом pending.
// Уникальный ключ (user_id, lesson_id) гарантирует не больше одной строки
// на пару, гонка двух параллельных сдач разрешается на уровне базы.
// Возвращает false, если строка уже существовала.
func (r *SubmissionRepository) Create(ctx context.Context, sub *model.HomeworkSubmission) (bool, error) {
	query := `
		INSERT INTO homework_submissions (user_id, lesson_id, answer_text, quiz_answers, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, lesson_id) DO NOTHING
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		sub.UserID,
		sub.LessonID,
		sub.AnswerText,
		sub.QuizAnswers,
		model.SubmissionStatusPending,
	).Scan(&sub.ID, &sub.CreatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil // Конфликт: сдача уже есть
		}
		return false, fmt.Errorf("create submission: %w", err)
	}

	sub.Status = model.SubmissionStatusPending
	return true, nil
}

// Resubmit перезаписывает отклонённую сдачу новым ответом и возвращает её в pending.
// Условие на статус атомарно защищает от гонки с куратором: если ревью уже
// изменило статус, ни одна строка не обновится.
func (r *SubmissionRepository) Resubmit(ctx context.Context, userID int64, lessonID uuid.UUID, answerText string, quizAnswers map[string]any) (bool, error) {
	query := `
		UPDATE homework_submissions
		SET answer_text = $1, quiz_answers = $2, status = $3,
		    curator_comment = NULL, reviewed_at = NULL
		WHERE user_id = $4 AND lesson_id = $5 AND status = $6
	`

	result, err := r.pool.Exec(
		ctx, query,
		answerText,
		quizAnswers,
		model.SubmissionStatusPending,
		userID,
		lessonID,
		model.SubmissionStatusRejected,
	)

	if err != nil {
		return false, fmt.Errorf("resubmit homework: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// UpdateReview переводит pending-сдачу в approved/rejected.
// Conditional update: двое кураторов не могут "успешно" отревьюить одну сдачу.
func (r *SubmissionRepository) UpdateReview(ctx context.Context, id uuid.UUID, status string, comment *string) (bool, error) {
	query := `
		UPDATE homework_submissions
		SET status = $1, curator_comment = $2, reviewed_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := r.pool.Exec(ctx, query, status, comment, id, model.SubmissionStatusPending)
	if err != nil {
		return false, fmt.Errorf("update review: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByID получает сдачу по ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.HomeworkSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM homework_submissions WHERE id = $1`

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission by id: %w", err)
	}

	return sub, nil
}

// GetByUserAndLesson получает сдачу пользователя по уроку
func (r *SubmissionRepository) GetByUserAndLesson(ctx context.Context, userID int64, lessonID uuid.UUID) (*model.HomeworkSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM homework_submissions WHERE user_id = $1 AND lesson_id = $2`

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, userID, lessonID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission by user and lesson: %w", err)
	}

	return sub, nil
}

// GetStatusesByUser получает статусы всех сдач пользователя: lesson_id -> status
func (r *SubmissionRepository) GetStatusesByUser(ctx context.Context, userID int64) (map[uuid.UUID]string, error) {
	query := `SELECT lesson_id, status FROM homework_submissions WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get submission statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[uuid.UUID]string)
	for rows.Next() {
		var lessonID uuid.UUID
		var status string
		if err := rows.Scan(&lessonID, &status); err != nil {
			return nil, fmt.Errorf("scan submission status: %w", err)
		}
		statuses[lessonID] = status
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission statuses: %w", err)
	}

	return statuses, nil
}

// GetPending получает все сдачи, ожидающие проверки (для кураторов)
func (r *SubmissionRepository) GetPending(ctx context.Context, limit int) ([]*model.HomeworkSubmission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM homework_submissions
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, model.SubmissionStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending submissions: %w", err)
	}
	defer rows.Close()

	var subs []*model.HomeworkSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return subs, nil
}
