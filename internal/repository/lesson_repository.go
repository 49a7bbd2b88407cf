package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-bot/internal/model"
)

type LessonRepository struct {
	pool *pgxpool.Pool
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

const lessonColumns = `id, module_id, title, description, order_index, video_url, has_homework, homework_title, homework_description, is_active, created_at`

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var l model.Lesson
	err := row.Scan(
		&l.ID,
		&l.ModuleID,
		&l.Title,
		&l.Description,
		&l.OrderIndex,
		&l.VideoURL,
		&l.HasHomework,
		&l.HomeworkTitle,
		&l.HomeworkDescription,
		&l.IsActive,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID получает урок по ID
func (r *LessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM course_lessons WHERE id = $1`

	lesson, err := scanLesson(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// GetActiveByModule получает активные уроки модуля по возрастанию order_index
func (r *LessonRepository) GetActiveByModule(ctx context.Context, moduleID uuid.UUID) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM course_lessons
		WHERE module_id = $1 AND is_active = true
		ORDER BY order_index
	`

	rows, err := r.pool.Query(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("get lessons by module: %w", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

// GetAllActive получает все активные уроки курса, сгруппированные по модулям.
// Внутри группы уроки идут по возрастанию order_index.
func (r *LessonRepository) GetAllActive(ctx context.Context) (map[uuid.UUID][]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM course_lessons
		WHERE is_active = true
		ORDER BY module_id, order_index
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all lessons: %w", err)
	}
	defer rows.Close()

	lessons, err := collectLessons(rows)
	if err != nil {
		return nil, err
	}

	byModule := make(map[uuid.UUID][]model.Lesson)
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}

	return byModule, nil
}

func collectLessons(rows pgx.Rows) ([]model.Lesson, error) {
	var lessons []model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, *lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}
