package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
)

type tasksRepo struct {
	q querier
}

const taskColumns = `t.id, t.project_id, t.title, t.description, t.status, t.priority, t.due_date,
	t.is_archived, t.created_by, t.created_at, t.updated_at`

func scanTask(s scanner) (domain.Task, error) {
	var (
		t   domain.Task
		due sql.NullTime
	)
	err := s.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &due,
		&t.IsArchived, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	t.DueDate = timePtr(due)
	t.Assignees = []string{}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *tasksRepo) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, priority, due_date,
			is_archived, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority),
		nullTime(t.DueDate), t.IsArchived, t.CreatedBy, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}

	for _, userID := range t.Assignees {
		if _, err := r.q.exec(ctx,
			`INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?)`,
			t.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *tasksRepo) GetTaskByID(ctx context.Context, id string) (domain.Task, error) {
	row := r.q.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return domain.Task{}, r.q.mapErr(err)
	}

	rows, err := r.q.query(ctx,
		`SELECT user_id FROM task_assignees WHERE task_id = ? ORDER BY user_id`, id)
	if err != nil {
		return domain.Task{}, err
	}
	assignees, err := collect(rows, func(s scanner) (string, error) {
		var uid string
		return uid, s.Scan(&uid)
	})
	if err != nil {
		return domain.Task{}, err
	}
	if assignees != nil {
		t.Assignees = assignees
	}
	return t, nil
}

func (r *tasksRepo) ListTasksByProject(ctx context.Context, projectID string, includeArchived bool) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.project_id = ?`
	args := []any{projectID}
	if !includeArchived {
		query += ` AND t.is_archived = ?`
		args = append(args, false)
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	tasks, err := collect(rows, scanTask)
	if err != nil || len(tasks) == 0 {
		return tasks, err
	}

	// Second pass for assignees once the task rows are closed.
	rows, err = r.q.query(ctx, `
		SELECT a.task_id, a.user_id
		FROM task_assignees a
		JOIN tasks t ON t.id = a.task_id
		WHERE t.project_id = ?
		ORDER BY a.user_id`, projectID)
	if err != nil {
		return nil, err
	}
	type pair struct{ taskID, userID string }
	pairs, err := collect(rows, func(s scanner) (pair, error) {
		var p pair
		return p, s.Scan(&p.taskID, &p.userID)
	})
	if err != nil {
		return nil, err
	}

	byTask := make(map[string]int, len(tasks))
	for i, t := range tasks {
		byTask[t.ID] = i
	}
	for _, p := range pairs {
		if i, ok := byTask[p.taskID]; ok {
			tasks[i].Assignees = append(tasks[i].Assignees, p.userID)
		}
	}
	return tasks, nil
}

func (r *tasksRepo) UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus) error {
	return r.q.execOne(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now(), taskID)
}

func (r *tasksRepo) ArchiveTask(ctx context.Context, taskID string) error {
	return r.q.execOne(ctx,
		`UPDATE tasks SET is_archived = ?, updated_at = ? WHERE id = ?`,
		true, now(), taskID)
}
