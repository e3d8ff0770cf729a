package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avelks/todo-api-be/internal/models"
)

// CreateTodoInput carries the fields of a create request. Description and
// IsCompleted are optional; IsCompleted defaults to false.
type CreateTodoInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// UpdateTodoInput carries the fields of a partial update. A nil field keeps
// the stored value.
type UpdateTodoInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// TodoServiceProvider defines the interface for todo services. Every
// operation takes the owning user's ID first, so an unscoped query cannot
// be written by accident.
type TodoServiceProvider interface {
	ListTodos(ctx context.Context, userID string, page, limit int) ([]models.Todo, error)
	CreateTodo(ctx context.Context, userID string, input CreateTodoInput) (models.Todo, error)
	GetTodo(ctx context.Context, userID, todoID string) (models.Todo, error)
	UpdateTodo(ctx context.Context, userID, todoID string, input UpdateTodoInput) (models.Todo, error)
	DeleteTodo(ctx context.Context, userID, todoID string) error
	CountTodos(ctx context.Context) (int, error)
}

// TodoService provides business logic for todo management.
type TodoService struct {
	db *sql.DB
}

// NewTodoService creates a new TodoService.
func NewTodoService(db *sql.DB) *TodoService {
	return &TodoService{db: db}
}

// scanTodo is a helper to scan a todo from a row or rows object.
func scanTodo(scanner interface{ Scan(...interface{}) error }) (models.Todo, error) {
	var todo models.Todo
	var desc sql.NullString

	err := scanner.Scan(
		&todo.ID, &todo.UserID, &todo.Title, &desc,
		&todo.IsCompleted, &todo.CreatedAt, &todo.UpdatedAt,
	)
	if err != nil {
		return todo, err
	}

	if desc.Valid {
		todo.Description = &desc.String
	}
	return todo, nil
}

// ListTodos returns one page of the user's todos ordered by id ascending.
// Page numbers are 1-based; limit defaults to 10.
func (s *TodoService) ListTodos(ctx context.Context, userID string, page, limit int) ([]models.Todo, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	const query = `
		SELECT id, user_id, title, description, is_completed, created_at, updated_at
		FROM todos WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// CreateTodo inserts a new todo for the user and reads it back so the
// caller gets the server-assigned timestamps.
func (s *TodoService) CreateTodo(ctx context.Context, userID string, input CreateTodoInput) (models.Todo, error) {
	id := uuid.New().String()
	isCompleted := false
	if input.IsCompleted != nil {
		isCompleted = *input.IsCompleted
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO todos(id, user_id, title, description, is_completed) VALUES(?, ?, ?, ?, ?)",
		id, userID, input.Title, input.Description, isCompleted,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Todo{}, fmt.Errorf("create todo: %w", ErrDuplicateID)
		}
		return models.Todo{}, fmt.Errorf("create todo: %w", err)
	}

	return s.GetTodo(ctx, userID, id)
}

// GetTodo retrieves a single todo scoped to its owner.
func (s *TodoService) GetTodo(ctx context.Context, userID, todoID string) (models.Todo, error) {
	const query = `
		SELECT id, user_id, title, description, is_completed, created_at, updated_at
		FROM todos WHERE id = ? AND user_id = ?`
	row := s.db.QueryRowContext(ctx, query, todoID, userID)

	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Todo{}, fmt.Errorf("todo with id %s: %w", todoID, ErrNotFound)
		}
		return models.Todo{}, err
	}
	return todo, nil
}

// UpdateTodo merges the given fields into the stored todo and returns the
// updated record. Omitted fields keep their previous values.
func (s *TodoService) UpdateTodo(ctx context.Context, userID, todoID string, input UpdateTodoInput) (models.Todo, error) {
	todo, err := s.GetTodo(ctx, userID, todoID)
	if err != nil {
		return models.Todo{}, err
	}

	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.Description != nil {
		todo.Description = input.Description
	}
	if input.IsCompleted != nil {
		todo.IsCompleted = *input.IsCompleted
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, description = ?, is_completed = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		todo.Title, todo.Description, todo.IsCompleted, todoID, userID,
	)
	if err != nil {
		return models.Todo{}, fmt.Errorf("update todo: %w", err)
	}

	return s.GetTodo(ctx, userID, todoID)
}

// DeleteTodo removes a todo scoped to its owner. Zero affected rows means
// the todo does not exist or belongs to someone else; both are ErrNotFound.
func (s *TodoService) DeleteTodo(ctx context.Context, userID, todoID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ? AND user_id = ?", todoID, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("todo with id %s: %w", todoID, ErrNotFound)
	}
	return nil
}

// CountTodos returns the total number of todos across all users.
func (s *TodoService) CountTodos(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM todos").Scan(&count)
	return count, err
}
