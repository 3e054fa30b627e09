package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yitocode/members-api/internal/model"
)

// NotificationRepo is the MySQL implementation of
// NotificationRepository, mirroring the `notifications` table.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create inserts a notification and fills in its generated ID.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (text) VALUES (?)", n.Text)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// FindByID fetches a notification by id.
func (r *NotificationRepo) FindByID(ctx context.Context, id uint64) (*model.Notification, error) {
	var n model.Notification
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,text,created_at,updated_at FROM notifications WHERE id=? LIMIT 1",
		id).Scan(&n.ID, &n.Text, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// List returns notifications with skip/take pagination.
func (r *NotificationRepo) List(ctx context.Context, skip, take int) ([]model.Notification, error) {
	if take <= 0 {
		take = 20
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,text,created_at,updated_at FROM notifications ORDER BY id LIMIT ? OFFSET ?",
		take, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Update rewrites the text of a notification.
func (r *NotificationRepo) Update(ctx context.Context, n *model.Notification) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET text=? WHERE id=?", n.Text, n.ID)
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err == nil && cnt == 0 {
		return ErrNotFound
	}
	return err
}

// Delete removes a notification by id.
func (r *NotificationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM notifications WHERE id=?", id)
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err == nil && cnt == 0 {
		return ErrNotFound
	}
	return err
}
