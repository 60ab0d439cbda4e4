package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/models"
)

func CreateNotification(ctx context.Context, db database.DBTX, orderID int64) (*models.Notification, error) {
	n := &models.Notification{}

	err := db.QueryRowContext(ctx,
		`INSERT INTO notifications (order_id, is_read, created_at)
		 VALUES ($1, FALSE, NOW())
		 RETURNING id, order_id, is_read, created_at`,
		orderID).Scan(&n.ID, &n.OrderID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	return n, nil
}

// ListNotifications returns the admin inbox, newest first. A nil isRead lists all.
func ListNotifications(ctx context.Context, db database.DBTX, isRead *bool, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = NormalizePage(page, pageSize)

	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE $1::boolean IS NULL OR is_read = $1`,
		isRead).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT n.id, n.order_id, o.order_code, o.customer_name, n.is_read, n.created_at
		FROM notifications n
		JOIN orders o ON o.id = n.order_id
		WHERE $1::boolean IS NULL OR n.is_read = $1
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3`,
		isRead, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.OrderID, &n.OrderCode, &n.CustomerName, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(notifications, total, page, pageSize), nil
}

func MarkNotificationRead(ctx context.Context, db database.DBTX, id int64) (*models.Notification, error) {
	n := &models.Notification{}

	err := db.QueryRowContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1
		 RETURNING id, order_id, is_read, created_at`,
		id).Scan(&n.ID, &n.OrderID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}

	return n, nil
}

func MarkAllNotificationsRead(ctx context.Context, db database.DBTX) (int64, error) {
	result, err := db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE is_read = FALSE`)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return result.RowsAffected()
}

func GetNotificationStats(ctx context.Context, db database.DBTX) (*models.NotificationStats, error) {
	stats := &models.NotificationStats{}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read) FROM notifications`,
	).Scan(&stats.Total, &stats.Unread)
	if err != nil {
		return nil, fmt.Errorf("notification stats: %w", err)
	}
	stats.Read = stats.Total - stats.Unread

	return stats, nil
}
