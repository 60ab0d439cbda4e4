package order

import (
	"context"

	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/store"
)

// Admin inbox: one durable notification per placed order.

func (s *Service) ListNotifications(ctx context.Context, isRead *bool, page, pageSize int) (*store.OffsetPage, error) {
	page, pageSize = store.NormalizePage(page, pageSize)
	return store.ListNotifications(ctx, s.DB, isRead, page, pageSize)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id int64) (*models.Notification, error) {
	n, err := store.MarkNotificationRead(ctx, s.DB, id)
	if err != nil {
		return nil, translate(err)
	}
	return n, nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	return store.MarkAllNotificationsRead(ctx, s.DB)
}

func (s *Service) NotificationStats(ctx context.Context) (*models.NotificationStats, error) {
	return store.GetNotificationStats(ctx, s.DB)
}
