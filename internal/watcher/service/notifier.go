package service

import (
	"context"

	"golang-stock-watchlist/internal/watcher/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/telegram"
)

// Notifier delivers lifecycle notifications. Delivery is fire-and-forget:
// failures are logged and never surfaced to the caller, so a broken channel
// cannot abort an evaluation run.
type Notifier interface {
	NotifyAlert(ctx context.Context, payload dto.AlertNotification)
	NotifyExpiration(ctx context.Context, payload dto.ExpirationNotification)
	NotifyEnrollment(ctx context.Context, payload dto.EnrollmentNotification)
	NotifyRemoval(ctx context.Context, payload dto.RemovalNotification)
	NotifyDailySummary(ctx context.Context, payload dto.DailySummaryNotification)
}

// NewTelegramNotifier creates a Notifier backed by the Telegram client. A nil
// client disables delivery, which keeps local development working without a
// bot token.
func NewTelegramNotifier(log *logger.Logger, client telegram.Notifier) Notifier {
	return &telegramNotifier{log: log, client: client}
}

type telegramNotifier struct {
	log    *logger.Logger
	client telegram.Notifier
}

func (n *telegramNotifier) send(ctx context.Context, kind, message string) {
	if n.client == nil {
		return
	}
	if err := n.client.SendMessage(message); err != nil {
		n.log.ErrorContext(ctx, "Failed to send telegram notification",
			logger.ErrorField(err), logger.StringField("kind", kind))
	}
}

func (n *telegramNotifier) NotifyAlert(ctx context.Context, payload dto.AlertNotification) {
	n.send(ctx, "alert", telegram.FormatAlertForTelegram(payload))
}

func (n *telegramNotifier) NotifyExpiration(ctx context.Context, payload dto.ExpirationNotification) {
	n.send(ctx, "expiration", telegram.FormatExpirationForTelegram(payload))
}

func (n *telegramNotifier) NotifyEnrollment(ctx context.Context, payload dto.EnrollmentNotification) {
	n.send(ctx, "enrollment", telegram.FormatEnrollmentForTelegram(payload))
}

func (n *telegramNotifier) NotifyRemoval(ctx context.Context, payload dto.RemovalNotification) {
	n.send(ctx, "removal", telegram.FormatRemovalForTelegram(payload))
}

func (n *telegramNotifier) NotifyDailySummary(ctx context.Context, payload dto.DailySummaryNotification) {
	n.send(ctx, "daily_summary", telegram.FormatDailySummaryForTelegram(payload))
}
