package app

import "log/slog"

// logNotifier is the default achievement hook: it records the add so an
// external achievements pipeline can be pointed at the log stream. The
// binder service never blocks on it.
type logNotifier struct {
	log *slog.Logger
}

func (n *logNotifier) CardAdded(accountID, binderID int64, cardID string, qty int) {
	n.log.Info("achievement.card_added",
		slog.Int64("account_id", accountID),
		slog.Int64("binder_id", binderID),
		slog.String("card_id", cardID),
		slog.Int("qty", qty),
	)
}
