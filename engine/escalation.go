package engine

import (
	"context"
	"fmt"
	"time"
)

// escalate consumes a flagged verdict: privileged users are exempt, the
// offending message is deleted, the ledger count is bumped, and the user is
// either warned (rate-limited) or removed once the count reaches the
// threshold. Every flagged item for a non-privileged user produces exactly
// one user-facing notification.
func (e *Engine) escalate(ctx context.Context, evt MessageEvent, verdict Verdict) error {
	logger := e.Logger.With("group", evt.GroupID, "user", evt.UserID, "stage", verdict.Stage)
	logger.Info("content flagged", "reason", verdict.Reason)

	if evt.UserID == e.OperatorID {
		logger.Info("flagged content from operator account, discarding verdict")
		actionCount.WithLabelValues("exempt").Inc()
		return nil
	}
	role, err := e.memberRole(ctx, evt.GroupID, evt.UserID)
	if err != nil {
		// can not rule out a privileged user, so no action is taken
		logger.Warn("member status lookup failed, discarding verdict", "err", err)
		actionCount.WithLabelValues("status-failed").Inc()
		return nil
	}
	if role.Privileged() {
		logger.Info("flagged content from privileged user, discarding verdict", "role", role)
		actionCount.WithLabelValues("exempt").Inc()
		return nil
	}

	deleteFailed := false
	if err := e.Platform.DeleteMessage(ctx, evt.GroupID, evt.MessageID); err != nil {
		logger.Warn("failed to delete flagged message", "err", err, "message", evt.MessageID)
		deleteFailed = true
	}

	// the count must be recorded before the escalation decision is made
	n, degraded, err := e.Ledger.Increment(ctx, evt.UserID, evt.GroupID)
	if err != nil {
		return fmt.Errorf("recording violation: %w", err)
	}
	if degraded {
		logger.Warn("violation count is in-process only and may diverge across instances", "count", n)
	}
	logger.Info("violation recorded", "count", n, "threshold", WarnThreshold)

	if n >= WarnThreshold {
		return e.remove(ctx, evt, verdict, n, deleteFailed)
	}
	return e.warn(ctx, evt, verdict, n, deleteFailed)
}

func (e *Engine) remove(ctx context.Context, evt MessageEvent, verdict Verdict, n int, deleteFailed bool) error {
	if err := e.Platform.BanMember(ctx, evt.GroupID, evt.UserID); err != nil {
		e.Logger.Warn("failed to ban member", "err", err, "group", evt.GroupID, "user", evt.UserID)
		actionCount.WithLabelValues("remove-failed").Inc()
		msg := fmt.Sprintf("Content was flagged (%s) and the violation count reached %d/%d, but the user could not be removed. Please check my permissions.",
			verdict.Reason, n, WarnThreshold)
		return e.Platform.SendMessage(ctx, evt.GroupID, withCleanupNote(msg, deleteFailed))
	}

	// removal confirmed: the streak resets, the next violation restarts at 1
	if err := e.Ledger.Reset(ctx, evt.UserID, evt.GroupID); err != nil {
		e.Logger.Error("failed to reset violation count after removal", "err", err, "group", evt.GroupID, "user", evt.UserID)
	}
	actionCount.WithLabelValues("remove").Inc()
	msg := fmt.Sprintf("User removed after violation %d/%d (%s).", n, WarnThreshold, verdict.Reason)
	return e.Platform.SendMessage(ctx, evt.GroupID, withCleanupNote(msg, deleteFailed))
}

func (e *Engine) warn(ctx context.Context, evt MessageEvent, verdict Verdict, n int, deleteFailed bool) error {
	now := e.now()

	rec, _, err := e.Ledger.Read(ctx, evt.UserID, evt.GroupID)
	if err == nil && !rec.LastWarnedAt.IsZero() && now.Sub(rec.LastWarnedAt) < WarnCooldown {
		e.Logger.Debug("warning suppressed by cooldown", "group", evt.GroupID, "user", evt.UserID,
			"since", now.Sub(rec.LastWarnedAt).Truncate(time.Millisecond))
		actionCount.WithLabelValues("warn-suppressed").Inc()
		return nil
	}

	if err := e.Ledger.MarkWarned(ctx, evt.UserID, evt.GroupID, now); err != nil {
		e.Logger.Warn("failed to record warn timestamp", "err", err, "group", evt.GroupID, "user", evt.UserID)
	}
	actionCount.WithLabelValues("warn").Inc()
	msg := fmt.Sprintf("⚠️ Content removed (%s). Warning %d/%d, removal from the group at %d.",
		verdict.Reason, n, WarnThreshold, WarnThreshold)
	return e.Platform.SendMessage(ctx, evt.GroupID, withCleanupNote(msg, deleteFailed))
}

func withCleanupNote(msg string, deleteFailed bool) string {
	if !deleteFailed {
		return msg
	}
	return msg + " The offending message could not be deleted; manual cleanup may be required."
}
