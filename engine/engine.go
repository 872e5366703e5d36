// Package engine wires the moderation pipeline together: per-group policy
// checks, the ordered detection cascade, and the violation-escalation
// ladder. It owns no I/O of its own; all external effects go through the
// platform client and the various stores.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stewardbot/steward/configstore"
	"github.com/stewardbot/steward/keyword"
	"github.com/stewardbot/steward/ledger"
	"github.com/stewardbot/steward/media"
	"github.com/stewardbot/steward/platform"
	"github.com/stewardbot/steward/rolecache"
	"github.com/stewardbot/steward/termstore"
	"github.com/stewardbot/steward/visual"
)

// ImageClassifier is the primary remote classification service.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, data []byte) (*visual.Classification, error)
}

// VisionModel serves the secondary review pass and the OCR transcription
// variant.
type VisionModel interface {
	ReviewImage(ctx context.Context, data []byte) (string, error)
	TranscribeImage(ctx context.Context, data []byte) (string, error)
}

// Engine is the runtime for processing moderation events.
//
// Most fields must be non-nil; RoleCache, ExtractFrame, and Now have
// working defaults when left unset.
type Engine struct {
	Logger     *slog.Logger
	Platform   platform.Client
	Configs    configstore.Store
	Terms      termstore.TermStore
	Ledger     *ledger.Ledger
	RoleCache  rolecache.Cache
	Classifier ImageClassifier
	Vision     VisionModel

	// account the bot itself runs as; exempt from moderation like admins
	OperatorID int64

	// gates for the high-recall heuristic stages (3 and 4); their false
	// positive rate is deployment specific, so they can be switched off
	// without a code change
	EnablePayloadScan bool
	EnableOCRScan     bool

	// swappable in tests; defaults to media.ExtractFrame
	ExtractFrame func(ctx context.Context, video []byte) ([]byte, error)
	// swappable in tests; defaults to time.Now
	Now func() time.Time
}

// MessageEvent is one normalized inbound message, as delivered by the
// surrounding bot shell. MediaRef is empty for plain text messages.
type MessageEvent struct {
	GroupID   int64
	UserID    int64
	MessageID int64
	Text      string
	MediaRef  string
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) extractFrame(ctx context.Context, video []byte) ([]byte, error) {
	if e.ExtractFrame != nil {
		return e.ExtractFrame(ctx, video)
	}
	return media.ExtractFrame(ctx, video)
}

// ProcessText screens a text message against the combined denylist, and
// escalates on a match. Returns nil when text moderation is disabled for
// the group or the message is clean.
func (e *Engine) ProcessText(ctx context.Context, evt MessageEvent) error {
	// similar to an HTTP server, we want to recover any panics from event processing
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("moderation event execution exception", "err", r, "group", evt.GroupID, "user", evt.UserID)
		}
	}()
	start := time.Now()
	defer func() {
		eventProcessDuration.WithLabelValues("text").Observe(time.Since(start).Seconds())
	}()
	eventProcessCount.WithLabelValues("text").Inc()

	cfg, err := e.Configs.Get(ctx, evt.GroupID)
	if err != nil {
		e.Logger.Warn("config store unreachable, skipping moderation", "err", err, "group", evt.GroupID)
		eventErrorCount.WithLabelValues("text").Inc()
		return nil
	}
	if !cfg.TextEnabled || evt.Text == "" {
		return nil
	}

	terms, err := termstore.CombinedTerms(ctx, e.Terms, evt.GroupID)
	if err != nil {
		e.Logger.Warn("term store unreachable, skipping moderation", "err", err, "group", evt.GroupID)
		eventErrorCount.WithLabelValues("text").Inc()
		return nil
	}

	term := keyword.MatchAny(evt.Text, terms)
	if term == "" {
		return nil
	}
	verdict := flaggedVerdict(StageKeyword, fmt.Sprintf("message contains denylist term %q", term))
	return e.escalate(ctx, evt, verdict)
}

// ProcessImage downloads, normalizes, and classifies an image message, and
// escalates on a flagged verdict.
func (e *Engine) ProcessImage(ctx context.Context, evt MessageEvent) error {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("moderation event execution exception", "err", r, "group", evt.GroupID, "user", evt.UserID)
		}
	}()
	start := time.Now()
	defer func() {
		eventProcessDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	}()
	eventProcessCount.WithLabelValues("image").Inc()

	cfg, err := e.Configs.Get(ctx, evt.GroupID)
	if err != nil {
		e.Logger.Warn("config store unreachable, skipping moderation", "err", err, "group", evt.GroupID)
		eventErrorCount.WithLabelValues("image").Inc()
		return nil
	}
	if !cfg.ImageEnabled {
		return nil
	}

	data, err := e.Platform.DownloadMedia(ctx, evt.MediaRef)
	if err != nil {
		e.Logger.Warn("media download failed, content not classified", "err", err, "group", evt.GroupID, "ref", evt.MediaRef)
		eventErrorCount.WithLabelValues("image").Inc()
		return nil
	}

	verdict := e.ClassifyImage(ctx, evt.GroupID, media.NormalizeImage(data))
	if !verdict.Flagged {
		return nil
	}
	return e.escalate(ctx, evt, verdict)
}

// ProcessVideo reduces a video to one representative frame and runs the
// image path on it. Extraction failure means "could not classify": logged
// as a failure, never treated as a pass or a flag.
func (e *Engine) ProcessVideo(ctx context.Context, evt MessageEvent) error {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("moderation event execution exception", "err", r, "group", evt.GroupID, "user", evt.UserID)
		}
	}()
	start := time.Now()
	defer func() {
		eventProcessDuration.WithLabelValues("video").Observe(time.Since(start).Seconds())
	}()
	eventProcessCount.WithLabelValues("video").Inc()

	cfg, err := e.Configs.Get(ctx, evt.GroupID)
	if err != nil {
		e.Logger.Warn("config store unreachable, skipping moderation", "err", err, "group", evt.GroupID)
		eventErrorCount.WithLabelValues("video").Inc()
		return nil
	}
	if !cfg.VideoEnabled {
		return nil
	}

	data, err := e.Platform.DownloadMedia(ctx, evt.MediaRef)
	if err != nil {
		e.Logger.Warn("media download failed, content not classified", "err", err, "group", evt.GroupID, "ref", evt.MediaRef)
		eventErrorCount.WithLabelValues("video").Inc()
		return nil
	}

	frame, err := e.extractFrame(ctx, data)
	if err != nil {
		e.Logger.Warn("frame extraction failed, content not classified", "err", err, "group", evt.GroupID, "ref", evt.MediaRef)
		eventErrorCount.WithLabelValues("video").Inc()
		return nil
	}

	verdict := e.ClassifyImage(ctx, evt.GroupID, media.NormalizeImage(frame))
	if !verdict.Flagged {
		return nil
	}
	return e.escalate(ctx, evt, verdict)
}

// memberRole looks up the user's role, going through the role cache when
// one is configured.
func (e *Engine) memberRole(ctx context.Context, groupID, userID int64) (platform.Role, error) {
	if e.RoleCache != nil {
		if role, err := e.RoleCache.GetRole(ctx, groupID, userID); err == nil && role != "" {
			return role, nil
		}
	}
	role, err := e.Platform.GetMemberStatus(ctx, groupID, userID)
	if err != nil {
		return "", err
	}
	if e.RoleCache != nil {
		if err := e.RoleCache.SetRole(ctx, groupID, userID, role); err != nil {
			e.Logger.Debug("role cache write failed", "err", err)
		}
	}
	return role, nil
}
