package engine

import (
	"context"
	"fmt"

	"github.com/stewardbot/steward/keyword"
	"github.com/stewardbot/steward/termstore"
	"github.com/stewardbot/steward/visual"
)

// Stage identifies which detection strategy produced a verdict.
type Stage string

const (
	StageKeyword Stage = "keyword"
	StagePrimary Stage = "primary-classifier"
	StageVision  Stage = "vision-review"
	StagePayload Stage = "payload-scan"
	StageOCR     Stage = "ocr-scan"
)

// Verdict is the outcome of one pipeline invocation. Transient: produced
// once and consumed immediately by escalation, never persisted.
type Verdict struct {
	Flagged bool
	// human-readable audit reason, prefixed with the stage name
	Reason string
	Stage  Stage
}

// ClassifyImage runs the detection cascade over a normalized image
// payload. Stages run strictly in order and the first flag wins; a stage
// that errors or times out is skipped, never aborting the cascade. A clean
// verdict means no stage flagged.
func (e *Engine) ClassifyImage(ctx context.Context, groupID int64, data []byte) Verdict {

	// stage 1: primary remote classification
	{
		sctx, cancel := context.WithTimeout(ctx, StageTimeout)
		cls, err := e.Classifier.ClassifyImage(sctx, data)
		cancel()
		if err != nil {
			e.Logger.Warn("primary classification failed, continuing cascade", "err", err, "group", groupID)
			stageErrorCount.WithLabelValues(string(StagePrimary)).Inc()
		} else if cls.Flagged {
			return flaggedVerdict(StagePrimary, cls.Summary())
		}
	}

	// stage 2: secondary vision-model pass
	{
		sctx, cancel := context.WithTimeout(ctx, StageTimeout)
		reply, err := e.Vision.ReviewImage(sctx, data)
		cancel()
		if err != nil {
			e.Logger.Warn("vision review failed, continuing cascade", "err", err, "group", groupID)
			stageErrorCount.WithLabelValues(string(StageVision)).Inc()
		} else if reason, flagged := visual.ParseReview(reply); flagged {
			return flaggedVerdict(StageVision, reason)
		}
	}

	// stages 3 and 4 both need the denylist
	if !e.EnablePayloadScan && !e.EnableOCRScan {
		return Verdict{}
	}
	terms, err := termstore.CombinedTerms(ctx, e.Terms, groupID)
	if err != nil {
		e.Logger.Warn("term store unreachable, skipping heuristic stages", "err", err, "group", groupID)
		return Verdict{}
	}

	// stage 3: encoded-payload term scan
	if e.EnablePayloadScan {
		if term, ok := visual.ScanPayload(data, terms); ok {
			return flaggedVerdict(StagePayload, fmt.Sprintf("encoded payload contains term %q", term))
		}
	}

	// stage 4: OCR-assisted term scan
	if e.EnableOCRScan {
		sctx, cancel := context.WithTimeout(ctx, StageTimeout)
		transcript, err := e.Vision.TranscribeImage(sctx, data)
		cancel()
		if err != nil {
			e.Logger.Warn("OCR transcription failed", "err", err, "group", groupID)
			stageErrorCount.WithLabelValues(string(StageOCR)).Inc()
		} else if term := keyword.MatchAny(transcript, terms); term != "" {
			return flaggedVerdict(StageOCR, fmt.Sprintf("visible text contains term %q", term))
		}
	}

	return Verdict{}
}

func flaggedVerdict(stage Stage, reason string) Verdict {
	stageFlagCount.WithLabelValues(string(stage)).Inc()
	return Verdict{
		Flagged: true,
		Reason:  fmt.Sprintf("%s: %s", stage, reason),
		Stage:   stage,
	}
}
