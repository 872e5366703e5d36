package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/stewardbot/steward/configstore"
	"github.com/stewardbot/steward/ledger"
	"github.com/stewardbot/steward/platform"
	"github.com/stewardbot/steward/rolecache"
	"github.com/stewardbot/steward/termstore"
	"github.com/stewardbot/steward/visual"
)

// StubClassifier is a canned primary classifier with call counting, for
// cascade assertions.
type StubClassifier struct {
	Calls int
	Resp  *visual.Classification
	Err   error
}

func (s *StubClassifier) ClassifyImage(ctx context.Context, data []byte) (*visual.Classification, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Resp, nil
}

// StubVision serves canned review and transcription replies with call
// counting.
type StubVision struct {
	ReviewCalls     int
	ReviewReply     string
	ReviewErr       error
	TranscribeCalls int
	Transcript      string
	TranscribeErr   error
}

func (s *StubVision) ReviewImage(ctx context.Context, data []byte) (string, error) {
	s.ReviewCalls++
	if s.ReviewErr != nil {
		return "", s.ReviewErr
	}
	return s.ReviewReply, nil
}

func (s *StubVision) TranscribeImage(ctx context.Context, data []byte) (string, error) {
	s.TranscribeCalls++
	if s.TranscribeErr != nil {
		return "", s.TranscribeErr
	}
	return s.Transcript, nil
}

// EngineTestFixture builds an engine against in-memory stores and a mock
// platform client: group 7 fully enabled, global denylist containing
// "slur", clean stub classifiers, heuristic stages on. Intentionally
// exported for use in other packages.
func EngineTestFixture() (*Engine, *platform.MockClient) {
	ctx := context.Background()

	mock := platform.NewMockClient()

	cfgs := configstore.NewMemStore()
	cfg := configstore.GroupConfig{GroupID: 7, TextEnabled: true, ImageEnabled: true, VideoEnabled: true}
	if err := cfgs.Put(ctx, &cfg); err != nil {
		panic(err)
	}

	terms := termstore.NewMemTermStore()
	if err := terms.AddGlobalTerm(ctx, "slur"); err != nil {
		panic(err)
	}
	if err := terms.ReloadGlobal(ctx); err != nil {
		panic(err)
	}

	eng := &Engine{
		Logger:            slog.Default(),
		Platform:          mock,
		Configs:           cfgs,
		Terms:             terms,
		Ledger:            ledger.NewLedger(ledger.NewMemStore(), nil),
		RoleCache:         rolecache.NewMemCache(100, time.Hour),
		Classifier:        &StubClassifier{Resp: &visual.Classification{}},
		Vision:            &StubVision{ReviewReply: "APPROPRIATE"},
		OperatorID:        999,
		EnablePayloadScan: true,
		EnableOCRScan:     true,
		ExtractFrame: func(ctx context.Context, video []byte) ([]byte, error) {
			return video, nil
		},
	}
	return eng, mock
}
