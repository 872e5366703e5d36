package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stewardbot/steward/visual"
)

func TestCascadeShortCircuit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()

	cls := &StubClassifier{Resp: &visual.Classification{Flagged: true, Categories: []string{"violence"}}}
	vis := &StubVision{ReviewReply: "INAPPROPRIATE: should never be consulted"}
	eng.Classifier = cls
	eng.Vision = vis

	v := eng.ClassifyImage(ctx, 7, []byte("img"))
	assert.True(v.Flagged)
	assert.Equal(StagePrimary, v.Stage)
	assert.Contains(v.Reason, "primary-classifier: ")
	assert.Contains(v.Reason, "violence")

	// stage 1 flagged, so stages 2 and 4 were never invoked
	assert.Equal(1, cls.Calls)
	assert.Equal(0, vis.ReviewCalls)
	assert.Equal(0, vis.TranscribeCalls)
}

func TestCascadeStageFailureContinues(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()

	cls := &StubClassifier{Err: fmt.Errorf("upstream timeout")}
	vis := &StubVision{ReviewReply: "INAPPROPRIATE: nudity"}
	eng.Classifier = cls
	eng.Vision = vis

	v := eng.ClassifyImage(ctx, 7, []byte("img"))
	assert.True(v.Flagged)
	assert.Equal(StageVision, v.Stage)
	assert.Equal("vision-review: nudity", v.Reason)
	assert.Equal(1, cls.Calls)
	assert.Equal(1, vis.ReviewCalls)
}

func TestCascadeAmbiguousReviewIsClean(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()

	vis := &StubVision{ReviewReply: "hmm, this might be INAPPROPRIATE: unsure"}
	eng.Vision = vis
	eng.EnablePayloadScan = false
	eng.EnableOCRScan = false

	v := eng.ClassifyImage(ctx, 7, []byte("img"))
	assert.False(v.Flagged)
	assert.Empty(v.Reason)
}

func TestCascadeOCRStage(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()

	vis := &StubVision{ReviewReply: "APPROPRIATE", Transcript: "you absolute SLUR"}
	eng.Vision = vis

	v := eng.ClassifyImage(ctx, 7, []byte("img"))
	assert.True(v.Flagged)
	assert.Equal(StageOCR, v.Stage)
	assert.Contains(v.Reason, `"slur"`)
	assert.Equal(1, vis.TranscribeCalls)
}

func TestCascadeHeuristicStagesGated(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()

	vis := &StubVision{ReviewReply: "APPROPRIATE", Transcript: "you absolute slur"}
	eng.Vision = vis
	eng.EnableOCRScan = false
	eng.EnablePayloadScan = false

	v := eng.ClassifyImage(ctx, 7, []byte("img"))
	assert.False(v.Flagged)
	assert.Equal(0, vis.TranscribeCalls)
}

func TestCascadeAllCleanAllConsulted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()

	cls := eng.Classifier.(*StubClassifier)
	vis := eng.Vision.(*StubVision)

	v := eng.ClassifyImage(ctx, 7, []byte("img"))
	assert.False(v.Flagged)
	assert.Equal(1, cls.Calls)
	assert.Equal(1, vis.ReviewCalls)
	assert.Equal(1, vis.TranscribeCalls)
}
