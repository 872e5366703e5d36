package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardbot/steward/platform"
)

// clock is a controllable time source for cooldown tests.
type clock struct {
	t time.Time
}

func newClock() *clock {
	return &clock{t: time.UnixMilli(1700000000000)}
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func textEvent(msgID int64) MessageEvent {
	return MessageEvent{GroupID: 7, UserID: 42, MessageID: msgID, Text: "what a slur move"}
}

func TestEscalationLadder(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, mock := EngineTestFixture()
	ck := newClock()
	eng.Now = ck.now

	// violations 1 and 2 warn, spaced outside the cooldown
	for i := 1; i <= 2; i++ {
		require.NoError(t, eng.ProcessText(ctx, textEvent(int64(i))))
		ck.advance(2 * time.Minute)
	}
	sent := mock.Sent()
	require.Len(t, sent, 2)
	assert.Contains(sent[0].Text, "1/3")
	assert.Contains(sent[1].Text, "2/3")
	assert.Empty(mock.BannedUsers)

	// violation 3 removes and resets
	require.NoError(t, eng.ProcessText(ctx, textEvent(3)))
	assert.Equal([]int64{42}, mock.BannedUsers)
	sent = mock.Sent()
	require.Len(t, sent, 3)
	assert.Contains(sent[2].Text, "removed")
	assert.Contains(sent[2].Text, "3/3")

	rec, _, err := eng.Ledger.Read(ctx, 42, 7)
	assert.NoError(err)
	assert.Equal(0, rec.Count)

	// a 4th violation restarts the streak at warning 1
	ck.advance(2 * time.Minute)
	require.NoError(t, eng.ProcessText(ctx, textEvent(4)))
	sent = mock.Sent()
	require.Len(t, sent, 4)
	assert.Contains(sent[3].Text, "1/3")

	// every flagged message was deleted
	assert.Equal([]int64{1, 2, 3, 4}, mock.DeletedMessages)
}

func TestWarnCooldownSuppressesMessageNotCount(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, mock := EngineTestFixture()
	ck := newClock()
	eng.Now = ck.now

	require.NoError(t, eng.ProcessText(ctx, textEvent(1)))
	ck.advance(10 * time.Second)
	require.NoError(t, eng.ProcessText(ctx, textEvent(2)))

	// burst of two flags inside the cooldown: one warning only
	assert.Len(mock.Sent(), 1)

	// but the ledger saw both violations
	rec, _, err := eng.Ledger.Read(ctx, 42, 7)
	assert.NoError(err)
	assert.Equal(2, rec.Count)

	// past the cooldown, warnings resume
	ck.advance(time.Minute)
	require.NoError(t, eng.ProcessText(ctx, textEvent(3)))
	sent := mock.Sent()
	assert.Len(sent, 2)
	assert.Contains(sent[1].Text, "removed")
}

func TestPrivilegedUsersExempt(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, mock := EngineTestFixture()

	mock.Roles[42] = platform.RoleAdministrator
	require.NoError(t, eng.ProcessText(ctx, textEvent(1)))

	assert.Empty(mock.Sent())
	assert.Empty(mock.DeletedMessages)
	rec, _, err := eng.Ledger.Read(ctx, 42, 7)
	assert.NoError(err)
	assert.Equal(0, rec.Count)
}

func TestOperatorExempt(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, mock := EngineTestFixture()

	evt := textEvent(1)
	evt.UserID = eng.OperatorID
	require.NoError(t, eng.ProcessText(ctx, evt))
	assert.Empty(mock.Sent())
	assert.Empty(mock.DeletedMessages)
}

func TestRoleCacheBoundsStatusCalls(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, mock := EngineTestFixture()
	ck := newClock()
	eng.Now = ck.now

	for i := 1; i <= 2; i++ {
		require.NoError(t, eng.ProcessText(ctx, textEvent(int64(i))))
		ck.advance(2 * time.Minute)
	}
	assert.Equal(1, mock.StatusCalls)
}

func TestDeleteFailureStillNotifies(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, mock := EngineTestFixture()

	mock.DeleteErr = fmt.Errorf("message is too old")
	require.NoError(t, eng.ProcessText(ctx, textEvent(1)))

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Contains(sent[0].Text, "1/3")
	assert.Contains(sent[0].Text, "manual cleanup")
}

func TestBanPermissionFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, mock := EngineTestFixture()
	ck := newClock()
	eng.Now = ck.now

	mock.BanErr = fmt.Errorf("not enough rights")
	for i := 1; i <= 3; i++ {
		require.NoError(t, eng.ProcessText(ctx, textEvent(int64(i))))
		ck.advance(2 * time.Minute)
	}

	sent := mock.Sent()
	require.Len(t, sent, 3)
	assert.Contains(sent[2].Text, "could not be removed")
	assert.Contains(sent[2].Text, "permissions")

	// the ban never happened, so the count must not have been reset
	rec, _, err := eng.Ledger.Read(ctx, 42, 7)
	assert.NoError(err)
	assert.Equal(3, rec.Count)
}

func TestStatusLookupFailureDiscardsVerdict(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, mock := EngineTestFixture()

	mock.StatusErr = fmt.Errorf("group not found")
	require.NoError(t, eng.ProcessText(ctx, textEvent(1)))
	assert.Empty(mock.Sent())
	assert.Empty(mock.DeletedMessages)
}
