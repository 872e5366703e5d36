package engine

import "time"

var (
	// violation count at which a member is removed from the group instead
	// of warned
	WarnThreshold = 3
	// minimum gap between warning messages for the same (user, group);
	// suppresses duplicate warnings for bursts of flagged messages
	WarnCooldown = 60 * time.Second
	// wall-clock budget for each classification stage; a stage that blows
	// the budget is treated as failed and the cascade moves on
	StageTimeout = 30 * time.Second
)
