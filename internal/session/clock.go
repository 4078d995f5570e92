// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import "time"

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// Timer is a cancellable one-shot action.
type Timer interface {
	// Stop cancels the action. It reports false if the action already ran or was stopped.
	Stop() bool
}

// Scheduler arms one-shot actions.
type Scheduler interface {
	AfterFunc(delay time.Duration, action func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type systemScheduler struct{}

func (systemScheduler) AfterFunc(delay time.Duration, action func()) Timer {
	return time.AfterFunc(delay, action)
}
