// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package datafile

import (
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/sandboxgame/sandbox/pkg/errutil"
)

// ActivityType selects what binding through a Node does.
type ActivityType int

// Activity types. The same Expose method serves all three.
const (
	Saving ActivityType = iota
	Loading
	PostLoadInit
)

// String returns the activity type name.
func (t ActivityType) String() string {
	switch t {
	case Saving:
		return "saving"
	case Loading:
		return "loading"
	case PostLoadInit:
		return "post-load-init"
	default:
		return "unknown"
	}
}

// Activity is the context of one load, save or post-load pass. It is
// threaded through every Node created during that pass and accumulates
// its errors.
//
// Error state is monotonic: once Failed reports true it stays true for
// the lifetime of the Activity.
type Activity struct {
	id       ulid.ULID
	typ      ActivityType
	filePath string
	logger   *slog.Logger
	errs     []error
	fatal    error
}

// NewActivity creates an activity for the given file. A nil logger uses
// slog.Default.
func NewActivity(typ ActivityType, filePath string, logger *slog.Logger) *Activity {
	if logger == nil {
		logger = slog.Default()
	}
	id := ulid.Make()
	return &Activity{
		id:       id,
		typ:      typ,
		filePath: filePath,
		logger: logger.With(
			"activity_id", id.String(),
			"activity", typ.String(),
		),
	}
}

// ID returns the activity id stamped on every diagnostic it logs.
func (a *Activity) ID() ulid.ULID {
	return a.id
}

// Type returns the activity type.
func (a *Activity) Type() ActivityType {
	return a.typ
}

// FilePath returns the file the activity reads or writes.
func (a *Activity) FilePath() string {
	return a.filePath
}

// Failed reports whether any content error or a fatal error was recorded.
func (a *Activity) Failed() bool {
	return len(a.errs) > 0 || a.fatal != nil
}

// ContentErrors returns a copy of the recoverable errors recorded so far.
func (a *Activity) ContentErrors() []error {
	out := make([]error, len(a.errs))
	copy(out, a.errs)
	return out
}

// Fatal returns the fatal error, if any.
func (a *Activity) Fatal() error {
	return a.fatal
}

// Err returns the fatal error when one was recorded, otherwise all content
// errors joined, otherwise nil.
func (a *Activity) Err() error {
	if a.fatal != nil {
		return a.fatal
	}
	if len(a.errs) == 0 {
		return nil
	}
	return errors.Join(a.errs...)
}

func (a *Activity) addError(err error) {
	a.errs = append(a.errs, err)
	errutil.LogError(a.logger, "data file content error", err)
}

// setFatal keeps the first fatal error; later ones are only logged.
func (a *Activity) setFatal(err error) {
	errutil.LogError(a.logger, "data file fatal error", err)
	if a.fatal == nil {
		a.fatal = err
	}
}

func (a *Activity) halted() bool {
	return a.fatal != nil
}
