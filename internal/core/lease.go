// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"strings"
	"time"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/i18n"
)

// TimeLayout is how lease expiries are printed.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in local time.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// LeaseRefresh is the outcome of an online lease refresh.
type LeaseRefresh struct {
	Refreshed bool
	Previous  time.Time
	Current   time.Time
}

// Message describes the outcome for the operator.
func (r LeaseRefresh) Message() string {
	if !r.Refreshed {
		return i18n.T("lease.not_refreshed", FormatTime(r.Current))
	}
	return i18n.T("lease.refreshed", FormatTime(r.Previous), FormatTime(r.Current))
}

// RefreshLease refreshes the online lease. Both the expiry before and after the
// refresh must be known; a missing one is an engine precondition failure.
func RefreshLease(ctx context.Context, eng engine.Engine) (LeaseRefresh, error) {
	prev := eng.ActivationInfo().LeaseExpiry
	if prev == nil {
		return LeaseRefresh{}, engine.NewSDKError("No previous lease expiry found")
	}
	previous := *prev

	refreshed, err := eng.RefreshLease(ctx)
	if err != nil {
		return LeaseRefresh{}, err
	}

	cur := eng.ActivationInfo().LeaseExpiry
	if cur == nil {
		return LeaseRefresh{}, engine.NewSDKError("No lease expiry found after refresh")
	}
	return LeaseRefresh{Refreshed: refreshed, Previous: previous, Current: *cur}, nil
}

// OfflineLeaseRefresh compares persisted lease expiries around an offline refresh.
// Either side may be missing.
type OfflineLeaseRefresh struct {
	Previous *time.Time
	Current  *time.Time
}

// Message describes the outcome for the operator.
func (r OfflineLeaseRefresh) Message() string {
	if r.Previous == nil || r.Current == nil {
		return i18n.T("lease.offline_missing")
	}
	return i18n.T("lease.refreshed", FormatTime(*r.Previous), FormatTime(*r.Current))
}

// Complete reports whether both expiries are known.
func (r OfflineLeaseRefresh) Complete() bool {
	return r.Previous != nil && r.Current != nil
}

// RefreshLeaseOffline submits a portal refresh token. The persisted snapshot
// is read before and after the submission.
func RefreshLeaseOffline(ctx context.Context, eng engine.Engine, token string) (OfflineLeaseRefresh, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return OfflineLeaseRefresh{}, Validation(i18n.T("lease.token_required"))
	}

	before, err := eng.PullPersistedState(ctx)
	if err != nil {
		return OfflineLeaseRefresh{}, err
	}
	if err := eng.RefreshLeaseOffline(ctx, token); err != nil {
		return OfflineLeaseRefresh{}, err
	}
	after, err := eng.PullPersistedState(ctx)
	if err != nil {
		return OfflineLeaseRefresh{}, err
	}
	return OfflineLeaseRefresh{Previous: before.LeaseExpiry(), Current: after.LeaseExpiry()}, nil
}

func runRefreshLease(ctx context.Context, env *Env) error {
	env.Out.Info(i18n.T("lease.refreshing"))
	res, err := RefreshLease(ctx, env.Engine)
	if err != nil {
		return err
	}
	if res.Refreshed {
		env.Out.Success(res.Message())
	} else {
		env.Out.Warning(res.Message())
	}
	return nil
}

func runRefreshLeaseOffline(ctx context.Context, env *Env) error {
	token, err := env.Prompt.Token(i18n.T("lease.token_prompt"))
	if err != nil {
		return err
	}
	res, err := RefreshLeaseOffline(ctx, env.Engine, token)
	if err != nil {
		return err
	}
	if res.Complete() {
		env.Out.Success(res.Message())
	} else {
		env.Out.Warning(res.Message())
	}
	return nil
}
