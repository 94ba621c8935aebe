// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"strings"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/model"
)

// CheckoutEligible keeps features that have a quantity to check out.
func CheckoutEligible(features []model.ActivationFeature) []model.ActivationFeature {
	return filterFeatures(features, func(f model.ActivationFeature) bool { return f.Type != model.FeatureBool })
}

// ReturnEligible keeps element pools, the only features with returnable units.
func ReturnEligible(features []model.ActivationFeature) []model.ActivationFeature {
	return filterFeatures(features, func(f model.ActivationFeature) bool { return f.Type == model.FeatureElementPool })
}

// UsageEligible keeps bool features.
func UsageEligible(features []model.ActivationFeature) []model.ActivationFeature {
	return filterFeatures(features, func(f model.ActivationFeature) bool { return f.Type == model.FeatureBool })
}

func filterFeatures(features []model.ActivationFeature, keep func(model.ActivationFeature) bool) []model.ActivationFeature {
	var out []model.ActivationFeature
	for _, f := range features {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// featureWorkflow drives one of checkout, return and usage tracking. Each
// step that can fail locally does so before the engine is called.
type featureWorkflow struct {
	// msg is the i18n prefix, e.g. "feature.checkout".
	msg       string
	contextID string
	eligible  func([]model.ActivationFeature) []model.ActivationFeature
	// withAmount asks for a unit count after the key.
	withAmount bool
	call       func(ctx context.Context, set engine.ActiveFeatureSet, key string, amount int64) error
}

var (
	checkoutWorkflow = featureWorkflow{
		msg:        "feature.checkout",
		contextID:  "context.checkout",
		eligible:   CheckoutEligible,
		withAmount: true,
		call: func(ctx context.Context, set engine.ActiveFeatureSet, key string, amount int64) error {
			return set.CheckoutFeature(ctx, key, amount)
		},
	}
	returnWorkflow = featureWorkflow{
		msg:        "feature.return",
		contextID:  "context.return",
		eligible:   ReturnEligible,
		withAmount: true,
		call: func(ctx context.Context, set engine.ActiveFeatureSet, key string, amount int64) error {
			return set.ReturnFeature(ctx, key, amount)
		},
	}
	usageWorkflow = featureWorkflow{
		msg:       "feature.usage",
		contextID: "context.usage",
		eligible:  UsageEligible,
		call: func(ctx context.Context, set engine.ActiveFeatureSet, key string, _ int64) error {
			return set.TrackUsage(ctx, key)
		},
	}
)

func (w featureWorkflow) t(suffix string, args ...any) string {
	return i18n.T(w.msg+"."+suffix, args...)
}

// Context implements Operation.
func (w featureWorkflow) Context() string { return i18n.T(w.contextID) }

// Run implements Operation.
func (w featureWorkflow) Run(ctx context.Context, env *Env) error {
	set, ok := env.Engine.Features().(engine.ActiveFeatureSet)
	if !ok {
		return Validation(w.t("not_allowed"))
	}

	eligible := w.eligible(set.Features())
	if len(eligible) == 0 {
		return Validation(w.t("none_eligible"))
	}

	env.Out.Info(w.t("header"))
	env.Out.Features(eligible, "")

	input, err := env.Prompt.Line(w.t("select"))
	if err != nil {
		return err
	}
	key := strings.TrimSpace(input)
	if isCancel(key) {
		return nil
	}
	if key == "" {
		return Validation(i18n.T("feature.key_required"))
	}
	if !containsKey(eligible, key) {
		return Validation(w.t("not_eligible", key))
	}

	var amount int64
	if w.withAmount {
		input, err := env.Prompt.Line(w.t("amount"))
		if err != nil {
			return err
		}
		if amount, err = ParseAmount(input); err != nil {
			return err
		}
		env.Out.Info(w.t("progress", amount, unitWord(amount), key))
	} else {
		env.Out.Info(w.t("progress", key))
	}

	if err := w.call(ctx, set, key, amount); err != nil {
		return err
	}
	env.Out.Success(w.t("done"))

	// Re-read from the engine; the pool is never patched locally.
	env.Out.Features(env.Engine.Features().Features(), key)
	return nil
}

func containsKey(features []model.ActivationFeature, key string) bool {
	for _, f := range features {
		if f.Key == key {
			return true
		}
	}
	return false
}

func unitWord(n int64) string {
	if n > 1 {
		return i18n.T("feature.unit_many")
	}
	return i18n.T("feature.unit_one")
}
