// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/model"
)

func sampleFeatures() []model.ActivationFeature {
	return []model.ActivationFeature{
		{Key: "A", Type: model.FeatureBool},
		{Key: "B", Type: model.FeatureElementPool, Active: model.Int64Ptr(1), Available: model.Int64Ptr(4), Total: model.Int64Ptr(5)},
		{Key: "C", Type: model.FeatureUsageCount, Active: model.Int64Ptr(0)},
	}
}

func keys(fs []model.ActivationFeature) string {
	var out []string
	for _, f := range fs {
		out = append(out, f.Key)
	}
	return strings.Join(out, ",")
}

func TestEligibility(t *testing.T) {
	fs := sampleFeatures()
	if got := keys(CheckoutEligible(fs)); got != "B,C" {
		t.Fatalf("checkout eligible: got %q", got)
	}
	if got := keys(ReturnEligible(fs)); got != "B" {
		t.Fatalf("return eligible: got %q", got)
	}
	if got := keys(UsageEligible(fs)); got != "A" {
		t.Fatalf("usage eligible: got %q", got)
	}
}

func activeEnv(pool *fakePool, answers ...string) (*Env, *fakeEngine, *fakePrompter, *fakePresenter) {
	eng := &fakeEngine{state: model.StateActive, info: model.ActivationInfo{Mode: model.ModeOnline}, features: pool}
	prompt := newPrompter(answers...)
	out := &fakePresenter{}
	return &Env{Engine: eng, Prompt: prompt, Out: out}, eng, prompt, out
}

func TestCheckoutCallsEngineAndShowsFreshTable(t *testing.T) {
	pool := &fakePool{features: sampleFeatures()}
	env, _, _, out := activeEnv(pool, "B", " 2 ")

	if err := checkoutWorkflow.Run(context.Background(), env); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(pool.calls) != 1 || pool.calls[0] != "checkout B 2" {
		t.Fatalf("unexpected engine calls: %v", pool.calls)
	}
	if got := out.last(); got != "features: A,B,C highlight=B" {
		t.Fatalf("expected refreshed table with highlight, got %q", got)
	}
	if !out.has("success: Feature successfully checked out!") {
		t.Fatalf("missing success line: %v", out.lines)
	}
}

func TestCheckoutRejectsBadAmountBeforeEngine(t *testing.T) {
	for _, amount := range []string{"0", "-1", "abc", "", "1.5"} {
		pool := &fakePool{features: sampleFeatures()}
		env, _, _, _ := activeEnv(pool, "B", amount)
		err := checkoutWorkflow.Run(context.Background(), env)
		var f *Failure
		if !errors.As(err, &f) || f.Kind != KindValidation {
			t.Fatalf("amount %q: expected validation failure, got %v", amount, err)
		}
		if len(pool.calls) != 0 {
			t.Fatalf("amount %q: engine was called: %v", amount, pool.calls)
		}
	}
}

func TestCheckoutRejectsIneligibleKey(t *testing.T) {
	pool := &fakePool{features: sampleFeatures()}
	env, _, prompt, _ := activeEnv(pool, "A", "1")
	err := checkoutWorkflow.Run(context.Background(), env)
	var f *Failure
	if !errors.As(err, &f) || f.Kind != KindValidation {
		t.Fatalf("expected validation failure for bool key, got %v", err)
	}
	if len(prompt.prompts) != 1 {
		t.Fatalf("amount should not be asked after a bad key, prompts: %v", prompt.prompts)
	}
	if len(pool.calls) != 0 {
		t.Fatalf("engine was called: %v", pool.calls)
	}
}

func TestFeatureSelectionCancel(t *testing.T) {
	for _, sentinel := range []string{"cancel", "None", "CANCEL"} {
		pool := &fakePool{features: sampleFeatures()}
		env, _, _, _ := activeEnv(pool, sentinel)
		if err := returnWorkflow.Run(context.Background(), env); err != nil {
			t.Fatalf("%q: expected clean abort, got %v", sentinel, err)
		}
		if len(pool.calls) != 0 {
			t.Fatalf("%q: engine was called: %v", sentinel, pool.calls)
		}
	}
}

func TestFeatureEmptyKeyIsValidation(t *testing.T) {
	pool := &fakePool{features: sampleFeatures()}
	env, _, _, _ := activeEnv(pool, "   ")
	err := usageWorkflow.Run(context.Background(), env)
	var f *Failure
	if !errors.As(err, &f) || f.Kind != KindValidation {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestFeatureWorkflowRequiresActiveSet(t *testing.T) {
	eng := &fakeEngine{state: model.StateActive, info: model.ActivationInfo{Mode: model.ModeOffline, Features: sampleFeatures()}}
	env := &Env{Engine: eng, Prompt: newPrompter(), Out: &fakePresenter{}}
	err := checkoutWorkflow.Run(context.Background(), env)
	if err == nil || err.Error() != "Feature checkout is not allowed." {
		t.Fatalf("expected not-allowed failure, got %v", err)
	}
}

func TestFeatureWorkflowNoneEligible(t *testing.T) {
	pool := &fakePool{features: []model.ActivationFeature{{Key: "A", Type: model.FeatureBool}}}
	env, _, prompt, _ := activeEnv(pool)
	err := returnWorkflow.Run(context.Background(), env)
	if err == nil || err.Error() != "There are no features eligible for return" {
		t.Fatalf("expected no-eligible failure, got %v", err)
	}
	if len(prompt.prompts) != 0 {
		t.Fatalf("operator should not be prompted: %v", prompt.prompts)
	}
}

func TestTrackUsageSkipsAmount(t *testing.T) {
	pool := &fakePool{features: sampleFeatures()}
	env, _, prompt, _ := activeEnv(pool, "A")
	if err := usageWorkflow.Run(context.Background(), env); err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(prompt.prompts) != 1 {
		t.Fatalf("usage tracking asks only for the key, prompts: %v", prompt.prompts)
	}
	if len(pool.calls) != 1 || pool.calls[0] != "usage A" {
		t.Fatalf("unexpected engine calls: %v", pool.calls)
	}
}

func TestFeatureEngineErrorPropagates(t *testing.T) {
	pool := &fakePool{features: sampleFeatures(), err: engine.NewAPIError(409, "PoolExhausted", "no units left")}
	env, _, _, _ := activeEnv(pool, "B", "9")
	err := checkoutWorkflow.Run(context.Background(), env)
	f := Classify(checkoutWorkflow.Context(), err)
	if f.Kind != KindAPI {
		t.Fatalf("expected api kind, got %s", f.Kind)
	}
	if !strings.HasPrefix(f.Error(), "Feature checkout failed: ") {
		t.Fatalf("unexpected rendering: %q", f.Error())
	}
}
