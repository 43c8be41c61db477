package testing

import (
	"context"
	"testing"

	"github.com/zoobzio/argz"
)

// Simple test to verify the testing infrastructure works.
func TestSimpleInfrastructure(t *testing.T) {
	ctx := context.Background()

	// Test a single validating stage
	p := argz.NewPipeline("simple")
	defer p.Close()
	if err := p.Validate(argz.Type[int]()); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	result, err := p.ProcessInput(ctx, []any{21})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if result[0] != 21 {
		t.Errorf("expected 21, got %v", result[0])
	}

	// Test parse then validate
	if err := p.Parse(argz.I.Mul(2).Add(1).Parser()); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	result, err = p.ProcessInput(ctx, []any{1})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if result[0] != 3 {
		t.Errorf("expected 3, got %v (%T)", result[0], result[0])
	}

	// the parser runs first and rejects what it cannot multiply
	_, err = p.ProcessInput(ctx, []any{[]int{1}})
	AssertParsingAt(t, err, 0, 1)
}
