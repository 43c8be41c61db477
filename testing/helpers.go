// Package testing provides test utilities and helpers for argz pipelines.
//
// This package includes mock predicates, parsers and stages, assertion
// helpers for positional errors, and chaos testing tools.
//
// Example usage:
//
//	func TestMyPipeline(t *testing.T) {
//		pred := argztest.NewMockPredicate(t, "positive").WithReject("not positive")
//		stage := argz.NewValidateStage(pred)
//
//		_, err := stage.ProcessInput([]any{-1})
//
//		argztest.AssertValidationAt(t, err, 0, 0)
//		argztest.AssertTested(t, pred, 1)
//	}
package testing

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	mathrand "math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/argz"
)

// MockPredicate provides a configurable implementation of argz.Predicate.
// It records every tested value and returns the configured outcome.
type MockPredicate struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	t          *testing.T
	name       string
	callCount  int64
	reject     bool
	reason     string
	panicMsg   string
	mu         sync.RWMutex
	history    []any
	maxHistory int
}

// NewMockPredicate creates a mock predicate that accepts every value.
func NewMockPredicate(t *testing.T, name string) *MockPredicate {
	return &MockPredicate{
		t:          t,
		name:       name,
		maxHistory: 100, // Keep last 100 values by default
	}
}

// WithReject configures the mock to reject every value with reason.
func (m *MockPredicate) WithReject(reason string) *MockPredicate {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reject = true
	m.reason = reason
	return m
}

// WithAccept configures the mock to accept every value.
func (m *MockPredicate) WithAccept() *MockPredicate {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reject = false
	m.reason = ""
	return m
}

// WithPanic configures the mock to panic with a specific message.
func (m *MockPredicate) WithPanic(msg string) *MockPredicate {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
	return m
}

// WithHistorySize configures how many values to keep. Zero disables history.
func (m *MockPredicate) WithHistorySize(size int) *MockPredicate {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxHistory = size
	if size == 0 {
		m.history = nil
	} else if len(m.history) > size {
		m.history = m.history[len(m.history)-size:]
	}
	return m
}

// Test implements argz.Predicate.
func (m *MockPredicate) Test(value any) (bool, string) {
	atomic.AddInt64(&m.callCount, 1)

	m.mu.Lock()
	if m.maxHistory > 0 {
		m.history = append(m.history, value)
		if len(m.history) > m.maxHistory {
			m.history = m.history[1:]
		}
	}
	reject, reason, panicMsg := m.reject, m.reason, m.panicMsg
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	if reject {
		return false, reason
	}
	return true, ""
}

// String implements argz.Predicate.
func (m *MockPredicate) String() string {
	return "mock(" + m.name + ")"
}

// Name returns the name of the mock predicate.
func (m *MockPredicate) Name() string {
	return m.name
}

// CallCount returns the number of times Test has been called.
func (m *MockPredicate) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// LastValue returns the most recently tested value.
func (m *MockPredicate) LastValue() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

// History returns a copy of the recorded values.
func (m *MockPredicate) History() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.maxHistory == 0 {
		return nil
	}
	history := make([]any, len(m.history))
	copy(history, m.history)
	return history
}

// Reset clears all call tracking.
func (m *MockPredicate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	atomic.StoreInt64(&m.callCount, 0)
	m.history = nil
}

// MockParser records parsed values and returns a configured result. The zero
// configuration returns its input unchanged.
type MockParser struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	name      string
	callCount int64
	fn        func(any) (any, error)
	mu        sync.RWMutex
	lastValue any
}

// NewMockParser creates a mock parser that passes values through.
func NewMockParser(name string) *MockParser {
	return &MockParser{name: name}
}

// WithReturn configures the mock to return val and err for every value.
func (m *MockParser) WithReturn(val any, err error) *MockParser {
	return m.WithFunc(func(any) (any, error) { return val, err })
}

// WithFunc configures the mock to delegate to fn.
func (m *MockParser) WithFunc(fn func(any) (any, error)) *MockParser {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// Parser returns an argz.Parser backed by the mock.
func (m *MockParser) Parser() argz.Parser {
	return argz.Apply(m.name, m.parse)
}

func (m *MockParser) parse(v any) (any, error) {
	atomic.AddInt64(&m.callCount, 1)
	m.mu.Lock()
	m.lastValue = v
	fn := m.fn
	m.mu.Unlock()
	if fn == nil {
		return v, nil
	}
	return fn(v)
}

// CallCount returns the number of parsed values.
func (m *MockParser) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// LastValue returns the most recently parsed value.
func (m *MockParser) LastValue() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastValue
}

// CallLog records the order in which stages run. It is shared by the mock
// stages of one pipeline.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Record appends an entry.
func (l *CallLog) Record(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, entry)
}

// Calls returns a copy of the recorded entries.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// MockStage implements argz.Stage. It returns its inputs unchanged, or the
// configured error, and records "name:input" or "name:output" in its log.
type MockStage struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	name      string
	arity     int
	kind      argz.StageKind
	log       *CallLog
	inputErr  error
	outputErr error
	mu        sync.RWMutex
}

// NewMockStage creates a passthrough validating stage of the given arity.
func NewMockStage(name string, arity int) *MockStage {
	return &MockStage{name: name, arity: arity, kind: argz.ValidateKind}
}

// WithLog shares a call log.
func (s *MockStage) WithLog(log *CallLog) *MockStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = log
	return s
}

// WithKind sets the reported kind.
func (s *MockStage) WithKind(kind argz.StageKind) *MockStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = kind
	return s
}

// WithInputError makes ProcessInput fail with err.
func (s *MockStage) WithInputError(err error) *MockStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputErr = err
	return s
}

// WithOutputError makes ProcessOutput fail with err.
func (s *MockStage) WithOutputError(err error) *MockStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputErr = err
	return s
}

// ProcessInput implements argz.Stage.
func (s *MockStage) ProcessInput(args []any) ([]any, error) {
	return s.process("input", args, s.inputError())
}

// ProcessOutput implements argz.Stage.
func (s *MockStage) ProcessOutput(outputs []any) ([]any, error) {
	return s.process("output", outputs, s.outputError())
}

func (s *MockStage) inputError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputErr
}

func (s *MockStage) outputError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outputErr
}

func (s *MockStage) process(direction string, values []any, err error) ([]any, error) {
	s.mu.RLock()
	log := s.log
	s.mu.RUnlock()
	if log != nil {
		log.Record(s.name + ":" + direction)
	}
	if err != nil {
		return nil, err
	}
	return append([]any(nil), values...), nil
}

// Arity implements argz.Stage.
func (s *MockStage) Arity() int { return s.arity }

// Kind implements argz.Stage.
func (s *MockStage) Kind() argz.StageKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind
}

// Name implements argz.Stage.
func (s *MockStage) Name() argz.Name { return s.name }

// Assertion Helpers

// AssertTested verifies that a mock predicate was called exactly n times.
func AssertTested(t *testing.T, mock *MockPredicate, expectedCalls int) {
	t.Helper()
	actualCalls := mock.CallCount()
	if actualCalls != expectedCalls {
		t.Errorf("expected mock predicate %s to be called %d times, but was called %d times",
			mock.name, expectedCalls, actualCalls)
	}
}

// AssertNotTested verifies that a mock predicate was never called.
func AssertNotTested(t *testing.T, mock *MockPredicate) {
	t.Helper()
	AssertTested(t, mock, 0)
}

// AssertTestedWith verifies that the last value a mock predicate saw equals expected.
func AssertTestedWith(t *testing.T, mock *MockPredicate, expected any) {
	t.Helper()
	if mock.CallCount() == 0 {
		t.Errorf("expected mock predicate %s to be called with %v, but it was never called",
			mock.name, expected)
		return
	}
	if actual := mock.LastValue(); actual != expected {
		t.Errorf("expected mock predicate %s to be called with %v, but was called with %v",
			mock.name, expected, actual)
	}
}

// AssertValidationAt verifies that err is an *argz.ValidationError at the
// given zero-based position and level.
func AssertValidationAt(t *testing.T, err error, position, level int) *argz.ValidationError {
	t.Helper()
	var ve *argz.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected a validation error, got %v", err)
		return nil
	}
	if ve.Position != position || ve.Level != level {
		t.Errorf("expected validation error at position %d level %d, got position %d level %d",
			position, level, ve.Position, ve.Level)
	}
	return ve
}

// AssertParsingAt verifies that err is an *argz.ParsingError at the given
// zero-based position and level.
func AssertParsingAt(t *testing.T, err error, position, level int) *argz.ParsingError {
	t.Helper()
	var pe *argz.ParsingError
	if !errors.As(err, &pe) {
		t.Errorf("expected a parsing error, got %v", err)
		return nil
	}
	if pe.Position != position || pe.Level != level {
		t.Errorf("expected parsing error at position %d level %d, got position %d level %d",
			position, level, pe.Position, pe.Level)
	}
	return pe
}

// AssertContract verifies that err is a contract violation wrapping sentinel.
func AssertContract(t *testing.T, err, sentinel error) {
	t.Helper()
	if !argz.IsContract(err) {
		t.Errorf("expected a contract error, got %v", err)
		return
	}
	if sentinel != nil && !errors.Is(err, sentinel) {
		t.Errorf("expected contract error to wrap %v, got %v", sentinel, err)
	}
}

// ChaosPredicate randomly rejects values or panics, then defers to the
// wrapped predicate.
type ChaosPredicate struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	name         string
	wrapped      argz.Predicate
	rejectRate   float64
	panicRate    float64
	rng          *mathrand.Rand
	mu           sync.Mutex
	totalCalls   int64
	rejectCalls  int64
	panicCalls   int64
	wrappedCalls int64
}

// ChaosConfig holds configuration for chaos testing.
type ChaosConfig struct {
	RejectRate float64 // Probability of rejecting a value (0.0 to 1.0)
	PanicRate  float64 // Probability of panicking (0.0 to 1.0)
	Seed       int64   // Random seed for reproducible chaos (0 for random seed)
}

// NewChaosPredicate creates a chaos predicate that wraps another predicate.
func NewChaosPredicate(name string, wrapped argz.Predicate, config ChaosConfig) *ChaosPredicate {
	seed := config.Seed
	if seed == 0 {
		var seedBytes [8]byte
		if _, err := rand.Read(seedBytes[:]); err != nil {
			seed = time.Now().UnixNano()
		} else {
			for _, b := range seedBytes {
				seed = seed<<8 | int64(b)
			}
		}
	}

	return &ChaosPredicate{
		name:       name,
		wrapped:    wrapped,
		rejectRate: config.RejectRate,
		panicRate:  config.PanicRate,
		rng:        mathrand.New(mathrand.NewSource(seed)), //nolint:gosec // G404: Test utility uses weak RNG for deterministic chaos scenarios
	}
}

// Test implements argz.Predicate with chaos injection.
func (c *ChaosPredicate) Test(value any) (bool, string) {
	atomic.AddInt64(&c.totalCalls, 1)

	c.mu.Lock()
	doPanic := c.rng.Float64() < c.panicRate
	doReject := c.rng.Float64() < c.rejectRate
	c.mu.Unlock()

	if doPanic {
		atomic.AddInt64(&c.panicCalls, 1)
		panic("chaos predicate induced panic")
	}
	if doReject {
		atomic.AddInt64(&c.rejectCalls, 1)
		return false, fmt.Sprintf("chaos predicate %s rejected %v", c.name, value)
	}
	atomic.AddInt64(&c.wrappedCalls, 1)
	return c.wrapped.Test(value)
}

// String implements argz.Predicate.
func (c *ChaosPredicate) String() string {
	return "chaos(" + c.wrapped.String() + ")"
}

// Stats returns statistics about chaos injection.
func (c *ChaosPredicate) Stats() ChaosStats {
	return ChaosStats{
		TotalCalls:   atomic.LoadInt64(&c.totalCalls),
		RejectCalls:  atomic.LoadInt64(&c.rejectCalls),
		PanicCalls:   atomic.LoadInt64(&c.panicCalls),
		WrappedCalls: atomic.LoadInt64(&c.wrappedCalls),
	}
}

// ChaosStats holds statistics about chaos injection.
type ChaosStats struct {
	TotalCalls   int64
	RejectCalls  int64
	PanicCalls   int64
	WrappedCalls int64
}

// RejectRate returns the observed injected rejection rate.
func (s ChaosStats) RejectRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.RejectCalls) / float64(s.TotalCalls)
}

// PanicRate returns the observed panic rate.
func (s ChaosStats) PanicRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.PanicCalls) / float64(s.TotalCalls)
}

// String returns a human-readable representation of the stats.
func (s ChaosStats) String() string {
	return fmt.Sprintf("ChaosStats{Total: %d, Rejected: %d (%.1f%%), Panics: %d (%.1f%%), Wrapped: %d}",
		s.TotalCalls, s.RejectCalls, s.RejectRate()*100,
		s.PanicCalls, s.PanicRate()*100, s.WrappedCalls)
}

// Helper Functions

// ParallelTest runs a test function in parallel with multiple goroutines.
func ParallelTest(t *testing.T, goroutines int, testFunc func(int)) {
	t.Helper()

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			testFunc(id)
		}(i)
	}

	wg.Wait()
}

// ProcessAll runs every row through p.ProcessInput and returns the results
// and errors by row index.
func ProcessAll(ctx context.Context, p *argz.Pipeline, rows [][]any) ([][]any, []error) {
	results := make([][]any, len(rows))
	errs := make([]error, len(rows))
	for i, row := range rows {
		results[i], errs[i] = p.ProcessInput(ctx, row)
	}
	return results, errs
}
