package testutil

import (
	"context"
	"log/slog"
	"sync"

	"fuelcli/internal/operations"
)

// MockStage is a configurable mock implementation of the step interface
type MockStage struct {
	IDValue           string
	NameValue         string
	DependenciesValue []string

	ExecuteFunc  func(ctx context.Context, state *operations.OperationState) error
	ValidateFunc func(state *operations.OperationState) error

	mu            sync.Mutex
	executeCalls  int
	validateCalls int
}

// NewMockStage creates a mock step that succeeds
func NewMockStage(id string, deps ...string) *MockStage {
	return &MockStage{IDValue: id, NameValue: id, DependenciesValue: deps}
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// GetDependencies returns the step dependencies
func (m *MockStage) GetDependencies() []string {
	if m.DependenciesValue == nil {
		return []string{}
	}
	return m.DependenciesValue
}

// Execute runs the mock execute function
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.mu.Lock()
	m.executeCalls++
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate runs the mock validate function
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.validateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// GetExecuteCalls returns the number of Execute calls
func (m *MockStage) GetExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeCalls
}

// GetValidateCalls returns the number of Validate calls
func (m *MockStage) GetValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateCalls
}

// MockSlogHandler captures slog messages for testing
type MockSlogHandler struct {
	mu      sync.Mutex
	records []MockLogRecord
}

// MockLogRecord represents a captured slog record
type MockLogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]interface{}
}

// Handle implements slog.Handler interface
func (h *MockSlogHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := make(map[string]interface{})
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.Any()
		return true
	})

	h.records = append(h.records, MockLogRecord{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	return nil
}

// Enabled implements slog.Handler interface
func (h *MockSlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

// WithAttrs returns the same handler; base attributes are not captured
func (h *MockSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

// WithGroup returns the same handler
func (h *MockSlogHandler) WithGroup(name string) slog.Handler {
	return h
}

// GetRecords returns all captured log records
func (h *MockSlogHandler) GetRecords() []MockLogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := make([]MockLogRecord, len(h.records))
	copy(records, h.records)
	return records
}

// HasMessage checks if any record contains the given message
func (h *MockSlogHandler) HasMessage(message string) bool {
	for _, record := range h.GetRecords() {
		if record.Message == message {
			return true
		}
	}
	return false
}

// CreateTestSlogLogger creates a slog.Logger with MockSlogHandler for testing
func CreateTestSlogLogger() (*slog.Logger, *MockSlogHandler) {
	handler := &MockSlogHandler{}
	return slog.New(handler), handler
}
