package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelcli/internal/operations"
	"fuelcli/internal/operations/testutil"
)

func stepIDs(steps []operations.Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	return ids
}

func TestRegistryRegister(t *testing.T) {
	registry := operations.NewRegistry()
	assert.Equal(t, 0, registry.Count())
	assert.NotNil(t, registry.List())

	require.NoError(t, registry.Register(testutil.NewMockStage("a")))
	require.NoError(t, registry.Register(testutil.NewMockStage("b")))

	assert.Equal(t, 2, registry.Count())
	assert.Equal(t, []string{"a", "b"}, registry.ListIDs())
	assert.True(t, registry.Has("a"))
	assert.False(t, registry.Has("c"))

	got, err := registry.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID())

	_, err = registry.Get("c")
	assert.Error(t, err)
}

func TestRegistryRegisterRejects(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(testutil.NewMockStage("")))

	require.NoError(t, registry.Register(testutil.NewMockStage("a")))
	assert.Error(t, registry.Register(testutil.NewMockStage("a")))
}

func TestRegistryDependencyOrder(t *testing.T) {
	tests := []struct {
		name     string
		steps    []*testutil.MockStage
		expected []string
		wantErr  bool
	}{
		{
			name: "registration order when independent",
			steps: []*testutil.MockStage{
				testutil.NewMockStage("a"),
				testutil.NewMockStage("b"),
			},
			expected: []string{"a", "b"},
		},
		{
			name: "dependencies first",
			steps: []*testutil.MockStage{
				testutil.NewMockStage("rank", "enrich"),
				testutil.NewMockStage("enrich", "expand"),
				testutil.NewMockStage("expand"),
			},
			expected: []string{"expand", "enrich", "rank"},
		},
		{
			name: "missing dependency",
			steps: []*testutil.MockStage{
				testutil.NewMockStage("enrich", "expand"),
			},
			wantErr: true,
		},
		{
			name: "cycle",
			steps: []*testutil.MockStage{
				testutil.NewMockStage("a", "b"),
				testutil.NewMockStage("b", "a"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := operations.NewRegistry()
			for _, s := range tt.steps {
				require.NoError(t, registry.Register(s))
			}

			ordered, err := registry.GetDependencyOrder()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Error(t, registry.ValidateDependencies())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stepIDs(ordered))
		})
	}
}

func TestRegistrySelect(t *testing.T) {
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(testutil.NewMockStage("rank", "enrich")))
	require.NoError(t, registry.Register(testutil.NewMockStage("expand")))
	require.NoError(t, registry.Register(testutil.NewMockStage("enrich", "expand")))

	all, err := registry.Select()
	require.NoError(t, err)
	assert.Equal(t, []string{"expand", "enrich", "rank"}, stepIDs(all))

	subset, err := registry.Select("rank", "enrich")
	require.NoError(t, err)
	assert.Equal(t, []string{"enrich", "rank"}, stepIDs(subset))

	single, err := registry.Select("rank")
	require.NoError(t, err)
	assert.Equal(t, []string{"rank"}, stepIDs(single))

	_, err = registry.Select("unknown")
	assert.Error(t, err)
}
