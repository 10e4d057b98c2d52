package vine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func noop(ctx Context) error { return nil }

// TestNewBuilder verifies basic builder creation.
func TestNewBuilder(t *testing.T) {
	b := NewBuilder()
	assert.NotNil(t, b)
	assert.NotNil(t, b.machines)
	assert.NotNil(t, b.stages)
	assert.Empty(t, b.defaultMachine)
}

// TestBuilder_Chaining tests fluent API chaining.
func TestBuilder_Chaining(t *testing.T) {
	b := NewBuilder()
	result := b.AddMachine("m").AddStage("s").LinkStage("m/s", "m", "s")
	assert.Same(t, b, result)
}

// TestBuilder_AddMachine_EmptyName_Panics tests that empty names panic.
func TestBuilder_AddMachine_EmptyName_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "vine: machine name cannot be empty", func() {
		NewBuilder().AddMachine("")
	})
}

// TestBuilder_AddStage_WhitespaceName_Panics tests whitespace rejection.
func TestBuilder_AddStage_WhitespaceName_Panics(t *testing.T) {
	testCases := []struct {
		name string
		id   string
	}{
		{"space", "stage a"},
		{"tab", "stage\ta"},
		{"newline", "stage\na"},
		{"leading space", " stage"},
		{"trailing space", "stage "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.PanicsWithValue(t, "vine: stage name cannot contain whitespace", func() {
				NewBuilder().AddStage(tc.id)
			})
		})
	}
}

// TestBuilder_AddMachine_Duplicate_Panics tests duplicate declarations.
func TestBuilder_AddMachine_Duplicate_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "vine: duplicate machine: m", func() {
		NewBuilder().AddMachine("m").AddMachine("m")
	})
}

// TestBuilder_AddStage_Duplicate_Panics tests duplicate declarations.
func TestBuilder_AddStage_Duplicate_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "vine: duplicate stage: s", func() {
		NewBuilder().AddStage("s").AddStage("s")
	})
}

// TestBuilder_LinkFunc_NilFunc_Panics tests that nil functions panic.
func TestBuilder_LinkFunc_NilFunc_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "vine: function cannot be nil", func() {
		NewBuilder().AddStage("s").LinkFunc("s/f", "s", nil)
	})
}

// TestBuilder_FrozenMutation_Panics tests that a frozen builder rejects
// further registration.
func TestBuilder_FrozenMutation_Panics(t *testing.T) {
	b := NewBuilder().AddMachine("m").SetDefaultMachine("m")
	b.MustFreeze()

	assert.PanicsWithValue(t, "vine: builder is frozen", func() {
		b.AddStage("late")
	})
	assert.PanicsWithValue(t, "vine: builder is frozen", func() {
		b.LinkFunc("late/f", "late", noop)
	})
}

// TestBuilder_ValidNames tests a spread of accepted identifiers.
func TestBuilder_ValidNames(t *testing.T) {
	validNames := []string{
		"a",
		"stage1",
		"fetch-data",
		"process_input",
		"CamelCase",
		"path/like/name",
		"123",
	}

	for _, name := range validNames {
		t.Run(name, func(t *testing.T) {
			b := NewBuilder().AddStage(name)
			assert.True(t, b.stages.Has(name))
		})
	}
}
