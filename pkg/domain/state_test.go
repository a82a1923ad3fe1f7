package domain_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_SetDefault(t *testing.T) {
	s := domain.NewState()

	assert.True(t, s.SetDefault("name", "Alice"))
	assert.False(t, s.SetDefault("name", "Bob"), "second default must not re-stomp")
	assert.Equal(t, "Alice", s["name"])

	// A present nil or false value still counts as present.
	s["agree"] = false
	assert.False(t, s.SetDefault("agree", true))
	assert.Equal(t, false, s["agree"])
}

func TestState_CloneIsDeep(t *testing.T) {
	s := domain.State{
		"form": map[string]any{"email": "a@b"},
		"seq":  []string{"a"},
		"any":  []any{"x", map[string]any{"k": "v"}},
	}
	c := s.Clone()

	c.Nested("form")["email"] = "changed"
	c["seq"].([]string)[0] = "changed"
	c["any"].([]any)[1].(map[string]any)["k"] = "changed"

	assert.Equal(t, "a@b", s["form"].(map[string]any)["email"])
	assert.Equal(t, []string{"a"}, s["seq"])
	assert.Equal(t, "v", s["any"].([]any)[1].(map[string]any)["k"])
}

func TestState_CloneKeepsEmptySequences(t *testing.T) {
	s := domain.State{"selected": []string{}}
	assert.Equal(t, []string{}, s.Clone()["selected"])
}

func TestState_Filter(t *testing.T) {
	s := domain.State{"name": "Alice", "greeted": true, "_toasts": []any{}}
	got := s.Filter([]string{"name", "missing"})
	assert.Equal(t, domain.State{"name": "Alice"}, got)
}

func TestState_Decode(t *testing.T) {
	type signup struct {
		Name  string   `mapstructure:"name"`
		Agree bool     `mapstructure:"agree"`
		Tags  []string `mapstructure:"tags"`
		Age   int      `mapstructure:"age"`
	}

	s := domain.State{
		"name":  "Alice",
		"agree": true,
		"tags":  []any{"a", "b"},
		"age":   "42",
	}

	var out signup
	require.NoError(t, s.Decode(&out))
	assert.Equal(t, signup{Name: "Alice", Agree: true, Tags: []string{"a", "b"}, Age: 42}, out)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{}, domain.Strings(nil))
	assert.Equal(t, []string{"a"}, domain.Strings("a"))
	assert.Equal(t, []string{"a", "1"}, domain.Strings([]any{"a", 1}))
	assert.True(t, domain.IsSequence([]any{}))
	assert.False(t, domain.IsSequence("a"))
}

func TestToasts(t *testing.T) {
	s := domain.NewState()
	id1 := domain.PushToast(s, "saved", "success")
	id2 := domain.PushToast(s, "oops", "error")

	toasts := domain.Toasts(s)
	require.Len(t, toasts, 2)
	assert.Equal(t, id1, toasts[0].ID)
	assert.Equal(t, "oops", toasts[1].Message)

	assert.True(t, domain.DismissToast(s, id1))
	assert.False(t, domain.DismissToast(s, id1), "already dismissed")

	toasts = domain.Toasts(s)
	require.Len(t, toasts, 1)
	assert.Equal(t, id2, toasts[0].ID)
}
