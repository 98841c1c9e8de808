package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"mixed case", "Intro to Solidity", "intro-to-solidity"},
		{"accents", "Café Développeur", "cafe-developpeur"},
		{"punctuation", "What's new in Go 1.24?", "whats-new-in-go-124"},
		{"collapsed hyphens", "a -- b --- c", "a-b-c"},
		{"leading and trailing", "  --Edge Case--  ", "edge-case"},
		{"only symbols", "!!!", "untitled"},
		{"empty", "", "untitled"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Make(tc.input))
		})
	}
}

func TestMakeIsDeterministic(t *testing.T) {
	assert.Equal(t, Make("Builder Summit 2026"), Make("Builder Summit 2026"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("hello-world"))
	assert.True(t, IsValid("go-124"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("-leading"))
	assert.False(t, IsValid("trailing-"))
	assert.False(t, IsValid("double--hyphen"))
	assert.False(t, IsValid("Upper-Case"))
}

func TestUniqueAppendsNumericSuffix(t *testing.T) {
	taken := map[string]bool{
		"builder-summit":   true,
		"builder-summit-1": true,
	}
	exists := func(ctx context.Context, s string, excludeID string) (bool, error) {
		return taken[s], nil
	}

	got, err := Unique(context.Background(), "Builder Summit", "", exists)
	require.NoError(t, err)
	assert.Equal(t, "builder-summit-2", got)
}

func TestUniqueReturnsBaseWhenFree(t *testing.T) {
	exists := func(ctx context.Context, s string, excludeID string) (bool, error) {
		return false, nil
	}
	got, err := Unique(context.Background(), "Builder Summit", "", exists)
	require.NoError(t, err)
	assert.Equal(t, "builder-summit", got)
}

func TestUniquePropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("connection reset")
	exists := func(ctx context.Context, s string, excludeID string) (bool, error) {
		return false, lookupErr
	}
	_, err := Unique(context.Background(), "Builder Summit", "", exists)
	require.ErrorIs(t, err, lookupErr)
}

func TestUniqueGivesUpAfterMaxAttempts(t *testing.T) {
	exists := func(ctx context.Context, s string, excludeID string) (bool, error) {
		return true, nil
	}
	_, err := Unique(context.Background(), "Builder Summit", "", exists)
	require.Error(t, err)
}
