// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-directory/pkg/slug"
)

/*
TestFrom covers normalization of display names into slugs.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Foo", "foo"},
		{"spaces", "  Café   de  Olla ", "cafe-de-olla"},
		{"accents", "Ñandú Árbol", "nandu-arbol"},
		{"punctuation", "Rock & Roll!", "rock-roll"},
		{"tabs_and_newlines", "a\tb\nc", "a-b-c"},
		{"already_slug", "foo-bar", "foo-bar"},
		{"only_symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

// memoryStore records taken slugs for the probing tests.
type memoryStore map[string]bool

func (store memoryStore) exists(_ context.Context, candidate string) (bool, error) {
	return store[candidate], nil
}

/*
TestUnique_SuffixSequence checks that repeated names receive -1, -2, ... suffixes.
*/
func TestUnique_SuffixSequence(t *testing.T) {
	store := memoryStore{}
	ctx := context.Background()

	want := []string{"foo", "foo-1", "foo-2", "foo-3"}
	for _, expected := range want {
		got, err := slug.Unique(ctx, "Foo", store.exists)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
		store[got] = true
	}

	// Every persisted slug is distinct.
	assert.Len(t, store, len(want))
}

/*
TestUnique_Errors covers empty names, lookup failures and exhaustion.
*/
func TestUnique_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		_, err := slug.Unique(ctx, "   ", memoryStore{}.exists)
		assert.ErrorIs(t, err, slug.ErrEmpty)
	})

	t.Run("lookup_failure", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := slug.Unique(ctx, "foo", func(context.Context, string) (bool, error) {
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		_, err := slug.Unique(ctx, "foo", func(context.Context, string) (bool, error) {
			calls++
			return true, nil
		})
		assert.ErrorIs(t, err, slug.ErrExhausted)
		assert.Equal(t, slug.MaxAttempts, calls)
	})
}

/*
TestValid checks both the strict and the loose slug shapes.
*/
func TestValid(t *testing.T) {
	tests := []struct {
		input  string
		strict bool
		loose  bool
	}{
		{"foo", true, true},
		{"foo-bar-1", true, true},
		{"-foo", false, true},
		{"foo--bar", false, true},
		{"Foo", false, false},
		{"foo bar", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			assert.Equal(t, tt.strict, slug.Valid(tt.input))
			assert.Equal(t, tt.loose, slug.ValidLoose(tt.input))
		})
	}
}
