// Copyright (c) 2026 Hakoba. All rights reserved.
// Author: a.yazaki.dev@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayazaki/hakoba/internal/platform/apperr"
	"github.com/ayazaki/hakoba/internal/platform/validate"
)

func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Hakoba", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

func TestValidator_TagName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"plain", "sunset", true},
		{"underscore", "long_exposure", true},
		{"unicode", "夕焼け", true},
		{"hyphen_inside", "black-and-white", true},
		{"empty", "", false},
		{"whitespace_only", "  ", false},
		{"inner_space", "two words", false},
		{"pipe", "a|b", false},
		{"paren", "tag(1)", false},
		{"negation_operator", "sun!set", false},
		{"quote", "it's", false},
		{"colon", "rating:safe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.TagName("tags", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

func TestValidator_OneOf(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"known_rating", "sketchy", true},
		{"unknown_rating", "spicy", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.OneOf("rating", tt.value, "safe", "sketchy", "explicit")
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

func TestValidator_ChainCollectsAllFailures(t *testing.T) {
	v := &validate.Validator{}
	v.Required("description", "").
		Positive("width", -1).
		Positive("height", 600)

	err := v.Err()
	require.NotNil(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 2)
	assert.Equal(t, "description", ae.Details[0].Field)
	assert.Equal(t, "width", ae.Details[1].Field)
}
