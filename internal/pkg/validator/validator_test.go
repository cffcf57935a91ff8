package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title   string `json:"title" validate:"required,nohtml"`
	Runtime int    `json:"runtime" validate:"gt=0"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestValidate_OK(t *testing.T) {
	assert.Nil(t, Validate(sample{Title: "Stalker", Runtime: 161}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	errs := Validate(sample{Title: "<b>Stalker</b>", Runtime: 0, Email: "nope"})
	require.NotNil(t, errs)
	assert.Equal(t, "HTML tags are not allowed", errs["title"])
	assert.Equal(t, "Ensure this value is greater than 0.", errs["runtime"])
	assert.Equal(t, "Enter a valid email address.", errs["email"])
}

func TestValidate_Required(t *testing.T) {
	errs := Validate(sample{Runtime: 1})
	assert.Equal(t, "This field is required.", errs["title"])
}

func TestErrors_AsError(t *testing.T) {
	var err error = Errors{"b": "two", "a": "one"}
	assert.Equal(t, "validation failed: a: one; b: two", err.Error())

	got, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "one", got["a"])
}

func TestContainsHTML(t *testing.T) {
	assert.True(t, ContainsHTML("a < b"))
	assert.True(t, ContainsHTML("x>"))
	assert.False(t, ContainsHTML(`Tom & "Jerry"`))
}
