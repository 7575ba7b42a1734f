package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHyphenError(t *testing.T) {
	t.Run("message includes code location and cause", func(t *testing.T) {
		err := NewParseError(CodeTexParse, "bad pattern", errors.New("boom")).
			WithLocation("hyph-en-us.tex", 42)

		assert.Equal(t, "[ERR_TEX_PARSE] hyph-en-us.tex:42 bad pattern: boom", err.Error())
	})

	t.Run("is compares type and code", func(t *testing.T) {
		err := NewValidationError(CodePatternLeadingDigit, "pattern must start with a letter")
		wrapped := fmt.Errorf("load: %w", err)

		assert.True(t, errors.Is(wrapped, NewValidationError(CodePatternLeadingDigit, "")))
		assert.False(t, errors.Is(wrapped, NewValidationError(CodePatternEmpty, "")))
	})

	t.Run("context", func(t *testing.T) {
		err := NewValidationError(CodePatternEmpty, "pattern is empty").WithContext("pattern", "")
		assert.Equal(t, "", err.Context["pattern"])
	})
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError(CodePatternEmpty, "x")))
	assert.False(t, IsValidation(NewIOError(CodeDictRead, "x", nil)))
	assert.True(t, IsIO(fmt.Errorf("wrapped: %w", NewIOError(CodeDictRead, "x", nil))))
	assert.True(t, IsRecoverable(NewParseError(CodeTexParse, "x", nil)))
	assert.False(t, IsRecoverable(errors.New("plain")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, CodeDictRead, "x"))

	inner := NewValidationError(CodePatternLeadingDigit, "pattern must start with a letter")
	err := WrapParse(inner, "de.tex", 7)
	require.NotNil(t, err)

	assert.Equal(t, ErrorTypeParse, err.Type)
	assert.Equal(t, 7, err.Line)
	assert.True(t, HasCode(err, CodeTexParse))
	assert.True(t, HasCode(err, CodePatternLeadingDigit))
	assert.False(t, HasCode(err, CodeStore))

	io := WrapIO(errors.New("no such file"), CodeDictRead, "cannot read")
	assert.False(t, io.Recoverable)
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.NoError(t, c.Err())

	c.Add(nil)
	first := NewValidationError(CodePatternEmpty, "pattern is empty")
	c.Add(first)
	assert.Equal(t, first, c.Err())

	c.Add(NewValidationError(CodePatternLeadingDigit, "pattern must start with a letter"))

	err := c.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 invalid entries")
	assert.True(t, errors.Is(err, first))
	assert.True(t, IsRecoverable(err))
}

func TestCollectorKeepsUnrecoverableErrors(t *testing.T) {
	c := NewCollector()
	c.Add(WrapParse(NewValidationError(CodePatternEmpty, "pattern is empty"), "hyph.tex", 3))
	storeErr := NewStoreError("insert pattern", errors.New("disk full"))
	c.Add(WrapParse(storeErr, "hyph.tex", 4))
	c.Add(WrapParse(NewValidationError(CodePatternLeadingDigit, "pattern must start with a letter"), "hyph.tex", 5))

	err := c.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 invalid entries")
	assert.False(t, IsRecoverable(err))
	assert.True(t, HasCode(err, CodeStore))
}

func TestWrapParseLocation(t *testing.T) {
	err := WrapParse(NewValidationError(CodePatternEmpty, "pattern is empty"), "hyph-de.tex", 7)
	assert.Equal(t, "hyph-de.tex", err.Source)
	assert.Equal(t, 7, err.Line)
	assert.True(t, err.Recoverable)
	assert.Nil(t, WrapParse(nil, "hyph-de.tex", 7))
}

type recordingLogger struct {
	warns, errs int
}

func (r *recordingLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.errs++
}

func (r *recordingLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.warns++
}

func TestHandle(t *testing.T) {
	logger := &recordingLogger{}
	ctx := context.Background()

	Handle(ctx, logger, nil)
	Handle(ctx, logger, NewParseError(CodeTexParse, "x", nil))
	Handle(ctx, logger, NewIOError(CodeDictRead, "x", nil))
	Handle(ctx, logger, errors.New("plain"))

	assert.Equal(t, 1, logger.warns)
	assert.Equal(t, 2, logger.errs)
}
