package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cgsmiles/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.ErrCodeInternal, "unexpected failure"},
		{"grammar", errors.ErrCodeGrammar, "unbalanced brackets"},
		{"undefined fragment", errors.ErrCodeUndefinedFragment, "fragment PEO is not defined"},
		{"resolution", errors.ErrCodeResolution, "no compatible descriptors"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeGrammar, "unexpected character")
	assert.Equal(t, "[CGS_001] unexpected character", ae.Error())

	withDetail := ae.WithDetail("fragment=PEO position=3")
	assert.Equal(t, "[CGS_001] unexpected character: fragment=PEO position=3", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")

	wrapped := errors.Wrap(fmt.Errorf("boom"), errors.ErrCodeCacheError, "cache read")
	assert.Equal(t, "[COMMON_013] cache read: boom", wrapped.Error())
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	ae := errors.Wrap(root, errors.ErrCodeCacheError, "redis get")

	require.NotNil(t, ae)
	assert.True(t, stderrors.Is(ae, root))
	assert.Equal(t, root, stderrors.Unwrap(ae))
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeResolution, "no match")
	outer := errors.Wrap(inner, errors.CodeUnknown, "resolve meta edge 0-1")

	assert.Equal(t, errors.ErrCodeResolution, outer.Code)
	assert.True(t, errors.IsResolutionError(outer))
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	grammar := errors.New(errors.ErrCodeGrammar, "x")
	undefined := errors.New(errors.ErrCodeUndefinedFragment, "x")
	resolution := errors.New(errors.ErrCodeResolution, "x")

	assert.True(t, errors.IsGrammarError(grammar))
	assert.False(t, errors.IsGrammarError(undefined))
	assert.True(t, errors.IsUndefinedFragment(undefined))
	assert.False(t, errors.IsUndefinedFragment(resolution))
	assert.True(t, errors.IsResolutionError(fmt.Errorf("ctx: %w", resolution)))
	assert.False(t, errors.IsResolutionError(nil))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("gone")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeCacheMiss, "miss")))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
	assert.False(t, errors.IsNotFound(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeGrammar, errors.GetCode(fmt.Errorf("wrap: %w", errors.New(errors.ErrCodeGrammar, "x"))))
}

func TestWithCause_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
	assert.Nil(t, ae.WithDetail("x"))
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 400, errors.New(errors.ErrCodeGrammar, "x").HTTPStatus())
	assert.Equal(t, 422, errors.New(errors.ErrCodeResolution, "x").HTTPStatus())
}
