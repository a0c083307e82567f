package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrTypeQuerySafety, "only SELECT queries are allowed")
	assert.Equal(t, "query_safety: only SELECT queries are allowed", err.Error())

	wrapped := Wrap(stderrors.New("dial tcp: refused"), ErrTypeDatabase, "failed to connect")
	assert.Equal(t, "database: failed to connect (caused by: dial tcp: refused)", wrapped.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTypeModel, "missing artifact: %s", "policy.onnx")
	assert.Equal(t, "model: missing artifact: policy.onnx", err.Error())
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrapf(cause, ErrTypeNetwork, "request to %s failed", "groq")

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsType(t *testing.T) {
	err := New(ErrTypeClassification, "bad response")

	assert.True(t, IsType(err, ErrTypeClassification))
	assert.False(t, IsType(err, ErrTypeGeneration))
	assert.False(t, IsType(stderrors.New("plain"), ErrTypeClassification))
	assert.False(t, IsType(nil, ErrTypeClassification))
}

func TestIsTypeSeesThroughWrapping(t *testing.T) {
	inner := New(ErrTypeModel, "model not loaded")
	outer := fmt.Errorf("handling request: %w", inner)

	assert.True(t, IsType(outer, ErrTypeModel))
}

func TestGetType(t *testing.T) {
	require.Equal(t, ErrTypeValidation, GetType(New(ErrTypeValidation, "empty message")))
	require.Equal(t, ErrTypeInternal, GetType(stderrors.New("plain")))
}
