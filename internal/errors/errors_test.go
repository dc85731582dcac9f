package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	err := NotFound("indicator 7")
	assert.Equal(t, "indicator 7 not found", err.Error())
	assert.Equal(t, CodeNotFound, GetCode(err))

	cause := stderrors.New("connection refused")
	dbErr := DatabaseError("load survey", cause)
	assert.Equal(t, "load survey: connection refused", dbErr.Error())
	assert.ErrorIs(t, dbErr, cause)
}

func TestWrapKeepsCode(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	wrapped := Wrapf(InvalidInput("name is required"), "create indicator %q", "x")
	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "name is required")

	plain := Wrap(stderrors.New("boom"), "compute")
	assert.Equal(t, CodeInternalError, GetCode(plain))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("survey 3"))
	assert.True(t, IsAppError(err))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
	assert.Equal(t, CodeInternalError, GetCode(stderrors.New("x")))
}

func TestWithCode(t *testing.T) {
	assert.Nil(t, WithCode(CodeNotFound, nil))
	err := WithCode(CodeValidationError, stderrors.New("bad formula"))
	assert.Equal(t, CodeValidationError, GetCode(err))
	assert.Equal(t, "bad formula: bad formula", err.Error())

	recoded := WithCode(CodeNotFound, InvalidInput("id"))
	assert.Equal(t, CodeNotFound, GetCode(recoded))
	assert.Equal(t, "id", recoded.Error())
}
