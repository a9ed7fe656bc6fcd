package entity

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineError_IsSentinel(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{KindLaunch, ErrLaunch},
		{KindNavigation, ErrNavigation},
		{KindTimeout, ErrTimeout},
		{KindElementNotFound, ErrElementNotFound},
		{KindOptionNotFound, ErrOptionNotFound},
		{KindIndexOutOfRange, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := fmt.Errorf("step 3: %w", NewEngineError(tt.kind, "click", "#btn", nil))
			assert.ErrorIs(t, err, tt.sentinel)
			for _, other := range tests {
				if other.kind != tt.kind {
					assert.NotErrorIs(t, err, other.sentinel)
				}
			}
		})
	}
}

func TestEngineError_Message(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := NewEngineError(KindElementNotFound, "click", "#submit", cause)

	assert.Equal(t, "ElementNotFound: click #submit: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, cause)
	require.NotEmpty(t, err.Frames)
	assert.Contains(t, err.Frames[0].Function, "TestEngineError_Message")
}

func TestClassify(t *testing.T) {
	t.Run("assertion", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &AssertionMismatch{Expected: "a", Actual: "b"})
		f := Classify(err)
		assert.Equal(t, FailureAssertion, f.Kind)
		require.NotNil(t, f.Assertion)
		assert.Equal(t, "b", f.Assertion.Actual)
		assert.Empty(t, f.Frames())
	})

	t.Run("engine", func(t *testing.T) {
		f := Classify(NewEngineError(KindTimeout, "wait", "#x", nil))
		assert.Equal(t, FailureEngine, f.Kind)
		assert.NotEmpty(t, f.Frames())
	})

	t.Run("fatal", func(t *testing.T) {
		f := Classify(NewFatalBrowserError(errors.New("websocket closed")))
		assert.Equal(t, FailureFatal, f.Kind)
		assert.NotEmpty(t, f.Frames())
	})

	t.Run("unknown error becomes fatal with trace", func(t *testing.T) {
		cause := errors.New("boom")
		f := Classify(cause)
		assert.Equal(t, FailureFatal, f.Kind)
		assert.ErrorIs(t, f.Err(), cause)
		assert.NotEmpty(t, f.Frames())
	})
}

func TestFrame_String(t *testing.T) {
	fr := Frame{Location: "/src/journey.go", Line: 42}
	assert.Equal(t, "/src/journey.go 42行目", fr.String())
}

func TestCaptureFrames_SkipsRuntime(t *testing.T) {
	frames := CaptureFrames(0)
	require.NotEmpty(t, frames)
	for _, fr := range frames {
		assert.False(t, strings.HasPrefix(fr.Function, "runtime."), fr.Function)
		assert.Greater(t, fr.Line, 0)
	}
}

func TestAssertionMismatch_Error(t *testing.T) {
	err := &AssertionMismatch{Locator: "#icon-link", Expected: "アイコン設定", Actual: "", Message: "新規登録ができませんでした。"}
	assert.Equal(t, `新規登録ができませんでした。: expected "アイコン設定", actual ""`, err.Error())

	err.Message = ""
	assert.Contains(t, err.Error(), "#icon-link")
}

func TestParseDialogType(t *testing.T) {
	typ, err := ParseDialogType("confirm")
	require.NoError(t, err)
	assert.Equal(t, DialogConfirm, typ)

	typ, err = ParseDialogType("any")
	require.NoError(t, err)
	assert.Equal(t, DialogAny, typ)

	_, err = ParseDialogType("popup")
	assert.Error(t, err)
}
