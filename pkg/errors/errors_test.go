package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("connection reset")

	err := Asset("fetch", "download failed", cause)
	assert.Equal(t, "asset error: fetch: download failed: connection reset", err.Error())

	err = Fatal("", "missing cloud name", nil)
	assert.Equal(t, "fatal error: missing cloud name", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"fatal", Fatal("config", "missing", nil), KindFatal},
		{"wrapped asset", fmt.Errorf("store: %w", Asset("sink", "write", nil)), KindAsset},
		{"best effort", BestEffort("locate", "no match", nil), KindBestEffort},
		{"plain error defaults to post", stderrors.New("boom"), KindPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Post("extract", "resolver failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause through Unwrap")
	}
	assert.True(t, IsFatal(Fatal("launch", "no browser", cause)))
	assert.False(t, IsFatal(err))
	assert.True(t, IsBestEffort(BestEffort("click", "detached", nil)))
}
