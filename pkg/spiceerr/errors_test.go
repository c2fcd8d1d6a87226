package spiceerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	err := New(KindParse, 4, ErrMalformedLine, "expected %d nodes", 2)
	assert.Equal(t, "line 4: expected 2 nodes", err.Error())
	assert.ErrorIs(t, err, ErrMalformedLine)

	err = New(KindSingular, 0, ErrSingularMatrix, "matrix is singular")
	assert.Equal(t, "matrix is singular", err.Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("solving: %w", New(KindTopology, 2, ErrFloatingNode, "floating"))

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"direct", New(KindValue, 1, ErrInvalidValue, "bad"), KindValue},
		{"wrapped", wrapped, KindTopology},
		{"deadline", fmt.Errorf("solve: %w", context.DeadlineExceeded), KindTimeout},
		{"canceled", context.Canceled, KindTimeout},
		{"other", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}

	assert.Equal(t, 2, LineOf(wrapped))
	assert.Equal(t, 0, LineOf(errors.New("boom")))
	assert.Equal(t, 0, LineOf(nil))
}
