package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagging(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		tag  func(error) error
		kind error
	}{
		{name: "fetch", tag: Fetch, kind: ErrFetch},
		{name: "transport", tag: Transport, kind: ErrTransport},
		{name: "validation", tag: Validation, kind: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tag(cause)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, cause)
			assert.Nil(t, tt.tag(nil))
		})
	}
}

func TestTagIsNotRepeated(t *testing.T) {
	err := Fetch(Fetch(errors.New("boom")))
	joined, ok := err.(interface{ Unwrap() []error })
	assert.True(t, ok)
	assert.Len(t, joined.Unwrap(), 2)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, "room not found", Describe(Fetch(errors.New("room not found"))))
	assert.Equal(t, "dial: refused", Describe(Transport(fmt.Errorf("dial: %w", errors.New("refused")))))
	assert.Equal(t, "plain", Describe(errors.New("plain")))
}
