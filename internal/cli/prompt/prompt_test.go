package prompt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
)

func TestConfirmWithForce(t *testing.T) {
	ok, err := ConfirmWithForce("Reset OU rules?", true)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestIsAborted(t *testing.T) {
	assert.True(t, IsAborted(promptui.ErrInterrupt))
	assert.True(t, IsAborted(fmt.Errorf("prompt: %w", ErrAborted)))
	assert.False(t, IsAborted(errors.New("boom")))
	assert.False(t, IsAborted(nil))

	assert.ErrorIs(t, wrapError(promptui.ErrInterrupt), ErrAborted)
	assert.NoError(t, wrapError(nil))
}

func TestConfirmed(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		err        error
		defaultYes bool
		want       bool
		wantErr    error
	}{
		{"yes", "y", nil, false, true, nil},
		{"enter takes default yes", "", promptui.ErrAbort, true, true, nil},
		{"enter takes default no", "", promptui.ErrAbort, false, false, nil},
		{"explicit no", "n", promptui.ErrAbort, true, false, nil},
		{"ctrl-c", "", promptui.ErrInterrupt, true, false, ErrAborted},
		{"eof", "", promptui.ErrEOF, false, false, ErrAborted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := confirmed(tt.answer, tt.err, tt.defaultYes)
			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsYes(t *testing.T) {
	for _, s := range []string{"y", "Y", "yes", " YES "} {
		assert.True(t, isYes(s), s)
	}
	for _, s := range []string{"", "n", "no", "yep"} {
		assert.False(t, isYes(s), s)
	}
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort("8080"))
	assert.NoError(t, ValidatePort(" 1 "))
	assert.Error(t, ValidatePort("0"))
	assert.Error(t, ValidatePort("65536"))
	assert.Error(t, ValidatePort("http"))
}
