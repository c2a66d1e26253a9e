package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrInvalidInput,
		ErrProviderUnavailable,
		ErrEmbeddingUnavailable,
		ErrFileRead,
		ErrUnsupportedFileType,
		ErrMalformedRequest,
	}

	for i, a := range all {
		assert.NotEmpty(t, a.Error())
		for j, b := range all {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("read notes.txt: %w", ErrFileRead)

	assert.True(t, errors.Is(wrapped, ErrFileRead))
	assert.False(t, errors.Is(wrapped, ErrUnsupportedFileType))
}
