package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedImage(t *testing.T) {
	img := NewEncodedImage("image/png", []byte{0x89, 'P', 'N', 'G'})

	assert.Equal(t, "data:image/png;base64,iVBORw==", string(img))
	assert.Equal(t, "image/png", img.MIMEType())

	data, err := img.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}

func TestParseEncodedImage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid", "data:image/jpeg;base64,AAAA", true},
		{"no prefix", "image/jpeg;base64,AAAA", false},
		{"no payload", "data:image/jpeg;base64", false},
		{"not base64", "data:image/jpeg,AAAA", false},
		{"no media type", "data:;base64,AAAA", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEncodedImage(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseModuleType(t *testing.T) {
	m, err := ParseModuleType("mosaic")
	require.NoError(t, err)
	assert.Equal(t, ModuleMosaic, m)

	_, err = ParseModuleType("pottery")
	assert.Error(t, err)

	assert.False(t, ModuleFrigated.CallsAssistant())
	assert.True(t, ModuleVase.CallsAssistant())
	assert.Len(t, NavItems(), len(Modules))
}
