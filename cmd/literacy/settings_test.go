package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFontSizeFlag_Set(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "small"},
		{value: "medium"},
		{value: "large"},
		{value: "extra-large"},
		{value: "huge", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var flag FontSizeFlag
			err := flag.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, flag.String())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.value, flag.String())
			assert.Equal(t, "FontSize", flag.Type())
		})
	}
}
