package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListing(t *testing.T) {
	l := NewListing()

	require.NotNil(t, l.Images)
	assert.Empty(t, l.Images)
	assert.Len(t, l.Options, len(OptionVocabulary))
	for key, set := range l.Options {
		assert.False(t, set, "option %s should start false", key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		model   string
		wantErr bool
	}{
		{name: "complete", id: "40647630", model: "Avante", wantErr: false},
		{name: "missing id", id: "", model: "Avante", wantErr: true},
		{name: "missing model", id: "40647630", model: "", wantErr: true},
		{name: "missing both", id: "", model: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewListing()
			l.ID = tt.id
			l.Model = tt.model

			err := l.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStampParsedAt(t *testing.T) {
	l := NewListing()
	l.StampParsedAt(time.Date(2024, 3, 7, 14, 5, 9, 0, time.UTC))

	assert.Equal(t, "07/03/2024 14:05:09", l.ParsedAt)
}

func TestActiveOptionCount(t *testing.T) {
	l := NewListing()
	assert.Equal(t, 0, l.ActiveOptionCount())

	l.Options["sunroof"] = true
	l.Options["navigation"] = true
	assert.Equal(t, 2, l.ActiveOptionCount())
}

func TestDefaultOptionsClosedWorld(t *testing.T) {
	opts := DefaultOptions()

	assert.Len(t, opts, 53)
	for _, key := range OptionVocabulary {
		_, ok := opts[key]
		assert.True(t, ok, "vocabulary key %s missing from defaults", key)
	}

	assert.True(t, IsKnownOption("sunroof"))
	assert.False(t, IsKnownOption("flux_capacitor"))
}

func TestCSVFieldOrder(t *testing.T) {
	require.Len(t, CSVFieldOrder, 19)
	assert.Equal(t, "id", CSVFieldOrder[0])
	assert.Equal(t, "options", CSVFieldOrder[len(CSVFieldOrder)-1])
}
