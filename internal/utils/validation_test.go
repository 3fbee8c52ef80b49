package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid simple ID",
			id:      "westlake_1",
			wantErr: false,
		},
		{
			name:    "valid ID with hyphens",
			id:      "pioneer-square_stop-456",
			wantErr: false,
		},
		{
			name:    "empty ID",
			id:      "",
			wantErr: true,
			errMsg:  "id cannot be empty",
		},
		{
			name:    "ID too long",
			id:      strings.Repeat("a", 101),
			wantErr: true,
			errMsg:  "id too long (max 100 characters)",
		},
		{
			name:    "ID with invalid characters",
			id:      "station_123<script>",
			wantErr: true,
			errMsg:  "id contains invalid characters",
		},
		{
			name:    "ID with SQL injection attempt",
			id:      "station_'; DROP TABLE stations; --",
			wantErr: true,
			errMsg:  "id contains invalid characters",
		},
		{
			name:    "ID with path traversal",
			id:      "../../../etc/passwd",
			wantErr: true,
			errMsg:  "id contains invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLatitude(t *testing.T) {
	assert.NoError(t, ValidateLatitude(47.6))
	assert.NoError(t, ValidateLatitude(-90))
	assert.NoError(t, ValidateLatitude(90))
	assert.Error(t, ValidateLatitude(90.1))
	assert.Error(t, ValidateLatitude(-91))
}

func TestValidateLongitude(t *testing.T) {
	assert.NoError(t, ValidateLongitude(-122.3))
	assert.NoError(t, ValidateLongitude(180))
	assert.NoError(t, ValidateLongitude(-180))
	assert.Error(t, ValidateLongitude(180.5))
	assert.Error(t, ValidateLongitude(-200))
}

func TestValidateAccuracy(t *testing.T) {
	assert.NoError(t, ValidateAccuracy(0))
	assert.NoError(t, ValidateAccuracy(25))
	assert.Error(t, ValidateAccuracy(-1))
	assert.Error(t, ValidateAccuracy(10001))
}
