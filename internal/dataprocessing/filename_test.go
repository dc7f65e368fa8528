package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReportDate(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{
			name:       "underscore suffix",
			identifier: "daily_csv_20250116.csv",
			want:       "20250116",
		},
		{
			name:       "third dot segment",
			identifier: "daily_csv.1641291.20250116.csv",
			want:       "20250116",
		},
		{
			name:       "second dot segment",
			identifier: "daily_csv.20250116.csv",
			want:       "20250116",
		},
		{
			name:       "date only",
			identifier: "20250116.csv",
			want:       "20250116",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveReportDate(tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveReportDateFailure(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
	}{
		{name: "no digits", identifier: "statement.csv"},
		{name: "too short", identifier: "daily_csv_202501.csv"},
		{name: "too long", identifier: "daily_csv.202501160.csv"},
		{name: "not numeric", identifier: "daily_csv.2025011x.csv"},
		{name: "empty", identifier: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveReportDate(tt.identifier)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrReportDate)
			assert.Contains(t, err.Error(), tt.identifier)
		})
	}
}
