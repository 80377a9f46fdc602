package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cruxmailweb/access-management-tool/internal/models"
)

func TestFrequencyNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    models.Frequency
		expected models.Frequency
	}{
		{"weekly passes through", models.FrequencyWeekly, models.FrequencyWeekly},
		{"monthly passes through", models.FrequencyMonthly, models.FrequencyMonthly},
		{"quarterly passes through", models.FrequencyQuarterly, models.FrequencyQuarterly},
		{"empty falls back to monthly", models.Frequency(""), models.FrequencyMonthly},
		{"unrecognized falls back to monthly", models.Frequency("biweekly"), models.FrequencyMonthly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.Normalize())
		})
	}
}

func TestFrequencyNextFrom_MonthEndClamping(t *testing.T) {
	// Jan 31 of a leap year: month-end arithmetic clamps to the last valid
	// day of the target month instead of spilling into the next one.
	now := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency models.Frequency
		expected  time.Time
	}{
		{"weekly adds 7 days", models.FrequencyWeekly, time.Date(2024, time.February, 7, 0, 0, 0, 0, time.UTC)},
		{"monthly clamps to Feb 29", models.FrequencyMonthly, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{"quarterly clamps to Apr 30", models.FrequencyQuarterly, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.frequency.NextFrom(now))
		})
	}
}

func TestFrequencyNextFrom(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		frequency models.Frequency
		expected  time.Time
	}{
		{
			"monthly mid-month keeps the day",
			time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC),
			models.FrequencyMonthly,
			time.Date(2024, time.April, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			"monthly Jan 31 in a non-leap year clamps to Feb 28",
			time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
			models.FrequencyMonthly,
			time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"quarterly crosses the year boundary",
			time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC),
			models.FrequencyQuarterly,
			time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"unrecognized frequency behaves as monthly",
			time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			models.Frequency("fortnightly"),
			time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.frequency.NextFrom(tt.now))
		})
	}
}

func TestFrequencyNextFrom_AlwaysInFuture(t *testing.T) {
	now := time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)
	for _, f := range []models.Frequency{models.FrequencyWeekly, models.FrequencyMonthly, models.FrequencyQuarterly} {
		assert.True(t, f.NextFrom(now).After(now), "next date for %s must be in the future", f)
	}
}
