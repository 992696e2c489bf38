package timer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "00:00", FormatTime(0))
	assert.Equal(t, "00:59", FormatTime(59999))
	assert.Equal(t, "05:00", FormatTime(300000))
	assert.Equal(t, "25:30", FormatTime(1530000))
	assert.Equal(t, "45:00", FormatTime(MaxTimeMs))
	assert.Equal(t, "00:00", FormatTime(-1000))
}

func TestFormatTimeDetailed(t *testing.T) {
	assert.Equal(t, "25分30秒", FormatTimeDetailed(1530000))
	assert.Equal(t, "5分钟", FormatTimeDetailed(300000))
	assert.Equal(t, "30秒", FormatTimeDetailed(30000))
	assert.Equal(t, "0秒", FormatTimeDetailed(999))
}

func TestFormatTimeShort(t *testing.T) {
	assert.Equal(t, "25m", FormatTimeShort(1530000))
	assert.Equal(t, "30s", FormatTimeShort(30000))
	assert.Equal(t, "0s", FormatTimeShort(0))
}

func TestFormatProgress(t *testing.T) {
	assert.Equal(t, "0%", FormatProgress(0))
	assert.Equal(t, "75%", FormatProgress(0.75))
	assert.Equal(t, "100%", FormatProgress(1.5))
	assert.Equal(t, "0%", FormatProgress(-0.2))
}

func TestMinuteConversions(t *testing.T) {
	assert.Equal(t, int64(90000), MinutesToMs(1.5))
	assert.Equal(t, 2.5, MsToMinutes(150000))
	assert.Equal(t, int64(180000), RoundToNearestMinute(150000))
	assert.Equal(t, int64(120000), RoundToNearestMinute(149999))
}

func TestMinutesToMs_Clamps(t *testing.T) {
	tests := []struct {
		name    string
		minutes float64
		want    int64
	}{
		{"超大值", 1e17, MaxTimeMs},
		{"极大值", 1e300, MaxTimeMs},
		{"正无穷", math.Inf(1), MaxTimeMs},
		{"刚好最大", MaxTimeMinutes, MaxTimeMs},
		{"负数", -5, 0},
		{"负无穷", math.Inf(-1), 0},
		{"NaN", math.NaN(), 0},
		{"正常值", 25, 1500000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MinutesToMs(tt.minutes))
		})
	}
}

func TestIsValidTime(t *testing.T) {
	assert.True(t, IsValidTime(0))
	assert.True(t, IsValidTime(MaxTimeMs))
	assert.False(t, IsValidTime(-1))
	assert.False(t, IsValidTime(MaxTimeMs+1))
}

func TestTimeSuggestions(t *testing.T) {
	suggestions := TimeSuggestions()
	assert.NotEmpty(t, suggestions)
	for _, m := range suggestions {
		assert.True(t, IsValidTime(MinutesToMs(float64(m))))
	}
}
