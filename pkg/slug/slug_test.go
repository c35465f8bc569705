package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Leg Day", "leg-day"},
		{"punctuation stripped", "Upper Body #1!", "upper-body-1"},
		{"underscores become hyphens", "full_body_workout", "full-body-workout"},
		{"runs collapsed", "Push   --  Pull", "push-pull"},
		{"edges trimmed", "  --Morning Run--  ", "morning-run"},
		{"digits kept", "30-Day Challenge", "30-day-challenge"},
		{"non-latin stripped", "Тренировка ABC", "abc"},
		{"only symbols", "!!! ???", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Make(tt.input))
		})
	}
}

func TestMakeCapsLength(t *testing.T) {
	got := Make(strings.Repeat("workout ", 60))

	require.LessOrEqual(t, len(got), 250)
	require.False(t, strings.HasSuffix(got, "-"))
	require.True(t, strings.HasPrefix(got, "workout-workout"))
}
