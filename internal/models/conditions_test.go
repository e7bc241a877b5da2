package models

import "testing"

func TestIsRainy_RainCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want bool
	}{
		{"patchy rain possible", 1063, true},
		{"light drizzle", 1153, true},
		{"heavy freezing drizzle", 1171, true},
		{"light rain", 1183, true},
		{"heavy rain", 1195, true},
		{"moderate or heavy freezing rain", 1201, true},
		{"moderate or heavy sleet", 1207, true},
		{"ice pellets", 1237, true},
		{"torrential rain shower", 1246, true},
		{"moderate or heavy showers of ice pellets", 1264, true},
		{"sunny", 1000, false},
		{"partly cloudy", 1003, false},
		{"overcast", 1009, false},
		{"patchy snow possible", 1066, false},
		{"thundery outbreaks possible", 1087, false},
		{"blizzard", 1117, false},
		{"moderate or heavy rain with thunder", 1276, false},
		{"zero", 0, false},
		{"negative", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRainy(tt.code); got != tt.want {
				t.Errorf("IsRainy(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
