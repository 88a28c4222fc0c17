package cmd

import "testing"

func TestPickSeries(t *testing.T) {
	tests := []struct {
		choice, count int
		want          int
		wantErr       bool
	}{
		{1, 3, 0, false},
		{3, 3, 2, false},
		{4, 3, -1, true},
		{-1, 3, -1, true},
		{1, 0, -1, true},
	}

	for _, tt := range tests {
		got, err := pickSeries(tt.choice, tt.count)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("pickSeries(%d, %d) = %d, %v; want %d, err %v", tt.choice, tt.count, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestPickEpisode(t *testing.T) {
	tests := []struct {
		choice  string
		count   int
		want    int
		wantErr bool
	}{
		{"latest", 12, 11, false},
		{"LATEST", 12, 11, false},
		{"1", 12, 0, false},
		{" 12 ", 12, 11, false},
		{"13", 12, -1, true},
		{"0", 12, -1, true},
		{"son", 12, -1, true},
		{"latest", 0, -1, true},
	}

	for _, tt := range tests {
		got, err := pickEpisode(tt.choice, tt.count)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("pickEpisode(%q, %d) = %d, %v; want %d, err %v", tt.choice, tt.count, got, err, tt.want, tt.wantErr)
		}
	}
}
