package rewards

import "testing"

func TestCalculateXP(t *testing.T) {
	tests := []struct {
		correct, perfect int
		want             int
	}{
		{0, 0, 0},
		{3, 1, 80},
		{1, 0, 10},
		{0, 1, 50},
		{100, 20, 2000},
	}

	for _, tt := range tests {
		got := CalculateXP(tt.correct, tt.perfect)
		if got != tt.want {
			t.Errorf("CalculateXP(%d, %d) = %d, want %d", tt.correct, tt.perfect, got, tt.want)
		}
	}
}

func TestCalculateXP_Monotonic(t *testing.T) {
	for p := 0; p < 5; p++ {
		prev := CalculateXP(0, p)
		for a := 1; a < 50; a++ {
			got := CalculateXP(a, p)
			if got < prev {
				t.Fatalf("CalculateXP(%d, %d) = %d < CalculateXP(%d, %d) = %d", a, p, got, a-1, p, prev)
			}
			prev = got
		}
	}
	for a := 0; a < 5; a++ {
		prev := CalculateXP(a, 0)
		for p := 1; p < 50; p++ {
			got := CalculateXP(a, p)
			if got < prev {
				t.Fatalf("CalculateXP(%d, %d) decreased", a, p)
			}
			prev = got
		}
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, answered int
		want              int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{10, 10, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{86, 100, 86},
	}

	for _, tt := range tests {
		got := Accuracy(tt.correct, tt.answered)
		if got != tt.want {
			t.Errorf("Accuracy(%d, %d) = %d, want %d", tt.correct, tt.answered, got, tt.want)
		}
	}
}
