package utils

import "testing"

func TestDeformatNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.250.000", "1250000"},
		{"1,250,000", "1250000"},
		{"1 250 000", "1250000"},
		{"950", "950"},
		{"", ""},
		{"abc", ""},
	}

	for _, tt := range tests {
		if got := DeformatNumber(tt.in); got != tt.want {
			t.Errorf("DeformatNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1250000", "1.250.000"},
		{"950", "950"},
		{"1000", "1.000"},
		{"1.250.000", "1.250.000"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// 归一化/格式化必须构成幂等闭环，提交重试时才能产生相同载荷
func TestFormatDeformatRoundTrip(t *testing.T) {
	inputs := []string{"1.250.000", "1,000", "950", "123456789", "7", ""}

	for _, s := range inputs {
		once := FormatNumber(DeformatNumber(s))
		twice := FormatNumber(DeformatNumber(once))
		if once != twice {
			t.Errorf("格式化不幂等: %q -> %q -> %q", s, once, twice)
		}
		if DeformatNumber(once) != DeformatNumber(s) {
			t.Errorf("往返丢失数字: %q -> %q", s, once)
		}
	}
}
