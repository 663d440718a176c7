package symbol

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"aapl", "AAPL"},
		{" msft ", "MSFT"},
		{"^GSPC", "SPY"},
		{"spx", "SPY"},
		{"us500", "SPY"},
		{"^IXIC", "QQQ"},
		{"ndx", "QQQ"},
		{"djia", "DIA"},
		{"rut", "IWM"},
		{"brk-b", "BRK.B"},
		{".DJI", "DIA"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"A", "AAPL", "BRK.B", "SPY"}
	for _, s := range valid {
		if !IsValid(s) {
			t.Fatalf("expected %q valid", s)
		}
	}
	invalid := []string{"", "aapl", "1AAPL", "TOOLONGSYMBOLNAMEX", "AA PL", "AA-PL"}
	for _, s := range invalid {
		if IsValid(s) {
			t.Fatalf("expected %q invalid", s)
		}
	}
}

func TestNormalizeValid(t *testing.T) {
	if s, ok := NormalizeValid("^gspc"); !ok || s != "SPY" {
		t.Fatalf("unexpected %q %v", s, ok)
	}
	if _, ok := NormalizeValid("!!!"); ok {
		t.Fatalf("expected invalid")
	}
}
