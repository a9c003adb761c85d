package money

import "testing"

func TestParseCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"9.99", 999, false},
		{"0.01", 1, false},
		{"10", 1000, false},
		{"1234.56", 123456, false},
		{"0", 0, false},
		{"9.999", 0, true},
		{"0.001", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{"1,00", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseCents(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseCents(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{999, "9.99"},
		{1, "0.01"},
		{1000, "10.00"},
		{0, "0.00"},
		{123456, "1234.56"},
	}

	for _, tc := range cases {
		if got := FormatCents(tc.in); got != tc.want {
			t.Fatalf("FormatCents(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 999, 100000} {
		got, err := ParseCents(FormatCents(cents))
		if err != nil {
			t.Fatalf("round trip %d: %v", cents, err)
		}
		if got != cents {
			t.Fatalf("round trip %d = %d", cents, got)
		}
	}
}

func TestWithinOneCent(t *testing.T) {
	if !WithinOneCent(1000, 1000) {
		t.Fatalf("equal amounts should match")
	}
	if !WithinOneCent(1000, 1001) {
		t.Fatalf("one cent apart should match")
	}
	if !WithinOneCent(1001, 1000) {
		t.Fatalf("one cent apart should match either way")
	}
	if WithinOneCent(1000, 1002) {
		t.Fatalf("two cents apart should not match")
	}
}
