package invoice

import "testing"

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":         "0",
		"   ":      "0",
		"abc":      "0",
		"150000":   "150000",
		" 12.5 ":   "12.5",
		"12abc":    "12",
		".5":       "0.5",
		"-30":      "0",
		"1e3":      "1000",
		"NaN":      "0",
		"Infinity": "0",
		"+42":      "42",
		"1.000,50": "1",
		"12.5e2":   "1250",
		"2.5E-1":   "0.25",

		"999999999999999":      "999999999999999",
		"1000000000000000":     "999999999999999",
		"99999999999999999999": "999999999999999",
		"1e14":                 "100000000000000",
		"1e15":                 "999999999999999",
		"1e1000000000":         "999999999999999",
		"1e-1000000000":        "0",
		"1e99999999999":        "999999999999999",
		"1e-99999999999":       "0",
		"0e999999999":          "0",
		"-1e1000000000":        "0",
		"0.0000000001e-20":     "0",
	}
	for in, want := range cases {
		if got := ParseAmount(in); !got.Equal(dec(want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]int64{
		"":                     0,
		"abc":                  0,
		"3":                    3,
		"2.7":                  2,
		"3 pcs":                3,
		"-1":                   0,
		" 10 ":                 10,
		"99999999999999999999": 0,
	}
	for in, want := range cases {
		if got := ParseQuantity(in); got != want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestBoundAmount(t *testing.T) {
	cases := map[string]string{
		"-5":            "0",
		"0":             "0",
		"12.5":          "12.5",
		"1e1000000000":  "999999999999999",
		"1e-1000000000": "0",
	}
	for in, want := range cases {
		if got := BoundAmount(dec(in)); !got.Equal(dec(want)) {
			t.Errorf("BoundAmount(%s) = %s, want %s", in, got, want)
		}
	}
}
