package extract

import "testing"

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    PageRange
		wantErr bool
	}{
		{"", PageRange{}, false},
		{"  ", PageRange{}, false},
		{"7", PageRange{First: 7, Last: 7}, false},
		{"3-12", PageRange{First: 3, Last: 12}, false},
		{" 1 - 5 ", PageRange{First: 1, Last: 5}, false},
		{"0-5", PageRange{}, true},
		{"5-3", PageRange{}, true},
		{"abc", PageRange{}, true},
		{"1-", PageRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("ParseRange(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPageRangeResolve(t *testing.T) {
	tests := []struct {
		name        string
		r           PageRange
		total       int
		first, last int
		ok          bool
	}{
		{"all pages", PageRange{}, 5, 1, 5, true},
		{"clamped upper bound", PageRange{First: 1, Last: 1000}, 5, 1, 5, true},
		{"inner span", PageRange{First: 2, Last: 4}, 5, 2, 4, true},
		{"single page", PageRange{First: 3, Last: 3}, 5, 3, 3, true},
		{"entirely past the end", PageRange{First: 10, Last: 20}, 5, 0, 0, false},
		{"zero page document", PageRange{}, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last, ok := tt.r.Resolve(tt.total)
			if first != tt.first || last != tt.last || ok != tt.ok {
				t.Fatalf("Resolve(%d) = (%d, %d, %v), want (%d, %d, %v)",
					tt.total, first, last, ok, tt.first, tt.last, tt.ok)
			}
		})
	}
}
