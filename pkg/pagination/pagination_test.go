package pagination

import (
	"math"
	"testing"
)

func TestParamsNormalizeClamps(t *testing.T) {
	cases := []struct {
		in   Params
		want Params
	}{
		{Params{}, Params{Page: 1, Limit: 20}},
		{Params{Page: -3, Limit: -1}, Params{Page: 1, Limit: 20}},
		{Params{Page: 4, Limit: 500}, Params{Page: 4, Limit: 100}},
		{Params{Page: 2, Limit: 1}, Params{Page: 2, Limit: 1}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseParamsFallsBackOnGarbage(t *testing.T) {
	got := ParseParams("abc", "1e3")
	if got.Page != 1 || got.Limit != 20 {
		t.Fatalf("expected defaults, got %+v", got)
	}
	got = ParseParams(" 3 ", "15")
	if got.Page != 3 || got.Limit != 15 {
		t.Fatalf("expected 3/15, got %+v", got)
	}
}

func TestOffset(t *testing.T) {
	if off := (Params{Page: 3, Limit: 10}).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}
}

func TestNewMetaPagesIsCeiling(t *testing.T) {
	for _, limit := range []int{1, 3, 7, 20, 100} {
		for _, total := range []int64{0, 1, 2, 19, 20, 21, 99, 100, 101, 1234} {
			meta := NewMeta(Params{Page: 1, Limit: limit}, total)
			want := int(math.Ceil(float64(total) / float64(limit)))
			if meta.Pages != want {
				t.Fatalf("limit=%d total=%d: expected pages %d got %d", limit, total, want, meta.Pages)
			}
		}
	}
}
