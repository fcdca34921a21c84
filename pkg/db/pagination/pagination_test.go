package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Pagination
		want Pagination
	}{
		{name: "defaults", in: Pagination{}, want: Pagination{Skip: 0, Limit: DefaultLimit}},
		{name: "negative skip", in: Pagination{Skip: -5, Limit: 10}, want: Pagination{Skip: 0, Limit: 10}},
		{name: "limit capped", in: Pagination{Skip: 20, Limit: 10_000}, want: Pagination{Skip: 20, Limit: MaxLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
