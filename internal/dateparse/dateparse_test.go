package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "iso date kept", in: "2026-12-31", want: "2026-12-31"},
		{name: "whitespace trimmed", in: "  2026-12-31 ", want: "2026-12-31"},
		{name: "empty", in: "", want: ""},
		{name: "in months", in: "in 3 months", want: "2026-04-15"},
		{name: "in weeks", in: "in 2 weeks", want: "2026-01-29"},
		{name: "casual", in: "tomorrow", want: "2026-01-16"},
		{name: "unparseable verbatim", in: "tbd", want: "tbd"},
		{name: "impossible day kept", in: "2026-02-30", want: "2026-02-30"},
		{name: "impossible month kept", in: "2026-13-01", want: "2026-13-01"},
		{name: "unpadded date kept", in: "2026-1-5", want: "2026-1-5"},
		{name: "clock time kept", in: "10:30", want: "10:30"},
		{name: "hour kept", in: "6 pm", want: "6 pm"},
		{name: "phrase inside text kept", in: "roughly in 2 weeks", want: "roughly in 2 weeks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in, testNow))
		})
	}
}
