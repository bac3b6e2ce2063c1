package transcript

import (
	"math"
	"testing"
)

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a &amp; b &#39;c&#39;", "a & b 'c'"},
		{"&lt;b&gt;bold&lt;/b&gt;", "<b>bold</b>"},
		{"&quot;hi&quot; &apos;there&apos;", `"hi" 'there'`},
		{"&#x41;&#X42;&#67;", "ABC"},
		{"&amp;#39;", "&#39;"},
		{"&nbsp; stays", "&nbsp; stays"},
		{"&#xFFFFFFFF;", "&#xFFFFFFFF;"},
		{"&#xD800;", "&#xD800;"},
		{"", ""},
		{"no entities", "no entities"},
	}
	for _, tt := range tests {
		if got := DecodeEntities(tt.in); got != tt.want {
			t.Errorf("DecodeEntities(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatClockTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{5.9, "0:05"},
		{65, "1:05"},
		{3599, "59:59"},
		{3661, "1:01:01"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
	}
	for _, tt := range tests {
		if got := FormatClockTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatClockTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSubtitleTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.0004, "00:01:01,000"},
		{3723.4567, "01:02:03,457"},
		{-1, "00:00:00,000"},
		{math.Inf(1), "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatSubtitleTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatSubtitleTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
