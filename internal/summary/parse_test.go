package summary

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Summary
	}{
		{
			name: "sections",
			raw:  "BULLETS:\n- one\n- two\n\nPARAGRAPH:\nA short paragraph.",
			want: Summary{Bullets: "- one\n- two", Paragraph: "A short paragraph."},
		},
		{
			name: "case insensitive and preamble",
			raw:  "Sure! Here it is.\nbullets: - a\nParagraph: Text here.\n",
			want: Summary{Bullets: "- a", Paragraph: "Text here."},
		},
		{
			name: "paragraph first",
			raw:  "PARAGRAPH:\nFirst.\nBULLETS:\n* x",
			want: Summary{Bullets: "* x", Paragraph: "First."},
		},
		{
			name: "only bullets header",
			raw:  "BULLETS:\n- lone",
			want: Summary{Bullets: "- lone"},
		},
		{
			name: "marker fallback",
			raw:  "Intro line\n- first point\n  * second point\n\n• third\nclosing words",
			want: Summary{
				Bullets:   "- first point\n* second point\n• third",
				Paragraph: "Intro line\nclosing words",
			},
		},
		{
			name: "whole text fallback",
			raw:  "   \n\n",
			want: Summary{Paragraph: ""},
		},
		{
			name: "plain prose",
			raw:  "Just a paragraph with no structure.",
			want: Summary{Paragraph: "Just a paragraph with no structure."},
		},
		{
			name: "header word inside prose",
			raw:  "BULLETS:\n- first point\n- second point\n\nPARAGRAPH:\nThe talk lists three bullets: speed, cost and safety. It ends with a demo.",
			want: Summary{
				Bullets:   "- first point\n- second point",
				Paragraph: "The talk lists three bullets: speed, cost and safety. It ends with a demo.",
			},
		},
		{
			name: "crlf",
			raw:  "BULLETS:\r\n- a\r\nPARAGRAPH:\r\nb",
			want: Summary{Bullets: "- a", Paragraph: "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.raw); got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBulletItems(t *testing.T) {
	s := Summary{Bullets: "- one\n\n* two\n• three\nfour"}
	want := []string{"one", "two", "three", "four"}
	if got := s.BulletItems(); !reflect.DeepEqual(got, want) {
		t.Errorf("BulletItems() = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Truncate() = %q, want %q", got, "hé")
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Errorf("Truncate(0) = %q", got)
	}
}
