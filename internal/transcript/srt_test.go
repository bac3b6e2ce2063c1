package transcript

import "testing"

func TestParseSRT(t *testing.T) {
	content := "1\r\n00:00:00,500 --> 00:00:02,000\r\n<font color=\"#fff\">Hello</font>\r\nthere\r\n\r\n" +
		"2\n00:00:02.000 --> 00:00:03,250\nHello there\n\n" +
		"3\n00:00:03,250 --> 00:00:05,000\n\n\n" +
		"4\n00:00:05,000 --> 00:00:04,000\nbackwards\n\n" +
		"garbage block\n\n" +
		"5\n01:00:00,000 --> 01:00:01,000\nlate\n"

	got := ParseSRT(content)
	want := []Segment{
		{Text: "Hello there", Start: 0.5, Duration: 1.5},
		{Text: "backwards", Start: 5, Duration: 0},
		{Text: "late", Start: 3600, Duration: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseSRT() returned %d segments, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseSRTEmpty(t *testing.T) {
	if got := ParseSRT(""); len(got) != 0 {
		t.Errorf("ParseSRT(\"\") = %+v, want none", got)
	}
}
