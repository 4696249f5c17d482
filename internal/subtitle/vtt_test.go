package subtitle

import (
	"testing"
	"time"
)

func TestParseVTT(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name: "basic vtt",
			content: `WEBVTT

00:00:01.000 --> 00:00:04.000
Hello, this is the first subtitle

00:00:04.100 --> 00:00:08.000
This is the second subtitle`,
			want: 2,
		},
		{
			name: "multi-line subtitle",
			content: `WEBVTT

00:00:01.000 --> 00:00:04.000
Hello, this is
a multi-line subtitle

00:00:04.100 --> 00:00:08.000
Second entry`,
			want: 2,
		},
		{
			name:    "invalid header",
			content: "NOT A VTT FILE",
			wantErr: true,
		},
		{
			name: "empty lines between entries",
			content: `WEBVTT


00:00:01.000 --> 00:00:04.000
First entry


00:00:04.100 --> 00:00:08.000
Second entry`,
			want: 2,
		},
		{
			name:    "json string escaped newlines",
			content: `"WEBVTT\n\n00:00:01.000 --> 00:00:04.000\nEscaped entry"`,
			want:    1,
		},
		{
			name: "short minute timestamps",
			content: `WEBVTT

00:01.000 --> 00:04.000
Entry without hours`,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseVTT(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseVTT() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(entries) != tt.want {
				t.Errorf("ParseVTT() got %d entries, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestParseVTTMultiLineJoinsWithSpace(t *testing.T) {
	entries, err := ParseVTT("WEBVTT\n\n00:00:01.000 --> 00:00:04.000\nline one\nline two")
	if err != nil {
		t.Fatalf("ParseVTT: %v", err)
	}
	if entries[0].Text != "line one line two" {
		t.Errorf("Text = %q", entries[0].Text)
	}
}

func TestParseVTTTime(t *testing.T) {
	tests := []struct {
		timestamp string
		want      time.Duration
		wantErr   bool
	}{
		{"00:00:00.000", 0, false},
		{"00:00:01.000", time.Second, false},
		{"01:00:00.000", time.Hour, false},
		{"00:00:00.500", 500 * time.Millisecond, false},
		{"01:23:45.678", 1*time.Hour + 23*time.Minute + 45*time.Second + 678*time.Millisecond, false},
		{"01:30.000", time.Minute + 30*time.Second, false},
		{"00:00:01", 0, true},
	}
	for _, tt := range tests {
		got, err := parseVTTTime(tt.timestamp)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseVTTTime(%q) error = %v, wantErr %v", tt.timestamp, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseVTTTime(%q) = %v, want %v", tt.timestamp, got, tt.want)
		}
	}
}
