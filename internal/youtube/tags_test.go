package youtube

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLimitTags(t *testing.T) {
	tests := []struct {
		name     string
		keywords string
		limit    int
		want     []string
	}{
		{
			name:     "all fit",
			keywords: "go, testing, audio",
			limit:    500,
			want:     []string{"go", "testing", "audio"},
		},
		{
			name:     "whitespace and empties trimmed",
			keywords: " go ,, testing ,",
			limit:    500,
			want:     []string{"go", "testing"},
		},
		{
			// "alpha" = 5, ",beta" = 5, ",gamma" = 6; limit 11 only
			// admits the first two.
			name:     "drops tags past the limit",
			keywords: "alpha,beta,gamma",
			limit:    11,
			want:     []string{"alpha", "beta"},
		},
		{
			// "two words" costs 9+2 for quotes, so it no longer fits
			// after "solo" (4) plus a separator (1) at limit 15.
			name:     "spaced tags cost quote characters",
			keywords: "solo,two words",
			limit:    15,
			want:     []string{"solo"},
		},
		{
			name:     "empty input",
			keywords: "",
			limit:    500,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LimitTags(tt.keywords, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LimitTags(%q, %d) = %v, want %v", tt.keywords, tt.limit, got, tt.want)
			}
		})
	}
}

func TestLimitTagsNeverExceedsLimit(t *testing.T) {
	keywords := strings.Repeat("some keyword, another one, short, a longer keyword here, ", 30)
	tags := LimitTags(keywords, maxTagsLength)

	length := 0
	for i, tag := range tags {
		length += len(tag)
		if i > 0 {
			length++
		}
		if strings.Contains(tag, " ") {
			length += 2
		}
	}
	if length > maxTagsLength {
		t.Fatalf("combined tag length %d exceeds %d", length, maxTagsLength)
	}
	if len(tags) == 0 {
		t.Fatal("expected at least one tag")
	}
}

func TestVideoIDFromDetails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file_details.txt")
	if err := os.WriteFile(path, []byte("title=Some Video\nyoutube_id=dQw4w9WgXcQ\n"), 0644); err != nil {
		t.Fatal(err)
	}

	id, err := videoIDFromDetails(path)
	if err != nil {
		t.Fatalf("videoIDFromDetails: %v", err)
	}
	if id != "dQw4w9WgXcQ" {
		t.Errorf("got %q, want dQw4w9WgXcQ", id)
	}

	if err := os.WriteFile(path, []byte("title=No ID here\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := videoIDFromDetails(path); err == nil {
		t.Error("expected error for missing youtube_id")
	}
}
