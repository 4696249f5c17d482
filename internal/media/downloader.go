package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/creachadair/atomicfile"
)

var (
	youtubeURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+$`)
	youtubeIDPattern  = regexp.MustCompile(`(?:v=|/|be/|embed/|shorts/|youtu\.be/|/v/|/e/|watch\?v=|&v=)([0-9A-Za-z_-]{11})`)
	bareIDPattern     = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// IsYouTubeURL reports whether s looks like a YouTube URL.
func IsYouTubeURL(s string) bool {
	return youtubeURLPattern.MatchString(s)
}

// ExtractYouTubeID pulls the 11-character video ID out of a YouTube URL.
func ExtractYouTubeID(url string) string {
	m := youtubeIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// Download is the result of fetching one video's audio.
type Download struct {
	VideoID   string
	Title     string
	Folder    string
	AudioPath string
}

// Downloader fetches audio for a video via yt-dlp and converts it to a
// small mono OGG/Opus file with ffmpeg.
type Downloader struct {
	runner       CommandRunner
	audioBitrate string
	outputDir    string
}

func NewDownloader(runner CommandRunner, audioBitrate, outputDir string) *Downloader {
	return &Downloader{runner: runner, audioBitrate: audioBitrate, outputDir: outputDir}
}

// DownloadVideo resolves urlOrID to a canonical watch URL, derives the
// artifact folder from the sanitized title, downloads the best audio stream
// and converts it to OGG. It returns the paths of everything it created.
func (d *Downloader) DownloadVideo(ctx context.Context, urlOrID string) (*Download, error) {
	urlOrID = strings.TrimSpace(urlOrID)
	if urlOrID == "" {
		return nil, fmt.Errorf("empty video URL")
	}

	var url, videoID string
	switch {
	case IsYouTubeURL(urlOrID):
		url = urlOrID
		videoID = ExtractYouTubeID(urlOrID)
	case bareIDPattern.MatchString(urlOrID):
		videoID = urlOrID
		url = "https://www.youtube.com/watch?v=" + videoID
	default:
		return nil, fmt.Errorf("invalid YouTube URL or video ID: %q", urlOrID)
	}
	if videoID == "" {
		return nil, fmt.Errorf("could not extract video ID from %q", urlOrID)
	}

	title, err := d.probeTitle(ctx, url)
	if err != nil {
		return nil, err
	}
	sanitized := SanitizeTitle(title)
	if sanitized == "" {
		sanitized = videoID
	}

	folder := filepath.Join(d.outputDir, sanitized)
	if err := os.MkdirAll(folder, 0o750); err != nil {
		return nil, fmt.Errorf("creating video folder %s: %w", folder, err)
	}

	details := fmt.Sprintf("youtube_id=%s\n", videoID)
	if err := atomicfile.WriteData(filepath.Join(folder, "file_details.txt"), []byte(details), 0o644); err != nil {
		return nil, fmt.Errorf("writing file_details.txt: %w", err)
	}

	slog.Info("downloading audio", "videoID", videoID, "title", title, "folder", folder)

	downloadPath := filepath.Join(folder, sanitized+".download")
	args := []string{
		"-f", "bestaudio/best",
		"--no-playlist",
		"-o", downloadPath,
		url,
	}
	if _, err := d.runner.Run(ctx, "yt-dlp", args...); err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}

	oggPath := filepath.Join(folder, sanitized+".ogg")
	if err := d.convertToOGG(ctx, downloadPath, oggPath); err != nil {
		return nil, err
	}
	if err := os.Remove(downloadPath); err != nil {
		slog.Warn("could not remove intermediate download", "path", downloadPath, "error", err)
	}

	slog.Info("download complete", "audio", oggPath)
	return &Download{
		VideoID:   videoID,
		Title:     title,
		Folder:    folder,
		AudioPath: oggPath,
	}, nil
}

func (d *Downloader) probeTitle(ctx context.Context, url string) (string, error) {
	result, err := d.runner.Run(ctx, "yt-dlp", "--no-playlist", "--print", "%(title)s", url)
	if err != nil {
		return "", fmt.Errorf("probing title of %s: %w", url, err)
	}
	title := strings.TrimSpace(result.Stdout)
	if title == "" {
		return "", fmt.Errorf("yt-dlp returned an empty title for %s", url)
	}
	// yt-dlp may print one line per playlist entry; the first is ours.
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	return title, nil
}

// convertToOGG re-encodes audio to mono Opus at the configured bitrate,
// which keeps hour-long recordings inside the transcription API size limit.
func (d *Downloader) convertToOGG(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y", "-i", inputPath,
		"-vn", "-map_metadata", "-1",
		"-ac", "1",
		"-c:a", "libopus",
		"-b:a", d.audioBitrate,
		"-application", "voip",
		outputPath,
	}
	if _, err := d.runner.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("converting %s to ogg: %w", inputPath, err)
	}
	return nil
}

// CutAudio writes the [start, start+length) span of inputPath to outputPath,
// re-encoded with the same Opus settings as the main conversion.
func (d *Downloader) CutAudio(ctx context.Context, inputPath string, start, length time.Duration, outputPath string) error {
	args := []string{
		"-y", "-i", inputPath,
		"-ss", formatFFmpegTime(start),
		"-t", formatFFmpegTime(length),
		"-ac", "1",
		"-c:a", "libopus",
		"-b:a", d.audioBitrate,
		"-application", "voip",
		outputPath,
	}
	if _, err := d.runner.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("cutting %s: %w", inputPath, err)
	}
	return nil
}

// ProbeDuration returns the media duration reported by ffprobe.
func (d *Downloader) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	result, err := d.runner.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	if err != nil {
		return 0, fmt.Errorf("probing duration of %s: %w", path, err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration %q: %w", result.Stdout, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// formatFFmpegTime renders a duration as HH:MM:SS.mmm for ffmpeg flags.
func formatFFmpegTime(d time.Duration) string {
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
