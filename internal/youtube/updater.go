package youtube

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	yt "google.golang.org/api/youtube/v3"

	"jamesfarrell.me/youtube-ai-helper/internal/prompts"
)

// Updater pushes prompt-generated metadata and subtitles back to YouTube.
type Updater struct {
	service *yt.Service
	log     *slog.Logger
}

func NewUpdater(service *yt.Service) *Updater {
	return &Updater{
		service: service,
		log:     slog.Default().With("component", "youtube"),
	}
}

// UpdateFromFolder updates the video identified by the folder's
// file_details.txt using title, description and keywords prompt outputs.
// When transcript.srt is present it replaces the video's captions.
func (u *Updater) UpdateFromFolder(ctx context.Context, folder string) error {
	videoID, err := videoIDFromDetails(filepath.Join(folder, "file_details.txt"))
	if err != nil {
		return err
	}
	log := u.log.With("video_id", videoID, "folder", folder)

	title, _ := prompts.LoadVariableContent(folder, "title")
	description, _ := prompts.LoadVariableContent(folder, "description")
	keywords, _ := prompts.LoadVariableContent(folder, "keywords")

	video, err := u.fetchVideo(ctx, videoID)
	if err != nil {
		return err
	}

	if title != "" {
		video.Snippet.Title = strings.TrimSpace(title)
	}
	if description != "" {
		video.Snippet.Description = description
	}
	if keywords != "" {
		video.Snippet.Tags = LimitTags(keywords, maxTagsLength)
	}

	_, err = u.service.Videos.Update([]string{"snippet"}, &yt.Video{
		Id:      videoID,
		Snippet: video.Snippet,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update video %s: %w", videoID, err)
	}
	log.Info("updated video metadata", "title", video.Snippet.Title)

	srtPath := filepath.Join(folder, "transcript.srt")
	if _, err := os.Stat(srtPath); err == nil {
		language := video.Snippet.DefaultLanguage
		if language == "" {
			language = "en"
		}
		if err := u.ReplaceCaptions(ctx, videoID, srtPath, language); err != nil {
			return err
		}
	}
	return nil
}

func (u *Updater) fetchVideo(ctx context.Context, videoID string) (*yt.Video, error) {
	resp, err := u.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}
	return resp.Items[0], nil
}

// ReplaceCaptions deletes every existing caption track and uploads the SRT
// file as a fresh one.
func (u *Updater) ReplaceCaptions(ctx context.Context, videoID, srtPath, language string) error {
	existing, err := u.service.Captions.List([]string{"snippet"}, videoID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("list captions for %s: %w", videoID, err)
	}
	for _, caption := range existing.Items {
		if err := u.service.Captions.Delete(caption.Id).Context(ctx).Do(); err != nil {
			return fmt.Errorf("delete caption %s: %w", caption.Id, err)
		}
		u.log.Info("deleted caption", "caption_id", caption.Id)
	}

	f, err := os.Open(srtPath)
	if err != nil {
		return fmt.Errorf("open subtitles: %w", err)
	}
	defer f.Close()

	caption := &yt.Caption{
		Snippet: &yt.CaptionSnippet{
			VideoId:  videoID,
			Language: language,
			Name:     "Subtitles",
			IsDraft:  false,
		},
	}
	inserted, err := u.service.Captions.Insert([]string{"snippet"}, caption).Media(f).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("upload subtitles for %s: %w", videoID, err)
	}
	u.log.Info("uploaded subtitles", "caption_id", inserted.Id, "language", language)
	return nil
}

func videoIDFromDetails(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read file details: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "youtube_id=") {
			id := strings.TrimSpace(strings.TrimPrefix(line, "youtube_id="))
			if id != "" {
				return id, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("no youtube_id in %s", path)
}
