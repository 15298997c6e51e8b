package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	ytdl "github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// YouTubeBackend is the in-process fallback for YouTube URLs, used when the
// primary extractor is exhausted. It streams a muxed mp4 format directly.
type YouTubeBackend struct {
	client ytdl.Client
	logger *zap.Logger
}

// NewYouTubeBackend creates the native YouTube backend. The header timeout
// bounds each network call; streaming a large video stays open past it.
func NewYouTubeBackend(logger *zap.Logger) *YouTubeBackend {
	return &YouTubeBackend{
		client: ytdl.Client{
			HTTPClient: &http.Client{
				Transport: &http.Transport{
					ResponseHeaderTimeout: 30 * time.Second,
				},
			},
		},
		logger: logger,
	}
}

// Name returns the backend identifier.
func (b *YouTubeBackend) Name() domain.BackendName {
	return domain.BackendYouTubeNative
}

// Probe fetches video metadata and the size of the format Fetch would pick.
func (b *YouTubeBackend) Probe(ctx context.Context, url string) (*domain.MediaInfo, error) {
	video, err := b.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, b.classify(err)
	}

	format, err := pickFormat(video)
	if err != nil {
		return nil, domain.WrapError(domain.KindNotSupported, b.Name(), err)
	}

	return &domain.MediaInfo{
		Title:    video.Title,
		Uploader: video.Author,
		Ext:      "mp4",
		Duration: video.Duration,
		FileSize: format.ContentLength,
	}, nil
}

// Fetch streams the selected format to basePath.mp4.
func (b *YouTubeBackend) Fetch(ctx context.Context, url, basePath string) (string, error) {
	video, err := b.client.GetVideoContext(ctx, url)
	if err != nil {
		return "", b.classify(err)
	}

	format, err := pickFormat(video)
	if err != nil {
		return "", domain.WrapError(domain.KindNotSupported, b.Name(), err)
	}

	stream, size, err := b.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", b.classify(err)
	}
	defer stream.Close()

	if b.logger != nil {
		b.logger.Debug("Streaming YouTube format",
			zap.String("video_id", video.ID),
			zap.String("quality", format.QualityLabel),
			zap.Int64("size", size))
	}

	path := basePath + ".mp4"
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", domain.WrapError(domain.KindFileSystemError, b.Name(), err)
	}

	if _, err := io.Copy(file, stream); err != nil {
		file.Close()
		os.Remove(path)
		return "", b.classify(err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", domain.WrapError(domain.KindFileSystemError, b.Name(), err)
	}
	return path, nil
}

// pickFormat chooses the highest-bitrate muxed mp4 format. Muxed formats
// carry both audio and video, so no postprocessing step is needed.
func pickFormat(video *ytdl.Video) (*ytdl.Format, error) {
	var best *ytdl.Format
	formats := video.Formats.WithAudioChannels()
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "video/mp4") || f.QualityLabel == "" {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no muxed mp4 format available")
	}
	return best, nil
}

// classify folds client errors into the taxonomy: transport problems are
// retried, player/availability problems are not.
func (b *YouTubeBackend) classify(err error) *domain.DownloadError {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.KindNetworkError, b.Name(), err)
	}

	lower := strings.ToLower(err.Error())
	if containsAny(lower, "connection", "timeout", "eof", "reset by peer") {
		return domain.WrapError(domain.KindNetworkError, b.Name(), err)
	}
	return domain.WrapError(domain.KindExtractionFailed, b.Name(), err)
}
