package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// TelegramBot is the messaging front end: it receives URLs over long
// polling, gates them on channel membership when configured, submits them to
// the orchestrator, and relays the resulting file back to the user. Each
// message is handled in its own goroutine; the orchestrator's semaphore
// bounds actual download concurrency.
type TelegramBot struct {
	api       *tgbotapi.BotAPI
	submitter domain.Submitter
	ws        domain.Workspace
	history   domain.HistoryRepository // optional
	config    *domain.TelegramConfig
	download  *domain.DownloadConfig
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewTelegramBot authorizes against the Bot API and builds the front end.
func NewTelegramBot(
	config *domain.TelegramConfig,
	download *domain.DownloadConfig,
	submitter domain.Submitter,
	ws domain.Workspace,
	history domain.HistoryRepository,
	logger *zap.Logger,
) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API client: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))

	return &TelegramBot{
		api:       api,
		submitter: submitter,
		ws:        ws,
		history:   history,
		config:    config,
		download:  download,
		logger:    logger,
	}, nil
}

// Run polls for updates until the context is cancelled, then waits for
// in-flight handlers to finish.
func (b *TelegramBot) Run(ctx context.Context) error {
	b.setupCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.PollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			msg := update.Message
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

func (b *TelegramBot) setupCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "help", Description: "How to use the bot"},
		{Command: "stats", Description: "Your download statistics"},
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		b.logger.Warn("Failed to register bot commands", zap.Error(err))
	}
}

func (b *TelegramBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	b.touchUser(msg)

	switch msg.Command() {
	case "start", "help":
		b.reply(msg, b.helpText())
		return
	case "stats":
		b.handleStats(msg)
		return
	}

	url := strings.TrimSpace(msg.Text)
	if url == "" {
		return
	}
	if !domain.IsSupportedURL(url) {
		b.reply(msg, "Please send a video link from YouTube, TikTok, Instagram, Facebook, Twitter/X, or Vimeo.")
		return
	}

	if ok := b.checkSubscription(msg); !ok {
		return
	}

	b.handleDownload(ctx, msg, url)
}

func (b *TelegramBot) handleDownload(ctx context.Context, msg *tgbotapi.Message, url string) {
	progress, _ := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID,
		fmt.Sprintf("⏳ Downloading from %s...", domain.PlatformName(url))))
	b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatUploadVideo))

	req := domain.NewDownloadRequest(url, strconv.FormatInt(msg.From.ID, 10), 0, 0)
	res := b.submitter.Submit(ctx, req)

	if progress.MessageID != 0 {
		b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, progress.MessageID))
	}

	if !res.Success {
		b.reply(msg, "❌ "+res.ErrorMessage)
		return
	}

	// The result's file is ours now; always discard it when done.
	defer func() {
		if err := b.ws.DiscardArtifact(res.FilePath); err != nil {
			b.logger.Error("Failed to discard delivered file",
				zap.String("id", req.ID),
				zap.String("file", res.FilePath),
				zap.Error(err))
		}
	}()

	video := tgbotapi.NewVideo(msg.Chat.ID, tgbotapi.FilePath(res.FilePath))
	video.Caption = res.Title
	video.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(video); err != nil {
		b.logger.Error("Failed to send video",
			zap.String("id", req.ID),
			zap.Int64("chat", msg.Chat.ID),
			zap.Error(err))
		b.reply(msg, "❌ Downloaded the video but couldn't send it. Please try again.")
	}
}

func (b *TelegramBot) handleStats(msg *tgbotapi.Message) {
	if b.history == nil {
		b.reply(msg, "Statistics aren't enabled on this bot.")
		return
	}
	stats, err := b.history.StatsForUser(strconv.FormatInt(msg.From.ID, 10))
	if err != nil {
		b.logger.Error("Failed to load user stats", zap.Error(err))
		b.reply(msg, "Couldn't load your statistics right now.")
		return
	}
	b.reply(msg, fmt.Sprintf(
		"📊 Your downloads\nTotal: %d\nSucceeded: %d\nFailed: %d\nData downloaded: %s",
		stats.Total, stats.Succeeded, stats.Failed, domain.FormatSize(stats.TotalSize)))
}

// checkSubscription enforces the required-channel gate. Membership lookup
// failures fail closed: the user is asked to join.
func (b *TelegramBot) checkSubscription(msg *tgbotapi.Message) bool {
	if b.config.RequiredChannel == "" {
		return true
	}

	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: b.config.RequiredChannel,
			UserID:             msg.From.ID,
		},
	})
	if err != nil {
		b.logger.Warn("Subscription check failed",
			zap.Int64("user", msg.From.ID),
			zap.Error(err))
		b.sendJoinPrompt(msg)
		return false
	}

	switch member.Status {
	case "creator", "administrator", "member":
		return true
	default:
		b.sendJoinPrompt(msg)
		return false
	}
}

func (b *TelegramBot) sendJoinPrompt(msg *tgbotapi.Message) {
	link := "https://t.me/" + strings.TrimPrefix(b.config.RequiredChannel, "@")
	b.reply(msg, fmt.Sprintf(
		"🔒 To use this bot, please join our channel first:\n%s\n\nThen send your link again.", link))
}

func (b *TelegramBot) touchUser(msg *tgbotapi.Message) {
	if b.history == nil {
		return
	}
	user := &domain.BotUser{
		ID:        strconv.FormatInt(msg.From.ID, 10),
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
	}
	if err := b.history.UpsertUser(user); err != nil {
		b.logger.Error("Failed to upsert user", zap.Error(err))
	}
}

func (b *TelegramBot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat", msg.Chat.ID),
			zap.Error(err))
	}
}

func (b *TelegramBot) helpText() string {
	return fmt.Sprintf(
		"👋 Send me a video link and I'll download it for you.\n\n"+
			"Supported: YouTube, TikTok, Instagram, Facebook, Twitter/X, Vimeo, and more.\n"+
			"Limits: up to %s and %s per video.\n\n"+
			"Commands:\n/stats — your download statistics",
		domain.FormatSize(b.download.MaxFileSize),
		domain.FormatDurationHuman(b.download.MaxDuration))
}
