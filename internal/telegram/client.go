package telegram

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marketing-studio/internal/export"
	"marketing-studio/internal/generation"
)

const (
	maxMessageBytes = 4096
	maxCaptionBytes = 1024
)

type Options struct {
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Debug      bool

	// APIEndpoint is a format string taking the token and the method name.
	// Empty means the public Bot API.
	APIEndpoint string
}

type Client struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if opts.HTTPClient == nil {
		return nil, errors.New("http client is nil")
	}

	endpoint := opts.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, opts.HTTPClient)
	if err != nil {
		return nil, err
	}
	bot.Debug = opts.Debug

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		bot:    bot,
		logger: logger,
	}, nil
}

func (c *Client) Username() string {
	return c.bot.Self.UserName
}

type (
	Update         = tgbotapi.Update
	Message        = tgbotapi.Message
	CallbackQuery  = tgbotapi.CallbackQuery
	Keyboard       = tgbotapi.InlineKeyboardMarkup
	KeyboardButton = tgbotapi.InlineKeyboardButton
)

type UpdatesOptions struct {
	Timeout time.Duration
}

func (c *Client) Updates(opts UpdatesOptions) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	if opts.Timeout > 0 {
		u.Timeout = int(opts.Timeout.Seconds())
	} else {
		u.Timeout = 30
	}
	return c.bot.GetUpdatesChan(u)
}

func (c *Client) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

func (c *Client) SendTyping(chatID int64) {
	_, _ = c.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

func (c *Client) SendUploading(chatID int64) {
	_, _ = c.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadPhoto))
}

// SendText delivers text in as many messages as the 4096-byte limit needs,
// breaking on line boundaries where possible.
func (c *Client) SendText(chatID int64, text string) error {
	for _, p := range SplitMessage(text, maxMessageBytes) {
		msg := tgbotapi.NewMessage(chatID, p)
		if _, err := c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) SendTextWithKeyboard(chatID int64, text string, kb Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, TruncateBytes(text, maxMessageBytes))
	msg.ReplyMarkup = kb
	_, err := c.bot.Send(msg)
	return err
}

func (c *Client) SendPhoto(chatID int64, img generation.Image, caption string) error {
	if img.Empty() {
		return errors.New("image is empty")
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  "image." + img.Extension(),
		Bytes: img.Data,
	})
	if caption != "" {
		photo.Caption = TruncateBytes(caption, maxCaptionBytes)
	}

	_, err := c.bot.Send(photo)
	return err
}

func (c *Client) SendDocument(chatID int64, file export.File, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  file.Name,
		Bytes: file.Data,
	})
	if caption != "" {
		doc.Caption = TruncateBytes(caption, maxCaptionBytes)
	}

	_, err := c.bot.Send(doc)
	return err
}

func (c *Client) AnswerCallback(id, text string) error {
	_, err := c.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

func NewKeyboard(rows ...[]KeyboardButton) Keyboard {
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func NewButton(label, data string) KeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, data)
}

// SplitMessage cuts text into chunks of at most maxBytes, preferring to break
// after a newline and never splitting a rune.
func SplitMessage(text string, maxBytes int) []string {
	if len(text) <= maxBytes || maxBytes <= 0 {
		return []string{text}
	}

	var out []string
	for len(text) > maxBytes {
		cut := strings.LastIndexByte(text[:maxBytes], '\n') + 1
		if cut <= 0 {
			cut = maxBytes
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				_, size := utf8.DecodeRuneInString(text)
				cut = size
			}
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

func TruncateBytes(text string, maxBytes int) string {
	if len(text) <= maxBytes || maxBytes <= 0 {
		return text
	}

	var buf strings.Builder
	buf.Grow(maxBytes)
	for _, r := range text {
		if buf.Len()+utf8.RuneLen(r) > maxBytes {
			break
		}
		buf.WriteRune(r)
	}
	return buf.String()
}
