// Package handlers drives a per-chat marketing session from Telegram updates.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"marketing-studio/internal/export"
	"marketing-studio/internal/marketing"
	"marketing-studio/internal/session"
	"marketing-studio/internal/telegram"
)

const (
	callbackType     = "type"
	callbackTemplate = "tpl"
)

type Options struct {
	Telegram  *telegram.Client
	Sessions  *session.Store
	Templates *marketing.Library
	Logger    *slog.Logger
}

type Handler struct {
	tg        *telegram.Client
	sessions  *session.Store
	templates *marketing.Library
	logger    *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tg:        opts.Telegram,
		sessions:  opts.Sessions,
		templates: opts.Templates,
		logger:    logger,
	}
}

func sessionID(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(update.CallbackQuery)
	}
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	ctrl := h.sessions.GetOrCreate(sessionID(chatID))

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, ctrl, msg)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	if strings.Contains(text, "=") {
		return h.setInputs(chatID, ctrl, text)
	}
	return h.tg.SendText(chatID, "Send field values as key=value lines, or use /help.")
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, ctrl *session.Controller, msg *telegram.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText)
	case "types":
		return h.tg.SendTextWithKeyboard(chatID, "Choose a content type:", typesKeyboard())
	case "type":
		if args == "" {
			return h.tg.SendTextWithKeyboard(chatID, "Choose a content type:", typesKeyboard())
		}
		ct, ok := marketing.ParseContentType(args)
		if !ok {
			return h.tg.SendText(chatID, fmt.Sprintf("❌ Unknown content type %q. See /types.", args))
		}
		return h.selectType(chatID, ctrl, ct)
	case "templates":
		if len(h.templates.All()) == 0 {
			return h.tg.SendText(chatID, "No templates are configured.")
		}
		return h.tg.SendTextWithKeyboard(chatID, "Pick a template:", templatesKeyboard(h.templates.All()))
	case "template":
		tpl, ok := h.templates.Lookup(args)
		if !ok {
			return h.tg.SendText(chatID, fmt.Sprintf("❌ Template %q not found. See /templates.", args))
		}
		return h.applyTemplate(chatID, ctrl, tpl)
	case "set":
		if args == "" {
			return h.tg.SendText(chatID, "Usage: /set businessType=Coffee Shop\n(one key=value per line)")
		}
		return h.setInputs(chatID, ctrl, args)
	case "inputs":
		st := ctrl.Snapshot()
		return h.tg.SendText(chatID, formatInputs(st.ContentType, st.Inputs))
	case "generate":
		return h.generate(ctx, chatID, ctrl)
	case "refine":
		return h.refine(ctx, chatID, ctrl, args)
	case "history":
		return h.tg.SendText(chatID, formatHistory(ctrl.Snapshot().History))
	case "revert":
		n, err := strconv.Atoi(args)
		if err != nil {
			return h.tg.SendText(chatID, "Usage: /revert <version number>")
		}
		res, err := ctrl.Revert(n - 1)
		if err != nil {
			return h.tg.SendText(chatID, userMessage(err))
		}
		_ = h.tg.SendText(chatID, fmt.Sprintf("↩️ Reverted to version %d.", n))
		return h.sendResult(chatID, res)
	case "clear":
		if err := ctrl.Clear(); err != nil {
			return h.tg.SendText(chatID, userMessage(err))
		}
		return h.tg.SendText(chatID, "✅ History cleared. The current version was kept.")
	case "compare":
		return h.compare(ctx, chatID, ctrl, args)
	case "export":
		return h.export(chatID, ctrl, args)
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Use /help.")
	}
}

func (h *Handler) handleCallback(q *telegram.CallbackQuery) error {
	if q == nil || q.Message == nil {
		return nil
	}
	chatID := q.Message.Chat.ID
	ctrl := h.sessions.GetOrCreate(sessionID(chatID))

	kind, value, _ := strings.Cut(q.Data, ":")
	switch kind {
	case callbackType:
		ct, ok := marketing.ParseContentType(value)
		if !ok {
			return h.tg.AnswerCallback(q.ID, "Unknown content type")
		}
		_ = h.tg.AnswerCallback(q.ID, ct.Label())
		return h.selectType(chatID, ctrl, ct)
	case callbackTemplate:
		idx, err := strconv.Atoi(value)
		all := h.templates.All()
		if err != nil || idx < 0 || idx >= len(all) {
			return h.tg.AnswerCallback(q.ID, "Template no longer exists")
		}
		_ = h.tg.AnswerCallback(q.ID, all[idx].Name)
		return h.applyTemplate(chatID, ctrl, all[idx])
	default:
		return h.tg.AnswerCallback(q.ID, "")
	}
}

func (h *Handler) selectType(chatID int64, ctrl *session.Controller, ct marketing.ContentType) error {
	if err := ctrl.SelectType(ct); err != nil {
		return h.tg.SendText(chatID, userMessage(err))
	}
	st := ctrl.Snapshot()
	return h.tg.SendText(chatID, fmt.Sprintf("✅ %s selected.\n\n%s", ct.Label(), formatInputs(st.ContentType, st.Inputs)))
}

func (h *Handler) applyTemplate(chatID int64, ctrl *session.Controller, tpl marketing.Template) error {
	if err := ctrl.ApplyTemplate(tpl); err != nil {
		return h.tg.SendText(chatID, userMessage(err))
	}
	st := ctrl.Snapshot()
	return h.tg.SendText(chatID, fmt.Sprintf("✅ Template %q loaded.\n\n%s\n\nSend /generate when ready.", tpl.Name, formatInputs(st.ContentType, st.Inputs)))
}

func (h *Handler) setInputs(chatID int64, ctrl *session.Controller, text string) error {
	assignments, bad := parseAssignments(text)
	if len(bad) > 0 {
		return h.tg.SendText(chatID, "❌ Could not read: "+strings.Join(bad, ", ")+"\nUse key=value, one per line. See /inputs for the keys.")
	}
	fields := make(map[marketing.Field]string, len(assignments))
	for _, a := range assignments {
		fields[a.field] = a.value
	}
	if err := ctrl.SetFields(fields); err != nil {
		return h.tg.SendText(chatID, userMessage(err))
	}
	st := ctrl.Snapshot()
	return h.tg.SendText(chatID, formatInputs(st.ContentType, st.Inputs))
}

func (h *Handler) generate(ctx context.Context, chatID int64, ctrl *session.Controller) error {
	ct := ctrl.Snapshot().ContentType
	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, fmt.Sprintf("⏳ Generating %s...", ct.Label()))

	res, err := ctrl.Generate(ctx)
	if err != nil {
		h.logFailure("generate", chatID, err)
		return h.tg.SendText(chatID, userMessage(err))
	}
	return h.sendResult(chatID, res)
}

func (h *Handler) refine(ctx context.Context, chatID int64, ctrl *session.Controller, instruction string) error {
	if instruction == "" {
		return h.tg.SendText(chatID, "Usage: /refine make it shorter and more playful")
	}
	h.tg.SendTyping(chatID)

	res, applied, err := ctrl.Refine(ctx, instruction)
	if err != nil {
		h.logFailure("refine", chatID, err)
		return h.tg.SendText(chatID, userMessage(err))
	}
	if !applied {
		return h.tg.SendText(chatID, "Posters cannot be refined. Adjust the inputs and /generate again.")
	}
	return h.sendResult(chatID, res)
}

func (h *Handler) compare(ctx context.Context, chatID int64, ctrl *session.Controller, args string) error {
	var types []marketing.ContentType
	for _, raw := range strings.Fields(args) {
		ct, ok := marketing.ParseContentType(raw)
		if !ok {
			return h.tg.SendText(chatID, fmt.Sprintf("❌ Unknown content type %q.", raw))
		}
		types = append(types, ct)
	}

	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, "⏳ Generating comparison...")

	rows, err := ctrl.Compare(ctx, types)
	if err != nil {
		h.logFailure("compare", chatID, err)
		return h.tg.SendText(chatID, userMessage(err))
	}
	for _, row := range rows {
		if err := h.tg.SendText(chatID, formatRow(row)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) export(chatID int64, ctrl *session.Controller, kind string) error {
	current, _ := ctrl.Snapshot().Current()

	var (
		file export.File
		err  error
	)
	switch strings.ToLower(kind) {
	case "", "text", "txt":
		file, err = export.PlainText(current)
	case "document", "doc", "html":
		file, err = export.Document(current)
	case "poster":
		file, err = export.PosterImage(current)
	case "summary", "summary-image":
		file, err = export.SummaryImage(current)
	default:
		return h.tg.SendText(chatID, "Usage: /export text|document|poster|summary")
	}
	if err != nil {
		return h.tg.SendText(chatID, userMessage(err))
	}
	return h.tg.SendDocument(chatID, file, "")
}

func (h *Handler) sendResult(chatID int64, res marketing.Result) error {
	switch c := res.Content.(type) {
	case marketing.TextContent:
		if err := h.tg.SendText(chatID, string(c)); err != nil {
			return err
		}
	case marketing.PosterContent:
		h.tg.SendUploading(chatID)
		if err := h.tg.SendPhoto(chatID, c.Image, c.Concept.Headline); err != nil {
			return err
		}
		if err := h.tg.SendText(chatID, formatConcept(c.Concept)); err != nil {
			return err
		}
	}

	if !res.SummaryImage.Empty() {
		if err := h.tg.SendPhoto(chatID, res.SummaryImage, "Summary"); err != nil {
			h.logger.Warn("send summary image failed", "chat_id", chatID, "err", err)
		}
	}
	return h.tg.SendText(chatID, formatPerformance(res.Performance))
}

func (h *Handler) logFailure(action string, chatID int64, err error) {
	var verr *marketing.ValidationError
	var busy *session.BusyError
	if errors.As(err, &verr) || errors.As(err, &busy) || errors.Is(err, session.ErrSuperseded) {
		h.logger.Debug(action+" rejected", "chat_id", chatID, "err", err)
		return
	}
	h.logger.Error(action+" failed", "chat_id", chatID, "err", err)
}

func typesKeyboard() telegram.Keyboard {
	var rows [][]telegram.KeyboardButton
	types := marketing.Types()
	for i := 0; i < len(types); i += 2 {
		row := []telegram.KeyboardButton{telegram.NewButton(types[i].Label(), callbackType+":"+string(types[i]))}
		if i+1 < len(types) {
			row = append(row, telegram.NewButton(types[i+1].Label(), callbackType+":"+string(types[i+1])))
		}
		rows = append(rows, row)
	}
	return telegram.NewKeyboard(rows...)
}

func templatesKeyboard(templates []marketing.Template) telegram.Keyboard {
	rows := make([][]telegram.KeyboardButton, 0, len(templates))
	for i, tpl := range templates {
		rows = append(rows, []telegram.KeyboardButton{
			telegram.NewButton(tpl.Name, callbackTemplate+":"+strconv.Itoa(i)),
		})
	}
	return telegram.NewKeyboard(rows...)
}
