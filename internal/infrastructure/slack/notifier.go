package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ResearchBriefing/internal/config"
	"ResearchBriefing/internal/domain"
	"ResearchBriefing/internal/ports"
)

const defaultAPIBase = "https://slack.com/api"

// Notifier posts the daily briefing to a Slack channel via the Web API
// and uploads the Markdown and PDF renditions as thread replies. SendBriefing
// returns nil only when the message and the upload were both accepted;
// that is the confirmed-success signal the delivery coordinator acks on.
type Notifier struct {
	botToken  string
	channelID string
	outDir    string
	apiBase   string
	client    *http.Client
	renderer  *Renderer
	logger    *slog.Logger
}

var _ ports.Briefer = (*Notifier)(nil)

// NewNotifier registers bot token, channel and output directory.
func NewNotifier(cfg config.SlackConfig, renderer *Renderer, client *http.Client, logger *slog.Logger) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Notifier{
		botToken:  cfg.BotToken,
		channelID: cfg.ChannelID,
		outDir:    cfg.OutDir,
		apiBase:   defaultAPIBase,
		client:    client,
		renderer:  renderer,
		logger:    logger,
	}
}

// SendBriefing renders and posts the briefing for the given day.
func (n *Notifier) SendBriefing(ctx context.Context, day time.Time, snap domain.Snapshot) error {
	if n.botToken == "" || n.channelID == "" {
		return fmt.Errorf("slack notifier misconfigured: bot token and channel id are required")
	}

	ts, err := n.postMessage(ctx, day, snap)
	if err != nil {
		return err
	}
	n.info("briefing posted", "ts", ts, "items", snap.Total())

	name := fmt.Sprintf("briefing-%s.md", day.Format("2006-01-02"))
	path, err := n.writeMarkdown(day, snap, name)
	if err != nil {
		return err
	}

	if err := n.uploadFile(ctx, path, name, ts); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	n.info("markdown briefing uploaded", "file", name)

	return n.sendPDF(ctx, day, snap, ts)
}

// sendPDF uploads the PDF rendition as a second thread reply. A render
// failure only skips the PDF; the briefing itself already went out and
// must still be acknowledged. Write and upload failures propagate like
// the Markdown ones.
func (n *Notifier) sendPDF(ctx context.Context, day time.Time, snap domain.Snapshot, threadTS string) error {
	name := fmt.Sprintf("briefing-%s.pdf", day.Format("2006-01-02"))

	raw, err := n.renderer.PDF(day, snap)
	if err != nil {
		n.warn("pdf generation failed, skipping pdf upload", "error", err)
		return nil
	}

	path := filepath.Join(n.outDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write briefing pdf: %w", err)
	}

	if err := n.uploadFile(ctx, path, name, threadTS); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	n.info("pdf briefing uploaded", "file", name)

	return nil
}

func (n *Notifier) postMessage(ctx context.Context, day time.Time, snap domain.Snapshot) (string, error) {
	body, err := n.api(ctx, "chat.postMessage", map[string]any{
		"channel": n.channelID,
		"text":    n.renderer.Title(day),
		"blocks":  n.renderer.Blocks(day, snap),
	}, nil)
	if err != nil {
		return "", err
	}

	ts, _ := body["ts"].(string)
	if ts == "" {
		return "", fmt.Errorf("chat.postMessage response missing ts")
	}
	return ts, nil
}

func (n *Notifier) writeMarkdown(day time.Time, snap domain.Snapshot, name string) (string, error) {
	if err := os.MkdirAll(n.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}
	path := filepath.Join(n.outDir, name)
	if err := os.WriteFile(path, []byte(n.renderer.Markdown(day, snap)), 0o644); err != nil {
		return "", fmt.Errorf("write briefing markdown: %w", err)
	}
	return path, nil
}

// uploadFile runs the external upload flow: obtain a presigned URL, POST
// the content, then complete the upload into the channel thread.
func (n *Notifier) uploadFile(ctx context.Context, path, title, threadTS string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	form := url.Values{}
	form.Set("filename", filepath.Base(path))
	form.Set("length", strconv.Itoa(len(raw)))
	body, err := n.api(ctx, "files.getUploadURLExternal", nil, form)
	if err != nil {
		return err
	}

	uploadURL, _ := body["upload_url"].(string)
	fileID, _ := body["file_id"].(string)
	if uploadURL == "" || fileID == "" {
		return fmt.Errorf("files.getUploadURLExternal response missing upload_url or file_id")
	}

	if err := n.post(ctx, uploadURL, raw); err != nil {
		return err
	}

	complete := map[string]any{
		"files":      []map[string]string{{"id": fileID, "title": title}},
		"channel_id": n.channelID,
	}
	if threadTS != "" {
		complete["thread_ts"] = threadTS
	}
	if _, err := n.api(ctx, "files.completeUploadExternal", complete, nil); err != nil {
		return err
	}
	return nil
}

// api calls one Web API method, JSON-encoded unless a form is given, and
// treats ok:false as an error. Token values never appear in errors.
func (n *Notifier) api(ctx context.Context, method string, jsonBody any, form url.Values) (map[string]any, error) {
	endpoint := n.apiBase + "/" + method

	var req *http.Request
	var err error
	if form != nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		var payload []byte
		payload, err = json.Marshal(jsonBody)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", method, err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err == nil {
			req.Header.Set("Content-Type", "application/json; charset=utf-8")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+n.botToken)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", method, resp.Status)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}

	if ok, _ := body["ok"].(bool); !ok {
		apiErr, _ := body["error"].(string)
		if apiErr == "" {
			apiErr = "unknown_error"
		}
		return nil, fmt.Errorf("slack api %s failed: %s", method, apiErr)
	}

	return body, nil
}

// post sends raw bytes to a presigned upload URL.
func (n *Notifier) post(ctx context.Context, target string, raw []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload returned %s", resp.Status)
	}
	return nil
}

func (n *Notifier) info(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Info(msg, args...)
	}
}

func (n *Notifier) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
