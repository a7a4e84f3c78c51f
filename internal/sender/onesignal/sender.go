package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"PushRelay/internal/domain"
	"github.com/wb-go/wbf/zlog"
)

const (
	// DefaultBaseURL адрес REST API OneSignal.
	DefaultBaseURL = "https://onesignal.com/api/v1"

	// AddressingExternalUserID адресация через include_external_user_ids.
	AddressingExternalUserID = "external_user_id"
	// AddressingAlias адресация через include_aliases.external_id.
	AddressingAlias = "alias"

	maxPriority      = 10
	maxResponseBytes = 1 << 20
	defaultTimeout   = 10 * time.Second
)

// Config параметры подключения к OneSignal.
type Config struct {
	BaseURL    string
	AppID      string
	APIKey     string
	AuthScheme string
	Addressing string
	Locales    []string
	Timeout    time.Duration
}

// Sender отправляет уведомления через OneSignal REST API.
type Sender struct {
	cfg    Config
	client *http.Client
}

// NewSender создает новый экземпляр Sender.
func NewSender(cfg Config) *Sender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Basic"
	}
	if cfg.Addressing == "" {
		cfg.Addressing = AddressingExternalUserID
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = []string{"en"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type createNotificationRequest struct {
	AppID                  string                 `json:"app_id"`
	IncludeExternalUserIDs []string               `json:"include_external_user_ids,omitempty"`
	IncludeAliases         map[string][]string    `json:"include_aliases,omitempty"`
	TargetChannel          string                 `json:"target_channel,omitempty"`
	Headings               map[string]string      `json:"headings"`
	Contents               map[string]string      `json:"contents"`
	Data                   map[string]interface{} `json:"data"`
	Priority               int                    `json:"priority"`
	IsIOS                  bool                   `json:"isIos"`
	IsAndroid              bool                   `json:"isAndroid"`
}

type createNotificationResponse struct {
	ID   string `json:"id"`
	Body struct {
		NotificationID string `json:"notification_id"`
	} `json:"body"`
	Errors json.RawMessage `json:"errors"`
}

// Send отправляет одно уведомление. Повторные попытки не выполняются.
func (s *Sender) Send(ctx context.Context, msg *domain.PushMessage) (string, error) {
	payload, err := json.Marshal(s.buildRequest(msg))
	if err != nil {
		return "", fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/notifications", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", s.cfg.AuthScheme+" "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("onesignal request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read onesignal response: %w", err)
	}
	zlog.Logger.Debug().Int("status_code", resp.StatusCode).Str("user_id", msg.RecipientID).
		Msg("onesignal response received")

	return interpretResponse(resp.StatusCode, raw)
}

func (s *Sender) buildRequest(msg *domain.PushMessage) createNotificationRequest {
	headings := make(map[string]string, len(s.cfg.Locales))
	contents := make(map[string]string, len(s.cfg.Locales))
	for _, locale := range s.cfg.Locales {
		headings[locale] = msg.Title
		contents[locale] = msg.Body
	}

	data := msg.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	body := createNotificationRequest{
		AppID:     s.cfg.AppID,
		Headings:  headings,
		Contents:  contents,
		Data:      data,
		Priority:  maxPriority,
		IsIOS:     true,
		IsAndroid: true,
	}
	if s.cfg.Addressing == AddressingAlias {
		body.IncludeAliases = map[string][]string{"external_id": {msg.RecipientID}}
		body.TargetChannel = "push"
	} else {
		body.IncludeExternalUserIDs = []string{msg.RecipientID}
	}
	return body
}

// interpretResponse переводит ответ OneSignal в идентификатор или ошибку.
func interpretResponse(status int, raw []byte) (string, error) {
	var parsed createNotificationResponse
	parseErr := json.Unmarshal(raw, &parsed)
	ok := status >= 200 && status < 300

	if parseErr != nil {
		if ok {
			return "", fmt.Errorf("decode onesignal response: %w", parseErr)
		}
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = http.StatusText(status)
		}
		return "", &domain.ProviderError{StatusCode: status, Errors: []string{detail}}
	}

	errs := flattenErrors(parsed.Errors)
	if !ok || len(errs) > 0 {
		if len(errs) == 0 {
			errs = []string{http.StatusText(status)}
		}
		return "", &domain.ProviderError{StatusCode: status, Errors: errs}
	}

	if parsed.ID != "" {
		return parsed.ID, nil
	}
	return parsed.Body.NotificationID, nil
}

// flattenErrors приводит поле errors к списку строк.
// OneSignal отдает либо массив строк, либо объект вида {"invalid_external_user_ids": [...]}.
func flattenErrors(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []interface{}
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, stringify(v))
		}
		return out
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, k+": "+stringify(obj[k]))
		}
		return out
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	return []string{string(raw)}
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
