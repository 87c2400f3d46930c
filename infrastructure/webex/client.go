package webex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/sony/gobreaker"

	"github.com/alexmorbo/bttn-relay/domain/button"
	"github.com/alexmorbo/bttn-relay/domain/remote"
	"github.com/alexmorbo/bttn-relay/domain/room"
	"github.com/alexmorbo/bttn-relay/pkg/breaker"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

const serviceName = "webex"

const (
	opListRooms     = "list_rooms"
	opCreateRoom    = "create_room"
	opDeleteRoom    = "delete_room"
	opAddMembership = "add_membership"
	opPostMessage   = "post_message"
)

func apiCalls(operation, status string) *metrics.Counter {
	return metrics.GetOrCreateCounter(`webex_api_calls_total{operation="` + operation + `",status="` + status + `"}`)
}

func apiDuration(operation string) *metrics.Histogram {
	return metrics.GetOrCreateHistogram(`webex_api_duration_seconds{operation="` + operation + `"}`)
}

type Client struct {
	baseURL         string
	token           string
	attachmentsRoot string
	httpClient      *http.Client
	breaker         *gobreaker.CircuitBreaker
	logger          *slog.Logger
}

func NewClient(baseURL, token, attachmentsRoot string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL:         baseURL,
		token:           token,
		attachmentsRoot: attachmentsRoot,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: breaker.New(serviceName, log),
		logger:  log,
	}
}

type roomsResponse struct {
	Items []roomItem `json:"items"`
}

type roomItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type createRoomRequest struct {
	Title string `json:"title"`
}

type membershipRequest struct {
	RoomID      string `json:"roomId"`
	PersonEmail string `json:"personEmail"`
	IsModerator bool   `json:"isModerator"`
}

type textMessageRequest struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

func (c *Client) ListRooms(ctx context.Context) ([]room.Room, error) {
	var result roomsResponse
	if err := c.call(ctx, opListRooms, http.MethodGet, c.baseURL+"/rooms", nil, "", &result); err != nil {
		return nil, err
	}

	rooms := make([]room.Room, 0, len(result.Items))
	for _, item := range result.Items {
		rooms = append(rooms, room.Room{ID: item.ID, Title: item.Title})
	}
	return rooms, nil
}

func (c *Client) CreateRoom(ctx context.Context, title string) (room.Room, error) {
	body, err := json.Marshal(createRoomRequest{Title: title})
	if err != nil {
		return room.Room{}, fmt.Errorf("marshal room body: %w", err)
	}

	var result roomItem
	if err := c.call(ctx, opCreateRoom, http.MethodPost, c.baseURL+"/rooms", body, "application/json", &result); err != nil {
		return room.Room{}, err
	}
	return room.Room{ID: result.ID, Title: result.Title}, nil
}

func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	reqURL := c.baseURL + "/rooms/" + url.PathEscape(roomID)
	return c.call(ctx, opDeleteRoom, http.MethodDelete, reqURL, nil, "", nil)
}

func (c *Client) AddMembership(ctx context.Context, roomID, personEmail string, moderator bool) error {
	body, err := json.Marshal(membershipRequest{
		RoomID:      roomID,
		PersonEmail: personEmail,
		IsModerator: moderator,
	})
	if err != nil {
		return fmt.Errorf("marshal membership body: %w", err)
	}
	return c.call(ctx, opAddMembership, http.MethodPost, c.baseURL+"/memberships", body, "application/json", nil)
}

// PostMessage sends plain updates as JSON and anything carrying markdown or
// a file as multipart form data.
func (c *Client) PostMessage(ctx context.Context, roomID string, update button.Update) error {
	reqURL := c.baseURL + "/messages"

	if update.IsPlain() {
		body, err := json.Marshal(textMessageRequest{RoomID: roomID, Text: update.Text})
		if err != nil {
			return fmt.Errorf("marshal message body: %w", err)
		}
		return c.call(ctx, opPostMessage, http.MethodPost, reqURL, body, "application/json", nil)
	}

	body, contentType, err := c.multipartMessage(roomID, update)
	if err != nil {
		return err
	}
	return c.call(ctx, opPostMessage, http.MethodPost, reqURL, body, contentType, nil)
}

func (c *Client) multipartMessage(roomID string, update button.Update) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"roomId", roomID},
		{"text", update.Text},
		{"markdown", update.Markdown},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", f.name, err)
		}
	}

	if update.File != nil {
		if err := c.writeFile(w, update.File); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) writeFile(w *multipart.Writer, file *button.FileSpec) error {
	path := filepath.Join(c.attachmentsRoot, filepath.Clean(file.Path))
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer func() { _ = f.Close() }()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, file.Label))
	header.Set("Content-Type", file.MimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy attachment: %w", err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, operation, method, reqURL string, body []byte, contentType string, out any) error {
	_, err := breaker.Execute(c.breaker, serviceName, operation, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, operation, method, reqURL, body, contentType, out)
	})
	if err != nil {
		apiCalls(operation, "error").Inc()
	}
	return err
}

func (c *Client) do(ctx context.Context, operation, method, reqURL string, body []byte, contentType string, out any) error {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Webex request failed",
			logger.ExternalFields(serviceName, operation, method, 0, time.Since(start), err.Error()),
		)
		return remote.Transport(serviceName, operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Webex request non-2xx",
			logger.ExternalFields(serviceName, operation, method, resp.StatusCode, elapsed, string(respBody)),
		)
		return &remote.APIError{
			Service:    serviceName,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
	}

	c.logger.Debug("Webex request completed",
		logger.ExternalFields(serviceName, operation, method, resp.StatusCode, elapsed, ""),
	)
	apiCalls(operation, "ok").Inc()
	apiDuration(operation).Update(elapsed.Seconds())

	return nil
}
