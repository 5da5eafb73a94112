// Пакет telegram — минимальный клиент Telegram Bot API.
// Используется единственный метод sendAudio: отправка аудиофайла
// в заранее известный чат.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// Client — клиент Bot API для одного бота и одного чата.
// Конфигурация неизменяема после создания.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	chatID     string
	logger     *slog.Logger
}

// apiResponse — общий конверт ответа Bot API.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// New создаёт клиент. baseURL — обычно "https://api.telegram.org",
// в тестах подменяется на httptest-сервер.
func New(baseURL, token, chatID string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
		chatID:     chatID,
		logger:     logger.With(slog.String("component", "telegram")),
	}
}

// SendAudio отправляет файл path в настроенный чат как аудиовложение
// с видимым именем displayName.
func (c *Client) SendAudio(ctx context.Context, path, displayName string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer f.Close()

	// Тело запроса стримится через pipe, файл не буферизуется целиком
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeSendAudioForm(mw, f, c.chatID, displayName)
		if cErr := mw.Close(); err == nil {
			err = cErr
		}
		pw.CloseWithError(err)
	}()

	url := fmt.Sprintf("%s/bot%s/sendAudio", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса sendAudio: %w", err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("некорректный ответ Bot API (HTTP %d): %w", resp.StatusCode, err)
	}
	if !api.OK {
		return fmt.Errorf("Bot API отклонил sendAudio (HTTP %d): %s", resp.StatusCode, api.Description)
	}

	c.logger.Debug("Аудио отправлено в чат",
		slog.String("chat_id", c.chatID),
		slog.String("name", displayName),
	)
	return nil
}

// writeSendAudioForm записывает поля формы sendAudio.
func writeSendAudioForm(mw *multipart.Writer, f *os.File, chatID, displayName string) error {
	if err := mw.WriteField("chat_id", chatID); err != nil {
		return err
	}
	if err := mw.WriteField("title", displayName); err != nil {
		return err
	}

	part, err := mw.CreateFormFile("audio", displayName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("ошибка чтения файла: %w", err)
	}
	return nil
}
