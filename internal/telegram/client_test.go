package telegram

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTestAudio создаёт аудиофайл во временной директории.
func writeTestAudio(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("ошибка записи тестового файла: %v", err)
	}
	return path
}

// TestSendAudio проверяет путь запроса, поля формы и содержимое файла.
func TestSendAudio(t *testing.T) {
	var (
		gotPath   string
		gotChatID string
		gotTitle  string
		gotName   string
		gotData   []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ошибка разбора формы: %v", err)
		}
		gotChatID = r.FormValue("chat_id")
		gotTitle = r.FormValue("title")

		f, header, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("поле audio отсутствует: %v", err)
		} else {
			gotName = header.Filename
			gotData, _ = io.ReadAll(f)
			f.Close()
		}

		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-token", "chat-42", testLogger())
	path := writeTestAudio(t, "ABC")

	if err := c.SendAudio(context.Background(), path, "airhorn"); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if gotPath != "/bottest-token/sendAudio" {
		t.Errorf("неожиданный путь запроса: %s", gotPath)
	}
	if gotChatID != "chat-42" {
		t.Errorf("chat_id: ожидалось chat-42, получено %s", gotChatID)
	}
	if gotTitle != "airhorn" {
		t.Errorf("title: ожидалось airhorn, получено %s", gotTitle)
	}
	if gotName != "airhorn" {
		t.Errorf("имя файла: ожидалось airhorn, получено %s", gotName)
	}
	if string(gotData) != "ABC" {
		t.Errorf("содержимое файла: ожидалось ABC, получено %q", gotData)
	}
}

// TestSendAudio_APIError проверяет, что отказ Bot API превращается
// в ошибку с его описанием.
func TestSendAudio_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-token", "chat-42", testLogger())
	path := writeTestAudio(t, "ABC")

	err := c.SendAudio(context.Background(), path, "airhorn")
	if err == nil {
		t.Fatal("ожидалась ошибка Bot API")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("ошибка должна содержать описание Bot API: %v", err)
	}
}

// TestSendAudio_MissingFile проверяет ошибку при отсутствующем файле.
func TestSendAudio_MissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("запрос не должен был отправляться")
	}))
	defer srv.Close()

	c := New(srv.URL, "test-token", "chat-42", testLogger())
	if err := c.SendAudio(context.Background(), "/nonexistent/clip.mp3", "airhorn"); err == nil {
		t.Error("ожидалась ошибка открытия файла")
	}
}
