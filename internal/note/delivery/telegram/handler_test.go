package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/note"
	"obsidian-inbox-bot/internal/note/delivery/telegram"
	"obsidian-inbox-bot/internal/session"
	"obsidian-inbox-bot/pkg/extraction"
	pkgTelegram "obsidian-inbox-bot/pkg/telegram"
)

const (
	allowedUserID = int64(456)
	testChatID    = int64(123)
	webhookSecret = "hook-secret"
)

// ── Mocks ──────────────────────────────────────────────────────────────────

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...interface{})                 {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...interface{}) {}
func (m *mockLogger) Info(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Error(ctx context.Context, args ...interface{})                 {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...interface{}) {}
func (m *mockLogger) Fatal(ctx context.Context, args ...interface{})                 {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...interface{}) {}

// mockNoteUseCase implements note.UseCase over a shared session store so
// the handler's edit-mode plumbing works like in production.
type mockNoteUseCase struct {
	sessions *session.Store

	ingestResult extraction.Result
	ingestSaved  *model.NoteRef
	ingestErr    error
	saveRef      model.NoteRef
	saveErr      error

	mu         sync.Mutex
	lastIngest note.IngestInput
	approves   int
	rawSaves   int
}

func (m *mockNoteUseCase) Ingest(ctx context.Context, sc model.Scope, input note.IngestInput) (note.IngestOutput, error) {
	m.mu.Lock()
	m.lastIngest = input
	m.mu.Unlock()

	if m.ingestErr != nil {
		return note.IngestOutput{}, m.ingestErr
	}
	if m.ingestSaved != nil {
		return note.IngestOutput{Text: input.Text, Saved: m.ingestSaved}, nil
	}

	sess := m.sessions.Start(sc.UserID, sc.ChatID, input.Text)
	sess.Result = m.ingestResult
	m.sessions.Put(sess)

	return note.IngestOutput{SessionID: sess.ID, Result: m.ingestResult, Text: input.Text}, nil
}

func (m *mockNoteUseCase) Approve(ctx context.Context, sc model.Scope) (note.SaveOutput, error) {
	if m.saveErr != nil {
		return note.SaveOutput{}, m.saveErr
	}
	if _, ok := m.sessions.Get(sc.UserID); !ok {
		return note.SaveOutput{}, note.ErrNoSession
	}
	m.mu.Lock()
	m.approves++
	m.mu.Unlock()
	m.sessions.Delete(sc.UserID)
	return note.SaveOutput{Ref: m.saveRef}, nil
}

func (m *mockNoteUseCase) SaveRaw(ctx context.Context, sc model.Scope) (note.SaveOutput, error) {
	if _, ok := m.sessions.Get(sc.UserID); !ok {
		return note.SaveOutput{}, note.ErrNoSession
	}
	m.mu.Lock()
	m.rawSaves++
	m.mu.Unlock()
	m.sessions.Delete(sc.UserID)
	return note.SaveOutput{Ref: m.saveRef}, nil
}

func (m *mockNoteUseCase) Regenerate(ctx context.Context, sc model.Scope) (note.IngestOutput, error) {
	sess, ok := m.sessions.Get(sc.UserID)
	if !ok {
		return note.IngestOutput{}, note.ErrNoSession
	}
	sess.Result = m.ingestResult
	m.sessions.Put(sess)
	return note.IngestOutput{SessionID: sess.ID, Result: sess.Result, Text: sess.OriginalText}, nil
}

func (m *mockNoteUseCase) ApplyEdit(ctx context.Context, sc model.Scope, field session.EditField, text string) (note.IngestOutput, error) {
	sess, ok := m.sessions.Get(sc.UserID)
	if !ok {
		return note.IngestOutput{}, note.ErrNoSession
	}
	if field == session.EditSummary {
		sess.Result.Summary = text
	}
	sess.Edited = true
	m.sessions.Put(sess)
	m.sessions.ClearEditMode(sc.UserID)
	return note.IngestOutput{SessionID: sess.ID, Result: sess.Result, Text: sess.OriginalText}, nil
}

func (m *mockNoteUseCase) Session(sc model.Scope) (*session.Session, bool) {
	return m.sessions.Get(sc.UserID)
}

// ── Test Helpers ───────────────────────────────────────────────────────────

type botCall struct {
	method  string
	payload map[string]interface{}
}

type testEnv struct {
	engine   *gin.Engine
	muc      *mockNoteUseCase
	sessions *session.Store

	mu    sync.Mutex
	calls []botCall
}

func (e *testEnv) callList() []botCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]botCall(nil), e.calls...)
}

func (e *testEnv) waitForCalls(method string, atLeast int, timeout time.Duration) []botCall {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var matched []botCall
		for _, c := range e.callList() {
			if c.method == method {
				matched = append(matched, c)
			}
		}
		if len(matched) >= atLeast {
			return matched
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func newTestEnv(t *testing.T) (*testEnv, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{}

	tgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/file/") {
			w.Write([]byte("audio-bytes"))
			return
		}

		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)

		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		env.mu.Lock()
		env.calls = append(env.calls, botCall{method: method, payload: payload})
		env.mu.Unlock()

		switch method {
		case "getFile":
			w.Write([]byte(`{"ok":true,"result":{"file_id":"voice-1","file_path":"voice/file_1.oga"}}`))
		case "sendMessage":
			w.Write([]byte(`{"ok":true,"result":{"message_id":777,"chat":{"id":123}}}`))
		default:
			w.Write([]byte(`{"ok":true}`))
		}
	}))

	sessions := session.NewStore(time.Minute)
	muc := &mockNoteUseCase{
		sessions: sessions,
		ingestResult: extraction.Result{
			Summary:     "Тестовое резюме",
			Tags:        []string{"test"},
			ActionItems: []extraction.ActionItem{{Text: "задача", Date: "tomorrow"}},
			Success:     true,
		},
		saveRef: model.NoteRef{Filename: "2026-02-17.md", Message: "✅ Added to 2026-02-17.md"},
	}

	bot := pkgTelegram.NewBot("test-token")
	bot.SetAPIURL(tgServer.URL)

	engine := gin.New()
	h := telegram.New(&mockLogger{}, muc, bot, sessions, telegram.Config{
		AllowedUserID: allowedUserID,
		WebhookSecret: webhookSecret,
		InboxPath:     "00_Inbox",
	})
	engine.POST("/webhook/telegram", h.HandleWebhook)

	env.engine = engine
	env.muc = muc
	env.sessions = sessions
	return env, tgServer
}

func postUpdate(engine *gin.Engine, update pkgTelegram.Update, secret string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(update)
	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func textUpdate(userID int64, text string) pkgTelegram.Update {
	return pkgTelegram.Update{
		UpdateID: 1,
		Message: &pkgTelegram.Message{
			MessageID: 1,
			Chat:      &pkgTelegram.Chat{ID: testChatID},
			From:      &pkgTelegram.User{ID: userID, Username: "tester"},
			Text:      text,
		},
	}
}

func callbackUpdate(userID int64, data string) pkgTelegram.Update {
	return pkgTelegram.Update{
		UpdateID: 2,
		CallbackQuery: &pkgTelegram.CallbackQuery{
			ID:   "cb-1",
			From: &pkgTelegram.User{ID: userID, Username: "tester"},
			Message: &pkgTelegram.Message{
				MessageID: 777,
				Chat:      &pkgTelegram.Chat{ID: testChatID},
			},
			Data: data,
		},
	}
}

func payloadText(c botCall) string {
	text, _ := c.payload["text"].(string)
	return text
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestHandleWebhookInvalidJSON(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString("{bad json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", webhookSecret)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleWebhookSecretMismatch(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	w := postUpdate(env.engine, textUpdate(allowedUserID, "заметка"), "wrong-secret")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestHandleWebhookIgnoresNonMessageUpdates(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	w := postUpdate(env.engine, pkgTelegram.Update{UpdateID: 9}, webhookSecret)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ignored") {
		t.Errorf("expected ignored status, got %s", w.Body.String())
	}
}

func TestUnauthorizedUserIsIgnored(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	w := postUpdate(env.engine, textUpdate(999, "заметка"), webhookSecret)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	time.Sleep(50 * time.Millisecond)
	if calls := env.callList(); len(calls) != 0 {
		t.Errorf("expected no bot calls for unauthorized user, got %v", calls)
	}
}

func TestStartCommand(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	postUpdate(env.engine, textUpdate(allowedUserID, "/start"), webhookSecret)

	calls := env.waitForCalls("sendMessage", 1, time.Second)
	if calls == nil {
		t.Fatal("expected a welcome message")
	}
	if !strings.Contains(payloadText(calls[0]), "Привет") {
		t.Errorf("unexpected welcome text: %s", payloadText(calls[0]))
	}
}

func TestTextMessageSendsPreview(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	postUpdate(env.engine, textUpdate(allowedUserID, "Завтра купить молоко"), webhookSecret)

	calls := env.waitForCalls("sendMessage", 1, time.Second)
	if calls == nil {
		t.Fatal("expected a preview message")
	}

	text := payloadText(calls[0])
	if !strings.Contains(text, "Smart Processing завершена") {
		t.Errorf("expected preview header, got: %s", text)
	}
	if !strings.Contains(text, "Тестовое резюме") {
		t.Errorf("expected summary in preview, got: %s", text)
	}
	if calls[0].payload["reply_markup"] == nil {
		t.Error("expected inline keyboard on the preview")
	}

	// Session remembers the preview message for later edits.
	sess, ok := env.sessions.Get(allowedUserID)
	if !ok {
		t.Fatal("expected an open session")
	}
	if sess.MessageID != 777 {
		t.Errorf("expected preview message id recorded, got %d", sess.MessageID)
	}
}

func TestRawSaveConfirmationWhenProcessingDisabled(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	env.muc.ingestSaved = &model.NoteRef{Message: "✅ Created 2026-02-17.md"}

	postUpdate(env.engine, textUpdate(allowedUserID, "просто заметка"), webhookSecret)

	calls := env.waitForCalls("sendMessage", 1, time.Second)
	if calls == nil {
		t.Fatal("expected a confirmation message")
	}
	if payloadText(calls[0]) != "✅ Created 2026-02-17.md" {
		t.Errorf("unexpected confirmation: %s", payloadText(calls[0]))
	}
}

func TestApproveCallback(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	postUpdate(env.engine, textUpdate(allowedUserID, "заметка"), webhookSecret)
	env.waitForCalls("sendMessage", 1, time.Second)

	postUpdate(env.engine, callbackUpdate(allowedUserID, "approve"), webhookSecret)

	answers := env.waitForCalls("answerCallbackQuery", 1, time.Second)
	if answers == nil {
		t.Fatal("expected the callback to be answered")
	}
	if !strings.Contains(payloadText(answers[0]), "Сохраняю") {
		t.Errorf("unexpected answer text: %s", payloadText(answers[0]))
	}

	edits := env.waitForCalls("editMessageText", 1, time.Second)
	if edits == nil {
		t.Fatal("expected the preview to be edited with the result")
	}
	if payloadText(edits[0]) != "✅ Added to 2026-02-17.md" {
		t.Errorf("unexpected result text: %s", payloadText(edits[0]))
	}

	env.muc.mu.Lock()
	approves := env.muc.approves
	env.muc.mu.Unlock()
	if approves != 1 {
		t.Errorf("expected 1 approve, got %d", approves)
	}
}

func TestCallbackWithoutSession(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	postUpdate(env.engine, callbackUpdate(allowedUserID, "approve"), webhookSecret)

	answers := env.waitForCalls("answerCallbackQuery", 1, time.Second)
	if answers == nil {
		t.Fatal("expected the callback to be answered")
	}
	if !strings.Contains(payloadText(answers[0]), "Сессия истекла") {
		t.Errorf("expected session-expired answer, got: %s", payloadText(answers[0]))
	}
}

func TestEditSummaryFlow(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	postUpdate(env.engine, textUpdate(allowedUserID, "заметка"), webhookSecret)
	env.waitForCalls("sendMessage", 1, time.Second)

	// Tapping the edit button arms edit mode and sends the prompt.
	postUpdate(env.engine, callbackUpdate(allowedUserID, "edit_summary"), webhookSecret)
	prompts := env.waitForCalls("sendMessage", 2, time.Second)
	if prompts == nil {
		t.Fatal("expected the edit prompt")
	}
	if !strings.Contains(payloadText(prompts[1]), "Редактирование резюме") {
		t.Errorf("unexpected prompt: %s", payloadText(prompts[1]))
	}
	if _, ok := env.sessions.EditMode(allowedUserID); !ok {
		t.Fatal("expected edit mode to be armed")
	}

	// The next text message is the new summary.
	postUpdate(env.engine, textUpdate(allowedUserID, "Новое резюме"), webhookSecret)
	updated := env.waitForCalls("sendMessage", 3, time.Second)
	if updated == nil {
		t.Fatal("expected an updated preview")
	}
	if !strings.Contains(payloadText(updated[2]), "✅ Обновлено!") {
		t.Errorf("expected update confirmation, got: %s", payloadText(updated[2]))
	}
	if !strings.Contains(payloadText(updated[2]), "Новое резюме") {
		t.Errorf("expected the new summary in the preview, got: %s", payloadText(updated[2]))
	}

	if _, ok := env.sessions.EditMode(allowedUserID); ok {
		t.Error("edit mode must clear after the reply")
	}
}

func TestSaveRawCallback(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	postUpdate(env.engine, textUpdate(allowedUserID, "заметка"), webhookSecret)
	env.waitForCalls("sendMessage", 1, time.Second)

	postUpdate(env.engine, callbackUpdate(allowedUserID, "save_raw"), webhookSecret)

	answers := env.waitForCalls("answerCallbackQuery", 1, time.Second)
	if answers == nil {
		t.Fatal("expected the callback to be answered")
	}
	if !strings.Contains(payloadText(answers[0]), "без обработки") {
		t.Errorf("unexpected answer text: %s", payloadText(answers[0]))
	}

	env.muc.mu.Lock()
	rawSaves := env.muc.rawSaves
	env.muc.mu.Unlock()
	if rawSaves != 1 {
		t.Errorf("expected 1 raw save, got %d", rawSaves)
	}
}

func TestVoiceMessageDownloadsAndIngests(t *testing.T) {
	env, srv := newTestEnv(t)
	defer srv.Close()

	update := pkgTelegram.Update{
		UpdateID: 3,
		Message: &pkgTelegram.Message{
			MessageID: 5,
			Chat:      &pkgTelegram.Chat{ID: testChatID},
			From:      &pkgTelegram.User{ID: allowedUserID},
			Voice:     &pkgTelegram.Voice{FileID: "voice-1", Duration: 9},
		},
	}
	postUpdate(env.engine, update, webhookSecret)

	if calls := env.waitForCalls("getFile", 1, time.Second); calls == nil {
		t.Fatal("expected the voice file to be fetched")
	}
	env.waitForCalls("sendMessage", 1, time.Second)

	env.muc.mu.Lock()
	input := env.muc.lastIngest
	env.muc.mu.Unlock()

	if string(input.VoiceData) != "audio-bytes" {
		t.Errorf("expected downloaded audio bytes, got %q", input.VoiceData)
	}
	if input.VoiceDuration != 9 {
		t.Errorf("expected voice duration 9, got %d", input.VoiceDuration)
	}
}
