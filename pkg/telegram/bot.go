package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Bot is the Telegram Bot API client.
type Bot struct {
	token      string
	apiURL     string
	fileURL    string
	httpClient *http.Client
}

// NewBot creates a new Telegram Bot client with the given token.
func NewBot(token string) *Bot {
	return &Bot{
		token:      token,
		apiURL:     fmt.Sprintf("https://api.telegram.org/bot%s", token),
		fileURL:    fmt.Sprintf("https://api.telegram.org/file/bot%s", token),
		httpClient: &http.Client{},
	}
}

// SetAPIURL overrides the default Telegram API URLs for testing purposes.
func (b *Bot) SetAPIURL(url string) {
	b.apiURL = url
	b.fileURL = url + "/file"
}

// SetWebhook registers the webhook URL with Telegram. A non-empty
// secretToken makes Telegram echo it back in the
// X-Telegram-Bot-Api-Secret-Token header of every update.
func (b *Bot) SetWebhook(webhookURL, secretToken string) error {
	payload := map[string]string{"url": webhookURL}
	if secretToken != "" {
		payload["secret_token"] = secretToken
	}

	var apiResp APIResponse
	if err := b.call("setWebhook", payload, &apiResp); err != nil {
		return err
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram setWebhook failed: %s", apiResp.Description)
	}
	return nil
}

// SendMessage sends a plain text message to a Telegram chat and returns the
// sent message (its ID is needed for later edits).
func (b *Bot) SendMessage(chatID int64, text string) (*Message, error) {
	return b.sendMessage(SendMessageRequest{ChatID: chatID, Text: text})
}

// SendMessageWithMode sends a message with a parse mode (e.g. "Markdown").
func (b *Bot) SendMessageWithMode(chatID int64, text, parseMode string) (*Message, error) {
	return b.sendMessage(SendMessageRequest{ChatID: chatID, Text: text, ParseMode: parseMode})
}

// SendMessageWithKeyboard sends a message with an inline keyboard attached.
func (b *Bot) SendMessageWithKeyboard(chatID int64, text, parseMode string, keyboard *InlineKeyboardMarkup) (*Message, error) {
	return b.sendMessage(SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: keyboard,
	})
}

func (b *Bot) sendMessage(req SendMessageRequest) (*Message, error) {
	var apiResp MessageResponse
	if err := b.call("sendMessage", req, &apiResp); err != nil {
		return nil, err
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("telegram sendMessage failed: %s", apiResp.Description)
	}
	return apiResp.Result, nil
}

// EditMessageText replaces the text (and keyboard) of a previously sent
// message.
func (b *Bot) EditMessageText(chatID, messageID int64, text, parseMode string, keyboard *InlineKeyboardMarkup) error {
	req := EditMessageRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: keyboard,
	}

	var apiResp APIResponse
	if err := b.call("editMessageText", req, &apiResp); err != nil {
		return err
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram editMessageText failed: %s", apiResp.Description)
	}
	return nil
}

// AnswerCallbackQuery acknowledges an inline button press, optionally with a
// short notification text.
func (b *Bot) AnswerCallbackQuery(callbackID, text string) error {
	payload := map[string]string{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}

	var apiResp APIResponse
	if err := b.call("answerCallbackQuery", payload, &apiResp); err != nil {
		return err
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram answerCallbackQuery failed: %s", apiResp.Description)
	}
	return nil
}

// GetFile resolves a file_id into a downloadable file path.
func (b *Bot) GetFile(fileID string) (*File, error) {
	var apiResp FileResponse
	if err := b.call("getFile", map[string]string{"file_id": fileID}, &apiResp); err != nil {
		return nil, err
	}
	if !apiResp.OK || apiResp.Result == nil {
		return nil, fmt.Errorf("telegram getFile failed: %s", apiResp.Description)
	}
	return apiResp.Result, nil
}

// DownloadFile fetches the raw bytes of a file previously resolved with
// GetFile.
func (b *Bot) DownloadFile(filePath string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", b.fileURL, filePath)

	resp, err := b.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download telegram file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("telegram file download error %d: %s", resp.StatusCode, string(raw))
	}

	return io.ReadAll(resp.Body)
}

// call posts a JSON payload to a Bot API method and decodes the response.
func (b *Bot) call(method string, payload, out any) error {
	url := fmt.Sprintf("%s/%s", b.apiURL, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	resp, err := b.httpClient.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to call telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode telegram %s response: %w", method, err)
	}
	return nil
}
