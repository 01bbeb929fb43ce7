package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"evidence-agent/transcript"
)

// transcriptionResponse mirrors the verbose_json schema of OpenAI-compatible
// /v1/audio/transcriptions endpoints (whisper.cpp, llama.cpp server).
type transcriptionResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe sends an audio file for transcription and returns the result as
// timestamp-marked text, one "[MM:SS] utterance" line per segment, ready for
// the sanitizer. When the server returns no per-segment timing, the bare
// text is returned and the sanitizer's fallback path takes over.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy audio into request: %w", err)
	}
	_ = writer.WriteField("model", c.cfg.TranscriptionModel)
	_ = writer.WriteField("response_format", "verbose_json")
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/audio/transcriptions", strings.TrimRight(c.cfg.LLMHost, "/"))

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body.Bytes()))
		if err != nil {
			return "", fmt.Errorf("create transcription request: %w", err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, lastErr = c.httpClient.Do(req)
		if lastErr != nil {
			if ctx.Err() != nil {
				break
			}
			c.backoffSleep(attempt)
			continue
		}
		if resp.StatusCode == http.StatusServiceUnavailable {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			resp = nil
			c.backoffSleep(attempt)
			continue
		}
		break
	}
	if resp == nil {
		return "", fmt.Errorf("no response from transcription server: %w", lastErr)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription server status %s: %s", resp.Status, string(bodyBytes))
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(bodyBytes, &tr); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	if len(tr.Segments) == 0 {
		return tr.Text, nil
	}

	var out strings.Builder
	for _, seg := range tr.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out.WriteString(fmt.Sprintf("[%s] %s\n", transcript.FormatSeconds(int(seg.Start)), text))
	}
	return out.String(), nil
}
