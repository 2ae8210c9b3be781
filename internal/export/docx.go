package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/rubrix/internal/question"
)

// ErrNoConverter means no document conversion endpoint is configured.
var ErrNoConverter = errors.New("no docx conversion endpoint configured (set export.docx_url or RUBRIX_EXPORT_DOCX_URL)")

// ConvertError is a non-2xx reply from the conversion service.
type ConvertError struct {
	Status int
	Body   string
}

func (e *ConvertError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("docx conversion failed: HTTP %d", e.Status)
	}
	return fmt.Sprintf("docx conversion failed: HTTP %d: %s", e.Status, e.Body)
}

type convertRequest struct {
	Markdown string `json:"markdown"`
	Format   string `json:"format"`
}

var docxClient = &http.Client{Timeout: 60 * time.Second}

// DOCX renders qs as Markdown and posts it to the conversion service at
// url, returning the Word document bytes.
func DOCX(ctx context.Context, url, title string, qs []question.Question, opts MarkdownOptions) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrNoConverter
	}

	body, err := json.Marshal(convertRequest{
		Markdown: Markdown(title, qs, opts),
		Format:   "docx",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build docx request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := docxClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call docx converter: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ConvertError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read docx response: %w", err)
	}
	return data, nil
}
