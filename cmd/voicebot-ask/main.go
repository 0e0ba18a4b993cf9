// Voicebot-ask sends one question to a running voicebot and prints the
// reply the way the browser client would display it.
//
// Usage:
//
//	voicebot-ask -text "What do you build?"
//	voicebot-ask -audio question.webm
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nadzzz/voicebot/internal/audio"
	"github.com/nadzzz/voicebot/internal/message"
	"github.com/nadzzz/voicebot/internal/reply"
)

const noReply = "(no reply)"

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "voicebot base URL")
	text := flag.String("text", "", "question to ask")
	audioFile := flag.String("audio", "", "path to a recorded webm question")
	transcript := flag.String("transcript", "", "what the user said, shown when no reply is found")
	timeout := flag.Duration("timeout", 2*time.Minute, "request timeout")
	flag.Parse()

	req, err := buildRequest(*baseURL, *text, *audioFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	fallback := *transcript
	if fallback == "" {
		fallback = *text
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	out, err := ask(ctx, http.DefaultClient, req, fallback)
	if err != nil {
		slog.Error("ask failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// buildRequest prepares the POST for whichever of text or audioFile is set.
func buildRequest(baseURL, text, audioFile string) (*http.Request, error) {
	base := strings.TrimRight(baseURL, "/")

	switch {
	case text != "" && audioFile != "":
		return nil, errors.New("use either -text or -audio, not both")
	case text != "":
		body, err := json.Marshal(message.TextRequest{Text: text})
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		req, err := http.NewRequest(http.MethodPost, base+"/api/text", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	case audioFile != "":
		data, err := os.ReadFile(audioFile)
		if err != nil {
			return nil, fmt.Errorf("reading audio: %w", err)
		}
		uri := "data:" + audio.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(data)
		req, err := http.NewRequest(http.MethodPost, base+"/api/voice", strings.NewReader(uri))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain")
		return req, nil
	default:
		return nil, errors.New("one of -text or -audio is required")
	}
}

// ask sends req and resolves the display text. Only transport failures are
// errors; error bodies and unreadable JSON still resolve to something
// printable.
func ask(ctx context.Context, client *http.Client, req *http.Request, fallback string) (string, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		slog.Debug("response is not json", "status", resp.StatusCode)
		decoded = nil
	}

	if fallback == "" {
		if obj, ok := decoded.(map[string]any); ok {
			fallback, _ = obj["transcript"].(string)
		}
	}

	out := reply.Resolve(decoded, fallback)
	if out == "" {
		return noReply, nil
	}
	return out, nil
}
