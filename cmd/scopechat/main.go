package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"scopechat/internal/chat"
	"scopechat/internal/config"
	"scopechat/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "scopechat:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.DebugLog)
	if err != nil {
		return err
	}
	defer log.Sync()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	httpClient := &http.Client{Jar: jar, Timeout: cfg.Timeout}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	gate := chat.NewGate(cfg.ServerURL, httpClient)
	identity, err := gate.Authenticate(ctx)
	if errors.Is(err, chat.ErrUnauthenticated) && cfg.Username != "" {
		if err := login(ctx, httpClient, cfg.ServerURL, cfg.Username, cfg.Password); err != nil {
			return err
		}
		identity, err = gate.Authenticate(ctx)
	}
	if err != nil {
		return fmt.Errorf("no session; set SCOPECHAT_USERNAME and SCOPECHAT_PASSWORD: %w", err)
	}

	header, err := cookieHeader(jar, cfg.ServerURL)
	if err != nil {
		return err
	}
	stream, err := chat.DialStream(ctx, wsEndpoint(cfg.ServerURL), header, log)
	if err != nil {
		return err
	}
	defer stream.Close()

	session := chat.NewSession(identity)
	history := chat.NewHistoryLoader(cfg.ServerURL, httpClient, cfg.HistoryLimit)
	renderer := ui.NewProgramRenderer()
	client := chat.NewClient(session, stream, history, renderer, cfg.Timeout, log)
	client.Notify = renderer.NotifyError

	if err := client.Announce(ctx); err != nil {
		return err
	}

	dir := chat.NewDirectory(cfg.ServerURL, httpClient, identity)
	program := tea.NewProgram(ui.New(client, dir, identity), tea.WithAltScreen())
	renderer.Attach(program)
	go client.Run()

	_, err = program.Run()
	return err
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

// login establishes the cookie session the rest of the client rides on.
func login(ctx context.Context, client *http.Client, base, username, password string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login rejected for %q", username)
	}
	return nil
}

// cookieHeader copies the session cookie out of the jar for the
// websocket handshake, which does not go through the http.Client.
func cookieHeader(jar http.CookieJar, base string) (http.Header, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	pairs := make([]string, 0, 1)
	for _, c := range jar.Cookies(u) {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	header := http.Header{}
	if len(pairs) > 0 {
		header.Set("Cookie", strings.Join(pairs, "; "))
	}
	return header, nil
}

func wsEndpoint(base string) string {
	ws := strings.Replace(base, "http://", "ws://", 1)
	ws = strings.Replace(ws, "https://", "wss://", 1)
	return ws + "/ws"
}
