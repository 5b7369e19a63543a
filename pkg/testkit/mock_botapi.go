package testkit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// BotAPI is a fake Telegram Bot API server. Point the verifier at
// Endpoint() and program answers per scenario step with Load.
type BotAPI struct {
	srv *httptest.Server

	mu         sync.Mutex
	steps      []botMockEntry
	require    bool
	unexpected []string
}

type botMockEntry struct {
	step      MockStep
	callCount int
}

// NewBotAPI starts the fake. Call Close when done.
func NewBotAPI() *BotAPI {
	b := &BotAPI{}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// Endpoint is a format string with token and method verbs, the shape the
// Bot API client expects.
func (b *BotAPI) Endpoint() string { return b.srv.URL + "/bot%s/%s" }

func (b *BotAPI) Close() { b.srv.Close() }

// Load replaces the programmed answers with the steps of s.
func (b *BotAPI) Load(s *Scenario) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.steps = b.steps[:0]
	for _, step := range s.BotAPIMockStep {
		b.steps = append(b.steps, botMockEntry{step: step})
	}
	b.require = s.IsMockRequired
	b.unexpected = nil
}

func (b *BotAPI) serve(w http.ResponseWriter, r *http.Request) {
	token, method, ok := splitBotPath(r.URL.Path)

	b.mu.Lock()
	defer b.mu.Unlock()

	if ok {
		for i := range b.steps {
			entry := &b.steps[i]
			if !strings.EqualFold(entry.step.Method, method) {
				continue
			}
			if entry.step.Token != "" && entry.step.Token != token {
				continue
			}
			entry.callCount++
			writeMock(w, entry.step.ReturnData)
			return
		}
	}

	if b.require {
		b.unexpected = append(b.unexpected, r.URL.Path)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
}

// AssertAllCalled reports steps that were never hit and, when mocks are
// required, calls that matched no step.
func (b *BotAPI) AssertAllCalled() []error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for _, e := range b.steps {
		if e.callCount == 0 {
			errs = append(errs, fmt.Errorf("testkit: bot api step %q (token=%q) was never called",
				e.step.Method, e.step.Token))
		}
	}
	for _, p := range b.unexpected {
		errs = append(errs, fmt.Errorf("testkit: unexpected bot api call to %s", p))
	}
	return errs
}

// splitBotPath parses "/bot<token>/<method>".
func splitBotPath(p string) (token, method string, ok bool) {
	rest, found := strings.CutPrefix(p, "/bot")
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, '/')
	if i < 0 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

func writeMock(w http.ResponseWriter, rd MockReturnData) {
	code := rd.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(rd.Body)
}
