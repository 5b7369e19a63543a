// Package telegram checks bot credentials against the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	// ErrInvalidToken means the Bot API answered and rejected the token.
	ErrInvalidToken = errors.New("telegram: invalid bot token")

	// ErrUnreachable covers transport failures, timeouts and answers that
	// could not be decoded.
	ErrUnreachable = errors.New("telegram: bot api unreachable")
)

// Identity is the bot account a token belongs to.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	IsBot     bool
}

// Verifier resolves a bot token to its identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// BotVerifier calls getMe through the Bot API client.
type BotVerifier struct {
	endpoint string
	client   *http.Client
}

// NewBotVerifier builds a verifier against endpoint, a format string with
// two %s verbs for token and method (tgbotapi.APIEndpoint when empty).
// Every call is cut off after timeout.
func NewBotVerifier(endpoint string, timeout time.Duration) *BotVerifier {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &BotVerifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (v *BotVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, v.endpoint, contextClient{ctx: ctx, client: v.client})
	if err != nil {
		return Identity{}, classify(err, token)
	}
	return Identity{
		ID:        bot.Self.ID,
		Username:  bot.Self.UserName,
		FirstName: bot.Self.FirstName,
		IsBot:     bot.Self.IsBot,
	}, nil
}

func classify(err error, token string) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s", ErrInvalidToken, redact(apiErr.Message, token))
	}
	var apiErrValue tgbotapi.Error
	if errors.As(err, &apiErrValue) {
		return fmt.Errorf("%w: %s", ErrInvalidToken, redact(apiErrValue.Message, token))
	}
	// The request URL embeds the token; keep only the operation and cause.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %s: %s", ErrUnreachable, urlErr.Op, redact(urlErr.Err.Error(), token))
	}
	return fmt.Errorf("%w: %s", ErrUnreachable, redact(err.Error(), token))
}

func redact(msg, token string) string {
	if token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, token, "<redacted>")
}

// contextClient binds the caller's context to requests the Bot API client
// builds without one.
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}
