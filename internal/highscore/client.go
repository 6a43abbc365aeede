package highscore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const defaultTimeout = 10 * time.Second

// Client talks to the remote leaderboard service. Scores live under {baseURL}/{gameKey}.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			ReadTimeout:     defaultTimeout,
			WriteTimeout:    defaultTimeout,
			MaxConnsPerHost: 16,
		},
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type topResponse struct {
	Items []entity.ScoreEntry `json:"items"`
}

// FetchTop returns the leaderboard for gameKey in the order the service ranks it.
func (that *Client) FetchTop(ctx context.Context, gameKey string) ([]entity.ScoreEntry, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(that.endpoint(gameKey))

	if err := that.do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("failed to fetch high scores: %w", err)
	}

	var top topResponse
	if err := json.Unmarshal(resp.Body(), &top); err != nil {
		return nil, fmt.Errorf("failed to decode high scores: %w", err)
	}

	return top.Items, nil
}

// PostScore submits a win for player. The score is the win timestamp in milliseconds.
func (that *Client) PostScore(ctx context.Context, gameKey, player string, timestampMillis int64) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	form := url.Values{}
	form.Set("player", player)
	form.Set("score", strconv.FormatInt(timestampMillis, 10))

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(that.endpoint(gameKey))
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(form.Encode())

	if err := that.do(ctx, req, resp); err != nil {
		return fmt.Errorf("failed to post score: %w", err)
	}

	return nil
}

func (that *Client) endpoint(gameKey string) string {
	return that.baseURL + "/" + url.PathEscape(gameKey)
}

func (that *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := that.http.DoDeadline(req, resp, that.deadline(ctx)); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return fmt.Errorf("%w: status=%d body=%s", apperror.ErrHighScoreStatus, status, truncate(string(resp.Body()), 256))
	}

	return nil
}

func (that *Client) deadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(that.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}

	return clientDL
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
