// Package github is a small client for the GitHub REST API endpoints used to
// import profile data and publish the generated README.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://api.github.com"

	defaultTimeout = 30 * time.Second
	languageBatch  = 10
	batchPause     = time.Second
	readmePath     = "README.md"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GitHub API error: %d %s", e.Code, http.StatusText(e.Code))
}

// Observer receives one call per API request. op is a short operation name
// ("get_user", "put_readme"); result is "ok" or "error".
type Observer interface {
	ObserveGitHubRequest(op, result string)
}

// Client talks to the GitHub REST API. Requests are not retried: a failed
// call is returned to the caller once.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	observer   Observer
	batchPause time.Duration
	logger     *slog.Logger
}

// NewClient creates a client for api.github.com. token may be empty for
// unauthenticated reads.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		batchPause: batchPause,
		logger:     slog.Default(),
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for
// testing and GitHub Enterprise).
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SetObserver installs o to be notified of every request.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// GetUser fetches a user's public profile.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	var u User
	if err := c.get(ctx, "get_user", "/users/"+url.PathEscape(username), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserRepos lists a user's repositories sorted by stars.
func (c *Client) GetUserRepos(ctx context.Context, username string, perPage int) ([]Repo, error) {
	endpoint := fmt.Sprintf("/users/%s/repos?sort=stars&per_page=%d", url.PathEscape(username), perPage)
	var repos []Repo
	if err := c.get(ctx, "get_repos", endpoint, &repos); err != nil {
		return nil, err
	}
	if repos == nil {
		return []Repo{}, nil
	}
	return repos, nil
}

// GetRepoLanguages returns bytes of code per language for one repository.
func (c *Client) GetRepoLanguages(ctx context.Context, username, repo string) (map[string]int64, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/languages", url.PathEscape(username), url.PathEscape(repo))
	langs := map[string]int64{}
	if err := c.get(ctx, "get_languages", endpoint, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// GetUserLanguageStats aggregates languages over all of a user's
// repositories that declare a primary language. Repositories are fetched in
// batches of ten, concurrently within a batch, with a pause between batches
// to stay clear of rate limits. A repository whose languages cannot be
// fetched is logged and skipped.
func (c *Client) GetUserLanguageStats(ctx context.Context, username string) (map[string]LanguageStat, error) {
	repos, err := c.GetUserRepos(ctx, username, 100)
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		stats = map[string]LanguageStat{}
	)
	for start := 0; start < len(repos); start += languageBatch {
		end := min(start+languageBatch, len(repos))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(languageBatch)
		for _, repo := range repos[start:end] {
			if repo.Language == "" {
				continue
			}
			g.Go(func() error {
				langs, err := c.GetRepoLanguages(gctx, username, repo.Name)
				if err != nil {
					c.logger.Warn("fetching repo languages failed", "repo", repo.Name, "error", err)
					return nil
				}
				mu.Lock()
				defer mu.Unlock()
				for lang, n := range langs {
					st := stats[lang]
					st.Count++
					st.Bytes += n
					stats[lang] = st
				}
				return nil
			})
		}
		_ = g.Wait()

		if end < len(repos) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.batchPause):
			}
		}
	}
	return stats, nil
}

// GetGist fetches a gist by id.
func (c *Client) GetGist(ctx context.Context, id string) (*Gist, error) {
	var g Gist
	if err := c.get(ctx, "get_gist", "/gists/"+url.PathEscape(id), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateOrUpdateReadme writes content to README.md of the user's profile
// repository ({username}/{username}), updating the existing file when one
// is present. token overrides the client's token. Failures are logged and
// reported as false.
func (c *Client) CreateOrUpdateReadme(ctx context.Context, username, content, token string) bool {
	if err := c.putReadme(ctx, username, content, token); err != nil {
		c.logger.Error("publishing README failed", "username", username, "error", err)
		return false
	}
	return true
}

func (c *Client) putReadme(ctx context.Context, username, content, token string) error {
	if token == "" {
		token = c.token
	}
	user := url.PathEscape(username)
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", user, user, readmePath)

	// A missing file is the create case; any error reading it is treated
	// the same way.
	var existing contentResponse
	if err := c.do(ctx, "get_readme", http.MethodGet, endpoint, token, nil, &existing); err != nil {
		existing.SHA = ""
	}

	body := putContentRequest{
		Message: "Create README.md via README Pro",
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		SHA:     existing.SHA,
	}
	if existing.SHA != "" {
		body.Message = "Update README.md via README Pro"
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	return c.do(ctx, "put_readme", http.MethodPut, endpoint, token, payload, nil)
}

func (c *Client) get(ctx context.Context, op, endpoint string, out any) error {
	return c.do(ctx, op, http.MethodGet, endpoint, c.token, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, endpoint, token string, body []byte, out any) (err error) {
	defer func() { c.observe(op, err) }()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, rdr)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	setHeaders(req, token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) observe(op string, err error) {
	if c.observer == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.observer.ObserveGitHubRequest(op, result)
}

func setHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}
}
