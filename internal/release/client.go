package release

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-github/v62/github"

	"github.com/microclaw/microclaw-install/internal/logging"
)

const (
	// DefaultUserAgent identifies the installer to the release API.
	DefaultUserAgent = "microclaw-installer"
	// DefaultTimeout bounds a single metadata request.
	DefaultTimeout = 30 * time.Second
)

// Client fetches release metadata from the GitHub REST API.
type Client struct {
	gh     *github.Client
	logger logging.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string
	// Token is sent as a bearer token when set.
	Token string
	// HTTPClient is used instead of a default client with DefaultTimeout.
	HTTPClient *http.Client
	Logger     logging.Logger
}

// NewClient creates a release client.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	gh := github.NewClient(httpClient)
	gh.UserAgent = DefaultUserAgent
	if opts.Token != "" {
		gh = gh.WithAuthToken(opts.Token)
	}

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse API base URL: %w", err)
		}
		gh.BaseURL = u
	}

	return &Client{gh: gh, logger: logging.OrNoop(opts.Logger)}, nil
}

// Latest fetches the latest published release of repo ("owner/name").
func (c *Client) Latest(ctx context.Context, repo string) (*Release, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReleaseLookupFailed, err)
	}

	c.logger.Debug("fetching latest release", "repo", repo)

	rel, _, err := c.gh.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReleaseLookupFailed, repo, err)
	}

	result := &Release{
		Repo:   repo,
		Tag:    rel.GetTagName(),
		Name:   rel.GetName(),
		Assets: make([]Asset, 0, len(rel.Assets)),
	}

	if result.Tag != "" {
		v, err := semver.NewVersion(result.Tag)
		if err != nil {
			c.logger.Warn("release tag is not a semantic version", "tag", result.Tag, "error", err)
		} else {
			result.Version = v
		}
	}

	for _, a := range rel.Assets {
		result.Assets = append(result.Assets, Asset{
			Name: a.GetName(),
			URL:  a.GetBrowserDownloadURL(),
			Size: int64(a.GetSize()),
		})
	}

	c.logger.Debug("release found", "repo", repo, "tag", result.Tag, "assets", len(result.Assets))
	return result, nil
}
