package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"golang.org/x/sync/singleflight"

	"github.com/MGhunch/dot-file/pkg/lifecycle"
)

// Graph is a SharePoint document library reached through Microsoft Graph.
// Sites are Graph site ids; paths are relative to the site's default drive root.
type Graph struct {
	baseURL      string
	scope        string
	cred         azcore.TokenCredential
	pipeline     runtime.Pipeline
	monitor      runtime.Pipeline
	pollInterval time.Duration
	logger       *slog.Logger

	mu     sync.RWMutex
	drives map[string]string
	group  singleflight.Group
}

// NewGraph authenticates with an app-registration client secret.
func NewGraph(cfg *GraphConfig, logger *slog.Logger) (*Graph, error) {
	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("create graph credential: %w", err)
	}
	return NewGraphWithCredential(cfg, cred, &http.Client{Timeout: 60 * time.Second}, logger), nil
}

// NewGraphWithCredential builds a Graph backend around an existing credential
// and HTTP client. Requests carry a bearer token for cfg.Scope and are retried
// by the azcore retry policy on throttling and server errors.
func NewGraphWithCredential(cfg *GraphConfig, cred azcore.TokenCredential, client *http.Client, logger *slog.Logger) *Graph {
	opts := &policy.ClientOptions{
		Transport: client,
		Retry: policy.RetryOptions{
			MaxRetries: int32(cfg.MaxRetries),
			RetryDelay: cfg.RetryDelayDuration(),
		},
	}
	auth := runtime.NewBearerTokenPolicy(cred, []string{cfg.Scope}, nil)

	poll := cfg.CopyPollIntervalDuration()
	if poll <= 0 {
		poll = time.Second
	}

	return &Graph{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		scope:    cfg.Scope,
		cred:     cred,
		pipeline: runtime.NewPipeline(graphModule, graphVersion, runtime.PipelineOptions{PerRetry: []policy.Policy{auth}}, opts),
		// copy monitor urls are pre-authenticated and reject a bearer token
		monitor:      runtime.NewPipeline(graphModule, graphVersion, runtime.PipelineOptions{}, opts),
		pollInterval: poll,
		logger:       logger.With("system", "docstore", "backend", BackendGraph),
		drives:       make(map[string]string),
	}
}

const (
	graphModule  = "dotfile/docstore"
	graphVersion = "v1.0.0"
)

type driveItem struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	WebURL          string    `json:"webUrl"`
	Folder          *struct{} `json:"folder,omitempty"`
	ParentReference *struct {
		DriveID string `json:"driveId"`
	} `json:"parentReference,omitempty"`
}

// copyStatus is the body of an async copy monitor.
type copyStatus struct {
	Status     string `json:"status"`
	ResourceID string `json:"resourceId"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type itemPage struct {
	Value    []driveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

func (g *Graph) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("docstore", func(ctx context.Context) error {
		if _, err := g.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{g.scope}}); err != nil {
			g.logger.Error("graph token acquisition failed", "error", err)
			return fmt.Errorf("acquire graph token: %w", err)
		}
		g.logger.Info("graph credential ready")
		return nil
	})
	return nil
}

func (g *Graph) ListFolders(ctx context.Context, folder Location) ([]Item, error) {
	if err := validate(folder); err != nil {
		return nil, err
	}

	var items []Item
	next := g.itemEndpoint(folder, "children")
	for next != "" {
		var page itemPage
		if _, err := g.do(ctx, http.MethodGet, next, nil, "", &page); err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, err)
		}
		for _, it := range page.Value {
			if it.Folder == nil {
				continue
			}
			items = append(items, Item{
				Name:     it.Name,
				Location: folder.Child(it.Name),
				WebURL:   it.WebURL,
			})
		}
		next = page.NextLink
	}
	return items, nil
}

func (g *Graph) CreateFolder(ctx context.Context, parent Location, name string) (Item, error) {
	if err := validate(parent); err != nil {
		return Item{}, err
	}

	body := map[string]any{
		"name":                              name,
		"folder":                            map[string]any{},
		"@microsoft.graph.conflictBehavior": "fail",
	}

	var created driveItem
	if _, err := g.do(ctx, http.MethodPost, g.itemEndpoint(parent, "children"), body, "", &created); err != nil {
		return Item{}, fmt.Errorf("create %s in %s: %w", name, parent, err)
	}

	return Item{
		Name:     created.Name,
		Location: parent.Child(created.Name),
		WebURL:   created.WebURL,
	}, nil
}

func (g *Graph) Move(ctx context.Context, file, folder Location) error {
	if err := validate(file); err != nil {
		return err
	}
	if err := validate(folder); err != nil {
		return err
	}

	var dest driveItem
	if _, err := g.do(ctx, http.MethodGet, g.itemEndpoint(folder, ""), nil, "", &dest); err != nil {
		return fmt.Errorf("resolve %s: %w", folder, err)
	}

	if file.Site == folder.Site {
		body := map[string]any{"parentReference": map[string]string{"id": dest.ID}}
		if _, err := g.do(ctx, http.MethodPatch, g.itemEndpoint(file, ""), body, "", nil); err != nil {
			return fmt.Errorf("move %s: %w", file, err)
		}
		return nil
	}

	driveID, err := g.driveID(ctx, folder.Site)
	if err != nil {
		return fmt.Errorf("move %s: %w", file, err)
	}

	body := map[string]any{
		"parentReference": map[string]string{"driveId": driveID, "id": dest.ID},
	}
	resp, err := g.do(ctx, http.MethodPost, g.itemEndpoint(file, "copy"), body, "", nil)
	if err != nil {
		return fmt.Errorf("copy %s: %w", file, err)
	}

	// the source is removed only once the copy has landed
	if err := g.awaitCopy(ctx, resp.Header.Get("Location")); err != nil {
		g.logger.Warn("cross-site copy not confirmed, source kept", "file", file.String(), "error", err)
		return fmt.Errorf("copy %s: %w", file, err)
	}

	if _, err := g.do(ctx, http.MethodDelete, g.itemEndpoint(file, ""), nil, "", nil); err != nil {
		g.logger.Warn("source not removed after cross-site copy", "file", file.String(), "error", err)
	}
	return nil
}

func (g *Graph) Write(ctx context.Context, file Location, data []byte, contentType string) error {
	if err := validate(file); err != nil {
		return err
	}
	if _, err := g.do(ctx, http.MethodPut, g.itemEndpoint(file, "content"), data, contentType, nil); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

func (g *Graph) driveID(ctx context.Context, site string) (string, error) {
	g.mu.RLock()
	id, ok := g.drives[site]
	g.mu.RUnlock()
	if ok {
		return id, nil
	}

	v, err, _ := g.group.Do(site, func() (any, error) {
		var drive struct {
			ID string `json:"id"`
		}
		endpoint := fmt.Sprintf("%s/sites/%s/drive", g.baseURL, url.PathEscape(site))
		if _, err := g.do(ctx, http.MethodGet, endpoint, nil, "", &drive); err != nil {
			return "", fmt.Errorf("resolve drive for site %s: %w", site, err)
		}

		g.mu.Lock()
		g.drives[site] = drive.ID
		g.mu.Unlock()
		return drive.ID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// itemEndpoint addresses l by path. action is appended after the path
// (children, content, copy) or omitted for the item itself.
func (g *Graph) itemEndpoint(l Location, action string) string {
	base := fmt.Sprintf("%s/sites/%s/drive/root", g.baseURL, url.PathEscape(l.Site))
	p := Join(l.Path)

	switch {
	case p == "" && action == "":
		return base
	case p == "":
		return base + "/" + action
	case action == "":
		return base + ":/" + escapePath(p)
	default:
		return base + ":/" + escapePath(p) + ":/" + action
	}
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// awaitCopy polls the monitor url returned by an async copy until Graph
// reports the copy completed, failed, or ctx ends.
func (g *Graph) awaitCopy(ctx context.Context, monitor string) error {
	if monitor == "" {
		return errors.New("copy accepted without a monitor url")
	}

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		req, err := runtime.NewRequest(ctx, http.MethodGet, monitor)
		if err != nil {
			return fmt.Errorf("build monitor request: %w", err)
		}

		var status copyStatus
		if _, err := g.send(ctx, g.monitor, req, &status); err != nil {
			return fmt.Errorf("poll copy monitor: %w", err)
		}

		switch status.Status {
		case "completed":
			return nil
		case "failed":
			if status.Error != nil {
				return fmt.Errorf("copy failed: %s: %s", status.Error.Code, status.Error.Message)
			}
			return errors.New("copy failed")
		case "":
			if status.ResourceID != "" {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("copy still %s: %w", status.Status, ctx.Err())
		case <-ticker.C:
		}
	}
}

// do sends one authenticated request. Raw []byte bodies are sent as-is with
// contentType; any other non-nil body is JSON encoded. out, when non-nil,
// receives the decoded JSON response.
func (g *Graph) do(ctx context.Context, method, endpoint string, body any, contentType string, out any) (*http.Response, error) {
	req, err := runtime.NewRequest(ctx, method, endpoint)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	switch b := body.(type) {
	case nil:
	case []byte:
		if err := req.SetBody(streaming.NopCloser(bytes.NewReader(b)), contentType); err != nil {
			return nil, fmt.Errorf("set body: %w", err)
		}
	default:
		if err := runtime.MarshalAsJSON(req, b); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	return g.send(ctx, g.pipeline, req, out)
}

// send runs req through pl and maps failures onto the package sentinels.
// Unsuccessful responses surface as *azcore.ResponseError.
func (g *Graph) send(ctx context.Context, pl runtime.Pipeline, req *policy.Request, out any) (*http.Response, error) {
	resp, err := pl.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var authErr *azidentity.AuthenticationFailedError
		if errors.As(err, &authErr) {
			return nil, fmt.Errorf("acquire token: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransient, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return resp, mapGraphError(runtime.NewResponseError(resp))
	}

	if out == nil {
		runtime.Drain(resp)
		return resp, nil
	}
	if err := runtime.UnmarshalAsJSON(resp, out); err != nil {
		return resp, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

func mapGraphError(err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if sentinel := statusError(respErr.StatusCode); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
	}
	return err
}
