package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/MGhunch/dot-file/pkg/lifecycle"
)

// folderMarker is the empty blob that makes a virtual folder visible in listings.
const folderMarker = ".folder"

// Azure stores the hierarchy in one blob container. Each site is a top-level
// virtual directory and folders are blob name prefixes.
type Azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// NewAzure validates the connection string and builds the client. No request
// is made until Start.
func NewAzure(cfg *AzureConfig, logger *slog.Logger) (*Azure, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}
	return &Azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "docstore", "backend", BackendAzure),
	}, nil
}

func (a *Azure) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("docstore", func(ctx context.Context) error {
		_, err := a.client.CreateContainer(ctx, a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("container initialization failed", "error", err)
			return fmt.Errorf("create container %s: %w", a.container, err)
		}
		a.logger.Info("container ready", "container", a.container)
		return nil
	})
	return nil
}

func (a *Azure) ListFolders(ctx context.Context, folder Location) ([]Item, error) {
	if err := validate(folder); err != nil {
		return nil, err
	}

	prefix := blobKey(folder) + "/"
	pager := a.client.ServiceClient().
		NewContainerClient(a.container).
		NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{Prefix: &prefix})

	var items []Item
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, mapBlobError(err))
		}
		for _, p := range resp.Segment.BlobPrefixes {
			if p.Name == nil {
				continue
			}
			name := strings.TrimSuffix(strings.TrimPrefix(*p.Name, prefix), "/")
			items = append(items, Item{
				Name:     name,
				Location: folder.Child(name),
				WebURL:   a.url(folder.Child(name)),
			})
		}
	}
	return items, nil
}

func (a *Azure) CreateFolder(ctx context.Context, parent Location, name string) (Item, error) {
	if err := validate(parent); err != nil {
		return Item{}, err
	}

	child := parent.Child(name)
	etagAny := azcore.ETagAny
	opts := &azblob.UploadBufferOptions{
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfNoneMatch: &etagAny},
		},
	}

	_, err := a.client.UploadBuffer(ctx, a.container, blobKey(child.Child(folderMarker)), []byte{}, opts)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
			return Item{}, fmt.Errorf("create %s: %w", child, ErrConflict)
		}
		return Item{}, fmt.Errorf("create %s: %w", child, mapBlobError(err))
	}

	return Item{Name: name, Location: child, WebURL: a.url(child)}, nil
}

func (a *Azure) Move(ctx context.Context, file, folder Location) error {
	if err := validate(file); err != nil {
		return err
	}
	if err := validate(folder); err != nil {
		return err
	}

	src := blobKey(file)
	dst := blobKey(folder.Child(file.Name()))

	resp, err := a.client.DownloadStream(ctx, a.container, src, nil)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, mapBlobError(err))
	}
	defer resp.Body.Close()

	var opts *azblob.UploadStreamOptions
	if resp.ContentType != nil {
		opts = &azblob.UploadStreamOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: resp.ContentType},
		}
	}
	if _, err := a.client.UploadStream(ctx, a.container, dst, resp.Body, opts); err != nil {
		return fmt.Errorf("copy %s: %w", file, mapBlobError(err))
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, src, nil); err != nil {
		a.logger.Warn("source not removed after copy", "file", file.String(), "error", err)
	}
	return nil
}

func (a *Azure) Write(ctx context.Context, file Location, data []byte, contentType string) error {
	if err := validate(file); err != nil {
		return err
	}

	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	}
	if _, err := a.client.UploadBuffer(ctx, a.container, blobKey(file), data, opts); err != nil {
		return fmt.Errorf("write %s: %w", file, mapBlobError(err))
	}
	return nil
}

func (a *Azure) url(l Location) string {
	return strings.TrimSuffix(a.client.URL(), "/") + "/" + a.container + "/" + blobKey(l)
}

func blobKey(l Location) string {
	return Join(l.Site, l.Path)
}

func mapBlobError(err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var re *azcore.ResponseError
	if errors.As(err, &re) {
		if re.StatusCode == http.StatusTooManyRequests || re.StatusCode >= 500 {
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
	}
	return err
}
