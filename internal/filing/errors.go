package filing

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/clients"
	"github.com/MGhunch/dot-file/internal/folders"
	"github.com/MGhunch/dot-file/pkg/docstore"
)

var (
	ErrInvalidRequest    = errors.New("invalid filing request")
	ErrAmbiguousFolder   = errors.New("job folder not uniquely matched")
	ErrJobFolderNotFound = fmt.Errorf("%w: no folder found", ErrAmbiguousFolder)
	ErrFileMove          = errors.New("file move failed")
	ErrTrackingUpdate    = errors.New("tracking update failed")
	ErrSiteNotFound      = errors.New("document root not found")
	ErrDocumentStore     = errors.New("document store unavailable")
)

// Error kinds reported on a Result.
const (
	KindInvalidRequest   = "InvalidRequestError"
	KindLookup           = "LookupError"
	KindAmbiguousFolder  = "AmbiguousFolderError"
	KindClassification   = "ClassificationError"
	KindFolderResolution = "FolderResolutionError"
	KindFileMove         = "FileMoveError"
	KindTrackingUpdate   = "TrackingUpdateError"
	KindDocumentStore    = "DocumentStoreError"
	KindInternal         = "InternalError"
)

// Kind names the error taxonomy entry for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, clients.ErrNotFound), errors.Is(err, ErrSiteNotFound):
		return KindLookup
	case errors.Is(err, ErrAmbiguousFolder):
		return KindAmbiguousFolder
	case errors.Is(err, classification.ErrClassification):
		return KindClassification
	case errors.Is(err, folders.ErrFolderResolution):
		return KindFolderResolution
	case errors.Is(err, ErrFileMove):
		return KindFileMove
	case errors.Is(err, ErrTrackingUpdate):
		return KindTrackingUpdate
	case errors.Is(err, ErrDocumentStore), errors.Is(err, docstore.ErrTransient):
		return KindDocumentStore
	}
	return KindInternal
}

// MapHTTPStatus maps filing errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, clients.ErrNotFound), errors.Is(err, ErrSiteNotFound), errors.Is(err, ErrJobFolderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAmbiguousFolder):
		return http.StatusConflict
	}
	return http.StatusBadGateway
}
