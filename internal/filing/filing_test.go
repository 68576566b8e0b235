package filing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MGhunch/dot-file/internal/activity"
	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/clients"
	"github.com/MGhunch/dot-file/internal/filing"
	"github.com/MGhunch/dot-file/internal/projects"
	"github.com/MGhunch/dot-file/pkg/docstore"
	"github.com/MGhunch/dot-file/pkg/routes"
)

var (
	nzdt     = time.FixedZone("NZDT", 13*60*60)
	incoming = docstore.Location{Site: "hunch", Path: "Shared Documents/-- Incoming"}
	root     = docstore.Location{Site: "sky", Path: "Shared Documents"}
	jobDir   = root.Child("SKY 045 - Banner Campaign")
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClients map[string]clients.Client

func (f fakeClients) Find(ctx context.Context, code string) (*clients.Client, error) {
	c, ok := f[strings.ToUpper(code)]
	if !ok {
		return nil, clients.ErrNotFound
	}
	return &c, nil
}

type fakeTracker struct {
	mu           sync.Mutex
	project      projects.Project
	missing      bool
	updates      []projects.UpdateCommand
	beforeUpdate func(p *projects.Project)
	updateErr    error
}

func (f *fakeTracker) Find(ctx context.Context, key string) (*projects.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing {
		return nil, projects.ErrNotFound
	}
	if key != f.project.ID.String() && !strings.EqualFold(key, f.project.JobNumber) {
		return nil, projects.ErrNotFound
	}
	p := f.project
	return &p, nil
}

func (f *fakeTracker) Update(ctx context.Context, id uuid.UUID, cmd projects.UpdateCommand) (*projects.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, cmd)

	if f.beforeUpdate != nil {
		f.beforeUpdate(&f.project)
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != f.project.Version {
		return nil, projects.ErrVersionConflict
	}
	if cmd.Round != nil {
		f.project.Round = *cmd.Round
	}
	if cmd.LastFiledTo != nil {
		f.project.LastFiledTo = *cmd.LastFiledTo
	}
	if cmd.LatestFolderURL != nil {
		f.project.LatestFolderURL = *cmd.LatestFolderURL
	}
	f.project.Version++
	p := f.project
	return &p, nil
}

type fakeActivity struct {
	entries []activity.Entry
	err     error
}

func (f *fakeActivity) Record(ctx context.Context, e activity.Entry) error {
	f.entries = append(f.entries, e)
	return f.err
}

type failingWrites struct {
	*docstore.Memory
}

func (f failingWrites) Write(ctx context.Context, file docstore.Location, data []byte, contentType string) error {
	return docstore.ErrTransient
}

type failingLists struct {
	*docstore.Memory
}

func (f failingLists) ListFolders(ctx context.Context, folder docstore.Location) ([]docstore.Item, error) {
	return nil, fmt.Errorf("list %s: %w", folder, docstore.ErrTransient)
}

type linkedFolders struct {
	*docstore.Memory
}

func (f linkedFolders) CreateFolder(ctx context.Context, parent docstore.Location, name string) (docstore.Item, error) {
	item, err := f.Memory.CreateFolder(ctx, parent, name)
	if err == nil {
		item.WebURL = "https://hunch.sharepoint.com/" + item.Location.Path
	}
	return item, err
}

type blockingInferer struct{}

func (blockingInferer) Infer(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type fixture struct {
	store    *docstore.Memory
	tracker  *fakeTracker
	activity *fakeActivity
	deps     filing.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := docstore.NewMemory()
	store.AddFolder(jobDir)
	store.AddFolder(root.Child("TEL 012 - Rebrand"))
	store.AddFolder(incoming)

	tracker := &fakeTracker{project: projects.Project{
		ID:          uuid.New(),
		JobNumber:   "SKY 045",
		ClientCode:  "SKY",
		Round:       2,
		LastFiledTo: classification.Feedback,
		Version:     5,
	}}
	log := &fakeActivity{}

	model := classification.NewModelClassifier(blockingInferer{}, 20*time.Millisecond, discard())
	return &fixture{
		store:    store,
		tracker:  tracker,
		activity: log,
		deps: filing.Deps{
			Clients:    fakeClients{"SKY": {Code: "SKY", SiteID: root.Site, DocumentRoot: root.Path}},
			Tracker:    tracker,
			Store:      store,
			Classifier: classification.New(classification.DefaultPolicy(), model, discard()),
			Activity:   log,
		},
	}
}

func (f *fixture) system() filing.System {
	return filing.New(f.deps, filing.Settings{
		IncomingSite:    incoming.Site,
		IncomingPath:    incoming.Path,
		Location:        nzdt,
		LookupTimeout:   time.Second,
		DocstoreTimeout: time.Second,
		TrackingTimeout: time.Second,
	}, discard())
}

func (f *fixture) incoming(names ...string) {
	for _, n := range names {
		f.store.AddFile(incoming.Child(n), []byte(n))
	}
}

func feedbackRequest() filing.Request {
	return filing.Request{
		JobNumber:        "SKY 045",
		ClientCode:       "SKY",
		SenderName:       "Sarah Jones",
		SenderEmail:      "sarah@sky.co.nz",
		SubjectLine:      "Feedback on banners",
		EmailContent:     "<p>A few notes from the team below.</p>",
		AttachmentNames:  filing.Attachments{"notes.docx"},
		HasAttachments:   true,
		ReceivedDateTime: "2026-01-18T12:30:00Z",
		AllRecipients:    []string{"michael@hunch.co.nz"},
	}
}

func TestFileFeedbackFromClient(t *testing.T) {
	f := newFixture(t)
	f.incoming("notes.docx")

	res, err := f.system().File(context.Background(), feedbackRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.Filed)
	assert.Equal(t, filing.StateFiled, res.State)
	assert.Equal(t, "-- Feedback", res.Destination)
	assert.Equal(t, jobDir.Child("-- Feedback").Path, res.DestPath)
	assert.Nil(t, res.RoundNumber)
	assert.Equal(t, []string{"notes.docx", "Email from Sarah - 19 Jan 2026.eml"}, res.FilesMoved)
	require.NotNil(t, res.Classification)
	assert.Equal(t, classification.Feedback, res.Classification.Category)
	assert.Empty(t, res.ErrorKind)

	assert.Equal(t, []string{"Email from Sarah - 19 Jan 2026.eml", "notes.docx"}, f.store.Files(jobDir.Child("-- Feedback")))
	assert.Empty(t, f.store.Files(incoming))

	require.Len(t, f.tracker.updates, 1)
	assert.Nil(t, f.tracker.updates[0].ExpectedVersion)
	assert.Equal(t, classification.Feedback, f.tracker.project.LastFiledTo)
	assert.Equal(t, 2, f.tracker.project.Round)

	require.Len(t, f.activity.entries, 1)
	assert.Equal(t, "filed", f.activity.entries[0].State)
	assert.Equal(t, res.FilesMoved, f.activity.entries[0].Files)
}

func TestFileOutgoingAllocatesNextRound(t *testing.T) {
	f := newFixture(t)
	f.incoming("SKY045_Banners_v2.pdf")

	req := filing.Request{
		JobNumber:        "SKY 045",
		ClientCode:       "SKY",
		SenderName:       "Michael",
		SenderEmail:      "michael@hunch.co.nz",
		SubjectLine:      "Banners",
		EmailContent:     "Hi Sarah, here's the latest.",
		AttachmentNames:  filing.Attachments{"SKY045_Banners_v2.pdf"},
		HasAttachments:   true,
		ReceivedDateTime: "2026-02-03T01:00:00Z",
		AllRecipients:    []string{"sarah@sky.co.nz"},
	}

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, res.Filed)
	assert.Equal(t, "-- Round 3", res.Destination)
	require.NotNil(t, res.RoundNumber)
	assert.Equal(t, 3, *res.RoundNumber)
	assert.Equal(t, classification.Round, res.Classification.Category)
	assert.Equal(t, 3, res.Classification.Round)

	require.Len(t, f.tracker.updates, 1, "the round claim is the only tracking write")
	claim := f.tracker.updates[0]
	require.NotNil(t, claim.ExpectedVersion)
	assert.Equal(t, 5, *claim.ExpectedVersion)
	assert.Equal(t, 3, f.tracker.project.Round)
	assert.Equal(t, classification.Round, f.tracker.project.LastFiledTo)
	assert.Equal(t, 6, f.tracker.project.Version)
}

func TestFileNewRoundClaimRecordsFolderURL(t *testing.T) {
	f := newFixture(t)
	f.deps.Store = linkedFolders{f.store}

	req := feedbackRequest()
	req.FolderType = "round"
	req.HasAttachments = false

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Filed)
	assert.Equal(t, "-- Round 3", res.Destination)

	want := "https://hunch.sharepoint.com/" + jobDir.Child("-- Round 3").Path
	assert.Equal(t, want, res.FolderURL)

	require.Len(t, f.tracker.updates, 1)
	claim := f.tracker.updates[0]
	require.NotNil(t, claim.ExpectedVersion)
	require.NotNil(t, claim.Round)
	assert.Equal(t, 3, *claim.Round)
	require.NotNil(t, claim.LatestFolderURL)
	assert.Equal(t, want, *claim.LatestFolderURL)
	assert.Equal(t, want, f.tracker.project.LatestFolderURL)
}

func TestFileRecordIDFallsBackToJobNumber(t *testing.T) {
	f := newFixture(t)
	f.incoming("SKY045_Banners_v2.pdf")

	req := filing.Request{
		JobNumber:        "SKY 045",
		ClientCode:       "SKY",
		ProjectRecordID:  "recAbc123",
		SenderName:       "Michael",
		SenderEmail:      "michael@hunch.co.nz",
		SubjectLine:      "Banners",
		EmailContent:     "Hi Sarah, here's the latest.",
		AttachmentNames:  filing.Attachments{"SKY045_Banners_v2.pdf"},
		HasAttachments:   true,
		ReceivedDateTime: "2026-02-03T01:00:00Z",
		AllRecipients:    []string{"sarah@sky.co.nz"},
	}

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, filing.StateFiled, res.State)
	assert.Equal(t, "-- Round 3", res.Destination)
	assert.Empty(t, res.ErrorKind)
	assert.Equal(t, 3, f.tracker.project.Round)
}

func TestFileRecordIDMatchesTracker(t *testing.T) {
	f := newFixture(t)

	req := feedbackRequest()
	req.ProjectRecordID = f.tracker.project.ID.String()
	req.HasAttachments = false

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, filing.StateFiled, res.State)
	assert.Empty(t, res.ErrorKind)
	require.Len(t, f.tracker.updates, 1)
}

func TestFileContinuingRoundReusesFolder(t *testing.T) {
	f := newFixture(t)
	f.tracker.project.Round = 3
	f.tracker.project.LastFiledTo = classification.Round
	f.store.AddFolder(jobDir.Child("-- Round 3"))
	f.incoming("deck.pptx")

	req := feedbackRequest()
	req.FolderType = "round"
	req.AttachmentNames = filing.Attachments{"deck.pptx"}

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "-- Round 3", res.Destination)
	assert.Equal(t, 0, f.store.Creates())
	for _, u := range f.tracker.updates {
		assert.Nil(t, u.ExpectedVersion, "no reservation write when the round is reused")
	}
}

func TestFileNewRoundForcesIncrement(t *testing.T) {
	f := newFixture(t)
	f.tracker.project.Round = 3
	f.tracker.project.LastFiledTo = classification.Round

	req := feedbackRequest()
	req.FolderType = "round"
	req.NewRound = true
	req.HasAttachments = false

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "-- Round 4", res.Destination)
}

func TestFileRoundConflictRetriesOnce(t *testing.T) {
	f := newFixture(t)
	raced := false
	f.tracker.beforeUpdate = func(p *projects.Project) {
		if raced {
			return
		}
		raced = true
		p.Round = 3
		p.LastFiledTo = classification.Round
		p.Version++
	}

	req := feedbackRequest()
	req.FolderType = "round"
	req.HasAttachments = false

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Filed)
	assert.Equal(t, "-- Round 3", res.Destination, "the racing writer's round is reused after re-reading")
}

func TestFileRoundConflictTwiceIsClassifiedOnly(t *testing.T) {
	f := newFixture(t)
	f.tracker.beforeUpdate = func(p *projects.Project) {
		p.Version++
	}
	f.incoming("notes.docx")

	req := feedbackRequest()
	req.FolderType = "round"

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Filed)
	assert.Equal(t, filing.StateClassifiedOnly, res.State)
	assert.Equal(t, filing.KindFolderResolution, res.ErrorKind)
	assert.Equal(t, classification.Round, res.Classification.Category)
	assert.Empty(t, res.FilesMoved)
	assert.Equal(t, []string{"notes.docx"}, f.store.Files(incoming), "no files touched")
}

func TestFileAmbiguousJobFolder(t *testing.T) {
	f := newFixture(t)
	f.store.AddFolder(root.Child("SKY 045 - Banner Campaign (old)"))
	f.incoming("notes.docx")

	res, err := f.system().File(context.Background(), feedbackRequest())
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.False(t, res.Filed)
	assert.Equal(t, filing.StateFailed, res.State)
	assert.Equal(t, filing.KindAmbiguousFolder, res.ErrorKind)
	assert.Empty(t, res.Destination)
	assert.Empty(t, res.FilesMoved)
	assert.Nil(t, res.Classification)
	assert.Equal(t, []string{"notes.docx"}, f.store.Files(incoming))
	assert.Equal(t, 0, f.store.Creates())
	assert.Empty(t, f.tracker.updates)
}

func TestFileFatalLookups(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *filing.Request)
		wantKind string
	}{
		{"unknown client", func(r *filing.Request) { r.ClientCode = "ABC" }, filing.KindLookup},
		{"no job folder", func(r *filing.Request) { r.JobNumber = "SKY 099" }, filing.KindAmbiguousFolder},
		{"prefix is not a job boundary", func(r *filing.Request) { r.JobNumber = "SKY 04" }, filing.KindAmbiguousFolder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := feedbackRequest()
			tt.mutate(&req)

			res, err := f.system().File(context.Background(), req)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, filing.StateFailed, res.State)
			assert.Equal(t, tt.wantKind, res.ErrorKind)
		})
	}
}

func TestFileModelTimeoutFilesToOther(t *testing.T) {
	f := newFixture(t)
	f.incoming("photo.jpg")

	req := filing.Request{
		JobNumber:        "SKY 045",
		ClientCode:       "SKY",
		SenderName:       "Michael",
		SenderEmail:      "michael@hunch.co.nz",
		SubjectLine:      "Shoot photos",
		EmailContent:     "From the shoot.",
		AttachmentNames:  filing.Attachments{"photo.jpg"},
		HasAttachments:   true,
		ReceivedDateTime: "2026-03-01T00:00:00Z",
		AllRecipients:    []string{"anna@hunch.co.nz"},
	}

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, res.Classification)
	assert.Equal(t, classification.Other, res.Classification.Category)
	assert.Equal(t, classification.Low, res.Classification.Confidence)
	assert.Equal(t, "classification unavailable", res.Classification.Reasoning)
	assert.True(t, res.Filed)
	assert.Equal(t, "-- Other", res.Destination)
	assert.Equal(t, filing.StateFiled, res.State)
	assert.Equal(t, filing.KindClassification, res.ErrorKind)
	assert.Contains(t, res.Error, "classification unavailable")
}

func TestFileMovesAreBestEffort(t *testing.T) {
	f := newFixture(t)
	f.incoming("a.pdf", "c.pdf")

	req := feedbackRequest()
	req.AttachmentNames = filing.Attachments{"a.pdf", "b.pdf", "c.pdf"}

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, res.Filed)
	assert.Equal(t, []string{"a.pdf", "c.pdf", "Email from Sarah - 19 Jan 2026.eml"}, res.FilesMoved)
	assert.Equal(t, filing.KindFileMove, res.ErrorKind)
	assert.Contains(t, res.Error, "b.pdf")
}

func TestFileEmailWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.incoming("notes.docx")
	f.deps.Store = failingWrites{f.store}

	res, err := f.system().File(context.Background(), feedbackRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Filed)
	assert.Equal(t, filing.StateClassifiedOnly, res.State)
	assert.Equal(t, []string{"notes.docx"}, res.FilesMoved)
	assert.Equal(t, filing.KindFileMove, res.ErrorKind)
}

func TestFileTrackingFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.tracker.updateErr = errors.New("database unavailable")
	f.activity.err = errors.New("database unavailable")

	req := feedbackRequest()
	req.HasAttachments = false

	res, err := f.system().File(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Filed)
	assert.Equal(t, filing.StateFiled, res.State)
	assert.Equal(t, filing.KindTrackingUpdate, res.ErrorKind)
	assert.Contains(t, res.Error, "database unavailable")
	assert.Equal(t, []string{"Email from Sarah - 19 Jan 2026.eml"}, res.FilesMoved)
}

func TestFileDocumentStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.deps.Store = failingLists{f.store}

	res, err := f.system().File(context.Background(), feedbackRequest())
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, filing.StateFailed, res.State)
	assert.Equal(t, filing.KindDocumentStore, res.ErrorKind)
	assert.Empty(t, f.tracker.updates)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: job number", filing.ErrInvalidRequest), filing.KindInvalidRequest},
		{fmt.Errorf("lookup: %w", clients.ErrNotFound), filing.KindLookup},
		{filing.ErrJobFolderNotFound, filing.KindAmbiguousFolder},
		{fmt.Errorf("%w: list", filing.ErrDocumentStore), filing.KindDocumentStore},
		{fmt.Errorf("move: %w", docstore.ErrTransient), filing.KindDocumentStore},
		{errors.New("unexpected"), filing.KindInternal},
	}

	for _, tt := range tests {
		if got := filing.Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestFileRejectsMissingJobNumber(t *testing.T) {
	f := newFixture(t)
	req := feedbackRequest()
	req.JobNumber = "  "

	_, err := f.system().File(context.Background(), req)
	assert.ErrorIs(t, err, filing.ErrInvalidRequest)
	assert.Empty(t, f.activity.entries)
}

func TestAttachmentsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want filing.Attachments
	}{
		{"array", `["a.pdf","b.docx"]`, filing.Attachments{"a.pdf", "b.docx"}},
		{"encoded array", `"[\"a.pdf\",\"b.docx\"]"`, filing.Attachments{"a.pdf", "b.docx"}},
		{"single name", `"a.pdf"`, filing.Attachments{"a.pdf"}},
		{"empty string", `""`, nil},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got filing.Attachments
			require.NoError(t, json.Unmarshal([]byte(tt.json), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad filing.Attachments
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestEmailName(t *testing.T) {
	received := time.Date(2026, 1, 18, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		sender string
		want   string
	}{
		{"Sarah Jones", "Email from Sarah - 19 Jan 2026.eml"},
		{"O'Brien", "Email from OBrien - 19 Jan 2026.eml"},
		{"", "Email from Unknown - 19 Jan 2026.eml"},
		{"!!!", "Email from Unknown - 19 Jan 2026.eml"},
	}

	for _, tt := range tests {
		if got := filing.EmailName(tt.sender, received, nzdt); got != tt.want {
			t.Errorf("EmailName(%q) = %q, want %q", tt.sender, got, tt.want)
		}
	}
}

func TestComposeEmail(t *testing.T) {
	req := feedbackRequest()
	req.AllRecipients = []string{"Michael <michael@hunch.co.nz>", "anna@hunch.co.nz"}
	received := time.Date(2026, 1, 18, 12, 30, 0, 0, time.UTC)

	data, err := filing.ComposeEmail(req, received)
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(data))
	require.NoError(t, err)

	subject, _ := mr.Header.Subject()
	assert.Equal(t, "Feedback on banners", subject)

	from, err := mr.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "sarah@sky.co.nz", from[0].Address)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	assert.Len(t, to, 2)

	date, err := mr.Header.Date()
	require.NoError(t, err)
	assert.True(t, date.Equal(received))

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, req.EmailContent, string(body))
}

func TestMatchJobFolders(t *testing.T) {
	items := []docstore.Item{
		{Name: "SKY 045 - Banner Campaign"},
		{Name: "sky  045 Extras"},
		{Name: "SKY 0450 - Other"},
		{Name: "SKY 046 - Radio"},
	}

	got := filing.MatchJobFolders(items, "SKY 045")
	require.Len(t, got, 2)
	assert.Equal(t, "SKY 045 - Banner Campaign", got[0].Name)
	assert.Equal(t, "sky  045 Extras", got[1].Name)

	assert.Empty(t, filing.MatchJobFolders(items, " "))
}

func TestHandlerFile(t *testing.T) {
	f := newFixture(t)
	f.incoming("notes.docx")

	mux := http.NewServeMux()
	routes.Register(mux, f.system().Handler().Routes())

	body, _ := json.Marshal(feedbackRequest())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/file", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, true, got["filed"])
	assert.Nil(t, got["roundNumber"])
	assert.Equal(t, "Feedback", got["classification"].(map[string]any)["folder"])
}

func TestHandlerFileStatuses(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     int
		wantKind string
	}{
		{"malformed", `{`, http.StatusBadRequest, filing.KindInvalidRequest},
		{"wrong shape", `{"jobNumber":45}`, http.StatusBadRequest, filing.KindInvalidRequest},
		{"missing job number", `{"clientCode":"SKY"}`, http.StatusBadRequest, filing.KindInvalidRequest},
		{"unknown client", `{"jobNumber":"SKY 045","clientCode":"ABC"}`, http.StatusNotFound, filing.KindLookup},
		{"no job folder", `{"jobNumber":"SKY 099","clientCode":"SKY"}`, http.StatusNotFound, filing.KindAmbiguousFolder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			mux := http.NewServeMux()
			routes.Register(mux, f.system().Handler().Routes())

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", "/file", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)

			var body struct {
				Success   bool   `json:"success"`
				Filed     bool   `json:"filed"`
				State     string `json:"state"`
				Error     string `json:"error"`
				ErrorKind string `json:"errorKind"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.False(t, body.Filed)
			assert.Equal(t, string(filing.StateFailed), body.State)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.wantKind, body.ErrorKind)
		})
	}
}
