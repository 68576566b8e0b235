package filing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/MGhunch/dot-file/internal/activity"
	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/folders"
	"github.com/MGhunch/dot-file/internal/projects"
	"github.com/MGhunch/dot-file/pkg/docstore"
	"github.com/MGhunch/dot-file/pkg/metrics"
)

// Deps are the collaborators a filing run calls out to. Activity may be nil.
type Deps struct {
	Clients    ClientDirectory
	Tracker    Tracker
	Store      docstore.System
	Classifier Classifier
	Activity   ActivityLog
}

type orchestrator struct {
	deps     Deps
	resolver *folders.Resolver
	settings Settings
	now      func() time.Time
	logger   *slog.Logger
}

// New creates the filing orchestrator.
func New(deps Deps, settings Settings, logger *slog.Logger) System {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.LookupTimeout <= 0 {
		settings.LookupTimeout = 10 * time.Second
	}
	if settings.DocstoreTimeout <= 0 {
		settings.DocstoreTimeout = 30 * time.Second
	}
	if settings.TrackingTimeout <= 0 {
		settings.TrackingTimeout = 10 * time.Second
	}
	return &orchestrator{
		deps:     deps,
		resolver: folders.NewResolver(deps.Store, settings.DocstoreTimeout, logger),
		settings: settings,
		now:      time.Now,
		logger:   logger.With("system", "filing"),
	}
}

func (o *orchestrator) Handler() *Handler {
	return NewHandler(o, o.logger)
}

func (o *orchestrator) File(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := o.logger.With("job", req.JobNumber, "client", req.ClientCode)

	job, err := o.locateJob(ctx, req)
	if err != nil {
		logger.WarnContext(ctx, "filing failed before classification", "error", err)
		return o.finish(ctx, req, failed(req, err), nil), nil
	}
	logger.InfoContext(ctx, "job folder located", "folder", job.String())

	result := o.classify(ctx, req)
	var classErr error
	if result.Degraded() {
		classErr = fmt.Errorf("%w: %s", classification.ErrClassification, result.Reasoning)
	}

	var (
		dest     folders.Destination
		recorded bool
	)
	if result.Category == classification.Round {
		result, dest, recorded, err = o.claimRound(ctx, req, job, result)
	} else {
		dest, err = o.resolveFolder(ctx, job, result)
	}
	if err != nil {
		logger.WarnContext(ctx, "destination not resolved", "category", result.Category, "error", err)
		return o.finish(ctx, req, classifiedOnly(req, result, err), nil), nil
	}
	if result.Category == classification.Round {
		logger.InfoContext(ctx, "round resolved", "round", result.Round, "claimed", recorded)
	}

	moved, emailWritten, moveErr := o.moveFiles(ctx, req, dest)

	res := &Result{
		Success:        true,
		Filed:          emailWritten,
		JobNumber:      req.JobNumber,
		Destination:    dest.FolderName,
		DestPath:       dest.Path(),
		FilesMoved:     moved,
		RoundNumber:    roundNumber(result),
		Classification: &result,
		FolderURL:      dest.WebURL,
		State:          StateFiled,
	}
	if !res.Filed {
		res.State = StateClassifiedOnly
	}

	var trackErr error
	if len(moved) > 0 && !recorded {
		if trackErr = o.track(ctx, req, result, dest); trackErr != nil {
			logger.WarnContext(ctx, "tracking update failed", "error", trackErr)
		}
	}

	if err := errors.Join(moveErr, trackErr, classErr); err != nil {
		res.Error = err.Error()
		for _, e := range []error{moveErr, trackErr, classErr} {
			if e != nil {
				res.ErrorKind = Kind(e)
				break
			}
		}
	}

	logger.InfoContext(ctx, "filing complete",
		"state", res.State,
		"destination", res.Destination,
		"files_moved", len(moved),
	)
	return o.finish(ctx, req, res, &dest), nil
}

// locateJob resolves the client's site and finds the unique job folder in
// its document root whose name starts with the job number.
func (o *orchestrator) locateJob(ctx context.Context, req Request) (docstore.Location, error) {
	defer observe("lookup", time.Now())

	lookupCtx, cancel := context.WithTimeout(ctx, o.settings.LookupTimeout)
	client, err := o.deps.Clients.Find(lookupCtx, req.ClientCode)
	cancel()
	if err != nil {
		return docstore.Location{}, fmt.Errorf("lookup client %q: %w", req.ClientCode, err)
	}

	root := docstore.Location{Site: client.SiteID, Path: client.DocumentRoot}
	if root.Path == "" {
		root.Path = o.settings.DocumentRoot
	}
	listCtx, cancel := context.WithTimeout(ctx, o.settings.DocstoreTimeout)
	items, err := o.deps.Store.ListFolders(listCtx, root)
	cancel()
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return docstore.Location{}, fmt.Errorf("%w: document root %s: %w", ErrSiteNotFound, root, err)
		}
		return docstore.Location{}, fmt.Errorf("%w: list job folders in %s: %w", ErrDocumentStore, root, err)
	}

	matches := MatchJobFolders(items, req.JobNumber)
	switch len(matches) {
	case 0:
		return docstore.Location{}, fmt.Errorf("%w: %q in %s", ErrJobFolderNotFound, req.JobNumber, root)
	case 1:
		return matches[0].Location, nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return docstore.Location{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousFolder, req.JobNumber, strings.Join(names, ", "))
	}
}

// MatchJobFolders returns the folders whose name starts with job, ignoring
// case and whitespace runs. The prefix must end at a word boundary so that
// "SKY 045" does not match "SKY 0450".
func MatchJobFolders(items []docstore.Item, job string) []docstore.Item {
	prefix := normalizeName(job)
	if prefix == "" {
		return nil
	}
	var out []docstore.Item
	for _, item := range items {
		name := normalizeName(item.Name)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if rest := name[len(prefix):]; rest != "" {
			if r, _ := utf8.DecodeRuneInString(rest); unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (o *orchestrator) classify(ctx context.Context, req Request) classification.Result {
	defer observe("classify", time.Now())
	result, _ := o.deps.Classifier.Classify(ctx, req.Message())
	return result
}

// claimRound allocates the round for a Round result and resolves its
// folder. A new round is claimed with a versioned update that also records
// last-filed-to and the folder URL, and that update is the request's only
// tracking write. A lost race re-reads the record and allocates again once.
// recorded reports whether the claim was written.
func (o *orchestrator) claimRound(ctx context.Context, req Request, job docstore.Location, result classification.Result) (classification.Result, folders.Destination, bool, error) {
	defer observe("round", time.Now())

	for attempt := 1; ; attempt++ {
		project, err := o.findProject(ctx, req)
		if err != nil {
			return result, folders.Destination{}, false, fmt.Errorf("%w: read project: %w", folders.ErrFolderResolution, err)
		}

		round := folders.AllocateRound(*project, req.NewRound)
		allocated := result.WithRound(round)

		dest, err := o.resolveFolder(ctx, job, allocated)
		if err != nil {
			return result, folders.Destination{}, false, err
		}
		if round == project.Round {
			return allocated, dest, false, nil
		}

		version := project.Version
		category := classification.Round
		cmd := projects.UpdateCommand{
			ExpectedVersion: &version,
			Round:           &round,
			LastFiledTo:     &category,
		}
		if dest.WebURL != "" {
			cmd.LatestFolderURL = &dest.WebURL
		}

		updateCtx, cancel := context.WithTimeout(ctx, o.settings.TrackingTimeout)
		_, err = o.deps.Tracker.Update(updateCtx, project.ID, cmd)
		cancel()

		switch {
		case err == nil:
			return allocated, dest, true, nil
		case !errors.Is(err, projects.ErrVersionConflict):
			return result, folders.Destination{}, false, fmt.Errorf("%w: claim round %d: %w", folders.ErrFolderResolution, round, err)
		}

		metrics.RoundConflictsTotal.Inc()
		if attempt == 2 {
			return result, folders.Destination{}, false, fmt.Errorf("%w: round %d: %w", folders.ErrFolderResolution, round, err)
		}
		o.logger.WarnContext(ctx, "round claim conflicted, retrying", "job", req.JobNumber, "round", round)
	}
}

// findProject tries each tracking key in turn, moving on only when a key
// matches no record.
func (o *orchestrator) findProject(ctx context.Context, req Request) (*projects.Project, error) {
	var err error
	for _, key := range req.trackingKeys() {
		findCtx, cancel := context.WithTimeout(ctx, o.settings.TrackingTimeout)
		var project *projects.Project
		project, err = o.deps.Tracker.Find(findCtx, key)
		cancel()

		if err == nil {
			return project, nil
		}
		if !errors.Is(err, projects.ErrNotFound) {
			return nil, err
		}
	}
	return nil, err
}

func (o *orchestrator) resolveFolder(ctx context.Context, job docstore.Location, result classification.Result) (folders.Destination, error) {
	defer observe("resolve", time.Now())
	return o.resolver.Resolve(ctx, job, result)
}

// moveFiles moves each attachment from the incoming folder in request order,
// then writes the email artifact. A failed move does not stop the others.
// The returned names are only those that succeeded, with the artifact last.
func (o *orchestrator) moveFiles(ctx context.Context, req Request, dest folders.Destination) ([]string, bool, error) {
	defer observe("move", time.Now())

	incoming := docstore.Location{Site: o.settings.IncomingSite, Path: o.settings.IncomingPath}
	var (
		moved []string
		errs  []error
	)

	for _, name := range req.Files() {
		moveCtx, cancel := context.WithTimeout(ctx, o.settings.DocstoreTimeout)
		err := o.deps.Store.Move(moveCtx, incoming.Child(name), dest.Location)
		cancel()
		if err != nil {
			metrics.FileMovesTotal.WithLabelValues("attachment", "error").Inc()
			o.logger.WarnContext(ctx, "file move failed", "job", req.JobNumber, "file", name, "error", err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrFileMove, name, err))
			continue
		}
		metrics.FileMovesTotal.WithLabelValues("attachment", "ok").Inc()
		moved = append(moved, name)
	}

	name, err := o.writeEmail(ctx, req, dest)
	if err != nil {
		metrics.FileMovesTotal.WithLabelValues("email", "error").Inc()
		o.logger.WarnContext(ctx, "email artifact write failed", "job", req.JobNumber, "file", name, "error", err)
		errs = append(errs, fmt.Errorf("%w: %s: %w", ErrFileMove, name, err))
		return moved, false, errors.Join(errs...)
	}
	metrics.FileMovesTotal.WithLabelValues("email", "ok").Inc()
	return append(moved, name), true, errors.Join(errs...)
}

func (o *orchestrator) writeEmail(ctx context.Context, req Request, dest folders.Destination) (string, error) {
	received := req.Received(o.now())
	name := EmailName(req.SenderName, received, o.settings.Location)

	data, err := ComposeEmail(req, received)
	if err != nil {
		return name, err
	}

	writeCtx, cancel := context.WithTimeout(ctx, o.settings.DocstoreTimeout)
	defer cancel()
	return name, o.deps.Store.Write(writeCtx, dest.Location.Child(name), data, emlContentType)
}

// track records where the job was last filed.
func (o *orchestrator) track(ctx context.Context, req Request, result classification.Result, dest folders.Destination) error {
	defer observe("track", time.Now())

	project, err := o.findProject(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTrackingUpdate, err)
	}

	cmd := projects.UpdateCommand{LastFiledTo: &result.Category}
	if dest.WebURL != "" {
		cmd.LatestFolderURL = &dest.WebURL
	}

	updateCtx, cancel := context.WithTimeout(ctx, o.settings.TrackingTimeout)
	defer cancel()
	if _, err := o.deps.Tracker.Update(updateCtx, project.ID, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrTrackingUpdate, err)
	}
	return nil
}

// finish records the outcome in the activity log and metrics. Activity
// failures are logged and otherwise ignored.
func (o *orchestrator) finish(ctx context.Context, req Request, res *Result, dest *folders.Destination) *Result {
	metrics.FilingsTotal.WithLabelValues(string(res.State)).Inc()
	if o.deps.Activity == nil {
		return res
	}

	entry := activity.Entry{
		JobNumber:   req.JobNumber,
		ClientCode:  req.ClientCode,
		State:       string(res.State),
		Destination: res.Destination,
		Files:       res.FilesMoved,
	}
	if res.Classification != nil {
		entry.Category = string(res.Classification.Category)
		entry.Source = string(res.Classification.Source)
	}
	if dest != nil {
		entry.Path = dest.Path()
	}

	recordCtx, cancel := context.WithTimeout(ctx, o.settings.TrackingTimeout)
	defer cancel()
	if err := o.deps.Activity.Record(recordCtx, entry); err != nil {
		o.logger.WarnContext(ctx, "activity record failed", "job", req.JobNumber, "error", err)
	}
	return res
}

func failed(req Request, err error) *Result {
	return &Result{
		JobNumber: req.JobNumber,
		State:     StateFailed,
		Error:     err.Error(),
		ErrorKind: Kind(err),
		cause:     err,
	}
}

func classifiedOnly(req Request, result classification.Result, err error) *Result {
	return &Result{
		Success:        true,
		JobNumber:      req.JobNumber,
		RoundNumber:    roundNumber(result),
		Classification: &result,
		State:          StateClassifiedOnly,
		Error:          err.Error(),
		ErrorKind:      Kind(err),
		cause:          err,
	}
}

func roundNumber(r classification.Result) *int {
	if r.Category != classification.Round || r.Round < 1 {
		return nil
	}
	n := r.Round
	return &n
}

func observe(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
