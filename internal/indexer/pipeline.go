package indexer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"autotagger/internal/database"
	"autotagger/internal/exifmeta"
	"autotagger/internal/logging"
	"autotagger/internal/metrics"
	"autotagger/internal/workers"
)

// Number of traces of location-less files echoed after extraction
const sampleTraceLimit = 3

// MetadataExtractor derives capture time and location for one file.
// *exifmeta.Extractor implements it.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string) exifmeta.Metadata
}

// Config tunes a Pipeline.
type Config struct {
	// Workers is the extraction pool size, resolved through
	// workers.Extraction (0 sizes the pool from GOMAXPROCS).
	Workers int

	// DatabaseName is the library file created inside the scanned folder.
	DatabaseName string

	// OpenStore opens the library; defaults to OpenSQLite.
	OpenStore OpenStoreFunc

	// Now supplies the wall clock; defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs scan → concurrent extraction → batched photo persistence →
// tag linking over one folder. A Pipeline holds no per-run state and may be
// reused, but runs must not overlap on the same folder.
type Pipeline struct {
	extractor MetadataExtractor
	workers   int
	dbName    string
	openStore OpenStoreFunc
	now       func() time.Time
}

// NewPipeline creates a pipeline using extractor for metadata.
func NewPipeline(extractor MetadataExtractor, cfg Config) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		workers:   workers.Extraction(cfg.Workers),
		dbName:    cfg.DatabaseName,
		openStore: cfg.OpenStore,
		now:       cfg.Now,
	}
	if p.dbName == "" {
		p.dbName = database.DefaultFileName
	}
	if p.openStore == nil {
		p.openStore = OpenSQLite
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Workers returns the resolved extraction pool size.
func (p *Pipeline) Workers() int {
	return p.workers
}

// extraction is the outcome for the file at files[index].
type extraction struct {
	index int
	md    exifmeta.Metadata
	err   error
}

// photoTags is what PersistingTags needs for one persisted photo.
type photoTags struct {
	photoID  int64
	year     string
	location string
}

// run carries the state of a single Run call.
type run struct {
	p          *Pipeline
	obs        Observer
	summary    Summary
	phase      Phase
	phaseStart time.Time
}

// Run tags every image below root and returns the summary that was also
// delivered through obs.OnFinished. Cancelling ctx stops the run at the next
// completion or phase boundary; a transaction that has begun always commits.
func (p *Pipeline) Run(ctx context.Context, root string, obs Observer) Summary {
	if obs == nil {
		obs = NopObserver{}
	}
	r := &run{
		p:       p,
		obs:     obs,
		phase:   PhaseIdle,
		summary: Summary{Folder: root, ErrorsByPhase: map[Phase]int{}},
	}

	start := time.Now()
	metrics.PipelineRunning.Set(1)
	defer metrics.PipelineRunning.Set(0)

	r.execute(ctx, root)

	r.summary.Phase = r.phase
	r.summary.Duration = time.Since(start)
	if r.summary.Err != nil {
		r.summary.Error = r.summary.Err.Error()
	}

	metrics.PipelineRunsTotal.WithLabelValues(string(r.phase)).Inc()
	metrics.PipelineLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.PipelineLastRunDuration.Set(r.summary.Duration.Seconds())
	metrics.PipelinePhotosPersisted.Add(float64(r.summary.Photos))
	metrics.PipelineTagsCreated.Add(float64(r.summary.NewTags))

	logging.Info("Tagging run on %s finished: phase=%s photos=%d tags=%d errors=%d duration=%v",
		root, r.phase, r.summary.Photos, r.summary.Tags, r.summary.Errors, r.summary.Duration)

	obs.OnFinished(r.summary)
	return r.summary
}

func (r *run) execute(ctx context.Context, root string) {
	r.setPhase(PhaseScanning)

	store, err := r.p.openStore(ctx, root, r.p.dbName)
	if err != nil {
		r.fail(fmt.Errorf("failed to open library database: %w", err))
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("Failed to close library database: %v", err)
		}
	}()
	r.logf("Connected to database: %s", store.Path())

	r.logf("Scanning folder: %s", root)
	files, err := Scan(ctx, root)
	if err != nil {
		if ctx.Err() != nil {
			r.cancelled()
			return
		}
		r.fail(fmt.Errorf("failed to scan %s: %w", root, err))
		return
	}

	if len(files) == 0 {
		r.logf("No image files found.")
		r.setPhase(PhaseDone)
		r.finishLibrary(ctx, store)
		return
	}
	r.logf("Found %d image files.", len(files))

	if ctx.Err() != nil {
		r.cancelled()
		return
	}

	r.setPhase(PhaseExtracting)
	results, ok := r.extract(ctx, files)
	if !ok {
		r.cancelled()
		return
	}
	r.reportExtraction(files, results)

	if ctx.Err() != nil {
		r.cancelled()
		return
	}

	r.setPhase(PhasePersistingPhotos)
	entries, err := r.persistPhotos(ctx, store, files, results)
	if err != nil {
		r.fail(err)
		return
	}

	if ctx.Err() != nil {
		r.cancelled()
		return
	}

	r.setPhase(PhasePersistingTags)
	if err := r.persistTags(ctx, store, entries); err != nil {
		r.fail(err)
		return
	}

	r.logf("Tagging complete! %d photos, %d unique tags.", r.summary.Photos, r.summary.Tags)
	r.setPhase(PhaseDone)
	r.finishLibrary(ctx, store)
}

// extract runs the bounded worker pool. Results are indexed by scan
// position; a nil entry means the file produced no usable result. ok is false
// when ctx was cancelled before every file completed.
func (r *run) extract(ctx context.Context, files []ImageFile) (results []*exifmeta.Metadata, ok bool) {
	total := len(files)
	results = make([]*exifmeta.Metadata, total)

	// Workers ignore cancellation; only dispatch and collection observe it
	workCtx := context.WithoutCancel(ctx)
	out := make(chan extraction, r.p.workers)
	stop := make(chan struct{})

	logging.Info("Extracting metadata with %d workers", r.p.workers)

	go func() {
		var g errgroup.Group
		g.SetLimit(r.p.workers)

	dispatch:
		for i := range files {
			select {
			case <-stop:
				break dispatch
			default:
			}
			g.Go(func() error {
				out <- r.extractOne(workCtx, i, files[i])
				return nil
			})
		}

		_ = g.Wait()
		close(out)
	}()

	completed := 0
	for completed < total {
		select {
		case <-ctx.Done():
		case res := <-out:
			// select picks at random when both are ready; once cancellation
			// is visible no further result is reported
			if ctx.Err() != nil {
				break
			}
			completed++
			if res.err != nil {
				r.fileError(PhaseExtracting, fmt.Sprintf("Error reading %s: %v", files[res.index].Name(), res.err))
			} else {
				md := res.md
				results[res.index] = &md
				if md.ReaderFailures > 0 {
					r.fileError(PhaseExtracting, fmt.Sprintf("Error reading %s: %d metadata reader(s) failed", files[res.index].Name(), md.ReaderFailures))
				}
			}
			r.obs.OnProgress(completed, total)
		}

		if ctx.Err() != nil {
			r.logf("Operation cancelled.")
			close(stop)
			for range out {
				// Dispatched work finishes and is discarded
			}
			return nil, false
		}
	}

	// Every result is in; wait for the dispatcher to close out
	for range out {
	}
	return results, true
}

func (r *run) extractOne(ctx context.Context, index int, file ImageFile) (res extraction) {
	res.index = index
	defer func() {
		if v := recover(); v != nil {
			logging.Error("Metadata extraction panicked for %s: %v", file.Path, v)
			res.err = fmt.Errorf("extraction panic: %v", v)
		}
	}()
	res.md = r.p.extractor.Extract(ctx, file.Path)
	return res
}

// reportExtraction logs the location hit rate and a few traces of files
// without a location.
func (r *run) reportExtraction(files []ImageFile, results []*exifmeta.Metadata) {
	var samples []string
	for i, md := range results {
		if md == nil {
			continue
		}
		if md.HasLocation() {
			r.summary.WithLocation++
			continue
		}
		r.summary.WithoutLocation++
		if len(samples) < sampleTraceLimit {
			samples = append(samples, fmt.Sprintf("  %s: %s", files[i].Name(), md.TraceString()))
		}
	}

	r.logf("EXIF data found: %d images, Missing: %d images", r.summary.WithLocation, r.summary.WithoutLocation)
	if len(samples) > 0 {
		r.logf("Sample EXIF extraction details:")
		for _, s := range samples {
			r.logf("%s", s)
		}
	}
}

// persistPhotos upserts every extracted photo in scan order inside one
// transaction. Per-row failures are counted and skipped.
func (r *run) persistPhotos(ctx context.Context, store Store, files []ImageFile, results []*exifmeta.Metadata) ([]photoTags, error) {
	r.logf("Inserting photos into database...")

	txCtx := context.WithoutCancel(ctx)
	batch, err := store.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin photo transaction: %w", err)
	}

	currentYear := strconv.Itoa(r.p.now().Year())
	entries := make([]photoTags, 0, len(files))
	total := len(files)

	for i, file := range files {
		md := results[i]
		if md == nil {
			continue
		}

		location := md.Location
		if location == "" {
			location = database.UnknownLocation
		}
		photo := database.Photo{
			ImagePath: file.Path,
			FileName:  file.Name(),
			CreatedAt: md.CaptureTime,
			Location:  location,
		}
		year := photo.Year()
		if year == "" {
			year = currentYear
		}

		id, err := batch.UpsertPhoto(txCtx, photo)
		if err != nil {
			r.fileError(PhasePersistingPhotos, fmt.Sprintf("Error inserting %s: %v", file.Name(), err))
			continue
		}

		entries = append(entries, photoTags{photoID: id, year: year, location: location})
		r.summary.Photos++
		r.obs.OnProgress(i+1, total)
	}

	if err := batch.Commit(); err != nil {
		r.summary.Photos = 0
		return nil, fmt.Errorf("failed to commit photos: %w", err)
	}
	return entries, nil
}

// persistTags resolves the year and location tag of every persisted photo
// and links them inside one transaction.
func (r *run) persistTags(ctx context.Context, store Store, entries []photoTags) error {
	r.logf("Creating and linking tags...")

	txCtx := context.WithoutCancel(ctx)
	batch, err := store.Begin(txCtx)
	if err != nil {
		return fmt.Errorf("failed to begin tag transaction: %w", err)
	}

	index := NewTagIndex(batch)
	total := len(entries)

	for i, e := range entries {
		if err := r.linkTags(txCtx, batch, index, e); err != nil {
			r.fileError(PhasePersistingTags, fmt.Sprintf("Error linking tags: %v", err))
			continue
		}
		r.obs.OnProgress(i+1, total)
	}

	if err := batch.Commit(); err != nil {
		return fmt.Errorf("failed to commit tags: %w", err)
	}

	r.summary.Tags = index.Len()
	r.summary.NewTags = index.Created()
	return nil
}

func (r *run) linkTags(ctx context.Context, batch Batch, index *TagIndex, e photoTags) error {
	yearID, err := index.Resolve(ctx, e.year)
	if err != nil {
		return err
	}
	locationID, err := index.Resolve(ctx, e.location)
	if err != nil {
		return err
	}
	return errors.Join(
		batch.LinkPhotoTag(ctx, e.photoID, yearID),
		batch.LinkPhotoTag(ctx, e.photoID, locationID),
	)
}

// finishLibrary records last-run bookkeeping and reads the library totals.
func (r *run) finishLibrary(ctx context.Context, store Store) {
	ctx = context.WithoutCancel(ctx)

	if err := store.SetLastRun(ctx, database.LastRun{
		At:     r.p.now(),
		Photos: r.summary.Photos,
		Tags:   r.summary.Tags,
		Errors: r.summary.Errors,
	}); err != nil {
		logging.Warn("Failed to record last run: %v", err)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		logging.Warn("Failed to count library rows: %v", err)
		return
	}
	r.summary.Library = counts
}

func (r *run) setPhase(phase Phase) {
	now := time.Now()
	if r.phase.Active() {
		metrics.PipelinePhaseDuration.WithLabelValues(string(r.phase)).Observe(now.Sub(r.phaseStart).Seconds())
	}
	r.phase = phase
	r.phaseStart = now
	logging.Debug("Pipeline phase: %s", phase)
	r.obs.OnPhaseChanged(phase)
}

func (r *run) cancelled() {
	r.setPhase(PhaseCancelled)
}

func (r *run) fail(err error) {
	r.summary.Err = err
	r.summary.Errors++
	r.logf("Fatal error: %v", err)
	r.setPhase(PhaseFailed)
}

func (r *run) fileError(phase Phase, line string) {
	r.summary.Errors++
	r.summary.ErrorsByPhase[phase]++
	metrics.PipelineErrors.WithLabelValues(string(phase)).Inc()
	r.logf("%s", line)
}

// logf emits a run log line to the observer and the process log.
func (r *run) logf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	logging.Info("%s", line)
	r.obs.OnLogLine(line)
}
