package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vapor/api/models"
	annotationMode "vapor/api/models/constants/annotation-mode"
	"vapor/api/models/dtos"
	apperrors "vapor/api/models/errors"
	"vapor/api/models/jobs"
	"vapor/api/models/runs"
	esRepo "vapor/api/repositories/elasticsearch"
	"vapor/api/services/annovar"
	"vapor/api/services/myvariant"
	"vapor/api/utils"
)

type (
	// AnnotationService owns the chunked annotation pipeline: it
	// partitions a source file into jobs, runs them through a
	// fixed-size worker pool and tracks every run it has accepted.
	AnnotationService struct {
		Config    *models.Config
		Es        *elasticsearch.Client
		MyVariant *myvariant.MyVariantService
		Parser    *annovar.AnnovarTxtParser
		Runner    *annovar.AnnovarRunner
		Reporter  ProgressReporter
		Logger    *zap.Logger

		RunRequestMap    map[string]*runs.RunRequest
		RunRequestMapMux sync.RWMutex
	}
)

func NewAnnotationService(cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger) *AnnotationService {
	registry, registryErr := annovar.LoadProtocols(cfg.Annovar.ProtocolsFile)
	if registryErr != nil {
		logger.Warn("falling back to built-in annovar protocols", zap.Error(registryErr))
		registry, _ = annovar.LoadProtocols("")
	}

	return &AnnotationService{
		Config:        cfg,
		Es:            es,
		MyVariant:     myvariant.NewMyVariantService(cfg, logger),
		Parser:        annovar.NewAnnovarTxtParser(logger),
		Runner:        annovar.NewAnnovarRunner(cfg, registry, logger),
		Reporter:      &LogProgressReporter{Logger: logger.Named("progress")},
		Logger:        logger.Named("annotation"),
		RunRequestMap: map[string]*runs.RunRequest{},
	}
}

// Run executes an annotation run start to finish and returns its
// registered record alongside every job outcome.
func (a *AnnotationService) Run(ctx context.Context, request dtos.ValidatedRunRequest) (*runs.RunRequest, []jobs.JobResult) {
	run := a.RegisterRun(request)
	results := a.ExecuteRun(ctx, run, request)
	return run, results
}

// RunAsync registers the run and executes it in the background. The
// returned record can be polled through the run registry right away.
func (a *AnnotationService) RunAsync(request dtos.ValidatedRunRequest) *runs.RunRequest {
	run := a.RegisterRun(request)
	go a.ExecuteRun(context.Background(), run, request)
	return run
}

// RegisterRun files a new queued run in the registry. All heavy
// lifting, the source line count included, belongs to ExecuteRun.
func (a *AnnotationService) RegisterRun(request dtos.ValidatedRunRequest) *runs.RunRequest {
	now := time.Now().Format(time.RFC3339)
	run := &runs.RunRequest{
		Id:          uuid.New(),
		VcfPath:     request.VcfPath,
		AnnovarPath: request.AnnovarPath,
		Mode:        request.Mode,
		GenomeBuild: request.Build,
		Database:    request.Database,
		Collection:  request.Collection,
		State:       runs.Queued,
		Message:     "queued",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	a.RunRequestMapMux.Lock()
	a.RunRequestMap[run.Id.String()] = run
	a.RunRequestMapMux.Unlock()

	a.Logger.Info("annotation run queued",
		zap.String("runId", run.Id.String()),
		zap.String("mode", string(run.Mode)),
		zap.String("vcf", run.VcfPath))

	return run
}

// ExecuteRun drives a registered run to its terminal state: produce
// annovar output when asked to, partition the source, then push every
// job through a fixed-size worker pool. Blocks until each job has
// reported an outcome. A failed chunk never cancels its siblings;
// failures accumulate on the run record and finish it in state Error.
func (a *AnnotationService) ExecuteRun(ctx context.Context, run *runs.RunRequest, request dtos.ValidatedRunRequest) []jobs.JobResult {
	// detailed mode with no ready-made annotation file means the
	// service drives the local tool itself
	if request.Mode == annotationMode.Detailed && request.AnnovarPath == "" {
		annovarPath, annovarErr := a.produceAnnovarOutput(ctx, run, request)
		if annovarErr != nil {
			a.setRunState(run, runs.Error, fmt.Sprintf("annovar: %s", annovarErr))
			return nil
		}
		request.AnnovarPath = annovarPath
	}

	var sampleNames []string
	if request.Mode == annotationMode.Detailed {
		names, namesErr := VcfSampleNames(request.VcfPath)
		if namesErr != nil {
			a.setRunState(run, runs.Error, fmt.Sprintf("reading sample names: %s", namesErr))
			return nil
		}
		sampleNames = names
	}

	jobList, partitionErr := a.PartitionJobs(request, sampleNames)
	if partitionErr != nil {
		a.setRunState(run, runs.Error, fmt.Sprintf("partitioning: %s", partitionErr))
		return nil
	}

	workerCount := request.Workers
	if workerCount <= 0 {
		workerCount = a.Config.Annotation.BasicWorkers
		if request.Mode == annotationMode.Detailed {
			workerCount = a.Config.Annotation.DetailedWorkers
		}
	}

	a.RunRequestMapMux.Lock()
	run.TotalChunks = len(jobList)
	a.RunRequestMapMux.Unlock()

	a.setRunState(run, runs.Running, fmt.Sprintf("running %d chunks on %d workers", len(jobList), workerCount))

	if indexErr := esRepo.EnsureAnnotationsIndex(ctx, a.Config, a.Es, a.Logger, run.Database, run.Collection); indexErr != nil {
		a.setRunState(run, runs.Error, fmt.Sprintf("preparing index: %s", indexErr))
		return nil
	}

	jobsChan := make(chan jobs.AnnotationJob)
	resultsChan := make(chan jobs.JobResult)

	var workerWg sync.WaitGroup
	for workerNum := 0; workerNum < workerCount; workerNum++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for job := range jobsChan {
				storedIds, jobErr := a.ProcessChunk(ctx, job)
				if jobErr != nil {
					jobErr = &apperrors.JobError{ChunkIndex: job.ChunkIndex, Mode: string(job.Mode), Err: jobErr}
				}
				resultsChan <- jobs.JobResult{Job: job, Documents: len(storedIds), Err: jobErr}
			}
		}()
	}

	go func() {
		for _, job := range jobList {
			a.Reporter.ChunkQueued(job.ChunkIndex)
			jobsChan <- job
		}
		close(jobsChan)
	}()

	go func() {
		workerWg.Wait()
		close(resultsChan)
	}()

	results := make([]jobs.JobResult, 0, len(jobList))
	for result := range resultsChan {
		results = append(results, result)
		a.recordChunkOutcome(run, result)
	}

	a.finalizeRun(run)

	return results
}

// PartitionJobs slices the run's source file into fixed-size chunks,
// one job per chunk. The raw line count drives the job count, so
// header lines inflate it slightly and trailing chunks may come up
// empty; workers treat an empty chunk as a no-op.
func (a *AnnotationService) PartitionJobs(request dtos.ValidatedRunRequest, sampleNames []string) ([]jobs.AnnotationJob, error) {
	sourcePath := request.VcfPath
	if request.Mode == annotationMode.Detailed {
		sourcePath = request.AnnovarPath
	}

	totalLines, countErr := utils.CountFileLines(sourcePath)
	if countErr != nil {
		return nil, apperrors.NewSourceReadError("counting lines of %s: %s", sourcePath, countErr)
	}

	chunkSize := request.ChunkSize
	if chunkSize <= 0 {
		chunkSize = a.Config.Annotation.ChunkSize
	}
	if chunkSize <= 0 {
		// an operator can configure the size to zero; the job
		// count division below needs a positive one
		chunkSize = 2000
	}

	numJobs := totalLines/chunkSize + 1

	jobList := make([]jobs.AnnotationJob, 0, numJobs)
	for chunkIndex := 0; chunkIndex < numJobs; chunkIndex++ {
		jobList = append(jobList, jobs.AnnotationJob{
			ChunkIndex:  chunkIndex,
			ChunkSize:   chunkSize,
			Mode:        request.Mode,
			GenomeBuild: request.Build,
			SourcePath:  sourcePath,
			SampleNames: sampleNames,
			Database:    request.Database,
			Collection:  request.Collection,
			Verbose:     request.Verbose,
		})
	}

	return jobList, nil
}

// ProcessChunk executes one job end to end: read the chunk's window,
// fetch remote annotations, merge when local records exist, store.
// Returned ids are the store-assigned keys in insertion order.
func (a *AnnotationService) ProcessChunk(ctx context.Context, job jobs.AnnotationJob) ([]string, error) {
	var (
		variantIds   []string
		localRecords []map[string]interface{}
	)

	if job.Mode == annotationMode.Detailed {
		ids, records, parseErr := a.Parser.ReadChunkOfAnnotations(job.SourcePath, job.SampleNames, job.ChunkIndex, job.ChunkSize)
		if parseErr != nil {
			return nil, parseErr
		}
		variantIds, localRecords = ids, records
	} else {
		ids, extractErr := ExtractChunkVariantIds(job.SourcePath, job.ChunkIndex, job.ChunkSize, a.Logger)
		if extractErr != nil {
			return nil, extractErr
		}
		variantIds = ids
	}

	// trailing chunks past end-of-file legitimately come up empty
	if len(variantIds) == 0 {
		return []string{}, nil
	}

	remoteRecords, remoteErr := a.MyVariant.GetAnnotations(ctx, variantIds, job.GenomeBuild, job.Verbose)
	if remoteErr != nil {
		return nil, remoteErr
	}

	documents := remoteRecords
	if job.Mode == annotationMode.Detailed {
		merged, mergeErr := MergeAnnotations(localRecords, remoteRecords)
		if mergeErr != nil {
			return nil, mergeErr
		}
		documents = merged
	}

	return esRepo.BulkInsertAnnotations(ctx, a.Config, a.Es, a.Logger, job.Database, job.Collection, documents)
}

// GetRunRequests snapshots every registered run.
func (a *AnnotationService) GetRunRequests() []runs.RunRequest {
	a.RunRequestMapMux.RLock()
	defer a.RunRequestMapMux.RUnlock()

	m := make([]runs.RunRequest, 0, len(a.RunRequestMap))
	for _, runRequest := range a.RunRequestMap {
		m = append(m, *runRequest)
	}
	return m
}

func (a *AnnotationService) GetRunRequest(id string) (runs.RunRequest, error) {
	a.RunRequestMapMux.RLock()
	defer a.RunRequestMapMux.RUnlock()

	if runRequest, found := a.RunRequestMap[id]; found {
		return *runRequest, nil
	}
	return runs.RunRequest{}, fmt.Errorf("%w: %s", apperrors.ErrRunNotFound, id)
}

// SourceAlreadyRunning reports whether a queued or running run already
// covers the same source file, so duplicate submissions can be turned
// away up front.
func (a *AnnotationService) SourceAlreadyRunning(vcfPath string) bool {
	a.RunRequestMapMux.RLock()
	defer a.RunRequestMapMux.RUnlock()

	for _, runRequest := range a.RunRequestMap {
		if runRequest.VcfPath == vcfPath && (runRequest.State == runs.Queued || runRequest.State == runs.Running) {
			return true
		}
	}
	return false
}

// PruneTerminalRuns drops Done and Error runs whose last update is
// older than the retention window, reporting how many were removed.
func (a *AnnotationService) PruneTerminalRuns(retention time.Duration) int {
	a.RunRequestMapMux.Lock()
	defer a.RunRequestMapMux.Unlock()

	pruned := 0
	for id, runRequest := range a.RunRequestMap {
		if runRequest.State != runs.Done && runRequest.State != runs.Error {
			continue
		}
		updatedAt, parseErr := time.Parse(time.RFC3339, runRequest.UpdatedAt)
		if parseErr != nil {
			continue
		}
		if time.Since(updatedAt) > retention {
			delete(a.RunRequestMap, id)
			pruned++
		}
	}
	return pruned
}

func (a *AnnotationService) produceAnnovarOutput(ctx context.Context, run *runs.RunRequest, request dtos.ValidatedRunRequest) (string, error) {
	if a.Runner == nil || !a.Runner.Available() {
		return "", fmt.Errorf("no annovar install configured, provide an annovarPath instead")
	}

	a.setRunState(run, runs.Running, "running annovar")

	outputPrefix := strings.TrimSuffix(strings.TrimSuffix(request.VcfPath, ".gz"), ".vcf") + ".vapor"
	annovarPath, annovarErr := a.Runner.Annotate(ctx, request.VcfPath, request.Build, outputPrefix)
	if annovarErr != nil {
		return "", annovarErr
	}

	a.RunRequestMapMux.Lock()
	run.AnnovarPath = annovarPath
	a.RunRequestMapMux.Unlock()

	return annovarPath, nil
}

func (a *AnnotationService) setRunState(run *runs.RunRequest, state runs.State, message string) {
	a.RunRequestMapMux.Lock()
	defer a.RunRequestMapMux.Unlock()

	run.State = state
	run.Message = message
	run.UpdatedAt = time.Now().Format(time.RFC3339)
}

func (a *AnnotationService) recordChunkOutcome(run *runs.RunRequest, result jobs.JobResult) {
	if result.Err != nil {
		a.Reporter.ChunkFailed(result.Job.ChunkIndex, result.Err)
	} else {
		a.Reporter.ChunkDone(result.Job.ChunkIndex, result.Documents)
	}

	a.RunRequestMapMux.Lock()
	defer a.RunRequestMapMux.Unlock()

	run.CompletedChunks++
	run.StoredDocuments += result.Documents
	if result.Err != nil {
		run.Failures = append(run.Failures, runs.ChunkFailure{
			ChunkIndex: result.Job.ChunkIndex,
			Message:    result.Err.Error(),
		})
	}
	run.UpdatedAt = time.Now().Format(time.RFC3339)
}

func (a *AnnotationService) finalizeRun(run *runs.RunRequest) {
	a.RunRequestMapMux.Lock()
	defer a.RunRequestMapMux.Unlock()

	if len(run.Failures) > 0 {
		run.State = runs.Error
		run.Message = fmt.Sprintf("%d of %d chunks failed", len(run.Failures), run.TotalChunks)
	} else {
		run.State = runs.Done
		run.Message = fmt.Sprintf("stored %d documents", run.StoredDocuments)
	}
	run.UpdatedAt = time.Now().Format(time.RFC3339)
}
