package services

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"forecastwb/internal/config"
	"forecastwb/internal/dataprocessing"
	"forecastwb/internal/dataset"
	"forecastwb/internal/errors"
	"forecastwb/internal/files"
	"forecastwb/internal/validation"
	"forecastwb/pkg/contracts/domain"
)

// IngestUpload is one file handed to the ingest operation.
type IngestUpload struct {
	Label    string
	Filename string
	Content  []byte
}

// IngestedFile reports where one ingested upload was stored.
type IngestedFile struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// IngestResult combines the stored uploads with the validation summary of
// the primary file.
type IngestResult struct {
	UploadedFiles []IngestedFile            `json:"uploaded_files"`
	Summary       *domain.ValidationSummary `json:"summary"`
}

// UploadResult reports a stored sales upload with its smart-defaults
// analysis.
type UploadResult struct {
	Analysis   *domain.AnalysisSummary `json:"data"`
	StoredPath string                  `json:"stored_path"`
}

// PipelineService drives the upload-to-aggregates flow: ingest, validate,
// timeline, aggregate.
type PipelineService struct {
	logger    *slog.Logger
	paths     *config.Paths
	store     *files.UploadStore
	uploads   *validation.UploadValidator
	validator *dataprocessing.Validator
	timeline  *dataprocessing.TimelineBuilder
	aggregate *dataprocessing.Aggregator
}

// NewPipelineService wires the pipeline stages over a shared path layout.
func NewPipelineService(logger *slog.Logger, paths *config.Paths, store *files.UploadStore, uploads *validation.UploadValidator) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineService{
		logger:    logger,
		paths:     paths,
		store:     store,
		uploads:   uploads,
		validator: dataprocessing.NewValidator(logger, paths),
		timeline:  dataprocessing.NewTimelineBuilder(logger, paths),
		aggregate: dataprocessing.NewAggregator(logger, paths),
	}
}

// UploadCSV stores a raw sales upload, marks it as the latest, and
// returns the inferred defaults without running validation.
func (s *PipelineService) UploadCSV(ctx context.Context, filename string, content []byte) (*UploadResult, error) {
	if err := s.uploads.Validate(filename, int64(len(content))); err != nil {
		return nil, err
	}
	stored, err := s.store.Save(ctx, content, filename, "sales")
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyze(filename, content)
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		Analysis:   analysis,
		StoredPath: s.paths.RelativeToBase(stored),
	}, nil
}

// Ingest stores the provided uploads and validates the primary one: the
// sales file when present, otherwise the first upload. With no uploads
// and useExisting set, the latest recorded upload is revalidated.
func (s *PipelineService) Ingest(ctx context.Context, uploads []IngestUpload, useExisting bool) (*IngestResult, error) {
	var stored []IngestedFile
	var primary string

	for _, upload := range uploads {
		if err := s.uploads.Validate(upload.Filename, int64(len(upload.Content))); err != nil {
			return nil, err
		}
		path, err := s.store.Save(ctx, upload.Content, upload.Filename, upload.Label)
		if err != nil {
			return nil, err
		}
		stored = append(stored, IngestedFile{Type: upload.Label, Path: s.paths.RelativeToBase(path)})
		if upload.Label == "sales" || primary == "" {
			primary = path
		}
	}

	switch {
	case len(stored) > 0:
		if err := s.store.RecordLatest(primary); err != nil {
			return nil, err
		}
	case useExisting:
		record, ok := s.store.LatestRecord()
		if !ok || record.Path == "" {
			return nil, errors.NewNoUploadError("no uploaded files available")
		}
		candidate := record.Path
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(s.paths.BaseDir, candidate)
		}
		if !config.FileExists(candidate) {
			return nil, errors.NewNoUploadError("latest upload file missing: " + record.Path)
		}
		primary = candidate
		if err := s.store.RecordLatest(primary); err != nil {
			return nil, err
		}
		stored = []IngestedFile{{Type: "sales", Path: s.paths.RelativeToBase(primary)}}
	default:
		return nil, errors.NewValidationError("provide at least one upload or set use_existing=true")
	}

	summary, err := s.Validate(ctx, primary)
	if err != nil {
		return nil, err
	}
	return &IngestResult{UploadedFiles: stored, Summary: summary}, nil
}

// Validate runs the validation stage over an explicit file, or over the
// resolved latest upload when filename is empty.
func (s *PipelineService) Validate(ctx context.Context, filename string) (*domain.ValidationSummary, error) {
	target, err := s.store.Resolve(filename)
	if err != nil {
		return nil, err
	}
	table, err := s.loadUpload(target)
	if err != nil {
		return nil, err
	}
	_, summary, err := s.validator.Validate(ctx, table)
	return summary, err
}

// BuildTimeline runs the continuous-timeline stage over the validated
// dataset.
func (s *PipelineService) BuildTimeline(ctx context.Context) (*domain.TimelineSummary, error) {
	if !config.FileExists(s.paths.ValidatedFile) {
		return nil, errors.NewNotFoundError("validated dataset, run validation first")
	}
	table, err := dataset.ReadCSV(s.paths.ValidatedFile)
	if err != nil {
		return nil, errors.NewStorageError("failed to read validated dataset", err)
	}
	_, summary, err := s.timeline.Build(ctx, table)
	return summary, err
}

// Aggregate rolls the continuous dataset up to the weekly and monthly
// grains.
func (s *PipelineService) Aggregate(ctx context.Context) (*domain.AggregationSummary, error) {
	if !config.FileExists(s.paths.ContinuousFile) {
		return nil, errors.NewNotFoundError("continuous dataset, build the timeline first")
	}
	table, err := dataset.ReadCSV(s.paths.ContinuousFile)
	if err != nil {
		return nil, errors.NewStorageError("failed to read continuous dataset", err)
	}
	return s.aggregate.Aggregate(ctx, table)
}

// loadUpload parses a stored upload by extension.
func (s *PipelineService) loadUpload(path string) (*dataset.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewStorageError("failed to open upload", err)
		}
		defer f.Close()
		table, err := dataset.ReadExcel(f)
		if err != nil {
			return nil, errors.NewParseFailureError("unable to read Excel file")
		}
		return table, nil
	}
	table, err := dataset.ReadCSV(path)
	if err != nil {
		return nil, errors.NewParseFailureError("unable to read CSV file")
	}
	return table, nil
}

func (s *PipelineService) analyze(filename string, content []byte) (*domain.AnalysisSummary, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		table, err := dataset.ReadExcel(bytes.NewReader(content))
		if err != nil {
			return nil, errors.NewParseFailureError("unable to read Excel file")
		}
		return dataprocessing.AnalyzeTable(table)
	}
	return dataprocessing.AnalyzeCSV(content)
}
