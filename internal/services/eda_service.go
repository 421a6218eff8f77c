package services

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"forecastwb/internal/config"
	"forecastwb/internal/dataprocessing"
	"forecastwb/internal/dataset"
	"forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

// EDASummary bundles the overview sections of the exploratory report.
type EDASummary struct {
	Basic    map[string]domain.ColumnStats `json:"basic"`
	Missing  map[string]int                `json:"missing"`
	Outliers *domain.OutlierInfo           `json:"outliers"`
	Coverage []domain.SeriesCoverage       `json:"coverage"`
	Trend    []domain.TrendPoint           `json:"trend"`
}

// EDAService serves read-only exploratory analyses over the persisted
// grain files.
type EDAService struct {
	logger *slog.Logger
	paths  *config.Paths
}

// NewEDAService creates an analysis service over the given path layout.
func NewEDAService(logger *slog.Logger, paths *config.Paths) *EDAService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EDAService{logger: logger, paths: paths}
}

// loadGrain reads the dataset for a grain, falling back to the validated
// file when the grain file has not been materialized yet.
func (s *EDAService) loadGrain(grain domain.Grain) (*dataset.Table, error) {
	candidate := s.paths.GrainFile(string(grain))
	if !config.FileExists(candidate) {
		candidate = s.paths.ValidatedFile
	}
	if !config.FileExists(candidate) {
		return nil, errors.NewDatasetNotFoundError(string(grain))
	}
	table, err := dataset.ReadCSV(candidate)
	if err != nil {
		return nil, errors.NewStorageError("failed to read dataset", err)
	}
	return table, nil
}

// Summary computes the overview sections concurrently: descriptive
// statistics, missing counts, sales outliers, series coverage, and the
// calendar trend for the grain.
func (s *EDAService) Summary(ctx context.Context, grain domain.Grain) (*EDASummary, error) {
	table, err := s.loadGrain(grain)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		summary EDASummary
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		basic := dataprocessing.BasicSummary(table)
		mu.Lock()
		summary.Basic = basic
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		missing := dataprocessing.MissingSummary(table)
		mu.Lock()
		summary.Missing = missing
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		outliers, err := dataprocessing.ComputeOutliers(table, config.ColumnSalesQty)
		if err != nil {
			return err
		}
		mu.Lock()
		summary.Outliers = outliers
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		coverage := dataprocessing.SeriesCoverageSummary(table)
		mu.Lock()
		summary.Coverage = coverage
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		trend, err := dataprocessing.TrendCurves(table, grain)
		if err != nil {
			return err
		}
		mu.Lock()
		summary.Trend = trend
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Correlation returns the numeric correlation matrix for a grain.
func (s *EDAService) Correlation(ctx context.Context, grain domain.Grain) (map[string]map[string]*float64, error) {
	table, err := s.loadGrain(grain)
	if err != nil {
		return nil, err
	}
	return dataprocessing.CorrelationSummary(table), nil
}

// Timeseries returns the resampled series with rolling statistics.
func (s *EDAService) Timeseries(ctx context.Context, grain domain.Grain) ([]domain.TimeseriesPoint, error) {
	table, err := s.loadGrain(grain)
	if err != nil {
		return nil, err
	}
	return dataprocessing.TimeseriesSummary(table, grain)
}

// Distribution returns a histogram of one column.
func (s *EDAService) Distribution(ctx context.Context, grain domain.Grain, column string, bins int) (*domain.Distribution, error) {
	table, err := s.loadGrain(grain)
	if err != nil {
		return nil, err
	}
	return dataprocessing.DistributionSummary(table, column, bins)
}

// DataHead returns the first rows of the grain file as records.
func (s *EDAService) DataHead(ctx context.Context, grain domain.Grain, limit int) ([]map[string]any, error) {
	table, err := s.loadGrain(grain)
	if err != nil {
		return nil, err
	}
	return dataprocessing.DataHead(table, limit), nil
}
