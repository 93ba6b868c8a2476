package spectrodft

import (
	"github.com/himanishpuri/spectrodft/internal/model"
	"github.com/himanishpuri/spectrodft/internal/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage opens (or creates) the run catalog at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveRun(run *Run) (string, error) {
	m := toModelRun(run)
	id, err := s.db.SaveRun(&m)
	if err != nil {
		return "", err
	}
	run.ID = m.ID
	run.CreatedAt = m.CreatedAt
	return id, nil
}

func (s *storageAdapter) GetRun(id string, withPeaks bool) (*Run, error) {
	m, err := s.db.GetRun(id, withPeaks)
	if err != nil {
		return nil, err
	}
	run := fromModelRun(m)
	return &run, nil
}

func (s *storageAdapter) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.ListRuns(limit)
	if err != nil {
		return nil, err
	}
	runs := make([]Run, len(rows))
	for i := range rows {
		runs[i] = fromModelRun(&rows[i])
	}
	return runs, nil
}

func (s *storageAdapter) DeleteRun(id string) error {
	return s.db.DeleteRun(id)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func toModelRun(r *Run) model.Run {
	return model.Run{
		ID:             r.ID,
		InputPath:      r.InputPath,
		OutputPath:     r.OutputPath,
		SampleRate:     r.SampleRate,
		SampleCount:    r.SampleCount,
		AnalysisWindow: r.AnalysisWindow,
		DFTWindow:      r.DFTWindow,
		FrameInterval:  r.FrameInterval,
		WindowType:     r.WindowType,
		TransformSize:  r.TransformSize,
		HopSamples:     r.HopSamples,
		Frames:         r.Frames,
		Bins:           r.Bins,
		Elapsed:        r.Elapsed,
		CreatedAt:      r.CreatedAt,
		PeakBins:       r.PeakBins,
	}
}

func fromModelRun(m *model.Run) Run {
	return Run{
		ID:             m.ID,
		InputPath:      m.InputPath,
		OutputPath:     m.OutputPath,
		SampleRate:     m.SampleRate,
		SampleCount:    m.SampleCount,
		AnalysisWindow: m.AnalysisWindow,
		DFTWindow:      m.DFTWindow,
		FrameInterval:  m.FrameInterval,
		WindowType:     m.WindowType,
		TransformSize:  m.TransformSize,
		HopSamples:     m.HopSamples,
		Frames:         m.Frames,
		Bins:           m.Bins,
		PeakBins:       m.PeakBins,
		Elapsed:        m.Elapsed,
		CreatedAt:      m.CreatedAt,
	}
}
