package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/spectrodft/internal/model"
	"github.com/himanishpuri/spectrodft/pkg/utils"
)

const DefaultDBFile = "spectrodft.sqlite3"
const errDBClientNil = "db client is nil"

// peakBatchSize bounds a single INSERT of frame peaks.
const peakBatchSize = 500

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// RunRecord is the catalog row of one spectrogram run. Durations are kept
// in microseconds so they stay readable in the sqlite shell.
type RunRecord struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	InputPath        string `gorm:"index:idx_run_input"`
	OutputPath       string
	SampleRate       uint32
	SampleCount      int
	AnalysisWindowUs int64
	DFTWindowUs      int64
	FrameIntervalUs  int64
	WindowType       string `gorm:"type:varchar(16)"`
	TransformSize    int
	HopSamples       int
	Frames           int
	Bins             int
	ElapsedUs        int64
	CreatedAt        time.Time `gorm:"index:idx_run_created"`
}

// FramePeak stores the loudest bin of one frame of a run.
type FramePeak struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"`
	RunID string `gorm:"type:varchar(36);index:idx_peak_run"`
	Frame int
	Bin   int
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SPECTRO_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := utils.MakeDir(dir); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// sqlite allows a single writer at a time
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&RunRecord{}, &FramePeak{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func toRecord(r *model.Run) RunRecord {
	return RunRecord{
		ID:               r.ID,
		InputPath:        r.InputPath,
		OutputPath:       r.OutputPath,
		SampleRate:       r.SampleRate,
		SampleCount:      r.SampleCount,
		AnalysisWindowUs: r.AnalysisWindow.Microseconds(),
		DFTWindowUs:      r.DFTWindow.Microseconds(),
		FrameIntervalUs:  r.FrameInterval.Microseconds(),
		WindowType:       r.WindowType,
		TransformSize:    r.TransformSize,
		HopSamples:       r.HopSamples,
		Frames:           r.Frames,
		Bins:             r.Bins,
		ElapsedUs:        r.Elapsed.Microseconds(),
		CreatedAt:        r.CreatedAt,
	}
}

func (rec RunRecord) toModel() model.Run {
	return model.Run{
		ID:             rec.ID,
		InputPath:      rec.InputPath,
		OutputPath:     rec.OutputPath,
		SampleRate:     rec.SampleRate,
		SampleCount:    rec.SampleCount,
		AnalysisWindow: time.Duration(rec.AnalysisWindowUs) * time.Microsecond,
		DFTWindow:      time.Duration(rec.DFTWindowUs) * time.Microsecond,
		FrameInterval:  time.Duration(rec.FrameIntervalUs) * time.Microsecond,
		WindowType:     rec.WindowType,
		TransformSize:  rec.TransformSize,
		HopSamples:     rec.HopSamples,
		Frames:         rec.Frames,
		Bins:           rec.Bins,
		Elapsed:        time.Duration(rec.ElapsedUs) * time.Microsecond,
		CreatedAt:      rec.CreatedAt,
	}
}

// SaveRun records run and its per-frame peaks in one transaction. An empty
// ID is filled with a fresh UUID, which is also returned.
func (c *DBClient) SaveRun(run *model.Run) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	if run.ID == "" {
		run.ID = utils.GenerateUUID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	rec := toRecord(run)
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("creating run: %w", err)
		}
		if len(run.PeakBins) == 0 {
			return nil
		}
		peaks := make([]FramePeak, len(run.PeakBins))
		for k, bin := range run.PeakBins {
			peaks[k] = FramePeak{RunID: run.ID, Frame: k, Bin: bin}
		}
		if err := tx.CreateInBatches(peaks, peakBatchSize).Error; err != nil {
			return fmt.Errorf("batch insert frame peaks: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// GetRun loads one run. PeakBins is filled when withPeaks is set.
func (c *DBClient) GetRun(id string, withPeaks bool) (*model.Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rec RunRecord
	if err := c.DB.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	run := rec.toModel()

	if withPeaks {
		var rows []FramePeak
		if err := c.DB.Where("run_id = ?", id).Order("frame").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("querying frame peaks: %w", err)
		}
		run.PeakBins = make([]int, len(rows))
		for i, r := range rows {
			run.PeakBins[i] = r.Bin
		}
	}
	return &run, nil
}

// ListRuns returns runs newest first. A limit of zero or less means all.
func (c *DBClient) ListRuns(limit int) ([]model.Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	q := c.DB.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []RunRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	out := make([]model.Run, len(recs))
	for i, r := range recs {
		out[i] = r.toModel()
	}
	return out, nil
}

// ListRunsByInput returns every run made from inputPath, newest first.
func (c *DBClient) ListRunsByInput(inputPath string) ([]model.Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var recs []RunRecord
	if err := c.DB.Where("input_path = ?", inputPath).Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing runs for %s: %w", inputPath, err)
	}
	out := make([]model.Run, len(recs))
	for i, r := range recs {
		out[i] = r.toModel()
	}
	return out, nil
}

// DeleteRun removes a run and its peaks. It does not touch the matrix file.
func (c *DBClient) DeleteRun(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&FramePeak{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&RunRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("run %s: %w", id, model.ErrNotFound)
		}
		return nil
	})
}

// CountRuns returns the number of catalogued runs.
func (c *DBClient) CountRuns() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.Model(&RunRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}
