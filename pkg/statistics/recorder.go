package statistics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tariffiq/tariffiq/pkg/types"
)

// statisticsMeta mirrors the recorder's statistics_meta table, which maps a
// sensor identifier to the numeric metadata key used by the rows table.
type statisticsMeta struct {
	ID          uint   `gorm:"column:id;primaryKey"`
	StatisticID string `gorm:"column:statistic_id"`
}

func (statisticsMeta) TableName() string { return "statistics_meta" }

// statisticRow mirrors one hourly row of the recorder's statistics table.
// Bucket starts are stored as epoch seconds.
type statisticRow struct {
	ID         uint     `gorm:"column:id;primaryKey"`
	MetadataID uint     `gorm:"column:metadata_id"`
	StartTS    float64  `gorm:"column:start_ts"`
	State      *float64 `gorm:"column:state"`
	Sum        *float64 `gorm:"column:sum"`
	Mean       *float64 `gorm:"column:mean"`
	Min        *float64 `gorm:"column:min"`
	Max        *float64 `gorm:"column:max"`
}

func (statisticRow) TableName() string { return "statistics" }

// Recorder reads hourly statistics from a recorder-style SQLite database.
// Access is strictly read-only.
type Recorder struct {
	db *gorm.DB
}

// Open opens the recorder database at path.
func Open(path string) (*Recorder, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open recorder database: %w", err)
	}
	return &Recorder{db: db}, nil
}

// HourlyStats returns the hourly rows for sensorID with bucket starts in
// [start, end), ascending. The consumption delta of each row is derived from
// the difference of successive sums; one extra row before start is fetched to
// anchor the first delta and then discarded.
func (r *Recorder) HourlyStats(ctx context.Context, sensorID string, start, end time.Time) ([]types.StatRow, error) {
	var meta statisticsMeta
	err := r.db.WithContext(ctx).Where("statistic_id = ?", sensorID).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no statistics recorded for sensor %s", sensorID)
	}
	if err != nil {
		return nil, fmt.Errorf("look up statistics metadata for %s: %w", sensorID, err)
	}

	anchor := start.Add(-time.Hour)
	var rows []statisticRow
	err = r.db.WithContext(ctx).
		Where("metadata_id = ? AND start_ts >= ? AND start_ts < ?", meta.ID, float64(anchor.Unix()), float64(end.Unix())).
		Order("start_ts asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query statistics for %s: %w", sensorID, err)
	}

	out := make([]types.StatRow, 0, len(rows))
	var prevSum *float64
	for _, row := range rows {
		stat := types.StatRow{
			Start: time.Unix(int64(row.StartTS), 0).UTC(),
			State: row.State,
			Sum:   row.Sum,
			Mean:  row.Mean,
			Min:   row.Min,
			Max:   row.Max,
		}
		if row.Sum != nil && prevSum != nil {
			change := *row.Sum - *prevSum
			stat.Change = &change
		}
		prevSum = row.Sum

		// drop the anchor row, it only seeds the delta chain
		if stat.Start.Before(start) {
			continue
		}
		out = append(out, stat)
	}
	return out, nil
}

// Close releases the underlying database handle.
func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
