package history

import (
	"context"
	"time"

	"github.com/bytedance/sonic"

	"tradeflow/pkg/conn"
)

// StageRecord is the relational row of one record.
type StageRecord struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	Stage      string    `gorm:"size:32;index:idx_stage_key"`
	RecordKey  string    `gorm:"size:64;index:idx_stage_key"`
	Fields     string    `gorm:"type:text"`
	RecordedAt time.Time `gorm:"index"`
}

// TableName implements gorm's tabler.
func (StageRecord) TableName() string {
	return "stage_records"
}

// NewStageRecord maps rec into a row. Fields are stored as a JSON array.
func NewStageRecord(rec Record) (StageRecord, error) {
	fields, err := sonic.ConfigStd.MarshalToString(rec.Fields)
	if err != nil {
		return StageRecord{}, err
	}
	return StageRecord{
		Stage:      rec.Stage(),
		RecordKey:  rec.Key,
		Fields:     fields,
		RecordedAt: rec.Timestamp.UTC(),
	}, nil
}

// PostgresSink inserts one row per record.
type PostgresSink struct {
	client *conn.Postgres
}

// NewPostgresSink connects and migrates the stage_records table.
func NewPostgresSink(option conn.PostgresOption) (*PostgresSink, error) {
	client, err := conn.NewPostgres(option, &StageRecord{})
	if err != nil {
		return nil, err
	}
	return &PostgresSink{client: client}, nil
}

// Write implements Sink.
func (s *PostgresSink) Write(ctx context.Context, rec Record) error {
	row, err := NewStageRecord(rec)
	if err != nil {
		return err
	}
	return s.client.DB(ctx).Create(&row).Error
}

// Close implements Sink.
func (s *PostgresSink) Close() error {
	return s.client.Close()
}
