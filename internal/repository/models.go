// Package repository records compression runs in a relational database.
package repository

import "time"

// CompressionRun is one row of the compression_runs table: the parameters
// and outcome of a single compress invocation.
type CompressionRun struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID   string    `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	InputFile string    `gorm:"column:input_file;type:varchar(512)"`
	Artifact  string    `gorm:"column:artifact;type:varchar(512)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	// Codec parameters.
	Atoms           int     `gorm:"column:atoms"`
	EmittedAtoms    int     `gorm:"column:emitted_atoms"`
	NBins           int     `gorm:"column:n_bins"`
	PatchSizeLimit  int     `gorm:"column:patch_size_limit"`
	NormalTolerance float64 `gorm:"column:normal_tolerance"`
	FloatPrecision  int     `gorm:"column:float_precision"`

	// Outcome.
	VertexCount  int     `gorm:"column:vertex_count"`
	FaceCount    int     `gorm:"column:face_count"`
	PatchCount   int     `gorm:"column:patch_count"`
	InputBytes   int64   `gorm:"column:input_bytes"`
	OutputBytes  int64   `gorm:"column:output_bytes"`
	Ratio        float64 `gorm:"column:ratio"`
	DurationMs   int64   `gorm:"column:duration_ms"`
	ErrorCode    string  `gorm:"column:error_code;type:varchar(64)"`
	ErrorMessage string  `gorm:"column:error_message;type:text"`
}

// TableName returns the table name for CompressionRun.
func (CompressionRun) TableName() string {
	return "compression_runs"
}
