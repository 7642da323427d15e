package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldPipeline is the structured log field key for the pipeline identifier.
	FieldPipeline = "pipeline_id"
	// FieldJob is the structured log field key for the job scoping a board.
	FieldJob = "job_id"
	// FieldCard is the structured log field key for a board card.
	FieldCard = "card_id"
	// FieldApplication is the structured log field key for the backing application record.
	FieldApplication = "application_id"
	// FieldFromStage and FieldToStage describe both ends of a move.
	FieldFromStage = "from_stage"
	FieldToStage   = "to_stage"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// BoardFields describes a board identity. An unscoped board has no job field.
func BoardFields(pipelineID, jobID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPipeline, Value: pipelineID},
		StringField{Key: FieldJob, Value: jobID},
	)
}

// MoveFields describes a card move.
func MoveFields(cardID, applicationID, fromStage, toStage string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCard, Value: cardID},
		StringField{Key: FieldApplication, Value: applicationID},
		StringField{Key: FieldFromStage, Value: fromStage},
		StringField{Key: FieldToStage, Value: toStage},
	)
}

// WithBoard attaches the board identity to the provided logger.
func WithBoard(logger *zap.Logger, pipelineID, jobID string) *zap.Logger {
	return WithFields(logger, BoardFields(pipelineID, jobID)...)
}
