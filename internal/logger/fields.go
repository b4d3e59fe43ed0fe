package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldOperation = "operation"
	FieldUser      = "user"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, dropping entries with
// an empty key or value.
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

// WithFields attaches fields to logger. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

func OperationFields(name string) []zap.Field {
	return StringFields(StringField{Key: FieldOperation, Value: name})
}

// WithOperation tags every entry with the name of an async operation.
func WithOperation(logger *zap.Logger, name string) *zap.Logger {
	return WithFields(logger, OperationFields(name)...)
}

// WithUser tags entries with the signed-in user's ID.
func WithUser(logger *zap.Logger, userID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldUser, Value: userID})...)
}
