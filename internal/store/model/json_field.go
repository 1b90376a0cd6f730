package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var ErrInvalidJSONField = errors.New("invalid json field")

type validatable interface {
	Validate() error
}

// JSONField stores T as a JSON document. A NULL column scans into a field with Valid false.
// When *T implements Validate, decoded values are validated before they are returned.
type JSONField[T any] struct {
	Data  T
	Valid bool
}

func MakeJSONField[T any](data T) JSONField[T] {
	return JSONField[T]{Data: data, Valid: true}
}

func (j *JSONField[T]) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		var zero T
		j.Data, j.Valid = zero, false
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrInvalidJSONField, value)
	}

	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSONField, err)
	}
	if v, ok := any(&data).(validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidJSONField, err)
		}
	}

	j.Data, j.Valid = data, true
	return nil
}

func (j JSONField[T]) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j JSONField[T]) MarshalJSON() ([]byte, error) {
	if !j.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(j.Data)
}

func (JSONField[T]) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}
