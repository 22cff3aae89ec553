package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonColumn adapts a json.RawMessage to a JSONB column. Empty messages are
// written as NULL, or as emptyAs when it is set.
type jsonColumn struct {
	p       *json.RawMessage
	emptyAs string
}

func payloadField(p *json.RawMessage) jsonColumn { return jsonColumn{p: p, emptyAs: "{}"} }
func nullableJSON(p *json.RawMessage) jsonColumn { return jsonColumn{p: p} }

func (j jsonColumn) Value() (driver.Value, error) {
	if j.p == nil || len(*j.p) == 0 {
		if j.emptyAs != "" {
			return j.emptyAs, nil
		}
		return nil, nil
	}
	return string(*j.p), nil
}

func (j jsonColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j.p = nil
	case []byte:
		*j.p = append(json.RawMessage(nil), v...)
	case string:
		*j.p = json.RawMessage(v)
	default:
		return fmt.Errorf("scan json column: unsupported type %T", src)
	}
	return nil
}
