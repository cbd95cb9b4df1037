package wire

import (
	"encoding/json"
	"fmt"
)

// QueryRequest is the body of POST {endpoint}/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the engine's reply envelope. On success Data holds one
// object per row; on failure Error carries the engine's message.
type QueryResponse struct {
	Success  bool     `json:"success"`
	Data     []Object `json:"data,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	RowCount *int     `json:"rowCount,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// UnmarshalJSON decodes a JSON object, keeping field order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	obj, ok := v.(Object)
	if !ok {
		return fmt.Errorf("wire: expected JSON object, got %s", v.Kind())
	}
	*o = obj
	return nil
}

var _ json.Unmarshaler = (*Object)(nil)
