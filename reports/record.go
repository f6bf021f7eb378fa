package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one key/value pair of a Record
type Field struct {
	Key   string
	Value json.RawMessage
}

// Record is a JSON object that remembers the order its keys were encountered in
type Record []Field

func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("report record must be a JSON object, got %s", data)
	}

	fields := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected report key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding report field %q: %w", key, err)
		}
		if i := fields.index(key); i >= 0 {
			fields[i].Value = value
			continue
		}
		fields = append(fields, Field{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = fields
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(f.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

func (r Record) Get(key string) (json.RawMessage, bool) {
	if i := r.index(key); i >= 0 {
		return r[i].Value, true
	}
	return nil, false
}

// Decode projects the record onto a typed row
func (r Record) Decode(v any) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (r Record) index(key string) int {
	for i, f := range r {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// cell renders a value as it appears in an exported row
func cell(value json.RawMessage) string {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return ""
	}
	switch value[0] {
	case 'n':
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			return s
		}
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err == nil {
			return buf.String()
		}
	}
	return string(value)
}
