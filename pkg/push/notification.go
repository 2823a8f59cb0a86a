// Package push contains the public domain models and interfaces for the
// push gateway: notifications, targets, send results and the history ledger.
package push

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"

	"github.com/google/uuid"
)

// Notification is the immutable content of a single send request.
type Notification struct {
	ID       string
	Title    string
	Body     string
	Data     map[string]DataValue
	ImageURL string
	Icon     string
	Sound    string
}

// NewNotification creates a Notification with a freshly generated ID.
// The data map is copied so later changes by the caller are not observed.
func NewNotification(title, body string, data map[string]DataValue, imageURL, icon, sound string) Notification {
	return Notification{
		ID:       uuid.NewString(),
		Title:    title,
		Body:     body,
		Data:     maps.Clone(data),
		ImageURL: imageURL,
		Icon:     icon,
		Sound:    sound,
	}
}

// StringData returns the custom data with every value stringified, as the
// FCM data channel only accepts string values. Returns nil when there is no data.
func (n Notification) StringData() map[string]string {
	if n.Data == nil {
		return nil
	}
	out := make(map[string]string, len(n.Data))
	for k, v := range n.Data {
		out[k] = v.String()
	}
	return out
}

type dataKind uint8

const (
	kindString dataKind = iota
	kindNumber
	kindBool
)

// DataValue is a scalar carried in a notification's custom data:
// a string, a number or a boolean.
type DataValue struct {
	kind dataKind
	s    string
	n    float64
	b    bool
}

func StringValue(s string) DataValue  { return DataValue{kind: kindString, s: s} }
func NumberValue(n float64) DataValue { return DataValue{kind: kindNumber, n: n} }
func BoolValue(b bool) DataValue      { return DataValue{kind: kindBool, b: b} }

// String renders the value the way it is sent on the wire.
func (v DataValue) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case kindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// Value returns the underlying Go value (string, float64 or bool).
func (v DataValue) Value() any {
	switch v.kind {
	case kindNumber:
		return v.n
	case kindBool:
		return v.b
	default:
		return v.s
	}
}

// DataValueOf converts a decoded scalar into a DataValue.
func DataValueOf(raw any) (DataValue, error) {
	switch t := raw.(type) {
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return DataValue{}, fmt.Errorf("%w: data value %q is not a number", ErrValidation, t)
		}
		return NumberValue(f), nil
	default:
		return DataValue{}, fmt.Errorf("%w: data values must be string, number or boolean, got %T", ErrValidation, raw)
	}
}

func (v DataValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Value())
}

func (v *DataValue) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	dv, err := DataValueOf(raw)
	if err != nil {
		return err
	}
	*v = dv
	return nil
}
