package eventhub

import "reflect"

// Data is the event passed to handlers when Emit is called with a string
// event type. One Data value is shared by every handler of a pass.
type Data struct {
	// Type is the emitted event type.
	Type string `json:"type"`

	// Params holds the arguments passed to Emit after the event type.
	Params []any `json:"params"`

	// Data is the first element of Params, or nil when none were given.
	Data any `json:"data"`
}

// EventType implements Typed.
func (d *Data) EventType() string {
	return d.Type
}

// Typed is implemented by event values that carry their own type.
// Such values are passed to handlers unchanged.
type Typed interface {
	EventType() string
}

// TypeOf returns the event type carried by an event value passed to Emit.
//
// Strings are their own type. Otherwise the type is read from, in order: the
// Typed interface, a string "type" key of a map[string]any, or an exported
// string field named Type of a struct or pointer to struct. An empty result
// means the value has no event type.
func TypeOf(event any) string {
	switch ev := event.(type) {
	case nil:
		return ""
	case string:
		return ev
	case map[string]any:
		s, _ := ev["type"].(string)
		return s
	}

	v := reflect.ValueOf(event)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		if ev, ok := event.(Typed); ok {
			return ev.EventType()
		}
		v = v.Elem()
	} else if ev, ok := event.(Typed); ok {
		return ev.EventType()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}
	f, ok := v.Type().FieldByName("Type")
	if !ok || !f.IsExported() || f.Type.Kind() != reflect.String {
		return ""
	}
	return v.FieldByIndex(f.Index).String()
}

func newData(eventType string, params []any) *Data {
	if params == nil {
		params = []any{}
	}
	d := &Data{Type: eventType, Params: params}
	if len(params) > 0 {
		d.Data = params[0]
	}
	return d
}
