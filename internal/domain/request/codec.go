package request

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// DecodePayload decodes data into the payload variant named by formType.
func DecodePayload(formType FormType, data []byte) (Payload, error) {
	switch formType {
	case FormLeave:
		return decodeAs[Leave](data)
	case FormBusinessTrip:
		return decodeAs[BusinessTrip](data)
	case FormOvertime:
		return decodeAs[Overtime](data)
	case FormAttendance:
		return decodeAs[Attendance](data)
	case FormLetter:
		return decodeAs[Letter](data)
	}
	return nil, reject("formType", RuleInvalidValue, fmt.Sprintf("unknown form type %q", formType))
}

func decodeAs[T Payload](data []byte) (Payload, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var wire struct {
		Envelope
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	payload, err := DecodePayload(wire.FormType, wire.Data)
	if err != nil {
		return err
	}
	r.Envelope = wire.Envelope
	r.Payload = payload
	return nil
}

var derivedFields = map[FormType][]string{
	FormLeave:      {"days"},
	FormOvertime:   {"dutyHours", "totalHours"},
	FormAttendance: {"late"},
}

// PatchField overwrites one JSON field of p with value. Derived fields cannot
// be targeted; they are recomputed from the patched raw fields instead. No
// policy rule is applied.
func PatchField(p Payload, field string, value json.RawMessage) (Payload, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, reject("field", RuleRequired, "field name is required")
	}
	if contains(derivedFields[p.Kind()], field) {
		return nil, reject(field, RuleDerivedField, "derived fields are recomputed and cannot be set")
	}
	if !contains(payloadFields(p), field) {
		return nil, reject(field, RuleUnknownField, fmt.Sprintf("%s has no field %q", p.Kind().Title(), field))
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields[field] = value
	patched, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	out, err := DecodePayload(p.Kind(), patched)
	if err != nil {
		return nil, reject(field, RuleInvalidValue, err.Error())
	}
	return Derive(out), nil
}

func payloadFields(p Payload) []string {
	t := reflect.TypeOf(p)
	names := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			names = append(names, name)
		}
	}
	return names
}
