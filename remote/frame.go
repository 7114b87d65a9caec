/*
Package remote carries signals to observers outside the process. Server
streams them over grpc to any number of subscribers and Publisher pushes
them onto a redis channel. Both encode a signal the same way, as a
google.protobuf.Struct:

	{
		"name": "public_message",
		"args": [
			{"kind": "chanuser", "text": "alice@#chan", "channel": "#chan", "nick": "alice"},
			{"kind": "channel", "text": "#chan", "name": "#chan"},
			{"kind": "string", "text": "hello"}
		]
	}

Every argument has kind and text, the other fields depend on the kind.
*/
package remote

import (
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/lunairc/luna/dispatch"
)

// Frame field names.
const (
	fieldName     = "name"
	fieldArgs     = "args"
	fieldKind     = "kind"
	fieldText     = "text"
	fieldNick     = "nick"
	fieldUsername = "username"
	fieldHostname = "hostname"
	fieldChannel  = "channel"
	fieldVersion  = "version"
)

// Signal is a decoded frame.
type Signal struct {
	Name string
	// Args hold the fields of each argument.
	Args []map[string]string
}

// NewFrame encodes a signal.
func NewFrame(signal string, args []dispatch.Arg) *structpb.Struct {
	values := make([]*structpb.Value, len(args))
	for i, arg := range args {
		values[i] = argValue(arg)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldName: stringValue(signal),
			fieldArgs: {Kind: &structpb.Value_ListValue{
				ListValue: &structpb.ListValue{Values: values},
			}},
		},
	}
}

func argValue(arg dispatch.Arg) *structpb.Value {
	fields := map[string]*structpb.Value{
		fieldKind: stringValue(arg.Kind().String()),
		fieldText: stringValue(arg.String()),
	}

	switch a := arg.(type) {
	case dispatch.Source:
		fields[fieldNick] = stringValue(a.Nick)
		fields[fieldUsername] = stringValue(a.Username)
		fields[fieldHostname] = stringValue(a.Hostname)
	case dispatch.Channel:
		fields[fieldName] = stringValue(a.Name)
	case dispatch.ChanUser:
		fields[fieldChannel] = stringValue(a.Channel)
		fields[fieldNick] = stringValue(a.Nick)
	case dispatch.Script:
		fields[fieldName] = stringValue(a.Name)
		fields[fieldVersion] = stringValue(a.Version)
	}

	return &structpb.Value{Kind: &structpb.Value_StructValue{
		StructValue: &structpb.Struct{Fields: fields},
	}}
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

// DecodeFrame reads a frame back into a Signal. Fields that aren't strings
// are skipped.
func DecodeFrame(frame *structpb.Struct) Signal {
	var sig Signal
	if frame == nil {
		return sig
	}

	sig.Name = frame.Fields[fieldName].GetStringValue()
	for _, v := range frame.Fields[fieldArgs].GetListValue().GetValues() {
		arg := make(map[string]string)
		for key, field := range v.GetStructValue().GetFields() {
			if s, ok := field.GetKind().(*structpb.Value_StringValue); ok {
				arg[key] = s.StringValue
			}
		}
		sig.Args = append(sig.Args, arg)
	}

	return sig
}
