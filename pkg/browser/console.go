package browser

import (
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// ConsoleText renders console API arguments the way the devtools console
// prints them on one line: strings bare, other values by description.
func ConsoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, consoleArg(arg))
	}
	return strings.Join(parts, " ")
}

func consoleArg(arg *proto.RuntimeRemoteObject) string {
	switch {
	case arg == nil:
		return ""
	case arg.Type == proto.RuntimeRemoteObjectTypeString:
		return arg.Value.Str()
	case arg.Subtype == proto.RuntimeRemoteObjectSubtypeNull:
		return "null"
	case arg.Description != "":
		return arg.Description
	case !arg.Value.Nil():
		return arg.Value.Str()
	default:
		return string(arg.Type)
	}
}
