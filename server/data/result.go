package data

import "fmt"

type (
	// Outcome of a lookup in any of the containers
	Result struct {
		Kind  ResultKind
		Value string
	}

	ResultKind uint8
)

const (
	Present ResultKind = iota + 1
	Missing
)

var (
	resultKindStr = []string{"present", "missing"}
)

func (k ResultKind) String() string {
	return resultKindStr[k-1]
}

func Found(value string) Result {
	return Result{Kind: Present, Value: value}
}

func NotFound() Result {
	return Result{Kind: Missing}
}

func (r Result) String() string {
	switch r.Kind {
	case Missing:
		return fmt.Sprintf("(%s)", r.Kind)
	case Present:
		return fmt.Sprintf("(%s, %q)", r.Kind, r.Value)
	default:
		return ""
	}
}
