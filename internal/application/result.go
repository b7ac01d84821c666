package application

// Kind classifies a failed Result so callers can pick a transport status.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindExpired
	KindUnauthorized
	KindDependency
	// KindStale means the user record changed between read and save; the call can be retried.
	KindStale
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	case KindUnauthorized:
		return "unauthorized"
	case KindDependency:
		return "dependency"
	case KindStale:
		return "stale"
	default:
		return "none"
	}
}

// Empty is the payload of operations that only report a message.
type Empty struct{}

// Result is the outcome of every AccountService operation.
// A success never carries error text; a failure always does.
type Result[T any] struct {
	Value   T
	Message string
	Error   string
	Kind    Kind
}

func Success[T any](value T, message string) Result[T] {
	return Result[T]{Value: value, Message: message}
}

func Failure[T any](kind Kind, errText string) Result[T] {
	if errText == "" {
		panic("application: failure result without error text")
	}
	if kind == KindNone {
		kind = KindDependency
	}
	return Result[T]{Error: errText, Kind: kind}
}

func (r Result[T]) IsSuccess() bool { return r.Error == "" }

func (r Result[T]) IsFailure() bool { return r.Error != "" }
