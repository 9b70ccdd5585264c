package domain

import "time"

// OutcomeKind enumerates the results of a session orchestration pass.
type OutcomeKind int

const (
	OutcomeProceed OutcomeKind = iota + 1
	OutcomeAuthenticate
	OutcomeExpired
	OutcomeDuplicateOrder
	OutcomeUnauthorized
	OutcomeSystemError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeProceed:
		return "proceed"
	case OutcomeAuthenticate:
		return "authenticate"
	case OutcomeExpired:
		return "expired"
	case OutcomeDuplicateOrder:
		return "duplicate_order"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeSystemError:
		return "system_error"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MessageWelcome      = "ようこそ"
	MessageTokenExpired = "token expired"
	MessageUnauthorized = "権限がありません"
	MessageLoginFailed  = "ユーザー名またはパスワードが違います"
	MessageClosedDay    = "本日は注文を受け付けていません"
	MessageSystemError  = "internal server error"
)

// Outcome is the tagged result every orchestrated entry point returns.
// Expected branches (login required, duplicate order) are ordinary values.
type Outcome struct {
	Kind        OutcomeKind
	Destination string
	Message     string
	LastOrderAt time.Time
	// Subject and Permission are set on Proceed.
	Subject    string
	Permission Permission
	// Cause records why a non-proceed outcome was produced. Never rendered.
	Cause error
}

func Proceed(destination, subject string, p Permission) Outcome {
	return Outcome{Kind: OutcomeProceed, Destination: destination, Subject: subject, Permission: p}
}

func Authenticate(message string, cause error) Outcome {
	return Outcome{Kind: OutcomeAuthenticate, Message: message, Cause: cause}
}

func Expired(message string) Outcome {
	return Outcome{Kind: OutcomeExpired, Message: message, Cause: ErrTokenExpired}
}

func DuplicateOrder(lastOrderAt time.Time) Outcome {
	return Outcome{Kind: OutcomeDuplicateOrder, LastOrderAt: lastOrderAt, Cause: ErrDuplicateOrder}
}

func Unauthorized(message string, cause error) Outcome {
	return Outcome{Kind: OutcomeUnauthorized, Message: message, Cause: cause}
}

func SystemError(cause error) Outcome {
	return Outcome{Kind: OutcomeSystemError, Message: MessageSystemError, Cause: cause}
}

// RequiresLogin reports whether the client should be shown the login view.
func (o Outcome) RequiresLogin() bool {
	return o.Kind == OutcomeAuthenticate || o.Kind == OutcomeExpired
}
