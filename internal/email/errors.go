package email

import (
	"errors"
	"fmt"
	"net/http"
	"net/textproto"
	"regexp"
	"strconv"
)

// ErrNotConfigured is returned by Ready when the provider credential is missing.
var ErrNotConfigured = errors.New("mail provider not configured")

type FailureKind string

const (
	FailureQuota       FailureKind = "quota_exceeded"
	FailureRateLimited FailureKind = "rate_limited"
	FailureOther       FailureKind = "other"
)

// SendError is returned by providers when delivery was rejected or did not complete.
type SendError struct {
	Kind   FailureKind
	Status int
	Err    error
}

func (e *SendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// KindOf reports the failure kind of err, FailureOther when it carries none.
func KindOf(err error) FailureKind {
	var se *SendError
	if errors.As(err, &se) {
		return se.Kind
	}
	return FailureOther
}

func classifyHTTP(status int) FailureKind {
	switch status {
	case http.StatusPaymentRequired:
		return FailureQuota
	case http.StatusTooManyRequests:
		return FailureRateLimited
	default:
		return FailureOther
	}
}

// gomail flattens smtp replies into its own error text, so the reply code
// is recovered from the message when the typed error is gone. The code must
// start the reply, either at the beginning or right after a "prefix: ".
var smtpCode = regexp.MustCompile(`(?:^|:\s)\s*([45]\d\d)[ -]`)

func smtpStatus(err error) int {
	var te *textproto.Error
	if errors.As(err, &te) {
		return te.Code
	}
	if m := smtpCode.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code
	}
	return 0
}

func classifySMTP(code int) FailureKind {
	switch code {
	case 452, 552:
		return FailureQuota
	case 421, 450, 451:
		return FailureRateLimited
	default:
		return FailureOther
	}
}
