package consent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ConsentStatusKey holds the consent status cached by Google's UMP SDK.
const ConsentStatusKey = "consent_status"

// ErrInvalidStatus is returned when the cached status is not a known value.
var ErrInvalidStatus = errors.New("consent: invalid cached consent status")

// Status mirrors UMP's ConsentInformation.ConsentStatus.
type Status int

const (
	StatusUnknown Status = iota
	StatusNotRequired
	StatusRequired
	StatusObtained
)

var statusNames = [...]string{"UNKNOWN", "NOT_REQUIRED", "REQUIRED", "OBTAINED"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PreviousStatus returns the cached consent status. A missing value is StatusUnknown.
func PreviousStatus(ctx context.Context, s Getter) (Status, error) {
	raw, ok, err := s.Get(ctx, ConsentStatusKey)
	if err != nil {
		return StatusUnknown, fmt.Errorf("consent: read %s: %w", ConsentStatusKey, err)
	}
	if !ok {
		return StatusUnknown, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return StatusUnknown, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	if n < int(StatusUnknown) || n > int(StatusObtained) {
		return StatusUnknown, fmt.Errorf("%w: %d", ErrInvalidStatus, n)
	}
	return Status(n), nil
}
