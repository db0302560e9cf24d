package unichan

import (
	"encoding/json"
	"math"
	"time"

	"github.com/iov-one/unichan/errors"
	"github.com/lightningnetwork/lnd/clock"
)

// UnixTime represents a point in time as POSIX time.
// Instead of using Go's time.Time that includes nanoseconds use primitive
// int64 type and seconds precision. Channel expiration is defined with second
// granularity.
type UnixTime int64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// IsZero returns true if this time represents a zero value.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add modifies this UNIX time by given duration. This is compatible with
// time.Time.Add method.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AddSeconds returns this time moved by n seconds. ErrOverflow is returned
// if the result does not fit the int64 range.
func (t UnixTime) AddSeconds(n int64) (UnixTime, error) {
	if n > 0 && int64(t) > math.MaxInt64-n || n < 0 && int64(t) < math.MinInt64-n {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d seconds", t, n)
	}
	return t + UnixTime(n), nil
}

// IsExpired returns true if this time is not after given now. Expiration is
// inclusive, meaning that if now is equal to this time it is already expired.
func (t UnixTime) IsExpired(now time.Time) bool {
	return t <= AsUnixTime(now)
}

// AsUnixTime converts given Time structure into its UNIX time representation.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// Now returns the current time of given clock as UNIX time.
func Now(c clock.Clock) UnixTime {
	return AsUnixTime(c.Now())
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a number.
// Usually a number is used as a representation of this time in JSON but it is
// convinient to use a string format in configurations (ie genesis file).
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := UnixTime(stdtime.Unix())
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = unix
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String returns the usual string representation of this time as the time.Time
// structure would.
func (t UnixTime) String() string {
	return t.Time().UTC().String()
}
