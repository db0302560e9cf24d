package unichan

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/iov-one/unichan/errors"
	"github.com/lightningnetwork/lnd/clock"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"zero time as number": {
			raw:      "0",
			wantTime: 0,
		},
		"zero time as string": {
			raw:      `"1970-01-01T01:00:00+01:00"`,
			wantTime: 0,
		},
		"a time as string": {
			raw:      `"2019-04-04T11:35:40.89181085+02:00"`,
			wantTime: 1554370540,
		},
		"a time as number": {
			raw:      "1554370540",
			wantTime: 1554370540,
		},
		"negative number": {
			raw:     "-1",
			wantErr: errors.ErrInput,
		},
		"negative time as string": {
			raw:     `"1950-01-01T01:00:00+01:00"`,
			wantErr: errors.ErrInput,
		},
		"invalid string": {
			raw:     `"not a time string"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.wantTime {
				t.Fatalf("want %d time, got %d", tc.wantTime, got)
			}
		})
	}
}

func TestUnixTimeAdd(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour + 4*time.Second)

	unow := AsUnixTime(now)
	ufuture := unow.Add(time.Hour + 4*time.Second)

	if future.Unix() != int64(ufuture) {
		t.Fatalf("want %d, got %d", future.Unix(), ufuture)
	}
}

func TestUnixTimeIsExpired(t *testing.T) {
	start := time.Date(2019, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := clock.NewTestClock(start)
	expiration := Now(c).Add(time.Minute)

	if expiration.IsExpired(c.Now()) {
		t.Fatal("must not be expired at creation")
	}
	c.SetTime(start.Add(59 * time.Second))
	if expiration.IsExpired(c.Now()) {
		t.Fatal("must not be expired a second before")
	}
	c.SetTime(start.Add(time.Minute))
	if !expiration.IsExpired(c.Now()) {
		t.Fatal("expiration is inclusive")
	}
	c.SetTime(start.Add(time.Hour))
	if !expiration.IsExpired(c.Now()) {
		t.Fatal("must be expired later on")
	}
}

func TestUnixTimeAddSeconds(t *testing.T) {
	cases := map[string]struct {
		start   UnixTime
		seconds int64
		want    UnixTime
		wantErr *errors.Error
	}{
		"forward":          {start: 1551441600, seconds: 60, want: 1551441660},
		"backward":         {start: 60, seconds: -60, want: 0},
		"largest":          {start: 1, seconds: math.MaxInt64 - 1, want: math.MaxInt64},
		"overflow":         {start: 1551441600, seconds: math.MaxInt64 - 100, wantErr: errors.ErrOverflow},
		"max int overflow": {start: 2, seconds: math.MaxInt64 - 1, wantErr: errors.ErrOverflow},
		"underflow":        {start: -2, seconds: math.MinInt64 + 1, wantErr: errors.ErrOverflow},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.start.AddSeconds(tc.seconds)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}
