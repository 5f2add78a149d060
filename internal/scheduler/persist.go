package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/constants"
	"github.com/aatumaykin/gametime/internal/snapshot"
)

// ErrMalformedSnapshot means stored values do not form a valid reading.
var ErrMalformedSnapshot = errors.New("malformed clock snapshot")

// SnapshotKeys names the three scalars of a persisted reading.
type SnapshotKeys struct {
	Hour   string
	Minute string
	Day    string
}

// KeysFor builds the keys under prefix; an empty prefix uses the default
// namespace.
func KeysFor(prefix string) SnapshotKeys {
	if prefix == "" {
		prefix = constants.SnapshotKeyPrefix
	}
	return SnapshotKeys{
		Hour:   prefix + constants.SnapshotKeyHour,
		Minute: prefix + constants.SnapshotKeyMinute,
		Day:    prefix + constants.SnapshotKeyDay,
	}
}

func (k SnapshotKeys) all() []string {
	return []string{k.Hour, k.Minute, k.Day}
}

// WriteSnapshot stores r. The day is written as its bit value.
func WriteSnapshot(ctx context.Context, store snapshot.Store, keys SnapshotKeys, r clock.Reading) error {
	values := map[string]int{
		keys.Hour:   r.Hour,
		keys.Minute: r.Minute,
		keys.Day:    int(r.Day),
	}
	for _, key := range keys.all() {
		if err := store.Save(ctx, key, values[key]); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// ReadSnapshot loads a stored reading. found is false when any key is
// missing; a present but invalid snapshot yields ErrMalformedSnapshot.
func ReadSnapshot(ctx context.Context, store snapshot.Store, keys SnapshotKeys) (r clock.Reading, found bool, err error) {
	for _, key := range keys.all() {
		ok, err := store.Exists(ctx, key)
		if err != nil {
			return clock.Reading{}, false, fmt.Errorf("check %s: %w", key, err)
		}
		if !ok {
			return clock.Reading{}, false, nil
		}
	}

	var values [3]int
	for i, key := range keys.all() {
		v, err := store.Load(ctx, key)
		if err != nil {
			return clock.Reading{}, false, fmt.Errorf("load %s: %w", key, err)
		}
		values[i] = v
	}

	day := values[2]
	if day <= 0 || day > int(clock.Sunday) {
		return clock.Reading{}, false, fmt.Errorf("%w: day %d", ErrMalformedSnapshot, day)
	}
	r = clock.At(clock.WeekDay(day), values[0], values[1])
	if !r.Valid() {
		return clock.Reading{}, false, fmt.Errorf("%w: %d:%d day %d", ErrMalformedSnapshot, values[0], values[1], day)
	}
	return r, true, nil
}

// ClearSnapshot deletes the stored reading.
func ClearSnapshot(ctx context.Context, store snapshot.Store, keys SnapshotKeys) error {
	for _, key := range keys.all() {
		if err := store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
