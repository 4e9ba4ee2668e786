package driver

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SyncStateDriver persists the reindex state as a Redis hash. Start and
// cancel go through Lua so two processes racing on the running flag cannot
// both win.
type SyncStateDriver struct {
	client *redis.Client
	key    string
}

func NewSyncStateDriver(client *redis.Client, key string) *SyncStateDriver {
	return &SyncStateDriver{client: client, key: key}
}

// startScript claims the running flag and resets the run in one step.
// Returns 0 when a run already holds the flag.
var startScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'running') == '1' then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1],
  'running', '1',
  'processed', '0',
  'total', ARGV[1],
  'current_page', '0',
  'cursor', '0',
  'cancel_requested', '0',
  'wiped', '0',
  'run_id', ARGV[2],
  'last_status', 'running',
  'last_error', '',
  'started_at', ARGV[3],
  'updated_at', ARGV[3])
return 1
`)

// cancelScript flags cancellation only while a run holds the flag.
var cancelScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'running') ~= '1' then
  return 0
end
redis.call('HSET', KEYS[1], 'cancel_requested', '1', 'updated_at', ARGV[1])
return 1
`)

// TryStart atomically claims the running flag. Returns ErrStateRunning when
// another run is already in flight.
func (d *SyncStateDriver) TryStart(ctx context.Context, total int64, runID string) (*SyncStateRecord, error) {
	now := time.Now().UTC()
	ok, err := startScript.Run(ctx, d.client, []string{d.key},
		strconv.FormatInt(total, 10), runID, now.Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return nil, &Error{Op: "TryStart", Err: err}
	}
	if ok == 0 {
		return nil, ErrStateRunning
	}
	return &SyncStateRecord{
		Running:    true,
		Total:      total,
		RunID:      runID,
		LastStatus: "running",
		StartedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// RequestCancel flags the running state for cancellation. Returns
// ErrStateIdle when no run is in flight.
func (d *SyncStateDriver) RequestCancel(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	ok, err := cancelScript.Run(ctx, d.client, []string{d.key}, now).Int()
	if err != nil {
		return &Error{Op: "RequestCancel", Err: err}
	}
	if ok == 0 {
		return ErrStateIdle
	}
	return nil
}

// Load reads the persisted state. A missing hash is an idle zero record.
func (d *SyncStateDriver) Load(ctx context.Context) (*SyncStateRecord, error) {
	fields, err := d.client.HGetAll(ctx, d.key).Result()
	if err != nil {
		return nil, &Error{Op: "Load", Err: err}
	}
	if len(fields) == 0 {
		return &SyncStateRecord{}, nil
	}

	rec := &SyncStateRecord{
		Running:         fields["running"] == "1",
		CancelRequested: fields["cancel_requested"] == "1",
		Wiped:           fields["wiped"] == "1",
		RunID:           fields["run_id"],
		LastStatus:      fields["last_status"],
		LastError:       fields["last_error"],
	}
	rec.Processed, _ = strconv.ParseInt(fields["processed"], 10, 64)
	rec.Total, _ = strconv.ParseInt(fields["total"], 10, 64)
	rec.CurrentPage, _ = strconv.ParseInt(fields["current_page"], 10, 64)
	rec.Cursor, _ = strconv.ParseInt(fields["cursor"], 10, 64)
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, fields["started_at"])
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return rec, nil
}

// Checkpoint overwrites the persisted state with rec.
func (d *SyncStateDriver) Checkpoint(ctx context.Context, rec *SyncStateRecord) error {
	err := d.client.HSet(ctx, d.key, map[string]any{
		"running":          boolField(rec.Running),
		"processed":        strconv.FormatInt(rec.Processed, 10),
		"total":            strconv.FormatInt(rec.Total, 10),
		"current_page":     strconv.FormatInt(rec.CurrentPage, 10),
		"cursor":           strconv.FormatInt(rec.Cursor, 10),
		"cancel_requested": boolField(rec.CancelRequested),
		"wiped":            boolField(rec.Wiped),
		"run_id":           rec.RunID,
		"last_status":      rec.LastStatus,
		"last_error":       rec.LastError,
		"started_at":       rec.StartedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":       time.Now().UTC().Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return &Error{Op: "Checkpoint", Err: err}
	}
	return nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
