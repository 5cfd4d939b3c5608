package confres

import "time"

// Epoch orders loads. Each BeginLoad takes the next epoch; records from an
// older epoch are stale once a newer load has started.
type Epoch uint64

// RecordKind names a transition record.
type RecordKind string

const (
	KindLoadStarted   RecordKind = "load_started"
	KindLoadSucceeded RecordKind = "load_succeeded"
	KindLoadFailed    RecordKind = "load_failed"
)

// Record is a transition emitted by the coordinator and applied by a store.
type Record interface {
	Kind() RecordKind
	RecordEpoch() Epoch
	record()
}

// LoadStarted marks the start of retrieval for Location.
type LoadStarted struct {
	Epoch    Epoch
	LoadID   string
	Location *Location
	At       time.Time
}

func (LoadStarted) Kind() RecordKind     { return KindLoadStarted }
func (r LoadStarted) RecordEpoch() Epoch { return r.Epoch }
func (LoadStarted) record()              {}

// LoadSucceeded carries the resolution produced by a load.
type LoadSucceeded struct {
	Epoch      Epoch
	LoadID     string
	Resolution Resolution
	At         time.Time
}

func (LoadSucceeded) Kind() RecordKind     { return KindLoadSucceeded }
func (r LoadSucceeded) RecordEpoch() Epoch { return r.Epoch }
func (LoadSucceeded) record()              {}

// LoadFailed carries the error that ended a load.
type LoadFailed struct {
	Epoch    Epoch
	LoadID   string
	Err      error
	Location *Location
	At       time.Time
}

func (LoadFailed) Kind() RecordKind     { return KindLoadFailed }
func (r LoadFailed) RecordEpoch() Epoch { return r.Epoch }
func (LoadFailed) record()              {}

// Resolution is the outcome of a successful load: the merged configuration in
// raw and typed form, the merged ambient surfaces and the overrides applied.
//
// Values is authoritative. Config is a typed view of it; when the merged
// values cannot be typed, ConfigErr holds the reason and Config is typed from
// the retrieved base instead (or left zero if that fails too).
type Resolution struct {
	Location  *Location
	Config    Config
	ConfigErr error
	Values    Values
	Interface Values
	Logging   Values
	Overrides []Override
}

// Clone returns a copy whose trees can be modified without affecting r.
func (r Resolution) Clone() Resolution {
	out := r
	out.Values = r.Values.Clone()
	out.Interface = r.Interface.Clone()
	out.Logging = r.Logging.Clone()
	if r.Config.Extra != nil {
		out.Config.Extra = Values(r.Config.Extra).Clone()
	}
	if r.Overrides != nil {
		out.Overrides = append([]Override(nil), r.Overrides...)
	}
	return out
}
