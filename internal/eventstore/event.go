package eventstore

import (
	"fmt"
	"time"
)

// Event is one entry of the build event log.
type Event interface {
	// ID is the store-assigned sequence number; it grows with append order.
	ID() int64
	BuildID() string
	Type() string
	Timestamp() time.Time
	// Payload is the JSON encoded body; see Decode.
	Payload() []byte
	Metadata() map[string]string
}

// Record is the stored form of an Event.
type Record struct {
	Seq   int64
	Build string
	Kind  string
	At    time.Time
	Data  []byte
	Meta  map[string]string
}

func (r *Record) ID() int64                   { return r.Seq }
func (r *Record) BuildID() string             { return r.Build }
func (r *Record) Type() string                { return r.Kind }
func (r *Record) Timestamp() time.Time        { return r.At }
func (r *Record) Payload() []byte             { return r.Data }
func (r *Record) Metadata() map[string]string { return r.Meta }

func (r *Record) String() string { return fmt.Sprintf("%s#%d %s", r.Build, r.Seq, r.Kind) }
