package batch

import "time"

// Header carries the metadata a Record is born with. It never changes
// after the reader produces the record.
type Header struct {
	SequenceNumber uint64
	Source         string
	CreatedAt      time.Time
}

// Record is the unit of work flowing through the pipeline. Payload is
// opaque to the core; concrete readers/writers agree on its shape among
// themselves.
type Record struct {
	Header  Header
	Payload any
}

// NewRecord builds a Record with CreatedAt set to now.
func NewRecord(sequenceNumber uint64, source string, payload any) Record {
	return Record{
		Header: Header{
			SequenceNumber: sequenceNumber,
			Source:         source,
			CreatedAt:      time.Now(),
		},
		Payload: payload,
	}
}

// WithPayload returns a copy of r with a replaced payload, leaving the
// header untouched. Processors that transform a record without changing
// its identity should use this instead of constructing a Record by hand.
func (r Record) WithPayload(payload any) Record {
	r.Payload = payload
	return r
}
