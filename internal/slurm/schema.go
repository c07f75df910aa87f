package slurm

import "time"

// QueryKind names one of the periodic or on-demand cluster queries.
type QueryKind string

const (
	KindJobs   QueryKind = "jobs"
	KindNodes  QueryKind = "nodes"
	KindDetail QueryKind = "detail"
)

// Field is one named column of a query's output. Width, when positive, is the
// fixed display width the external command pads the column to; parsed values
// are trimmed back accordingly.
type Field struct {
	Name  string
	Width int
}

// FieldSchema describes how to split one query's raw output into records.
// Immutable once loaded from config; one instance per query kind.
type FieldSchema struct {
	Fields    []Field
	Delimiter string
	// SkipLines is the number of leading header lines to discard.
	SkipLines int
	// Identity names the field whose value identifies a record across
	// refreshes (job id for jobs, partition name for nodes).
	Identity string
}

// Names returns the field names in schema order.
func (s FieldSchema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Record is one parsed output row, keyed by field name.
type Record map[string]string

// Get returns the value for a field, or "" if absent.
func (r Record) Get(name string) string {
	return r[name]
}

// RecordSet is one complete, internally consistent parse result for a single
// query kind and poll tick. Replaced wholesale on every successful poll.
type RecordSet struct {
	Kind      QueryKind
	Seq       uint64
	Records   []Record
	Identity  string
	Warnings  int
	FetchedAt time.Time
}

// Key returns the identity key of record i.
func (s RecordSet) Key(i int) string {
	return s.Records[i].Get(s.Identity)
}

// Index returns the row index of the record with the given identity key, or
// -1 if no such record exists.
func (s RecordSet) Index(key string) int {
	if key == "" {
		return -1
	}
	for i := range s.Records {
		if s.Key(i) == key {
			return i
		}
	}
	return -1
}

// Keys returns the set of identity keys present in the record set.
func (s RecordSet) Keys() map[string]bool {
	keys := make(map[string]bool, len(s.Records))
	for i := range s.Records {
		keys[s.Key(i)] = true
	}
	return keys
}
