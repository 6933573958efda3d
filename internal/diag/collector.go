package diag

import "sort"

// MethodFault records one per-method failure that downgrades to a stub
// instead of failing the whole build; these accumulate into the
// stub-report artifact.
type MethodFault struct {
	Method string
	Kind   Kind
	Detail string
}

// Collector accumulates faults across a pass without letting any single
// one escape and abort the pipeline. Faults are typed and queryable
// rather than a flat string log, and build-fatal errors (those that
// apply to the entry/root set) are tracked separately from per-method
// ones.
type Collector struct {
	faults []MethodFault
	fatal  []*Error
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends a non-fatal per-method fault.
func (c *Collector) Record(method string, kind Kind, detail string) {
	c.faults = append(c.faults, MethodFault{Method: method, Kind: kind, Detail: detail})
}

// RecordFatal appends a build-fatal error (IOError, MetadataFormatError,
// ConfigurationError, or an UnresolvedReference on the root set).
func (c *Collector) RecordFatal(err *Error) {
	c.fatal = append(c.fatal, err)
}

// Faults returns all recorded per-method faults, sorted by method name
// so the stub report has a stable, canonical order.
func (c *Collector) Faults() []MethodFault {
	out := make([]MethodFault, len(c.faults))
	copy(out, c.faults)
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}

// FatalErrors returns all recorded build-fatal errors.
func (c *Collector) FatalErrors() []*Error {
	return c.fatal
}

// HasFatal reports whether any build-fatal error was recorded.
func (c *Collector) HasFatal() bool {
	return len(c.fatal) > 0
}

// Merge folds another Collector's faults and fatal errors into this one.
// Passes that run in parallel (shell creation across assemblies, method
// lowering across methods) each accumulate into their own Collector and
// merge at the pass boundary rather than sharing a single mutable
// Collector across goroutines.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.faults = append(c.faults, other.faults...)
	c.fatal = append(c.fatal, other.fatal...)
}
