package diag

import (
	"sort"
	"sync"
)

// Bag collects diagnostics. It is safe for concurrent use and append-only.
type Bag struct {
	mu          sync.Mutex
	diagnostics []*Diagnostic
	errorCount  int
	warnCount   int
}

func NewBag() *Bag {
	return &Bag{}
}

// Report adds a diagnostic to the bag.
func (b *Bag) Report(d *Diagnostic) {
	if d == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.diagnostics = append(b.diagnostics, d)
	switch d.Severity {
	case SeverityError:
		b.errorCount++
	case SeverityWarning:
		b.warnCount++
	}
}

func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount > 0
}

func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnCount
}

// Diagnostics returns a copy of all diagnostics in arrival order.
func (b *Bag) Diagnostics() []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]*Diagnostic, len(b.diagnostics))
	copy(result, b.diagnostics)
	return result
}

// Sorted returns all diagnostics ordered by file, then source position.
// Diagnostics of one file keep source order; ties keep arrival order.
func (b *Bag) Sorted() []*Diagnostic {
	result := b.Diagnostics()
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].File != result[j].File {
			return result[i].File < result[j].File
		}
		return result[i].Position < result[j].Position
	})
	return result
}

// Errors returns the error diagnostics in source order.
func (b *Bag) Errors() []*Diagnostic {
	return filter(b.Sorted(), SeverityError)
}

// Warnings returns the warning diagnostics in source order.
func (b *Bag) Warnings() []*Diagnostic {
	return filter(b.Sorted(), SeverityWarning)
}

// WithCode returns the diagnostics carrying the given code.
func (b *Bag) WithCode(code string) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range b.Sorted() {
		if d.Code == code {
			result = append(result, d)
		}
	}
	return result
}

func filter(diagnostics []*Diagnostic, severity Severity) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range diagnostics {
		if d.Severity == severity {
			result = append(result, d)
		}
	}
	return result
}

// Collector is a Sink that only records, used where a phase needs its own
// diagnostics before forwarding them.
type Collector []*Diagnostic

func (c *Collector) Report(d *Diagnostic) {
	if d != nil {
		*c = append(*c, d)
	}
}
