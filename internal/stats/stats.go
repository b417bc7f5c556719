// Package stats aggregates a report into resolution counts by mode, target
// kind and diagnostic code, plus the most frequent unresolved names.
package stats

import (
	"fmt"
	"sort"

	"csresolve/pkg/model"
)

type Options struct {
	TopFiles      int
	TopUnresolved int
}

// Count is one bucket of a tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type FileMetric struct {
	Path       string `json:"path"`
	Types      int    `json:"types"`
	References int    `json:"references"`
	Unresolved int    `json:"unresolved"`
}

type Report struct {
	Compilation    string         `json:"compilation"`
	SessionID      string         `json:"session_id,omitempty"`
	FileCount      int            `json:"file_count"`
	TypeCount      int            `json:"type_count"`
	ReferenceCount int            `json:"reference_count"`
	ErrorCount     int            `json:"error_count"`
	WarningCount   int            `json:"warning_count"`
	Counters       model.Counters `json:"counters"`
	Modes          []Count        `json:"modes,omitempty"`
	Targets        []Count        `json:"targets,omitempty"`
	Diagnostics    []Count        `json:"diagnostics,omitempty"`
	Unresolved     []Count        `json:"unresolved,omitempty"`
	TopFiles       []FileMetric   `json:"top_files,omitempty"`
}

func Build(r *model.Report, opts Options) (Report, error) {
	if r == nil {
		return Report{}, fmt.Errorf("report is nil")
	}
	if opts.TopFiles <= 0 {
		opts.TopFiles = 10
	}
	if opts.TopUnresolved <= 0 {
		opts.TopUnresolved = 10
	}

	modes := map[string]int{}
	targets := map[string]int{}
	unresolved := map[string]int{}
	fileMetrics := make([]FileMetric, 0, len(r.Files))
	for _, file := range r.Files {
		metric := FileMetric{Path: file.Path, Types: len(file.Types), References: len(file.References)}
		for _, ref := range file.References {
			modes[ref.Mode]++
			targets[ref.Target]++
			if !ref.IsResolved() {
				unresolved[ref.Name]++
				metric.Unresolved++
			}
		}
		fileMetrics = append(fileMetrics, metric)
	}

	codes := map[string]int{}
	for _, d := range r.Diagnostics {
		codes[d.Code]++
	}

	sort.Slice(fileMetrics, func(i, j int) bool {
		if fileMetrics[i].Unresolved != fileMetrics[j].Unresolved {
			return fileMetrics[i].Unresolved > fileMetrics[j].Unresolved
		}
		if fileMetrics[i].References != fileMetrics[j].References {
			return fileMetrics[i].References > fileMetrics[j].References
		}
		return fileMetrics[i].Path < fileMetrics[j].Path
	})
	if opts.TopFiles < len(fileMetrics) {
		fileMetrics = fileMetrics[:opts.TopFiles]
	}

	unresolvedList := counts(unresolved)
	if opts.TopUnresolved < len(unresolvedList) {
		unresolvedList = unresolvedList[:opts.TopUnresolved]
	}

	return Report{
		Compilation:    r.Compilation,
		SessionID:      r.SessionID,
		FileCount:      r.FileCount(),
		TypeCount:      r.TypeCount(),
		ReferenceCount: r.ReferenceCount(),
		ErrorCount:     r.ErrorCount(),
		WarningCount:   r.WarningCount(),
		Counters:       r.Counters,
		Modes:          counts(modes),
		Targets:        counts(targets),
		Diagnostics:    counts(codes),
		Unresolved:     unresolvedList,
		TopFiles:       fileMetrics,
	}, nil
}

// counts orders a tally by count descending, then by name.
func counts(tally map[string]int) []Count {
	result := make([]Count, 0, len(tally))
	for name, count := range tally {
		result = append(result, Count{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count == result[j].Count {
			return result[i].Name < result[j].Name
		}
		return result[i].Count > result[j].Count
	})
	return result
}
