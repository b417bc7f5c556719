package compilation

import (
	"reflect"
	"time"

	"github.com/viant/gmetric"
	"github.com/viant/gmetric/counter"
	"github.com/viant/gmetric/provider"

	"csresolve/pkg/ast"
	"csresolve/pkg/resolve"
)

// Counter is the part of a gmetric operation counter a compilation uses.
type Counter interface {
	Begin(started time.Time) counter.OnDone
	IncrementValue(value interface{}) int64
}

type metricsLocation struct{}

func metricLocation() string {
	return reflect.TypeOf(metricsLocation{}).PkgPath()
}

// metrics registers one operation per phase, named "<compilation>.<phase>",
// plus a "<compilation>.reference" operation counting resolutions by mode.
type metrics struct {
	service *gmetric.Service
	prefix  string
}

func newMetrics(service *gmetric.Service, name string) *metrics {
	if service == nil {
		return nil
	}
	if name == "" {
		name = "csresolve"
	}
	return &metrics{service: service, prefix: name}
}

func (m *metrics) operation(phase string) Counter {
	if m == nil {
		return nil
	}
	name := m.prefix + "." + phase
	if cnt := m.service.LookupOperation(name); cnt != nil {
		return cnt
	}
	return m.service.MultiOperationCounter(metricLocation(), name, name+" performance", time.Millisecond, time.Minute, 2, provider.NewBasic())
}

func (m *metrics) begin(phase string, started time.Time) counter.OnDone {
	cnt := m.operation(phase)
	if cnt == nil {
		return nopOnDone
	}
	return cnt.Begin(started)
}

// onResolve returns a session hook counting each stored resolution, or nil
// when metrics are disabled.
func (m *metrics) onResolve() func(ast.Node, *resolve.Info) {
	cnt := m.operation("reference")
	if cnt == nil {
		return nil
	}
	return func(_ ast.Node, info *resolve.Info) {
		cnt.IncrementValue(info.Status().String())
	}
}

func nopOnDone(_ time.Time, _ ...interface{}) int64 {
	return 0
}
