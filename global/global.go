// Package global carries the ambient, call-scoped environment every
// component in this module is threaded through: a structured logger, a
// configurable set of trace tags, and the cooperative cancellation signal
// a tip selection call must honor. It holds no DAG state of its own --
// every other package receives it as a narrow collaborator interface.
package global

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Global struct {
	log        *zap.SugaredLogger
	mutex      sync.RWMutex
	traceTags  map[string]bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func New(log *zap.SugaredLogger) *Global {
	ctx, cancel := context.WithCancel(context.Background())
	return &Global{
		log:        log,
		traceTags:  make(map[string]bool),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// NewDefault builds a Global with a production zap logger, the way
// node.New() wires global.SetGlobalLogger into the rest of the node.
func NewDefault() *Global {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return New(logger.Sugar())
}

func (g *Global) Log() *zap.SugaredLogger {
	return g.log
}

// Ctx is cancelled when Stop is called; components poll it cooperatively at
// the hop/iteration boundaries spec.md §5 names (no implicit timeout).
func (g *Global) Ctx() context.Context {
	return g.ctx
}

func (g *Global) Stop() {
	g.cancelFunc()
}

func (g *Global) Cancelled() bool {
	select {
	case <-g.ctx.Done():
		return true
	default:
		return false
	}
}

// StartTracingTags enables Tracef output for the given tags, the
// config-driven generalization of the teacher's hardcoded
// TracePullEnabled/TraceTxEnabled constants in global/trace.go.
func (g *Global) StartTracingTags(tags ...string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for _, t := range tags {
		g.traceTags[t] = true
	}
}

func (g *Global) tracingEnabled(tag string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.traceTags[tag]
}

// Tracef logs at Info level only when tag has been enabled via
// StartTracingTags, mirroring the teacher's TracePull/TraceTxEnabled
// gated-tracing idiom.
func (g *Global) Tracef(tag, format string, args ...any) {
	if g.tracingEnabled(tag) {
		g.log.Infof(tag+": "+format, args...)
	}
}

func (g *Global) Assertf(cond bool, format string, args ...any) {
	if !cond {
		g.log.Panicf("assertion failed: "+format, args...)
	}
}
