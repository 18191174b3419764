package process

import (
	"context"
	"fmt"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/provider"
)

// stderrTailBytes bounds how much stderr is attached to a failure.
const stderrTailBytes = 2048

// Runner runs commands through a circuit breaker and bulkhead whose state
// persists across calls, so repeated crashes trip the breaker.
type Runner struct {
	state *provider.ResilienceState
}

// NewRunner creates a Runner. An empty config runs commands directly.
func NewRunner(cfg provider.ResilienceConfig) *Runner {
	return &Runner{state: provider.BuildResilience(cfg)}
}

// Run executes cmd through the resilience chain.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if r == nil || r.state == nil {
		return Run(ctx, cmd)
	}
	return provider.ExecuteWithResilience(ctx, r.state, func() (*Result, error) {
		return Run(ctx, cmd)
	})
}

// SubprocessProvider is a provider.RequestResponse backed by one command
// per call. buildCmd turns the input into a Command and parseOut decodes
// the Result.
type SubprocessProvider[I, O any] struct {
	name      string
	buildCmd  func(I) Command
	parseOut  func(*Result) (O, error)
	available func(context.Context) bool
	runner    *Runner
}

var _ provider.RequestResponse[struct{}, struct{}] = (*SubprocessProvider[struct{}, struct{}])(nil)

// NewSubprocessProvider creates a RequestResponse provider backed by subprocess execution.
func NewSubprocessProvider[I, O any](
	name string,
	buildCmd func(I) Command,
	parseOut func(*Result) (O, error),
) *SubprocessProvider[I, O] {
	return &SubprocessProvider[I, O]{
		name:     name,
		buildCmd: buildCmd,
		parseOut: parseOut,
	}
}

// WithAvailabilityCheck sets a custom availability check.
func (p *SubprocessProvider[I, O]) WithAvailabilityCheck(fn func(context.Context) bool) *SubprocessProvider[I, O] {
	p.available = fn
	return p
}

// WithRunner routes executions through r.
func (p *SubprocessProvider[I, O]) WithRunner(r *Runner) *SubprocessProvider[I, O] {
	p.runner = r
	return p
}

func (p *SubprocessProvider[I, O]) Name() string { return p.name }

func (p *SubprocessProvider[I, O]) IsAvailable(ctx context.Context) bool {
	if p.available != nil {
		return p.available(ctx)
	}
	return true
}

// Execute runs one command. Configuration errors pass through; any other
// failure is an external service error carrying the exit code and the
// tail of stderr.
func (p *SubprocessProvider[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var zero O
	result, err := p.runner.Run(ctx, p.buildCmd(input))
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return zero, appErr
		}
		if tail := result.StderrTail(stderrTailBytes); tail != "" {
			err = fmt.Errorf("%w: %s", err, tail)
		}
		appErr := errors.ExternalServiceError(p.name, err)
		if result != nil {
			appErr = appErr.WithDetail("exit_code", result.ExitCode)
		}
		return zero, appErr
	}
	out, err := p.parseOut(result)
	if err != nil {
		return zero, errors.ExternalServiceError(p.name, err)
	}
	return out, nil
}
