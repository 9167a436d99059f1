package executor

// Executor wraps a Strategy in the single-shot facade: it consumes the
// strategy on Execute and offers hooks for observing per-transaction
// state and for capturing the post-execution state snapshot.
type Executor struct {
	strategy *Strategy
	consumed bool
}

// NewExecutor wraps strategy in a single-use facade.
func NewExecutor(strategy *Strategy) *Executor {
	return &Executor{strategy: strategy}
}

// ErrAlreadyConsumed is returned by any Execute* call on a facade that has
// already run once.
type consumedError struct{}

func (consumedError) Error() string { return "executor: facade already consumed" }

var ErrAlreadyConsumed error = consumedError{}

func (e *Executor) markConsumed() error {
	if e.consumed {
		return ErrAlreadyConsumed
	}
	e.consumed = true
	return nil
}

// Execute runs the block and returns the output.
func (e *Executor) Execute(in *Input) (*Output, error) {
	if err := e.markConsumed(); err != nil {
		return nil, err
	}
	return instrumented(func() (*Output, error) { return e.strategy.Execute(in) })
}

// ExecuteWithStateClosure runs the block with f installed as the state
// hook: f is invoked with the state database after every committed
// transaction and once more after Phase C's balance increments, before
// Phase D. It is not limited to a single call between Phase C and Phase D.
func (e *Executor) ExecuteWithStateClosure(in *Input, f func(StateDB)) (*Output, error) {
	if err := e.markConsumed(); err != nil {
		return nil, err
	}
	e.strategy.WithStateHook(func(statedb StateDB) {
		if f != nil {
			f(statedb)
		}
	})
	return instrumented(func() (*Output, error) { return e.strategy.Execute(in) })
}

// ExecuteWithStateHook runs the block with hook installed as the
// per-account state-change observer for the entire execution.
func (e *Executor) ExecuteWithStateHook(in *Input, hook OnStateHook) (*Output, error) {
	if err := e.markConsumed(); err != nil {
		return nil, err
	}
	e.strategy.WithStateHook(hook)
	return instrumented(func() (*Output, error) { return e.strategy.Execute(in) })
}

// ExecuteAndGetState runs the block and returns both the output and the
// strategy's state database, transferring its ownership to the caller.
func (e *Executor) ExecuteAndGetState(in *Input) (*Output, StateDB, error) {
	if err := e.markConsumed(); err != nil {
		return nil, nil, err
	}
	out, err := instrumented(func() (*Output, error) { return e.strategy.Execute(in) })
	if err != nil {
		return nil, nil, err
	}
	return out, e.strategy.state, nil
}
