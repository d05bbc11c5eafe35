// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// outcomeTag discriminates the three terminal states a fiber can reach.
type outcomeTag uint8

const (
	outcomeCompleted outcomeTag = iota
	outcomeErrored
	outcomeCanceledTag
)

// Outcome is the terminal state of a fiber: exactly one of Completed,
// Errored, or Canceled. Once published by a fiber it is immutable and every
// joiner observes the identical value (spec.md §8, invariant 2).
type Outcome struct {
	tag   outcomeTag
	value Erased
	err   error
}

// CompletedOutcome builds a successful Outcome carrying value.
func CompletedOutcome(value Erased) Outcome {
	return Outcome{tag: outcomeCompleted, value: value}
}

// ErroredOutcome builds a failed Outcome carrying err.
func ErroredOutcome(err error) Outcome {
	return Outcome{tag: outcomeErrored, err: err}
}

// CanceledOutcome builds the canceled terminal state.
func CanceledOutcome() Outcome {
	return Outcome{tag: outcomeCanceledTag}
}

// IsCompleted reports whether the fiber completed successfully.
func (o Outcome) IsCompleted() bool { return o.tag == outcomeCompleted }

// IsErrored reports whether the fiber terminated with an error.
func (o Outcome) IsErrored() bool { return o.tag == outcomeErrored }

// IsCanceled reports whether the fiber terminated by cancellation.
func (o Outcome) IsCanceled() bool { return o.tag == outcomeCanceledTag }

// Value returns the completed value and true, or (nil, false) otherwise.
func (o Outcome) Value() (Erased, bool) {
	if o.tag != outcomeCompleted {
		return nil, false
	}
	return o.value, true
}

// Err returns the error and true, or (nil, false) otherwise.
func (o Outcome) Err() (error, bool) {
	if o.tag != outcomeErrored {
		return nil, false
	}
	return o.err, true
}

// MatchOutcome folds an Outcome into a single value of type T.
func MatchOutcome[T any](o Outcome, onCompleted func(Erased) T, onErrored func(error) T, onCanceled func() T) T {
	switch o.tag {
	case outcomeCompleted:
		return onCompleted(o.value)
	case outcomeErrored:
		return onErrored(o.err)
	default:
		return onCanceled()
	}
}

// ToNode converts an Outcome back into an effect: Pure(value) for a
// completed one, Err(err) for an errored one, and CanceledEffect() for a
// canceled one. Useful for bridging a finished child fiber's result back
// into the parent's program.
func (o Outcome) ToNode() *Node {
	switch o.tag {
	case outcomeCompleted:
		return Pure(o.value)
	case outcomeErrored:
		return Err(o.err)
	default:
		return CanceledEffect()
	}
}
