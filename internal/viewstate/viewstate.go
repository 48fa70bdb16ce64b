// Package viewstate models the lifecycle of a page or editing view as a single
// value: Loading, Ready with data, or Failed with an error.
package viewstate

// Phase names where a view is in its lifecycle.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// State holds exactly one of: nothing (Loading), data (Ready), or an error
// (Failed). The zero value is Loading.
type State[T any] struct {
	phase Phase
	data  T
	err   error
}

// Loading returns a State that has not resolved yet.
func Loading[T any]() State[T] {
	return State[T]{phase: PhaseLoading}
}

// Ready returns a resolved State carrying data.
func Ready[T any](data T) State[T] {
	return State[T]{phase: PhaseReady, data: data}
}

// Failed returns a State that could not resolve. A nil err is still Failed.
func Failed[T any](err error) State[T] {
	return State[T]{phase: PhaseFailed, err: err}
}

// From builds Ready(data) when err is nil and Failed(err) otherwise.
func From[T any](data T, err error) State[T] {
	if err != nil {
		return Failed[T](err)
	}
	return Ready(data)
}

// Phase reports the lifecycle phase.
func (s State[T]) Phase() Phase { return s.phase }

// IsFailed reports whether loading failed.
func (s State[T]) IsFailed() bool { return s.phase == PhaseFailed }

// Data returns the data and whether the state is Ready.
func (s State[T]) Data() (T, bool) {
	return s.data, s.phase == PhaseReady
}

// Err returns the failure, or nil unless Failed.
func (s State[T]) Err() error {
	return s.err
}
