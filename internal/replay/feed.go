package replay

import (
	"framecore/internal/gesture"
	"framecore/internal/viewport"
)

// feed is an in-process event source with a single subscriber.
type feed[T any] struct {
	fn func(T)
}

func (f *feed[T]) subscribe(fn func(T)) (func(), error) {
	f.fn = fn
	return func() { f.fn = nil }, nil
}

// emit is a no-op on a nil feed, which models a missing capability.
func (f *feed[T]) emit(v T) {
	if f == nil || f.fn == nil {
		return
	}
	f.fn(v)
}

type motionSource struct{ f *feed[gesture.MotionSample] }

func (s motionSource) SubscribeMotion(fn func(gesture.MotionSample)) (func(), error) {
	return s.f.subscribe(fn)
}

type sizeSource struct{ f *feed[viewport.Size] }

func (s sizeSource) ObserveSize(fn func(viewport.Size)) (func(), error) {
	return s.f.subscribe(fn)
}
