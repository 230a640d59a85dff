//go:build pprof

package profile

// Option accumulates pkg/profile settings onto a control.
type Option func(control) control

// apply folds each option into the control in order.
func apply(c control, opts ...Option) control {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// newControl builds a control from the provided options.
func newControl(opts ...Option) control {
	var c control

	return apply(c, opts...)
}
