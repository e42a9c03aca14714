package registry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ServiceFunc is the signature every registered service method exposes to
// the engine. Positional args and keyword args arrive already resolved
// against the call context. The returned value is normalized into an
// ExecutionResult by the handler; a non-nil error always yields a failure.
type ServiceFunc func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error)

// ServiceSet is the explicit registration table mapping service and method
// names to typed function references. It replaces runtime attribute probing:
// the definitions document still declares behavior by name, but every name
// must have been registered here at startup.
type ServiceSet struct {
	methods map[string]map[string]ServiceFunc
}

// NewServiceSet creates an empty service table.
func NewServiceSet() *ServiceSet {
	return &ServiceSet{methods: make(map[string]map[string]ServiceFunc)}
}

// Register adds one service method to the table. Registering the same
// service/method pair twice replaces the earlier entry.
func (s *ServiceSet) Register(service, method string, fn ServiceFunc) {
	if service == "" || method == "" || fn == nil {
		return
	}
	if s.methods[service] == nil {
		s.methods[service] = make(map[string]ServiceFunc)
	}
	s.methods[service][method] = fn
}

// Lookup returns the registered function for a service method.
func (s *ServiceSet) Lookup(service, method string) (ServiceFunc, bool) {
	if s == nil {
		return nil, false
	}
	fn, ok := s.methods[service][method]
	return fn, ok
}

// HasService reports whether any method is registered under the name.
func (s *ServiceSet) HasService(service string) bool {
	if s == nil {
		return false
	}
	_, ok := s.methods[service]
	return ok
}

// Resolve binds a handler spec against the service table. The returned
// handler resolves args and kwargs against the call context at call time,
// invokes the target method, and normalizes whatever comes back. A panic
// inside the service surfaces as a failure result, never as a raised
// condition.
func Resolve(spec *HandlerSpec, services *ServiceSet) (Handler, error) {
	if spec == nil {
		return nil, ErrMissingHandler
	}
	if !services.HasService(spec.Service) {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, spec.Service)
	}
	fn, ok := services.Lookup(spec.Service, spec.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, spec.Service, spec.Method)
	}

	service, method := spec.Service, spec.Method
	args, kwargs := spec.Args, spec.Kwargs

	return func(ctx context.Context, callCtx Context) (res ExecutionResult) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("service", service).
					Str("method", method).
					Interface("panic", r).
					Msg("Handler panicked")
				res = ExecutionResult{Success: false, Message: fmt.Sprint(r)}
			}
		}()

		resolvedArgs := make([]interface{}, len(args))
		for i, a := range args {
			resolvedArgs[i] = a.Resolve(callCtx)
		}
		var resolvedKwargs map[string]interface{}
		if len(kwargs) > 0 {
			resolvedKwargs = make(map[string]interface{}, len(kwargs))
			for k, v := range kwargs {
				resolvedKwargs[k] = v.Resolve(callCtx)
			}
		}

		out, err := fn(ctx, resolvedArgs, resolvedKwargs)
		if err != nil {
			return ExecutionResult{Success: false, Message: err.Error()}
		}
		return NormalizeResult(out)
	}, nil
}

// NormalizeResult coerces a service return value into the uniform result
// shape. Services may return an ExecutionResult directly, a bare bool, a
// message string, or nothing at all.
func NormalizeResult(v interface{}) ExecutionResult {
	switch r := v.(type) {
	case ExecutionResult:
		return r
	case *ExecutionResult:
		if r == nil {
			return ExecutionResult{Success: true, Message: "Completed"}
		}
		return *r
	case bool:
		if r {
			return ExecutionResult{Success: true, Message: "Completed"}
		}
		return ExecutionResult{Success: false, Message: "Failed"}
	case string:
		return ExecutionResult{Success: true, Message: r}
	case nil:
		return ExecutionResult{Success: true, Message: "Completed"}
	default:
		return ExecutionResult{Success: true, Message: fmt.Sprint(r)}
	}
}
