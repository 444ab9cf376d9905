package endpointfetcher

import (
	"fmt"
)

// Plugin is a named contributor of cross-cutting behavior. A plugin may
// supply any combination of a hook set (merged as the outermost layer of
// every endpoint's chain), a handler wrapper, and methods exposed on the
// built client under the plugin's identity.
//
// Identities must be unique within one client; New fails otherwise.
type Plugin struct {
	Identity       string
	Hooks          *Hooks
	HandlerWrapper HandlerWrapper
	Methods        MethodMap
}

// pluginSet is the build-time aggregation of the registered plugins, in
// registration order.
type pluginSet struct {
	hooks    []*Hooks
	wrappers []HandlerWrapper
	methods  map[string]MethodMap
}

func composePlugins(plugins []*Plugin) (*pluginSet, error) {
	set := &pluginSet{}
	seen := make(map[string]struct{}, len(plugins))

	for i, p := range plugins {
		if p == nil {
			return nil, &BuildError{Message: fmt.Sprintf("plugin[%d] is nil", i)}
		}
		if p.Identity == "" {
			return nil, &BuildError{Message: fmt.Sprintf("plugin[%d] has no identity", i)}
		}
		if _, dup := seen[p.Identity]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIdentity, p.Identity)
		}
		seen[p.Identity] = struct{}{}

		// Absent hook sets keep their slot so merge order tracks
		// registration order; MergeHooks skips nil entries.
		set.hooks = append(set.hooks, p.Hooks)
		if p.HandlerWrapper != nil {
			set.wrappers = append(set.wrappers, p.HandlerWrapper)
		}
		if len(p.Methods) > 0 {
			if set.methods == nil {
				set.methods = make(map[string]MethodMap)
			}
			m := make(MethodMap, len(p.Methods))
			for name, fn := range p.Methods {
				m[name] = fn
			}
			set.methods[p.Identity] = m
		}
	}
	return set, nil
}

// applyHandlerWrappers folds the wrapper list over base. The first plugin
// in the list becomes the innermost wrapper and the last the outermost, so
// invocation runs last-before ... first-before, base, first-after ...
// last-after.
func applyHandlerWrappers(base HandlerFunc, wrappers []HandlerWrapper) HandlerFunc {
	handler := base
	for _, wrap := range wrappers {
		handler = wrap(handler)
	}
	return handler
}
