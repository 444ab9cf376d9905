package endpointfetcher

// Definition is a node in the declarative endpoint tree. It is a sealed
// variant: the only implementations are *Endpoint and *Group, so dispatch
// is explicit rather than derived from which fields happen to be set. A
// descriptor carrying only hooks is necessarily an *Endpoint, matching the
// historical default for ambiguous nodes.
type Definition interface {
	definitionKind() definitionKind
}

type definitionKind int

const (
	kindEndpoint definitionKind = iota
	kindGroup
)

// Definitions is the build input: a namespace of named endpoint and group
// descriptors. It is read once during New and never mutated afterward.
type Definitions map[string]Definition

// Endpoint is a leaf descriptor binding a method and a path rule to an
// optional hook set and an optional custom handler.
//
// Exactly one of Path or PathFunc must be set. PathFunc receives the call's
// input and returns the path for that invocation.
type Endpoint struct {
	Method   string
	Path     string
	PathFunc func(input any) string
	Hooks    *Hooks
	Handler  HandlerFunc
}

func (*Endpoint) definitionKind() definitionKind { return kindEndpoint }

func (e *Endpoint) resolvePath(input any) string {
	if e.PathFunc != nil {
		return e.PathFunc(input)
	}
	return e.Path
}

// Group is an internal tree node bundling nested endpoints and sub-groups
// under a shared optional hook set. Group hooks apply to every endpoint at
// any depth beneath the group and never to siblings.
type Group struct {
	Hooks     *Hooks
	Endpoints map[string]*Endpoint
	Groups    map[string]*Group
}

func (*Group) definitionKind() definitionKind { return kindGroup }
