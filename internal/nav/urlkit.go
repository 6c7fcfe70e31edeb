package nav

import (
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// routeResolver builds URLs through a go-urlkit route group. Group and
// route lookups panic inside urlkit when the name is unknown, so every
// lookup recovers into an error.
type routeResolver struct {
	manager *urlkit.RouteManager
	group   string

	mu    sync.RWMutex
	cache map[string]*urlkit.Group
}

func newRouteResolver(manager *urlkit.RouteManager, group string) *routeResolver {
	return &routeResolver{
		manager: manager,
		group:   strings.TrimSpace(group),
		cache:   make(map[string]*urlkit.Group),
	}
}

func (r *routeResolver) resolve(route string, params map[string]any) (string, error) {
	group, err := r.groupForPath(r.group)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	return builder.Build()
}

func (r *routeResolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.cache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.cache[path] = current
	r.mu.Unlock()
	return current, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("nav: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("nav: route %q not found: %v", route, rec)
		}
	}()
	builder = group.Builder(route)
	return builder, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, ErrRouteManagerRequired
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("nav: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("nav: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("nav: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, nil
}
