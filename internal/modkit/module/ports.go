package module

import (
	"fmt"
	"reflect"
)

// PortSet is whatever a module hands out from Ports, usually a struct of interfaces
type PortSet = any

// PortsOf finds T in m's ports: either the bundle itself or the first
// exported struct field holding a T.
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if p == nil || rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		if f := rv.Field(i); f.CanInterface() {
			if v, ok := f.Interface().(T); ok {
				return v, true
			}
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for wiring code, where a missing port is a bug
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic(fmt.Sprintf("module %s: no port of type %T", m.Name(), (*T)(nil)))
	}
	return v
}
