//go:build linux || darwin

package gst

import (
	"fmt"
	"unsafe"
)

// gValue matches the layout of GValue on LP64 platforms.
type gValue struct {
	gType uintptr
	data  [2]uint64
}

// Fundamental GTypes (G_TYPE_MAKE_FUNDAMENTAL(n) = n << 2).
const (
	gTypeInt    uintptr = 6 << 2
	gTypeUint   uintptr = 7 << 2
	gTypeEnum   uintptr = 12 << 2
	gTypeFlags  uintptr = 13 << 2
	gTypeString uintptr = 16 << 2
	gTypeObject uintptr = 20 << 2
)

// GParamSpec: GTypeInstance, name, flags (padded), value_type.
const paramSpecValueTypeOffset = 24

// instanceType returns G_OBJECT_TYPE(obj): the instance points at its class,
// whose first field is the GType.
func instanceType(obj uintptr) uintptr {
	class := *(*uintptr)(unsafe.Pointer(obj)) //nolint:govet // GObject instance
	return *(*uintptr)(unsafe.Pointer(class)) //nolint:govet // GTypeClass
}

func propertyType(obj uintptr, name string) (uintptr, error) {
	class := *(*uintptr)(unsafe.Pointer(obj)) //nolint:govet // GObject instance
	pspec := gObjectClassFindProperty(class, name)
	if pspec == 0 {
		return 0, fmt.Errorf("no property %q", name)
	}
	return *(*uintptr)(unsafe.Add(unsafe.Pointer(pspec), paramSpecValueTypeOffset)), nil //nolint:govet // GParamSpec
}

// setProperty writes value into obj's property, converting it to the
// property's declared type.
func setProperty(obj uintptr, name string, value any) error {
	t, err := propertyType(obj, name)
	if err != nil {
		return err
	}

	var v gValue
	gValueInit(&v, t)
	defer gValueUnset(&v)

	switch fundamental := gTypeFundamental(t); fundamental {
	case gTypeInt:
		n, ok := asInt(value)
		if !ok {
			return typeMismatch(name, "int", value)
		}
		gValueSetInt(&v, int32(n))
	case gTypeUint:
		n, ok := asInt(value)
		if !ok {
			return typeMismatch(name, "uint", value)
		}
		gValueSetUint(&v, uint32(n))
	case gTypeEnum:
		n, ok := asInt(value)
		if !ok {
			return typeMismatch(name, "enum", value)
		}
		gValueSetEnum(&v, int32(n))
	case gTypeFlags:
		n, ok := asInt(value)
		if !ok {
			return typeMismatch(name, "flags", value)
		}
		gValueSetFlags(&v, uint32(n))
	case gTypeString:
		s, ok := value.(string)
		if !ok {
			return typeMismatch(name, "string", value)
		}
		gValueSetString(&v, s)
	case gTypeObject:
		e, ok := value.(*Element)
		if !ok {
			return typeMismatch(name, "element", value)
		}
		gValueSetObject(&v, e.ptr)
	default:
		return fmt.Errorf("property %q: unsupported fundamental type %d", name, fundamental)
	}

	gObjectSetProperty(obj, name, &v)
	return nil
}

// getProperty reads a scalar property. Flags and unsigned values are
// returned as uint32, ints and enums as int, strings as string.
func getProperty(obj uintptr, name string) (any, error) {
	t, err := propertyType(obj, name)
	if err != nil {
		return nil, err
	}

	var v gValue
	gValueInit(&v, t)
	defer gValueUnset(&v)
	gObjectGetProperty(obj, name, &v)

	switch fundamental := gTypeFundamental(t); fundamental {
	case gTypeInt:
		return int(gValueGetInt(&v)), nil
	case gTypeEnum:
		return int(gValueGetEnum(&v)), nil
	case gTypeUint:
		return gValueGetUint(&v), nil
	case gTypeFlags:
		return gValueGetFlags(&v), nil
	case gTypeString:
		return goString(gValueGetString(&v)), nil
	default:
		return nil, fmt.Errorf("property %q: unsupported fundamental type %d", name, fundamental)
	}
}

// emitTagsSignal emits playbin's "get-<kind>-tags" action signal and returns
// the language-code tag of the stream, if any.
func emitTagsSignal(obj uintptr, kind StreamKind, index int) (string, bool) {
	itype := instanceType(obj)
	id := gSignalLookup("get-"+string(kind)+"-tags", itype)
	if id == 0 {
		return "", false
	}

	var params [2]gValue
	gValueInit(&params[0], itype)
	gValueSetObject(&params[0], obj)
	gValueInit(&params[1], gTypeInt)
	gValueSetInt(&params[1], int32(index))

	var ret gValue
	gValueInit(&ret, gstTagListGetType())

	gSignalEmitv(&params[0], id, 0, &ret)
	defer func() {
		gValueUnset(&ret)
		gValueUnset(&params[1])
		gValueUnset(&params[0])
	}()

	list := gValueGetBoxed(&ret)
	if list == 0 {
		return "", false
	}
	var cstr uintptr
	if !gstTagListGetString(list, "language-code", &cstr) || cstr == 0 {
		return "", false
	}
	code := goString(cstr)
	gFree(cstr)
	return code, true
}

func asInt(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case PlayFlags:
		return int64(n), true
	default:
		return 0, false
	}
}

func typeMismatch(name, want string, got any) error {
	return fmt.Errorf("property %q: want %s, got %T", name, want, got)
}
