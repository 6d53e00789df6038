//go:build linux || darwin

package gst

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	libOnce sync.Once
	libErr  error
)

// GLib / GObject
var (
	gFree                    func(p uintptr)
	gErrorFree               func(err uintptr)
	gQuarkToString           func(q uint32) uintptr
	gTypeFundamental         func(t uintptr) uintptr
	gValueInit               func(v *gValue, t uintptr) uintptr
	gValueUnset              func(v *gValue)
	gValueSetInt             func(v *gValue, i int32)
	gValueGetInt             func(v *gValue) int32
	gValueSetUint            func(v *gValue, i uint32)
	gValueGetUint            func(v *gValue) uint32
	gValueSetFlags           func(v *gValue, f uint32)
	gValueGetFlags           func(v *gValue) uint32
	gValueSetEnum            func(v *gValue, e int32)
	gValueGetEnum            func(v *gValue) int32
	gValueSetString          func(v *gValue, s string)
	gValueGetString          func(v *gValue) uintptr
	gValueSetObject          func(v *gValue, obj uintptr)
	gValueGetBoxed           func(v *gValue) uintptr
	gObjectSetProperty       func(obj uintptr, name string, v *gValue)
	gObjectGetProperty       func(obj uintptr, name string, v *gValue)
	gObjectClassFindProperty func(class uintptr, name string) uintptr
	gSignalLookup            func(name string, itype uintptr) uint32
	gSignalEmitv             func(params *gValue, signalID uint32, detail uint32, ret *gValue)
)

// GStreamer core
var (
	gstInitCheck             func(argc, argv, err uintptr) bool
	gstElementFactoryMake    func(factory, name string) uintptr
	gstPipelineNew           func(name string) uintptr
	gstBinAdd                func(bin, element uintptr) bool
	gstElementSetState       func(element uintptr, state int32) int32
	gstElementGetBus         func(element uintptr) uintptr
	gstElementQueryPosition  func(element uintptr, format int32, cur *int64) bool
	gstElementQueryDuration  func(element uintptr, format int32, dur *int64) bool
	gstElementSeek           func(element uintptr, rate float64, format, flags, startType int32, start int64, stopType int32, stop int64) bool
	gstBusTimedPopFiltered   func(bus uintptr, timeout uint64, types uint32) uintptr
	gstMessageParseError     func(msg uintptr, gerror, debug *uintptr)
	gstMiniObjectUnref       func(obj uintptr)
	gstObjectUnref           func(obj uintptr)
	gstTagListGetType        func() uintptr
	gstTagListGetString      func(list uintptr, tag string, value *uintptr) bool
	gstTagGetLanguageName    func(code string) uintptr
	gstVideoOverlaySetWindow func(overlay uintptr, handle uintptr)
	gstVideoOverlayGetType   func() uintptr
	gTypeCheckInstanceIsA    func(instance uintptr, itype uintptr) bool
)

type library struct {
	name    string // soname on Linux
	darwin  string // dylib name on macOS
	handle  uintptr
	symbols func(h uintptr)
}

var libraries = []*library{
	{
		name:   "libglib-2.0.so.0",
		darwin: "libglib-2.0.0.dylib",
		symbols: func(h uintptr) {
			purego.RegisterLibFunc(&gFree, h, "g_free")
			purego.RegisterLibFunc(&gErrorFree, h, "g_error_free")
			purego.RegisterLibFunc(&gQuarkToString, h, "g_quark_to_string")
		},
	},
	{
		name:   "libgobject-2.0.so.0",
		darwin: "libgobject-2.0.0.dylib",
		symbols: func(h uintptr) {
			purego.RegisterLibFunc(&gTypeFundamental, h, "g_type_fundamental")
			purego.RegisterLibFunc(&gTypeCheckInstanceIsA, h, "g_type_check_instance_is_a")
			purego.RegisterLibFunc(&gValueInit, h, "g_value_init")
			purego.RegisterLibFunc(&gValueUnset, h, "g_value_unset")
			purego.RegisterLibFunc(&gValueSetInt, h, "g_value_set_int")
			purego.RegisterLibFunc(&gValueGetInt, h, "g_value_get_int")
			purego.RegisterLibFunc(&gValueSetUint, h, "g_value_set_uint")
			purego.RegisterLibFunc(&gValueGetUint, h, "g_value_get_uint")
			purego.RegisterLibFunc(&gValueSetFlags, h, "g_value_set_flags")
			purego.RegisterLibFunc(&gValueGetFlags, h, "g_value_get_flags")
			purego.RegisterLibFunc(&gValueSetEnum, h, "g_value_set_enum")
			purego.RegisterLibFunc(&gValueGetEnum, h, "g_value_get_enum")
			purego.RegisterLibFunc(&gValueSetString, h, "g_value_set_string")
			purego.RegisterLibFunc(&gValueGetString, h, "g_value_get_string")
			purego.RegisterLibFunc(&gValueSetObject, h, "g_value_set_object")
			purego.RegisterLibFunc(&gValueGetBoxed, h, "g_value_get_boxed")
			purego.RegisterLibFunc(&gObjectSetProperty, h, "g_object_set_property")
			purego.RegisterLibFunc(&gObjectGetProperty, h, "g_object_get_property")
			purego.RegisterLibFunc(&gObjectClassFindProperty, h, "g_object_class_find_property")
			purego.RegisterLibFunc(&gSignalLookup, h, "g_signal_lookup")
			purego.RegisterLibFunc(&gSignalEmitv, h, "g_signal_emitv")
		},
	},
	{
		name:   "libgstreamer-1.0.so.0",
		darwin: "libgstreamer-1.0.0.dylib",
		symbols: func(h uintptr) {
			purego.RegisterLibFunc(&gstInitCheck, h, "gst_init_check")
			purego.RegisterLibFunc(&gstElementFactoryMake, h, "gst_element_factory_make")
			purego.RegisterLibFunc(&gstPipelineNew, h, "gst_pipeline_new")
			purego.RegisterLibFunc(&gstBinAdd, h, "gst_bin_add")
			purego.RegisterLibFunc(&gstElementSetState, h, "gst_element_set_state")
			purego.RegisterLibFunc(&gstElementGetBus, h, "gst_element_get_bus")
			purego.RegisterLibFunc(&gstElementQueryPosition, h, "gst_element_query_position")
			purego.RegisterLibFunc(&gstElementQueryDuration, h, "gst_element_query_duration")
			purego.RegisterLibFunc(&gstElementSeek, h, "gst_element_seek")
			purego.RegisterLibFunc(&gstBusTimedPopFiltered, h, "gst_bus_timed_pop_filtered")
			purego.RegisterLibFunc(&gstMessageParseError, h, "gst_message_parse_error")
			purego.RegisterLibFunc(&gstMiniObjectUnref, h, "gst_mini_object_unref")
			purego.RegisterLibFunc(&gstObjectUnref, h, "gst_object_unref")
			purego.RegisterLibFunc(&gstTagListGetType, h, "gst_tag_list_get_type")
			purego.RegisterLibFunc(&gstTagListGetString, h, "gst_tag_list_get_string")
		},
	},
	{
		name:   "libgsttag-1.0.so.0",
		darwin: "libgsttag-1.0.0.dylib",
		symbols: func(h uintptr) {
			purego.RegisterLibFunc(&gstTagGetLanguageName, h, "gst_tag_get_language_name")
		},
	},
	{
		name:   "libgstvideo-1.0.so.0",
		darwin: "libgstvideo-1.0.0.dylib",
		symbols: func(h uintptr) {
			purego.RegisterLibFunc(&gstVideoOverlaySetWindow, h, "gst_video_overlay_set_window_handle")
			purego.RegisterLibFunc(&gstVideoOverlayGetType, h, "gst_video_overlay_get_type")
		},
	},
}

// loadLibraries opens every library once per process.
func loadLibraries(cfg Config) error {
	libOnce.Do(func() {
		for _, lib := range libraries {
			if err := lib.open(cfg); err != nil {
				libErr = err
				return
			}
		}
	})
	return libErr
}

func (l *library) open(cfg Config) error {
	name := l.name
	if runtime.GOOS == "darwin" {
		name = l.darwin
	}

	var lastErr error
	for _, path := range libraryPaths(cfg, name) {
		h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		l.handle = h
		if err := registerSymbols(l, h); err != nil {
			purego.Dlclose(h)
			l.handle = 0
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("load %s: %w", name, lastErr)
	}
	return fmt.Errorf("load %s: not found", name)
}

// registerSymbols converts a missing-symbol panic from purego into an error.
func registerSymbols(l *library, h uintptr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", l.name, r)
		}
	}()
	l.symbols(h)
	return nil
}

func libraryPaths(cfg Config, name string) []string {
	var paths []string

	if cfg.LibraryPath != "" {
		paths = append(paths, filepath.Join(cfg.LibraryPath, name))
	}
	if env := os.Getenv("PLAYBIN_GST_LIB_PATH"); env != "" {
		paths = append(paths, filepath.Join(env, name))
	}

	if runtime.GOOS == "darwin" {
		paths = append(paths,
			filepath.Join("/Library/Frameworks/GStreamer.framework/Versions/1.0/lib", name),
			filepath.Join("/opt/homebrew/lib", name),
			filepath.Join("/usr/local/lib", name),
		)
	}

	// Bare name last so the dynamic linker search path applies
	return append(paths, name)
}

// goString copies a NUL-terminated C string.
func goString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr) //nolint:govet // pointer owned by C
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

var errNullElement = errors.New("null element")
