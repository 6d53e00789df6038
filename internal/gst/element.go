package gst

// Element is a reference to a native GstElement created by MakeElement.
// Ownership passes to the pipeline once the element is installed as a sink.
type Element struct {
	ptr     uintptr
	name    string
	factory string
}

// Name returns the element name given at creation.
func (e *Element) Name() string { return e.name }

// Factory returns the element factory the element was made from.
func (e *Element) Factory() string { return e.factory }

// Sinks are optional elements installed as playbin's video and audio sinks.
// A nil sink keeps playbin's automatic choice.
type Sinks struct {
	Video *Element
	Audio *Element
}
