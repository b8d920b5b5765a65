package layout

import (
	"github.com/sambeau/zmklayout/pkg/zmk/binding"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
)

// LayerManager exposes layer-level operations. Every mutation returns a new
// Layout.
type LayerManager struct {
	layout *Layout
}

// Names returns the layer names in order.
func (m *LayerManager) Names() []string {
	return append([]string(nil), m.layout.doc.LayerNames...)
}

// Count returns the number of layers.
func (m *LayerManager) Count() int {
	return len(m.layout.doc.LayerNames)
}

// Contains reports whether the named layer exists.
func (m *LayerManager) Contains(name string) bool {
	return m.layout.doc.LayerIndex(name) >= 0
}

// Add appends a new empty layer.
func (m *LayerManager) Add(name string) (*Layout, error) {
	return m.AddAt(name, m.Count())
}

// AddAt inserts a new empty layer at the given position.
func (m *LayerManager) AddAt(name string, position int) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if doc.LayerIndex(name) >= 0 {
			return zmkerrors.NewLayerExists(name)
		}
		if position < 0 || position > len(doc.LayerNames) {
			return zmkerrors.NewIndexOutOfRange(position, len(doc.LayerNames))
		}
		doc.LayerNames = insertString(doc.LayerNames, position, name)
		doc.Layers = insertLayer(doc.Layers, position, []binding.Binding{})
		return nil
	})
}

// Get returns a proxy for per-layer binding operations.
func (m *LayerManager) Get(name string) (*LayerProxy, error) {
	if m.layout.doc.LayerIndex(name) < 0 {
		return nil, zmkerrors.NewLayerNotFound(name)
	}
	return &LayerProxy{layout: m.layout, name: name}, nil
}

// Remove drops the layer and its name.
func (m *LayerManager) Remove(name string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		idx := doc.LayerIndex(name)
		if idx < 0 {
			return zmkerrors.NewLayerNotFound(name)
		}
		doc.LayerNames = append(doc.LayerNames[:idx], doc.LayerNames[idx+1:]...)
		doc.Layers = append(doc.Layers[:idx], doc.Layers[idx+1:]...)
		return nil
	})
}

// Move repositions the layer. References by index elsewhere in the
// document are not rewritten.
func (m *LayerManager) Move(name string, position int) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		idx := doc.LayerIndex(name)
		if idx < 0 {
			return zmkerrors.NewLayerNotFound(name)
		}
		if position < 0 || position >= len(doc.LayerNames) {
			return zmkerrors.NewIndexOutOfRange(position, len(doc.LayerNames))
		}

		layerName := doc.LayerNames[idx]
		layer := doc.Layers[idx]
		doc.LayerNames = append(doc.LayerNames[:idx], doc.LayerNames[idx+1:]...)
		doc.Layers = append(doc.Layers[:idx], doc.Layers[idx+1:]...)
		doc.LayerNames = insertString(doc.LayerNames, position, layerName)
		doc.Layers = insertLayer(doc.Layers, position, layer)
		return nil
	})
}

// Rename replaces a layer's name. Index references are unaffected.
func (m *LayerManager) Rename(oldName, newName string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		idx := doc.LayerIndex(oldName)
		if idx < 0 {
			return zmkerrors.NewLayerNotFound(oldName)
		}
		if doc.LayerIndex(newName) >= 0 {
			return zmkerrors.NewLayerExists(newName)
		}
		doc.LayerNames[idx] = newName
		return nil
	})
}

// Copy deep-copies a layer's bindings under a new name, appended at the
// end.
func (m *LayerManager) Copy(sourceName, targetName string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		src := doc.LayerIndex(sourceName)
		if src < 0 {
			return zmkerrors.NewLayerNotFound(sourceName)
		}
		if doc.LayerIndex(targetName) >= 0 {
			return zmkerrors.NewLayerExists(targetName)
		}
		copied := make([]binding.Binding, len(doc.Layers[src]))
		copy(copied, doc.Layers[src])
		doc.LayerNames = append(doc.LayerNames, targetName)
		doc.Layers = append(doc.Layers, copied)
		return nil
	})
}

// Clear empties the layer's bindings.
func (m *LayerManager) Clear(name string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		idx := doc.LayerIndex(name)
		if idx < 0 {
			return zmkerrors.NewLayerNotFound(name)
		}
		doc.Layers[idx] = []binding.Binding{}
		return nil
	})
}

// Reorder applies a permutation of the current layer names.
func (m *LayerManager) Reorder(names []string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if len(names) != len(doc.LayerNames) {
			return zmkerrors.New("LAYER-0003", nil)
		}
		newLayers := make([][]binding.Binding, 0, len(names))
		seen := map[string]bool{}
		for _, name := range names {
			idx := doc.LayerIndex(name)
			if idx < 0 || seen[name] {
				return zmkerrors.New("LAYER-0003", nil)
			}
			seen[name] = true
			newLayers = append(newLayers, doc.Layers[idx])
		}
		doc.LayerNames = append([]string(nil), names...)
		doc.Layers = newLayers
		return nil
	})
}

// LayerProxy exposes binding operations on one layer. It resolves the
// layer by name, so a proxy obtained from an older Layout stays usable as
// long as the layer keeps its name.
type LayerProxy struct {
	layout *Layout
	name   string
}

// Name returns the proxied layer's name.
func (p *LayerProxy) Name() string {
	return p.name
}

func (p *LayerProxy) mutate(fn func(doc *model.Document, idx int) *zmkerrors.LayoutError) (*Layout, error) {
	return p.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		idx := doc.LayerIndex(p.name)
		if idx < 0 {
			return zmkerrors.NewLayerNotFound(p.name)
		}
		return fn(doc, idx)
	})
}

// Bindings returns a copy of the layer's bindings.
func (p *LayerProxy) Bindings() []binding.Binding {
	idx := p.layout.doc.LayerIndex(p.name)
	if idx < 0 {
		return nil
	}
	return append([]binding.Binding(nil), p.layout.doc.Layers[idx]...)
}

// Len returns the number of bindings in the layer.
func (p *LayerProxy) Len() int {
	idx := p.layout.doc.LayerIndex(p.name)
	if idx < 0 {
		return 0
	}
	return len(p.layout.doc.Layers[idx])
}

// Get returns the binding at position i.
func (p *LayerProxy) Get(i int) (binding.Binding, error) {
	idx := p.layout.doc.LayerIndex(p.name)
	if idx < 0 {
		return binding.Binding{}, zmkerrors.NewLayerNotFound(p.name)
	}
	layer := p.layout.doc.Layers[idx]
	if i < 0 || i >= len(layer) {
		return binding.Binding{}, zmkerrors.NewIndexOutOfRange(i, len(layer))
	}
	return layer[i], nil
}

// Set places a binding at position i. Positions beyond the current length
// are filled with '&trans' first.
func (p *LayerProxy) Set(i int, b binding.Binding) (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		if i < 0 {
			return zmkerrors.NewIndexOutOfRange(i, len(doc.Layers[idx]))
		}
		for len(doc.Layers[idx]) <= i {
			doc.Layers[idx] = append(doc.Layers[idx], binding.Transparent())
		}
		doc.Layers[idx][i] = b
		return nil
	})
}

// SetString parses the binding string and places it at position i.
func (p *LayerProxy) SetString(i int, s string) (*Layout, error) {
	b, err := binding.Parse(s)
	if err != nil {
		return nil, err
	}
	return p.Set(i, b)
}

// SetRange replaces positions [start, end). The replacement must have
// exactly end-start bindings.
func (p *LayerProxy) SetRange(start, end int, bindings []binding.Binding) (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		layer := doc.Layers[idx]
		if start < 0 || end < start || end > len(layer) {
			return zmkerrors.NewIndexOutOfRange(end, len(layer))
		}
		if len(bindings) != end-start {
			return zmkerrors.New("INDEX-0002", map[string]any{
				"Start": start, "End": end, "Want": end - start, "Got": len(bindings),
			})
		}
		copy(layer[start:end], bindings)
		return nil
	})
}

// CopyFrom replaces the layer's bindings with a deep copy of another
// layer's.
func (p *LayerProxy) CopyFrom(sourceName string) (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		src := doc.LayerIndex(sourceName)
		if src < 0 {
			return zmkerrors.NewLayerNotFound(sourceName)
		}
		copied := make([]binding.Binding, len(doc.Layers[src]))
		copy(copied, doc.Layers[src])
		doc.Layers[idx] = copied
		return nil
	})
}

// Append adds a binding at the end of the layer.
func (p *LayerProxy) Append(b binding.Binding) (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		doc.Layers[idx] = append(doc.Layers[idx], b)
		return nil
	})
}

// Insert places a binding at position i, shifting the rest right.
func (p *LayerProxy) Insert(i int, b binding.Binding) (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		layer := doc.Layers[idx]
		if i < 0 || i > len(layer) {
			return zmkerrors.NewIndexOutOfRange(i, len(layer))
		}
		layer = append(layer, binding.Binding{})
		copy(layer[i+1:], layer[i:])
		layer[i] = b
		doc.Layers[idx] = layer
		return nil
	})
}

// Remove drops the binding at position i.
func (p *LayerProxy) Remove(i int) (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		layer := doc.Layers[idx]
		if i < 0 || i >= len(layer) {
			return zmkerrors.NewIndexOutOfRange(i, len(layer))
		}
		doc.Layers[idx] = append(layer[:i], layer[i+1:]...)
		return nil
	})
}

// Clear empties the layer.
func (p *LayerProxy) Clear() (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		doc.Layers[idx] = []binding.Binding{}
		return nil
	})
}

// Fill replaces the layer with size copies of the binding.
func (p *LayerProxy) Fill(b binding.Binding, size int) (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		if size < 0 {
			return zmkerrors.NewIndexOutOfRange(size, 0)
		}
		layer := make([]binding.Binding, size)
		for i := range layer {
			layer[i] = b
		}
		doc.Layers[idx] = layer
		return nil
	})
}

// PadTo extends the layer to size with the pad binding. Shorter sizes are
// a no-op.
func (p *LayerProxy) PadTo(size int, pad binding.Binding) (*Layout, error) {
	return p.mutate(func(doc *model.Document, idx int) *zmkerrors.LayoutError {
		for len(doc.Layers[idx]) < size {
			doc.Layers[idx] = append(doc.Layers[idx], pad)
		}
		return nil
	})
}

// Stats summarises a layer.
type Stats struct {
	Total       int
	Transparent int
}

// Describe returns binding statistics for the layer.
func (p *LayerProxy) Describe() Stats {
	var s Stats
	for _, b := range p.Bindings() {
		s.Total++
		if b.IsTransparent() {
			s.Transparent++
		}
	}
	return s
}

func insertString(s []string, i int, v string) []string {
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func insertLayer(s [][]binding.Binding, i int, v []binding.Binding) [][]binding.Binding {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
