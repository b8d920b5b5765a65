package layout

import (
	"github.com/sambeau/zmklayout/pkg/zmk/pipeline"
	"github.com/sambeau/zmklayout/pkg/zmk/providers"
)

// FromKeymap parses DTSI keymap source into a layout using the full parse
// mode. The pipeline result is returned alongside the layout so callers
// can inspect warnings and extracted sections.
func FromKeymap(content string, p *providers.Providers) (*Layout, *pipeline.Result, error) {
	if p == nil {
		p = providers.Default()
	}
	res := pipeline.New(p).Parse(content, pipeline.ModeFull)
	if !res.Success {
		return nil, res, res.Errors[0]
	}
	return FromDocument(res.Layout, p), res, nil
}
