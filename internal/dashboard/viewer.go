package dashboard

import (
	"errors"
	"strings"
)

// ErrNotViewable means the evidence cannot be opened in the contract viewer.
var ErrNotViewable = errors.New("evidence is not a viewable contract clause")

// ViewerTarget locates a clause inside a contract PDF.
type ViewerTarget struct {
	Filename  string  `json:"filename"`
	URL       string  `json:"url"`
	Page      int     `json:"page"`
	Highlight *Bounds `json:"highlight,omitempty"`
}

// ResolveViewerTarget finds where to open the viewer for a piece of
// evidence. Only contract clauses whose file belongs to the job qualify.
// contractURL builds the PDF address for a filename.
func ResolveViewerTarget(ev Evidence, docs []ExtractedDocument, contractURL func(filename string) string) (ViewerTarget, error) {
	if ev.Type != "contract_clause" || strings.TrimSpace(ev.File) == "" {
		return ViewerTarget{}, ErrNotViewable
	}
	var doc *ExtractedDocument
	for i := range docs {
		if docs[i].Filename == ev.File {
			doc = &docs[i]
			break
		}
	}
	if doc == nil || doc.Filename == "" {
		return ViewerTarget{}, ErrNotViewable
	}

	target := ViewerTarget{
		Filename:  doc.Filename,
		Page:      viewerPage(ev, *doc),
		Highlight: viewerHighlight(ev),
	}
	if contractURL != nil {
		target.URL = contractURL(doc.Filename)
	}
	return target, nil
}

func viewerPage(ev Evidence, doc ExtractedDocument) int {
	for _, region := range ev.Regions {
		if region.Page != nil && *region.Page > 0 {
			return *region.Page
		}
	}
	if ev.Page != nil && *ev.Page > 0 {
		return *ev.Page
	}
	for _, clause := range doc.Clauses {
		if clause.File == doc.Filename && clause.Page != nil && *clause.Page > 0 {
			return *clause.Page
		}
	}
	return 1
}

func viewerHighlight(ev Evidence) *Bounds {
	if ev.Bounds != nil {
		return ev.Bounds
	}
	for _, region := range ev.Regions {
		if region.Bounds != nil {
			return region.Bounds
		}
	}
	return nil
}
