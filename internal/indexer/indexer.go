package indexer

import (
	"context"
	"log/slog"
	"strings"

	"spallflow/internal/modeljson"
	"spallflow/internal/providers"
)

const (
	identifyMaxTokens = 512
	elementMaxTokens  = 2048

	// Responses shorter than this are fence residue or refusal artifacts,
	// not section content.
	minTextContentLength = 10
)

// Extractor drives the VLM over single page images: one identification pass,
// then one type-specific extraction pass per discovered element. Every
// model call is blocking and strictly sequential.
type Extractor struct {
	vlm providers.Querier
	log *slog.Logger
}

func New(vlm providers.Querier, log *slog.Logger) *Extractor {
	return &Extractor{vlm: vlm, log: log}
}

// ExtractPage never fails: element-level problems shrink the result lists and
// a page-level problem is reported through PageStructure.Error so that the
// caller can keep going with the next page.
func (e *Extractor) ExtractPage(ctx context.Context, img PageImage) PageStructure {
	page := PageStructure{
		PageNumber:   img.Number,
		Tables:       []TableRecord{},
		Figures:      []FigureRecord{},
		TextSections: []TextRecord{},
	}

	resp, _, err := e.vlm.Query(ctx, providers.QueryRequest{
		Operation: "identify_elements",
		Prompt:    identifyPrompt,
		Image:     img.Data,
		ImageMIME: img.MIME,
		MaxTokens: identifyMaxTokens,
	})
	if err != nil {
		e.log.Error("page identification failed", "page", img.Number, "err", err)
		page.Error = err.Error()
		return page
	}

	list, perr := modeljson.ParseList(resp.Text)
	if perr != nil {
		e.log.Warn("element list unparseable, treating page as empty", "page", img.Number, "err", perr)
		list = nil
	}
	elements := make([]Element, 0, len(list))
	for _, v := range list {
		if el, ok := elementFromValue(v); ok {
			elements = append(elements, el)
		}
	}
	page.ElementCount = len(elements)

	for _, el := range elements {
		kind := strings.ToLower(el.Type)
		switch {
		case strings.Contains(kind, "table") && el.ContainsData:
			if t, ok := e.extractTable(ctx, img, el.Description); ok {
				page.Tables = append(page.Tables, t)
			}
		case strings.Contains(kind, "figure"), strings.Contains(kind, "diagram"):
			if f, ok := e.extractFigure(ctx, img, el.Description); ok {
				page.Figures = append(page.Figures, f)
			}
		case strings.Contains(kind, "text"), strings.Contains(kind, "caption"):
			if t, ok := e.extractText(ctx, img, el.Description); ok {
				page.TextSections = append(page.TextSections, t)
			}
		}
	}
	return page
}

func (e *Extractor) extractTable(ctx context.Context, img PageImage, description string) (TableRecord, bool) {
	resp, _, err := e.vlm.Query(ctx, providers.QueryRequest{
		Operation: "extract_table",
		Prompt:    tablePrompt(description),
		Image:     img.Data,
		ImageMIME: img.MIME,
		MaxTokens: elementMaxTokens,
	})
	if err != nil {
		e.log.Warn("table extraction failed", "page", img.Number, "err", err)
		return TableRecord{}, false
	}
	v, perr := modeljson.Parse(resp.Text)
	if perr != nil {
		e.log.Warn("table response unparseable", "page", img.Number, "err", perr)
		return TableRecord{}, false
	}
	t, ok := TableFromValue(v)
	if !ok {
		e.log.Warn("table response is not an object", "page", img.Number)
		return TableRecord{}, false
	}
	return t, true
}

func (e *Extractor) extractFigure(ctx context.Context, img PageImage, description string) (FigureRecord, bool) {
	resp, _, err := e.vlm.Query(ctx, providers.QueryRequest{
		Operation: "extract_figure",
		Prompt:    figurePrompt(description),
		Image:     img.Data,
		ImageMIME: img.MIME,
		MaxTokens: elementMaxTokens,
	})
	if err != nil {
		e.log.Warn("figure extraction failed", "page", img.Number, "err", err)
		return FigureRecord{}, false
	}
	v, perr := modeljson.Parse(resp.Text)
	if perr != nil {
		e.log.Warn("figure response unparseable", "page", img.Number, "err", perr)
		return FigureRecord{}, false
	}
	f, ok := FigureFromValue(v)
	if !ok {
		e.log.Warn("figure response is not an object", "page", img.Number)
		return FigureRecord{}, false
	}
	return f, true
}

func (e *Extractor) extractText(ctx context.Context, img PageImage, description string) (TextRecord, bool) {
	resp, _, err := e.vlm.Query(ctx, providers.QueryRequest{
		Operation: "extract_text",
		Prompt:    textPrompt(description),
		Image:     img.Data,
		ImageMIME: img.MIME,
		MaxTokens: elementMaxTokens,
	})
	if err != nil {
		e.log.Warn("text extraction failed", "page", img.Number, "err", err)
		return TextRecord{}, false
	}
	content := strings.TrimSpace(resp.Text)
	if len(content) < minTextContentLength {
		return TextRecord{}, false
	}
	return TextRecord{Kind: "text_section", Description: description, Content: content}, true
}
