package extract

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// NativeStrategy reads the embedded text layer of a PDF document. Each
// page is tried with progressively looser readers: plain text first,
// then row-grouped text, then a raw content span walk. Fallbacks are
// page-local, so a single damaged page does not force the whole
// document onto a weaker reader.
type NativeStrategy struct {
	pageSeparator string
}

// NewNativeStrategy creates a native text strategy
func NewNativeStrategy(pageSeparator string) *NativeStrategy {
	if pageSeparator == "" {
		pageSeparator = DefaultPageSeparator
	}
	return &NativeStrategy{pageSeparator: pageSeparator}
}

// Name implements Strategy
func (s *NativeStrategy) Name() string {
	return "native"
}

// Extract implements Strategy
func (s *NativeStrategy) Extract(ctx context.Context, doc []byte) Attempt {
	attempt := Attempt{Strategy: s.Name()}

	pages, err := s.readPages(ctx, doc)
	if err != nil {
		attempt.Err = err
		return attempt
	}

	attempt.Text = strings.Join(pages, s.pageSeparator)
	return attempt
}

// readPages recovers from reader panics, which the PDF library is known
// to produce on malformed input.
func (s *NativeStrategy) readPages(ctx context.Context, doc []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, errors.Wrap(err, "open document")
	}

	for i := 1; i <= reader.NumPage(); i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text := pagePlainText(page)
		if strings.TrimSpace(text) == "" {
			text = pageRowText(page)
		}
		if strings.TrimSpace(text) == "" {
			text = pageSpanText(page)
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// pagePlainText extracts the page's text using its font map.
func pagePlainText(page pdf.Page) string {
	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		font := page.Font(name)
		fonts[name] = &font
	}

	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return text
}

// pageRowText joins the page's text rows top to bottom, one line per
// row. Some statement generators emit text that the plain reader drops
// but the row reader still sees.
func pageRowText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, row := range rows {
		for i, word := range row.Content {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(word.S)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// pageSpanText walks the raw content spans, grouping them into lines by
// vertical position. Last resort before giving the page up.
func pageSpanText(page pdf.Page) string {
	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}

	spans := make([]pdf.Text, len(content.Text))
	copy(spans, content.Text)
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Y != spans[j].Y {
			return spans[i].Y > spans[j].Y
		}
		return spans[i].X < spans[j].X
	})

	var sb strings.Builder
	lastY := spans[0].Y
	for _, span := range spans {
		if span.Y != lastY {
			sb.WriteString("\n")
			lastY = span.Y
		}
		sb.WriteString(span.S)
	}
	return sb.String()
}
