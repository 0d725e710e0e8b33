package docread

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/entity"
)

// Fragments closer than this horizontally are glued into one word. PDF text
// content streams often split a single visual word into several fragments.
const wordJoinGap = 1.0

func (r *Reader) readPDF(ctx context.Context, path string) (Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	doc := Document{Format: constants.PDF}
	total := reader.NumPage()
	if r.cfg.MaxPages > 0 && total > r.cfg.MaxPages {
		total = r.cfg.MaxPages
	}

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		words := wordsFromFragments(page.Content().Text)
		if len(words) == 0 {
			continue
		}
		doc.Pages = append(doc.Pages, PageContent{Words: words})
	}
	return doc, nil
}

// wordsFromFragments converts raw text fragments into positioned words.
// PDF coordinates grow bottom-up; the Y axis is flipped so downstream
// clustering sees reading order. Adjacent fragments on the same baseline
// are joined when the horizontal gap is below wordJoinGap.
func wordsFromFragments(texts []pdf.Text) []entity.Word {
	var words []entity.Word
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		h := t.FontSize
		if h <= 0 {
			h = 1
		}
		w := entity.Word{
			X0:   t.X,
			Y0:   -t.Y,
			X1:   t.X + t.W,
			Y1:   -t.Y + h,
			Text: t.S,
		}
		if n := len(words); n > 0 && sameBaseline(words[n-1], w) && w.X0-words[n-1].X1 < wordJoinGap && w.X0 >= words[n-1].X0 {
			words[n-1].Text += w.Text
			words[n-1].X1 = w.X1
			continue
		}
		words = append(words, w)
	}
	return words
}

func sameBaseline(a, b entity.Word) bool {
	return math.Abs(a.Y0-b.Y0) < 0.5
}
