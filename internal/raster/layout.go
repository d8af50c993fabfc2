package raster

import (
	"strconv"

	"github.com/diewo77/gst-invoices/internal/render"
	"golang.org/x/image/font"
)

// item table column widths as fractions of the content width
var itemColumns = []float64{0.07, 0.35, 0.12, 0.10, 0.12, 0.08, 0.16}

// layout walks the document top to bottom and returns the page height.
func layout(p *painter, doc *render.Document) int {
	m := p.px(20)
	pad := p.px(6)
	left, right := m, p.width-m
	y := m

	y += pad
	y += p.textCenter(p.faces.small, "("+doc.Caption+")", left, right, y)
	y += p.textCenter(p.faces.title, doc.Title, left, right, y)
	y += pad
	p.hline(left, right, y)

	y = headerBlock(p, doc, left, right, y, pad)
	y = partiesBlock(p, doc, left, right, y, pad)
	y = itemsBlock(p, doc, left, right, y, pad)
	y = totalsBlock(p, doc, left, right, y, pad)
	y = summaryBlock(p, doc, left, right, y, pad)
	y = footerBlock(p, doc, left, right, y, pad)

	if doc.Jurisdiction != "" {
		y += pad
		y += p.textCenter(p.faces.small, doc.Jurisdiction, left, right, y)
		y += pad
		p.hline(left, right, y)
	}
	p.box(left, m, right, y)

	y += pad
	y += p.textCenter(p.faces.small, doc.Footnote, left, right, y)
	return y + m
}

// headerBlock draws the seller on the left and the details grid on the right.
func headerBlock(p *painter, doc *render.Document, left, right, top, pad int) int {
	mid := left + (right-left)/2
	lh := partyText(p, doc.Seller, left+pad, top+pad, mid-left-2*pad) + 2*pad

	cellW := (right - mid) / 2
	rowH := p.lineHeight(p.faces.small) + p.lineHeight(p.faces.regular) + pad
	rows := (len(doc.Meta) + 1) / 2
	rh := rows * rowH
	for i, c := range doc.Meta {
		x := mid + (i%2)*cellW
		y := top + (i/2)*rowH
		ty := y + pad/2
		ty += p.text(p.faces.small, p.clip(p.faces.small, c.Label, cellW-pad), x+pad/2, ty)
		p.text(p.faces.bold, p.clip(p.faces.bold, c.Value, cellW-pad), x+pad/2, ty)
		if i%2 == 1 {
			p.vline(x, y, y+rowH)
		}
		if i/2 < rows-1 {
			p.hline(mid, right, y+rowH)
		}
	}

	bottom := top + max(lh, rh)
	p.vline(mid, top, bottom)
	p.hline(left, right, bottom)
	return bottom
}

func partiesBlock(p *painter, doc *render.Document, left, right, top, pad int) int {
	mid := left + (right-left)/2
	h := max(
		partyText(p, doc.Consignee, left+pad, top+pad, mid-left-2*pad),
		partyText(p, doc.Buyer, mid+pad, top+pad, right-mid-2*pad),
	) + 2*pad
	p.vline(mid, top, top+h)
	p.hline(left, right, top+h)
	return top + h
}

// partyText draws a party block and returns its height.
func partyText(p *painter, party render.Party, x, top, w int) int {
	y := top
	if party.Title != "" {
		y += p.text(p.faces.smallBold, party.Title, x, y)
	}
	for _, l := range p.wrap(p.faces.bold, party.Name, w) {
		y += p.text(p.faces.bold, l, x, y)
	}
	for _, a := range party.Address {
		y += p.paragraph(p.faces.regular, a, x, y, w)
	}
	for _, d := range party.Details {
		y += p.paragraph(p.faces.small, d, x, y, w)
	}
	return y - top
}

func columnEdges(left, right int, fractions []float64) []int {
	edges := make([]int, len(fractions)+1)
	edges[0] = left
	x := float64(left)
	for i, f := range fractions {
		x += f * float64(right-left)
		edges[i+1] = int(x)
	}
	edges[len(fractions)] = right
	return edges
}

func itemsBlock(p *painter, doc *render.Document, left, right, top, pad int) int {
	edges := columnEdges(left, right, itemColumns)
	rowH := p.lineHeight(p.faces.regular) + pad
	y := top

	headH := rowH
	for i, h := range doc.Items.Header {
		w := edges[i+1] - edges[i] - pad
		n := len(p.wrap(p.faces.smallBold, h, w))
		headH = max(headH, n*p.lineHeight(p.faces.smallBold)+pad)
	}
	for i, h := range doc.Items.Header {
		w := edges[i+1] - edges[i] - pad
		ty := y + pad/2
		for _, l := range p.wrap(p.faces.smallBold, h, w) {
			ty += p.textCenter(p.faces.smallBold, l, edges[i], edges[i+1], ty)
		}
	}
	y += headH
	p.hline(left, right, y)

	for _, row := range doc.Items.Rows {
		if !row.Spacer {
			for i, c := range row.Cells() {
				w := edges[i+1] - edges[i] - pad
				c = p.clip(p.faces.regular, c, w)
				switch i {
				case 3, 4, 6:
					p.textRight(p.faces.regular, c, edges[i+1]-pad/2, y+pad/2)
				default:
					p.text(p.faces.regular, c, edges[i]+pad/2, y+pad/2)
				}
			}
		}
		y += rowH
	}
	if doc.Items.Hidden > 0 {
		note := "+ " + strconv.Itoa(doc.Items.Hidden) + " more item(s) not shown"
		y += p.text(p.faces.small, note, edges[1]+pad/2, y)
	}

	for _, x := range edges[1 : len(edges)-1] {
		p.vline(x, top, y)
	}
	p.hline(left, right, y)
	return y
}

func totalsBlock(p *painter, doc *render.Document, left, right, top, pad int) int {
	labelEnd := left + (right-left)*3/4
	y := top + pad/2
	for _, t := range doc.Totals {
		face := p.faces.regular
		if t.Grand {
			face = p.faces.bold
		}
		p.textRight(face, t.Label, labelEnd-pad, y)
		y += p.textRight(face, t.Value, right-pad, y)
	}
	y += pad / 2
	p.vline(labelEnd, top, y)
	p.hline(left, right, y)

	y += pad / 2
	y += p.text(p.faces.small, "Amount Chargeable (in words)", left+pad, y)
	y += p.paragraph(p.faces.bold, doc.AmountInWords, left+pad, y, right-left-2*pad)
	y += pad / 2
	p.hline(left, right, y)
	return y
}

func summaryBlock(p *painter, doc *render.Document, left, right, top, pad int) int {
	t := doc.TaxSummary
	n := len(t.Header)
	if n == 0 {
		return top
	}
	fr := make([]float64, n)
	for i := range fr {
		fr[i] = 1 / float64(n)
	}
	edges := columnEdges(left, right, fr)
	lh := p.lineHeight(p.faces.small)

	y := top
	headH := lh + pad
	for i, h := range t.Header {
		n := len(p.wrap(p.faces.smallBold, h, edges[i+1]-edges[i]-pad))
		headH = max(headH, n*lh+pad)
	}
	for i, h := range t.Header {
		ty := y + pad/2
		for _, l := range p.wrap(p.faces.smallBold, h, edges[i+1]-edges[i]-pad) {
			ty += p.textCenter(p.faces.smallBold, l, edges[i], edges[i+1], ty)
		}
	}
	y += headH
	p.hline(left, right, y)

	cells := func(row []string, face font.Face) {
		for i, c := range row {
			if i >= n {
				break
			}
			c = p.clip(face, c, edges[i+1]-edges[i]-pad)
			if i == 0 {
				p.text(face, c, edges[i]+pad/2, y+pad/2)
			} else {
				p.textRight(face, c, edges[i+1]-pad/2, y+pad/2)
			}
		}
		y += lh + pad
	}
	for _, row := range t.Rows {
		cells(row, p.faces.small)
	}
	p.hline(left, right, y)
	cells(t.Total, p.faces.smallBold)

	for _, x := range edges[1:n] {
		p.vline(x, top, y)
	}
	p.hline(left, right, y)

	y += pad / 2
	y += p.paragraph(p.faces.small, "Tax Amount (in words): "+doc.TaxInWords, left+pad, y, right-left-2*pad)
	y += pad / 2
	p.hline(left, right, y)
	return y
}

func footerBlock(p *painter, doc *render.Document, left, right, top, pad int) int {
	third := (right - left) / 3
	x1, x2 := left+third, left+2*third
	w := third - 2*pad

	decl := top + pad
	decl += p.text(p.faces.smallBold, "Declaration:", left+pad, decl)
	for _, l := range doc.Declaration {
		decl += p.paragraph(p.faces.small, l, left+pad, decl, w)
	}

	bank := top + pad
	if doc.Bank != nil {
		bank += p.text(p.faces.smallBold, doc.Bank.Title, x1+pad, bank)
		for _, l := range doc.Bank.Lines {
			bank += p.paragraph(p.faces.small, l, x1+pad, bank, w)
		}
	}

	sig := top + pad
	sig += p.paragraph(p.faces.bold, "for "+doc.Signature.For, x2+pad, sig, w)
	sig += 3 * p.lineHeight(p.faces.regular)
	sig += p.textRight(p.faces.small, doc.Signature.Label, right-pad, sig)

	bottom := max(decl, bank, sig) + pad
	p.vline(x1, top, bottom)
	p.vline(x2, top, bottom)
	p.hline(left, right, bottom)
	return bottom
}
