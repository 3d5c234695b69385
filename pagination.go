package database

import (
	"context"
	"strconv"
	"strings"
)

const (
	DefaultPerPage  = 10
	DefaultIntPages = 5
)

// PaginationArgs configures the page links.
type PaginationArgs struct {
	// PerPage is the number of rows per page.
	PerPage int
	// IntPages is the number of numbered links around the current page.
	IntPages int
	// BaseURL receives "page=N" after "?" or "&".
	BaseURL string
	// Page is the current page; zero selects the first page, or the last one
	// when rendering in reverse.
	Page int
}

type pageWindow struct {
	base              string
	current           int
	prev, next        int
	first, last       int
	from, to          int
	hasFirst, hasLast bool
}

// window computes the visible page range, or false when fewer than two pages exist.
func (a PaginationArgs) window(total int64, reverse bool) (pageWindow, bool) {
	perPage := a.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	intPages := a.IntPages
	if intPages <= 0 {
		intPages = DefaultIntPages
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 2 {
		return pageWindow{}, false
	}

	sep := "?"
	if strings.Contains(a.BaseURL, "?") {
		sep = "&"
	}
	w := pageWindow{base: a.BaseURL + sep + "page=", first: 1, last: last}

	w.current = a.Page
	if w.current == 0 && reverse {
		w.current = last
	}
	w.current = min(max(w.current, 1), last)

	w.prev = w.current - 1
	if w.current+1 <= last {
		w.next = w.current + 1
	}

	w.from = max(w.current-(intPages-1)/2, 1)
	w.to = min(w.from+intPages-1, last)
	w.from = max(w.to-intPages+1, 1)

	w.hasFirst = w.from != 1
	w.hasLast = w.to != last
	return w, true
}

type pageList struct {
	sb   strings.Builder
	base string
}

func (l *pageList) link(page int, label, rel string) {
	l.sb.WriteString(`<li class="page-item"><a class="page-link" href="` + l.base + strconv.Itoa(page) + `"`)
	if rel != "" {
		l.sb.WriteString(` rel="` + rel + `"`)
	}
	l.sb.WriteString(">" + label + "</a></li>" + eol)
}

func (l *pageList) disabled(label string) {
	l.sb.WriteString(`<li class="page-item disabled"><a class="page-link" href="#">` + label + "</a></li>" + eol)
}

func (l *pageList) active(page int) {
	l.sb.WriteString(`<li class="page-item active"><a class="page-link" href="#">` + strconv.Itoa(page) + "</a></li>" + eol)
}

func (l *pageList) page(i, current int) {
	if i == current {
		l.active(i)
	} else {
		l.link(i, strconv.Itoa(i), "")
	}
}

// arrow renders « or », linking to page when it is non-zero.
func (l *pageList) arrow(page int, label, rel string) {
	if page == 0 {
		l.disabled(label)
	} else {
		l.link(page, label, rel)
	}
}

// RenderPagination renders bootstrap page links for total rows, "" when they
// fit on one page.
func RenderPagination(total int64, args PaginationArgs) string {
	w, ok := args.window(total, false)
	if !ok {
		return ""
	}
	l := &pageList{base: w.base}
	l.sb.WriteString(eol + `<ul class="pagination justify-content-center">` + eol)

	l.arrow(w.prev, "&laquo;", "prev")
	if w.hasFirst {
		l.link(w.first, strconv.Itoa(w.first), "")
		if w.from-w.first > 1 {
			l.disabled("...")
		}
	}
	for i := w.from; i <= w.to; i++ {
		l.page(i, w.current)
	}
	if w.hasLast {
		if w.last-w.to > 1 {
			l.disabled("...")
		}
		l.link(w.last, strconv.Itoa(w.last), "")
	}
	l.arrow(w.next, "&raquo;", "next")

	l.sb.WriteString("</ul>" + eol)
	return l.sb.String()
}

// RenderPaginationReverse renders the links from the last page down to the
// first: « leads to the next page and » to the previous one.
func RenderPaginationReverse(total int64, args PaginationArgs) string {
	w, ok := args.window(total, true)
	if !ok {
		return ""
	}
	l := &pageList{base: w.base}
	l.sb.WriteString(eol + `<ul class="pagination justify-content-center">` + eol)

	l.arrow(w.next, "&laquo;", "next")
	if w.hasLast {
		l.link(w.last, strconv.Itoa(w.last), "")
		if w.last-w.to > 1 {
			l.disabled("...")
		}
	}
	for i := w.to; i >= w.from; i-- {
		l.page(i, w.current)
	}
	if w.hasFirst {
		if w.from-w.first > 1 {
			l.disabled("...")
		}
		l.link(w.first, strconv.Itoa(w.first), "")
	}
	l.arrow(w.prev, "&raquo;", "prev")

	l.sb.WriteString("</ul>" + eol)
	return l.sb.String()
}

// Pagination counts the rows matching opts and renders their page links.
func (d *Database) Pagination(ctx context.Context, target Target, args PaginationArgs, opts ...Options) (string, error) {
	total, err := d.Count(ctx, target, opts...)
	if err != nil {
		return "", err
	}
	return RenderPagination(total, args), nil
}

// PaginationReverse is Pagination rendered from the last page down.
func (d *Database) PaginationReverse(ctx context.Context, target Target, args PaginationArgs, opts ...Options) (string, error) {
	total, err := d.Count(ctx, target, opts...)
	if err != nil {
		return "", err
	}
	return RenderPaginationReverse(total, args), nil
}
