package session

// Paging commands shared by every list view.
const (
	CmdExit     = 0
	CmdPrevPage = 88
	CmdNextPage = 99
)

// Pager windows an ordered sequence into 1-indexed pages of a fixed size.
// It holds a snapshot of the sequence; views rebuild it on every render and
// carry the page number across rebuilds with Seek.
type Pager[T any] struct {
	items    []T
	pageSize int
	page     int
}

func NewPager[T any](items []T, pageSize int) *Pager[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Pager[T]{items: items, pageSize: pageSize, page: 1}
}

func (p *Pager[T]) Empty() bool {
	return len(p.items) == 0
}

func (p *Pager[T]) Page() int {
	return p.page
}

func (p *Pager[T]) PageCount() int {
	if len(p.items) == 0 {
		return 1
	}
	return (len(p.items) + p.pageSize - 1) / p.pageSize
}

// Seek moves to the given page, clamped to the valid range. Used to keep the
// reader's place when the underlying sequence shrinks under them.
func (p *Pager[T]) Seek(page int) {
	if page < 1 {
		page = 1
	}
	if max := p.PageCount(); page > max {
		page = max
	}
	p.page = page
}

// Window returns the elements visible on the current page.
func (p *Pager[T]) Window() []T {
	lo := (p.page - 1) * p.pageSize
	if lo >= len(p.items) {
		return nil
	}
	hi := lo + p.pageSize
	if hi > len(p.items) {
		hi = len(p.items)
	}
	return p.items[lo:hi]
}

func (p *Pager[T]) HasNext() bool {
	return p.page*p.pageSize < len(p.items)
}

func (p *Pager[T]) HasPrev() bool {
	return p.page > 1
}

// Next advances one page. Reports whether the move was valid; an invalid
// move leaves the page unchanged.
func (p *Pager[T]) Next() bool {
	if !p.HasNext() {
		return false
	}
	p.page++
	return true
}

func (p *Pager[T]) Prev() bool {
	if !p.HasPrev() {
		return false
	}
	p.page--
	return true
}

// Select resolves a 1-based position within the current window.
func (p *Pager[T]) Select(pos int) (T, bool) {
	var zero T
	w := p.Window()
	if pos < 1 || pos > len(w) {
		return zero, false
	}
	return w[pos-1], true
}
