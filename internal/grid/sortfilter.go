package grid

import (
	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
)

// Controller holds the query-shaping state of one view: the single active
// sort, the structured/free-text filter, the page window, and the fetch
// sequence used to discard stale responses (an older fetch resolving after a
// newer one is dropped instead of overwriting newer rows).
type Controller struct {
	reg      *Registry
	sort     gateway.Sort
	search   string
	equals   map[string]string
	dateKey  string
	dateFrom string
	dateTo   string
	listSub  map[string]string
	page     gateway.Page

	fetchSeq    uint64
	appliedSeq  uint64
	searchInput uint64 // debounce generation for free-text input
}

func NewController(reg *Registry, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Controller{
		reg:  reg,
		page: gateway.Page{Size: pageSize},
	}
}

// ToggleSort cycles the sort state for key: activating an inactive sortable
// column selects it with its declared default direction; toggling the active
// column flips direction. A different previously active column simply loses
// the indicator (single active sort key per view).
func (c *Controller) ToggleSort(key string) {
	def := c.reg.Lookup(key)
	if !def.Sortable {
		return
	}
	if c.sort.Key == key {
		if c.sort.Dir == gateway.Asc {
			c.sort.Dir = gateway.Desc
		} else {
			c.sort.Dir = gateway.Asc
		}
		return
	}
	dir := gateway.Asc
	if def.SortDefaultDesc {
		dir = gateway.Desc
	}
	c.sort = gateway.Sort{Key: key, Dir: dir}
	c.page.Index = 0
}

func (c *Controller) Sort() gateway.Sort { return c.sort }

// SetSearch updates the free-text filter and rewinds to the first page.
// Callers debounce before triggering the fetch (see NextSearchGen).
func (c *Controller) SetSearch(q string) {
	if q == c.search {
		return
	}
	c.search = q
	c.page.Index = 0
}

func (c *Controller) Search() string { return c.search }

// SetEquals sets or clears an exact-match predicate (empty value clears).
func (c *Controller) SetEquals(field, value string) {
	if value == "" {
		delete(c.equals, field)
	} else {
		if c.equals == nil {
			c.equals = map[string]string{}
		}
		c.equals[field] = value
	}
	c.page.Index = 0
}

// SetDateRange constrains a date field; zero strings are open-ended.
func (c *Controller) SetDateRange(field, from, to string) {
	c.dateKey, c.dateFrom, c.dateTo = field, from, to
	c.page.Index = 0
}

func (c *Controller) DateRange() (field, from, to string) {
	return c.dateKey, c.dateFrom, c.dateTo
}

// SetListContains sets a substring predicate on a list-valued column. The
// store cannot express it; it is applied as a post-filter over the page.
func (c *Controller) SetListContains(field, needle string) {
	if needle == "" {
		delete(c.listSub, field)
	} else {
		if c.listSub == nil {
			c.listSub = map[string]string{}
		}
		c.listSub[field] = needle
	}
}

// Filter assembles the gateway filter from the current state.
func (c *Controller) Filter() gateway.Filter {
	return gateway.Filter{
		Search:       c.search,
		SearchFields: c.reg.SearchFields(),
		Equals:       c.equals,
		DateField:    c.dateKey,
		DateFrom:     c.dateFrom,
		DateTo:       c.dateTo,
		ListContains: c.listSub,
	}
}

func (c *Controller) Page() gateway.Page { return c.page }

// NextPage/PrevPage move the window; total is the last known row count.
func (c *Controller) NextPage(total int) {
	if (c.page.Index+1)*c.page.Size < total {
		c.page.Index++
	}
}

// SetPageIndex jumps straight to a page (scripted callers).
func (c *Controller) SetPageIndex(i int) {
	if i < 0 {
		i = 0
	}
	c.page.Index = i
}

func (c *Controller) PrevPage() {
	if c.page.Index > 0 {
		c.page.Index--
	}
}

func (c *Controller) PageCount(total int) int {
	if total <= 0 || c.page.Size <= 0 {
		return 1
	}
	n := (total + c.page.Size - 1) / c.page.Size
	if n < 1 {
		n = 1
	}
	return n
}

// NextFetch issues a new fetch sequence number. The matching response must be
// offered to Apply; responses for superseded sequences are discarded.
func (c *Controller) NextFetch() uint64 {
	c.fetchSeq++
	return c.fetchSeq
}

// Apply reports whether a response with this sequence should be applied: it
// must be newer than anything already applied. Marks it applied when so.
func (c *Controller) Apply(seq uint64) bool {
	if seq <= c.appliedSeq {
		return false
	}
	c.appliedSeq = seq
	return true
}

// NextSearchGen bumps the debounce generation for free-text input. The timer
// fired for a generation triggers a fetch only if it is still the latest.
func (c *Controller) NextSearchGen() uint64 {
	c.searchInput++
	return c.searchInput
}

func (c *Controller) SearchGen() uint64 { return c.searchInput }
