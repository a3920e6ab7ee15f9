package view

import "strconv"

// Page one page of a paginated complex view
type Page struct {
	Number       int
	Number0      int
	Items        []interface{}
	Count        int
	TotalItems   int
	TotalPages   int
	ItemsPerPage int
	StartPage    int
	LastPage     int
	PageRange    []int
	HasNext      bool
	HasPrevious  bool
	// Pk the page number, so path templates can treat pages like records
	Pk string
}

// Paginate splits items into pages of perPage after skipping offset items.
// Pages are numbered from startPage. No items gives no pages.
func Paginate(items []interface{}, perPage, offset, startPage int) []Page {
	if perPage <= 0 {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(items) {
		offset = len(items)
	}
	items = items[offset:]

	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	lastPage := startPage + totalPages - 1

	pageRange := make([]int, 0, totalPages)
	for n := startPage; n <= lastPage; n++ {
		pageRange = append(pageRange, n)
	}

	pages := make([]Page, 0, totalPages)
	for i := 0; i < totalPages; i++ {
		start := i * perPage
		end := start + perPage
		if end > total {
			end = total
		}
		number := startPage + i
		pages = append(pages, Page{
			Number:       number,
			Number0:      number - 1,
			Items:        items[start:end:end],
			Count:        end - start,
			TotalItems:   total,
			TotalPages:   totalPages,
			ItemsPerPage: perPage,
			StartPage:    startPage,
			LastPage:     lastPage,
			PageRange:    pageRange,
			HasNext:      number < lastPage,
			HasPrevious:  number > startPage,
			Pk:           strconv.Itoa(number),
		})
	}
	return pages
}

// Map exposes the page to queries and expressions
func (p Page) Map() map[string]interface{} {
	return map[string]interface{}{
		"pk":             p.Pk,
		"number":         p.Number,
		"number0":        p.Number0,
		"items":          p.Items,
		"count":          p.Count,
		"total_items":    p.TotalItems,
		"total_pages":    p.TotalPages,
		"items_per_page": p.ItemsPerPage,
		"start_page":     p.StartPage,
		"last_page":      p.LastPage,
		"page_range":     p.PageRange,
		"has_next":       p.HasNext,
		"has_previous":   p.HasPrevious,
	}
}

func (p Page) String() string {
	return p.Pk
}
