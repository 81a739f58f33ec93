package drata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

// Page is a list of records together with the upstream total.
type Page[T any] struct {
	Items []T
	Total int
	// Pages is the number of upstream requests that produced Items.
	Pages int
	// Truncated is set when a page walk stopped at the configured page limit
	// before exhausting the upstream list.
	Truncated bool

	totalKnown bool
}

// ListOptions selects a single page. Zero values fall back to page 1 and the
// client's page size.
type ListOptions struct {
	Page  int
	Limit int
}

func (o ListOptions) apply(q url.Values, pageSize int) {
	page := o.Page
	if page <= 0 {
		page = 1
	}
	limit := o.Limit
	if limit <= 0 || limit > pageSize {
		limit = pageSize
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
}

func decodePage[T any](path string, body []byte) (Page[T], error) {
	var page Page[T]
	data := gjson.GetBytes(body, "data")
	if data.Exists() && data.IsArray() {
		if err := json.Unmarshal([]byte(data.Raw), &page.Items); err != nil {
			return Page[T]{}, unavailable(path, fmt.Errorf("decode data: %w", err))
		}
	}
	if total := gjson.GetBytes(body, "total"); total.Exists() && total.Type == gjson.Number {
		page.Total = int(total.Int())
		page.totalKnown = true
	} else {
		page.Total = len(page.Items)
	}
	page.Pages = 1
	return page, nil
}

// list fetches a single page.
func list[T any](ctx context.Context, c *Client, path string, filters url.Values, opts ListOptions) (Page[T], error) {
	q := cloneValues(filters)
	opts.apply(q, c.cfg.PageSize)
	body, err := c.get(ctx, path, path, q)
	if err != nil {
		return Page[T]{}, err
	}
	return decodePage[T](path, body)
}

// listAll walks pages until a short page, the upstream total or the page
// limit, whichever comes first.
func listAll[T any](ctx context.Context, c *Client, path string, filters url.Values) (Page[T], error) {
	var out Page[T]
	for page := 1; page <= c.cfg.MaxPages; page++ {
		p, err := list[T](ctx, c, path, filters, ListOptions{Page: page, Limit: c.cfg.PageSize})
		if err != nil {
			return Page[T]{}, err
		}
		out.Items = append(out.Items, p.Items...)
		out.Pages = page
		if p.totalKnown {
			out.Total = p.Total
			out.totalKnown = true
		}
		if len(p.Items) < c.cfg.PageSize || (out.totalKnown && len(out.Items) >= out.Total) {
			if !out.totalKnown {
				out.Total = len(out.Items)
			}
			return out, nil
		}
	}
	out.Truncated = true
	if !out.totalKnown {
		out.Total = len(out.Items)
	}
	c.log.Info("page limit reached", "path", path, "pages", out.Pages, "items", len(out.Items), "total", out.Total)
	return out, nil
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
