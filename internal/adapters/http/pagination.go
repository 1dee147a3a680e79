package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/devcamper/internal/core/query"
)

// SetLinkHeaders adds RFC 8288 Link headers for a page-based listing. Every
// parameter except page and limit is carried over so the links stay on the
// same filtered result. total is the number of matching documents.
func SetLinkHeaders(c *fiber.Ctx, params query.Params, w query.Window, p query.Pagination, total int) {
	base := c.Path()
	rest := params.Encode(query.ParamPage, query.ParamLimit)
	if rest != "" {
		rest += "&"
	}

	link := func(page, limit int, rel string) string {
		return fmt.Sprintf(`<%s?%spage=%d&limit=%d>; rel="%s"`, base, rest, page, limit, rel)
	}

	links := []string{link(query.DefaultPage, w.Limit, "first")}
	if p.Previous != nil {
		links = append(links, link(p.Previous.Page, p.Previous.Limit, "prev"))
	}
	if p.Next != nil {
		links = append(links, link(p.Next.Page, p.Next.Limit, "next"))
	}
	last := max(1, (total+w.Limit-1)/w.Limit)
	links = append(links, link(last, w.Limit, "last"))

	c.Set(fiber.HeaderLink, strings.Join(links, ", "))
}
