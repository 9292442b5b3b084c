package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func parsePageParam(c echo.Context) int {
	page := 1
	if rawPage := strings.TrimSpace(c.QueryParam("page")); rawPage != "" {
		if parsed, err := strconv.Atoi(rawPage); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}

func parseLimitParam(c echo.Context, fallback, max int) int {
	limit := fallback
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

func totalPages(totalCount, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	pages := (totalCount + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

func showingRange(totalCount, offset, showingCount int) (int, int) {
	if totalCount <= 0 || showingCount <= 0 {
		return 0, 0
	}
	showingFrom := offset + 1
	showingTo := offset + showingCount
	if showingTo > totalCount {
		showingTo = totalCount
	}
	return showingFrom, showingTo
}
