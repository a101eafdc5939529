package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxSlugLen = 200

var slugParamPattern = regexp.MustCompile(`^[a-z0-9_]+(?:-[a-z0-9_]+)*$`)

// slugParam reads the :slug path parameter in canonical form. It writes a
// 400 and reports false when the value cannot be a stored slug.
func slugParam(ctx *gin.Context) (string, bool) {
	slug := strings.ToLower(strings.TrimSpace(ctx.Param("slug")))

	var reason string
	switch {
	case slug == "":
		reason = "slug is required"
	case len(slug) > maxSlugLen:
		reason = "slug must be at most " + strconv.Itoa(maxSlugLen) + " characters"
	case !slugParamPattern.MatchString(slug):
		reason = "slug may only contain lowercase letters, digits, underscores and single hyphens"
	}

	if reason != "" {
		RespondError(ctx, http.StatusBadRequest, "invalid_slug", reason, gin.H{"slug": ctx.Param("slug")})
		return "", false
	}

	return slug, true
}

// intQuery parses an optional integer query parameter bounded by [lo, hi].
func intQuery(ctx *gin.Context, name string, def, lo, hi int) (int, bool) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		RespondBadRequest(ctx, "Invalid query parameter", gin.H{
			"field":   name,
			"message": "must be an integer between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi),
		})
		return 0, false
	}

	return n, true
}
