package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Versioned is implemented by every entity response. The version changes
// whenever any serialized field of the response can have changed.
type Versioned interface {
	Version() string
}

// RespondResource serves one entity with a weak ETag derived from its version,
// so the body is never hashed.
func RespondResource(ctx *gin.Context, res Versioned) {
	respondWithETag(ctx, `W/"`+res.Version()+`"`, res)
}

// RespondCollection serves a list. Its ETag digests the members' versions in
// order, so adding, changing or reordering a member changes it.
func RespondCollection[T Versioned](ctx *gin.Context, items []T) {
	h := sha256.New()
	for _, it := range items {
		h.Write([]byte(it.Version()))
		h.Write([]byte{'\n'})
	}

	etag := `W/"` + strconv.Itoa(len(items)) + "-" + hex.EncodeToString(h.Sum(nil)[:16]) + `"`
	respondWithETag(ctx, etag, items)
}

func respondWithETag(ctx *gin.Context, etag string, payload any) {
	ctx.Header("ETag", etag)

	if ifNoneMatchMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

// If-None-Match always uses the weak comparison.
func ifNoneMatchMatches(headerValue, currentETag string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" {
		return false
	}
	if headerValue == "*" {
		return true
	}

	current := opaqueTag(currentETag)
	for _, part := range strings.Split(headerValue, ",") {
		if opaqueTag(part) == current {
			return true
		}
	}

	return false
}

func opaqueTag(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "W/")
}
