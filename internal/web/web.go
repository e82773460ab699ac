// Package web renders the server-side HTML pages and carries flash messages
// between redirects.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"anoa.com/codediary/pkg/apperror"
	"anoa.com/codediary/pkg/logger"
	"anoa.com/codediary/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// UnreadChecker answers whether a viewer has unseen entries from people they follow.
type UnreadChecker interface {
	HasUnread(ctx context.Context, viewerID *uuid.UUID) (bool, error)
}

// Templates parses every embedded page template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string { return t.Format("January 2, 2006") },
		"datetime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
		"paragraphs": func(s string) []string {
			return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n")
		},
	}).ParseFS(templateFS, "templates/*.html")
}

type Renderer struct {
	unread UnreadChecker
}

func NewRenderer(unread UnreadChecker) *Renderer {
	return &Renderer{unread: unread}
}

// HTML renders a page with the layout data every page shares: the signed-in
// user, pending flash messages and the unread banner. The banner is evaluated
// here, after the handler has done its work, so a page always reflects the
// read state it just produced.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	viewerID := response.OptionalUserID(c)
	newEntries := false
	if viewerID != nil && r.unread != nil {
		var err error
		newEntries, err = r.unread.HasUnread(c.Request.Context(), viewerID)
		if err != nil {
			logger.Error("failed to evaluate unread entries",
				zap.String("viewer_id", viewerID.String()),
				zap.Error(err),
			)
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"Status":  http.StatusInternalServerError,
				"Message": "Something went wrong on our side.",
			})
			return
		}
	}

	data["CurrentUser"] = c.GetString(response.KeyUsername)
	data["Authenticated"] = viewerID != nil
	data["NewEntriesFromFollowing"] = newEntries
	data["Flashes"] = PopFlashes(c)

	c.HTML(status, name, data)
}

// Error maps err to the matching page. Unauthenticated requests are sent to the
// login page with the current path kept in "next".
func (r *Renderer) Error(c *gin.Context, err error) {
	status := apperror.MapErrorToStatus(err)

	switch status {
	case http.StatusUnauthorized:
		RedirectToLogin(c)
		return
	case http.StatusNotFound:
		r.HTML(c, status, "error.html", gin.H{"Status": status, "Message": "Page not found."})
		return
	case http.StatusForbidden:
		r.HTML(c, status, "error.html", gin.H{"Status": status, "Message": "You do not have permission to do that."})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error("page request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.HTML(status, "error.html", gin.H{"Status": status, "Message": "Something went wrong on our side."})
		return
	}

	msg := err.Error()
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}
	r.HTML(c, status, "error.html", gin.H{"Status": status, "Message": msg})
}

// RedirectToLogin sends the browser to the login page, preserving the
// requested URL.
func RedirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

// SafeNext returns next when it is a local path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
