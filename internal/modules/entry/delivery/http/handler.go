package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/internal/modules/entry/dto"
	entry "anoa.com/codediary/internal/modules/entry/service"
	userRepo "anoa.com/codediary/internal/modules/user/repository"
	"anoa.com/codediary/internal/web"
	"anoa.com/codediary/pkg/apperror"
	"anoa.com/codediary/pkg/ratelimiter"
	"anoa.com/codediary/pkg/response"
	"anoa.com/codediary/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FollowInfo is the slice of the follow graph the author page needs.
type FollowInfo interface {
	IsFollowing(ctx context.Context, actorID, targetID uuid.UUID) (bool, error)
	Counts(ctx context.Context, userID uuid.UUID) (followers, following int64, err error)
}

type EntryHandler struct {
	service  entry.EntryService
	users    userRepo.UserRepository
	follows  FollowInfo
	renderer *web.Renderer
}

func NewEntryHandler(service entry.EntryService, users userRepo.UserRepository, follows FollowInfo, renderer *web.Renderer) *EntryHandler {
	return &EntryHandler{
		service:  service,
		users:    users,
		follows:  follows,
		renderer: renderer,
	}
}

func (h *EntryHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/entries")
}

// List shows the signed-in user's own entries.
func (h *EntryHandler) List(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	res, err := h.service.ListByAuthor(c.Request.Context(), userID, pageParam(c))
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	h.renderer.HTML(c, http.StatusOK, "entry_list.html", gin.H{
		"Title":      "My diary",
		"Entries":    res.Entries,
		"Pagination": res.Meta,
	})
}

// AuthorList shows another user's entries with follow controls.
func (h *EntryHandler) AuthorList(c *gin.Context) {
	ctx := c.Request.Context()

	author, err := h.users.FindByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.renderer.Error(c, apperror.NotFound("user not found"))
			return
		}
		h.renderer.Error(c, err)
		return
	}

	res, err := h.service.ListByAuthor(ctx, author.ID, pageParam(c))
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	followers, following, err := h.follows.Counts(ctx, author.ID)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	canFollow := false
	isFollowing := false
	if viewerID := response.OptionalUserID(c); viewerID != nil && *viewerID != author.ID {
		canFollow = true
		isFollowing, err = h.follows.IsFollowing(ctx, *viewerID, author.ID)
		if err != nil {
			h.renderer.Error(c, err)
			return
		}
	}

	h.renderer.HTML(c, http.StatusOK, "entry_list.html", gin.H{
		"Title":          author.Username,
		"Author":         author,
		"Entries":        res.Entries,
		"Pagination":     res.Meta,
		"CanFollow":      canFollow,
		"IsFollowing":    isFollowing,
		"FollowerCount":  followers,
		"FollowingCount": following,
	})
}

func (h *EntryHandler) Detail(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	viewerID := response.OptionalUserID(c)
	e, err := h.service.View(c.Request.Context(), viewerID, id)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	h.renderer.HTML(c, http.StatusOK, "entry_detail.html", gin.H{
		"Title":   e.Title,
		"Entry":   e,
		"IsOwner": viewerID != nil && *viewerID == e.UserID,
	})
}

func (h *EntryHandler) NewForm(c *gin.Context) {
	h.renderer.HTML(c, http.StatusOK, "entry_form.html", gin.H{
		"Title": "New entry",
		"Form":  dto.EntryInput{},
	})
}

func (h *EntryHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	input, err := bindEntryForm(c)
	if err != nil {
		h.renderForm(c, nil, input, err)
		return
	}

	if _, err := h.service.Create(c.Request.Context(), userID, input); err != nil {
		h.renderForm(c, nil, input, err)
		return
	}

	web.AddFlash(c, web.LevelSuccess, "Diary entry created successfully!")
	c.Redirect(http.StatusFound, "/entries")
}

func (h *EntryHandler) EditForm(c *gin.Context) {
	e, ok := h.loadOwned(c)
	if !ok {
		return
	}

	h.renderer.HTML(c, http.StatusOK, "entry_form.html", gin.H{
		"Title": "Edit entry",
		"Entry": e,
		"Form":  dto.FromEntry(e),
	})
}

func (h *EntryHandler) Update(c *gin.Context) {
	e, ok := h.loadOwned(c)
	if !ok {
		return
	}
	userID, _ := response.GetUserID(c)

	input, err := bindEntryForm(c)
	if err != nil {
		h.renderForm(c, e, input, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), userID, e.ID, input)
	if err != nil {
		h.renderForm(c, e, input, err)
		return
	}

	web.AddFlash(c, web.LevelSuccess, "Diary entry updated successfully!")
	c.Redirect(http.StatusFound, "/entries/"+updated.ID.String())
}

func (h *EntryHandler) DeleteConfirm(c *gin.Context) {
	e, ok := h.loadOwned(c)
	if !ok {
		return
	}

	h.renderer.HTML(c, http.StatusOK, "entry_confirm_delete.html", gin.H{
		"Title": "Delete entry",
		"Entry": e,
	})
}

func (h *EntryHandler) Delete(c *gin.Context) {
	e, ok := h.loadOwned(c)
	if !ok {
		return
	}
	userID, _ := response.GetUserID(c)

	if err := h.service.Delete(c.Request.Context(), userID, e.ID); err != nil {
		h.renderer.Error(c, err)
		return
	}

	web.AddFlash(c, web.LevelSuccess, "Diary entry deleted successfully!")
	c.Redirect(http.StatusFound, "/entries")
}

// loadOwned fetches the entry in the path and checks the caller wrote it.
// On failure the error page has already been rendered.
func (h *EntryHandler) loadOwned(c *gin.Context) (*entity.DiaryEntry, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		h.renderer.Error(c, err)
		return nil, false
	}

	id, err := entryID(c)
	if err != nil {
		h.renderer.Error(c, err)
		return nil, false
	}

	e, err := h.service.GetForEdit(c.Request.Context(), userID, id)
	if err != nil {
		h.renderer.Error(c, err)
		return nil, false
	}
	return e, true
}

// renderForm re-renders the entry form with the submitted values. Field
// errors come from binding; service errors other than validation and rate
// limiting go to the error page.
func (h *EntryHandler) renderForm(c *gin.Context, e *entity.DiaryEntry, input dto.EntryInput, err error) {
	data := gin.H{
		"Entry": e,
		"Form":  input,
	}
	if e != nil {
		data["Title"] = "Edit entry"
	} else {
		data["Title"] = "New entry"
	}

	if fields := validator.FieldErrors(err); len(fields) > 0 {
		data["Errors"] = fields
		h.renderer.HTML(c, http.StatusBadRequest, "entry_form.html", data)
		return
	}

	var rlErr *ratelimiter.RateLimitError
	if errors.As(err, &rlErr) {
		c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
		data["FormError"] = rlErr.Message
		h.renderer.HTML(c, http.StatusTooManyRequests, "entry_form.html", data)
		return
	}

	if errors.Is(err, entry.ErrInvalidDate) {
		data["Errors"] = map[string]string{"date": err.Error()}
		h.renderer.HTML(c, http.StatusBadRequest, "entry_form.html", data)
		return
	}

	h.renderer.Error(c, err)
}

func bindEntryForm(c *gin.Context) (dto.EntryInput, error) {
	var input dto.EntryInput
	if err := c.ShouldBindWith(&input, binding.Form); err != nil {
		input.Normalize()
		return input, err
	}
	input.Normalize()
	return input, binding.Validator.ValidateStruct(&input)
}

func entryID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("diary entry not found")
	}
	return id, nil
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
