package stub

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/pkg/httputil"
)

func (s *Server) list(c *gin.Context, resource string) {
	rows := s.store.List(resource)
	switch listShapes[resource] {
	case shapeNamed:
		httputil.RespondWithNamedList(c, resource, rows)
	case shapeRaw:
		c.JSON(http.StatusOK, rows)
	default:
		httputil.RespondWithData(c, http.StatusOK, rows)
	}
}

func (s *Server) get(c *gin.Context, resource string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, found := s.store.Get(resource, id)
	if !found {
		httputil.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("%s %d not found", resource, id))
		return
	}
	httputil.RespondWithData(c, http.StatusOK, rec)
}

func (s *Server) create(c *gin.Context, resource string) {
	var rec model.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		httputil.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if fields := validateRecord(resource, rec); fields != nil {
		httputil.RespondWithValidation(c, fields)
		return
	}
	stored := s.store.Create(resource, rec)
	httputil.RespondWithData(c, http.StatusCreated, stored)
}

func (s *Server) update(c *gin.Context, resource string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var rec model.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		httputil.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if fields := validateRecord(resource, rec); fields != nil {
		httputil.RespondWithValidation(c, fields)
		return
	}
	stored, found := s.store.Update(resource, id, rec)
	if !found {
		httputil.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("%s %d not found", resource, id))
		return
	}
	httputil.RespondWithData(c, http.StatusOK, stored)
}

func (s *Server) remove(c *gin.Context, resource string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if !s.store.Delete(resource, id) {
		httputil.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("%s %d not found", resource, id))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getSettings(c *gin.Context) {
	page := c.Param("page")
	rec, ok := s.store.Settings(page)
	if !ok {
		httputil.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("settings page %s not found", page))
		return
	}
	httputil.RespondWithData(c, http.StatusOK, rec)
}

// saveSettings accepts multipart form data: plain form values become
// text fields, file parts are "stored" and replaced by their relative
// path, which is what the real back office returns.
func (s *Server) saveSettings(c *gin.Context) {
	page := c.Param("page")
	if _, ok := model.PageByName(page); !ok {
		httputil.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("settings page %s not found", page))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		httputil.RespondWithError(c, http.StatusBadRequest, "expected multipart form data")
		return
	}

	fields := make(model.Record)
	for key, values := range form.Value {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	for key, files := range form.File {
		if len(files) == 0 {
			continue
		}
		f, err := files[0].Open()
		if err != nil {
			httputil.RespondWithError(c, http.StatusBadRequest, fmt.Sprintf("unreadable file for %s", key))
			return
		}
		// content is discarded; only the stored path matters here
		_, _ = io.Copy(io.Discard, f)
		_ = f.Close()
		fields[key] = fmt.Sprintf("settings/%s/%s%s", page, uuid.NewString(), filepath.Ext(files[0].Filename))
	}

	stored := s.store.SaveSettings(page, fields)
	httputil.RespondWithData(c, http.StatusOK, stored)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
