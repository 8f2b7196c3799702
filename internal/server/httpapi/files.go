package httpapi

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/services"
	"github.com/gin-gonic/gin"
)

// uploadField is the multipart field carrying the file.
const uploadField = "in_file"

type filesResponse struct {
	Account string         `json:"account"`
	Files   []*models.File `json:"files"`
}

type pingResponse struct {
	Status         string  `json:"status"`
	DBResponseTime float64 `json:"db_response_time"`
}

func refQuery(c *gin.Context) (string, bool) {
	ref := c.Query("path")
	if strings.TrimSpace(ref) == "" {
		validationError(c, errors.New("query parameter path is required"))
		return "", false
	}
	return ref, true
}

func (s *Server) listFiles(c *gin.Context) {
	user := currentUser(c)

	list, err := s.files.List(c.Request.Context(), user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, filesResponse{Account: user.Name, Files: list})
}

func (s *Server) upload(c *gin.Context) {
	path, ok := refQuery(c)
	if !ok {
		return
	}

	if s.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				gin.H{"detail": fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit)})
			return
		}
		validationError(c, fmt.Errorf("multipart field %s: %w", uploadField, err))
		return
	}

	body, err := header.Open()
	if err != nil {
		abortWithError(c, fmt.Errorf("error opening upload: %w", err))
		return
	}
	defer body.Close()

	file, err := s.files.Upload(c.Request.Context(), services.UploadRequest{
		Name:    header.Filename,
		Path:    path,
		Size:    header.Size,
		OwnerID: currentUser(c).ID,
		Body:    body,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

func (s *Server) download(c *gin.Context) {
	ref, ok := refQuery(c)
	if !ok {
		return
	}

	dl, err := s.files.Open(c.Request.Context(), currentUser(c).ID, ref)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer dl.Body.Close()

	name := dl.File.Name
	if name == "" {
		name = dl.File.ID.String()
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}

	c.DataFromReader(http.StatusOK, dl.File.Size, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (s *Server) deleteFile(c *gin.Context) {
	ref, ok := refQuery(c)
	if !ok {
		return
	}

	if err := s.files.Delete(c.Request.Context(), currentUser(c).ID, ref); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ping(c *gin.Context) {
	ok, elapsed := s.files.Ping(c.Request.Context())

	resp := pingResponse{Status: "ok", DBResponseTime: math.Round(elapsed.Seconds()*1000) / 1000}
	code := http.StatusOK
	if !ok {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, resp)
}
