package response

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON writes data in the envelope. The first non-nil meta map is attached.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	env := Envelope{Data: data, Pagination: pagination}
	for _, m := range meta {
		if m != nil {
			env.Meta = m
			break
		}
	}
	c.JSON(status, env)
}

// Created responds 201 with data.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error renders err as an envelope with its status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent responds 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Attachment sends payload as a download named filename.
func Attachment(c *gin.Context, filename, contentType string, payload []byte) {
	noStore(c)
	c.Header("Content-Disposition", disposition(filename))
	c.Data(http.StatusOK, contentType, payload)
}

// Stream renders a download through write. Output is buffered so a failure
// part way through still produces a JSON error instead of a truncated file.
func Stream(c *gin.Context, filename, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		Error(c, err)
		return
	}
	Attachment(c, filename, contentType, buf.Bytes())
}

func disposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return fmt.Sprintf("attachment; filename=%q", "download")
}
