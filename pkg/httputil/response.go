package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope wraps successful API payloads. The admin API always nests
// the payload under "data"; list endpoints may nest once more under the
// resource name, which NamedList reproduces.
type Envelope struct {
	Data interface{} `json:"data"`
}

// ErrorBody is the conventional error payload: a human message plus,
// for validation failures, per-field messages.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// RespondWithData sends data under the standard envelope.
func RespondWithData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Data: data})
}

// RespondWithNamedList nests rows under the resource name inside the
// data envelope, the second list shape the clients must unwrap.
func RespondWithNamedList(c *gin.Context, resource string, rows interface{}) {
	c.JSON(http.StatusOK, Envelope{Data: gin.H{resource: rows}})
}

// RespondWithError sends the conventional error body.
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Message: message})
}

// RespondWithValidation sends a 422 with per-field messages.
func RespondWithValidation(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorBody{
		Message: "validation failed",
		Errors:  fields,
	})
}
