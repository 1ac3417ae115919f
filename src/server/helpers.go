package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"astrografia/src/ephemeris"
	"astrografia/src/helpers"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "internal computation error"

// -----------------------------------------------------------------------------

// writeError maps the error taxonomy to HTTP statuses. Anything unexpected is
// logged and reported without detail.
func (s *APIServer) writeError(c *gin.Context, err error) {
	var ve *helpers.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case helpers.IsAuth(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case helpers.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case helpers.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.Logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	}
}

// -----------------------------------------------------------------------------

// bindJSONFields decodes a JSON object whose values may be strings or numbers
// and returns them as strings.
func bindJSONFields(c *gin.Context) (map[string]string, error) {
	var body map[string]interface{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, helpers.NewValidationError("body", "invalid JSON body")
	}

	fields := make(map[string]string, len(body))
	for k, v := range body {
		switch t := v.(type) {
		case nil:
		case string:
			fields[k] = t
		case json.Number:
			fields[k] = t.String()
		case bool, float64:
			fields[k] = fmt.Sprint(t)
		}
	}
	return fields, nil
}

// -----------------------------------------------------------------------------

func birthInputFromFields(f map[string]string) ephemeris.RawBirthInput {
	return ephemeris.RawBirthInput{
		Name: f["name"],
		Date: f["date"],
		Time: f["time"],
		Lat:  f["lat"],
		Lon:  f["lon"],
		TZ:   f["tz"],
		City: f["city"],
	}
}

// -----------------------------------------------------------------------------

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
