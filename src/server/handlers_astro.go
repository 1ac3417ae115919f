package server

import (
	"net/http"
	"strings"

	"astrografia/src/ephemeris"
	"astrografia/src/helpers"
	"astrografia/src/models"
	"astrografia/src/narrative"
	"astrografia/src/utils"

	"github.com/gin-gonic/gin"
)

func (s *APIServer) getPositions(c *gin.Context) {
	var in ephemeris.RawBirthInput
	if err := c.ShouldBindQuery(&in); err != nil {
		s.writeError(c, helpers.NewValidationError("query", "invalid query parameters"))
		return
	}
	s.respondChart(c, in)
}

// -----------------------------------------------------------------------------

func (s *APIServer) postPositions(c *gin.Context) {
	fields, err := bindJSONFields(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.respondChart(c, birthInputFromFields(fields))
}

// -----------------------------------------------------------------------------

func (s *APIServer) respondChart(c *gin.Context, in ephemeris.RawBirthInput) {
	chart, err := s.computeChart(c, in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

// -----------------------------------------------------------------------------

func (s *APIServer) computeChart(c *gin.Context, in ephemeris.RawBirthInput) (*models.MChart, error) {
	birth, err := ephemeris.ParseBirthData(in)
	if err != nil {
		return nil, err
	}
	return s.deps.Facade.ComputeChart(c.Request.Context(), birth)
}

// -----------------------------------------------------------------------------

func (s *APIServer) interpretChart(c *gin.Context) {
	fields, err := bindJSONFields(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if strings.TrimSpace(fields["theme"]) == "" {
		s.writeError(c, helpers.NewValidationError("theme", "missing required fields: theme"))
		return
	}
	if _, err := narrative.ResolveTheme(fields["theme"]); err != nil {
		s.writeError(c, err)
		return
	}

	chart, err := s.computeChart(c, birthInputFromFields(fields))
	if err != nil {
		s.writeError(c, err)
		return
	}

	out, err := s.deps.Interpreter.InterpretChart(c.Request.Context(), fields["name"], fields["theme"], chart)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getCoordinates(c *gin.Context) {
	if s.deps.Geocoder == nil {
		s.writeError(c, helpers.NewNotFoundError("geocoding disabled"))
		return
	}
	loc, err := s.deps.Geocoder.Geocode(c.Request.Context(), c.Query("place"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSkyCurrent(c *gin.Context) {
	s.stateMutex.RLock()
	latest := s.latestState
	s.stateMutex.RUnlock()

	if latest == nil {
		s.writeError(c, helpers.NewNotFoundError("no sky snapshot yet"))
		return
	}
	c.JSON(http.StatusOK, latest)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSkyHistory(c *gin.Context) {
	limit := utils.ClampLimit(queryInt(c, "limit", 0), s.history.Size())
	c.JSON(http.StatusOK, s.historyResponse(limit))
}
