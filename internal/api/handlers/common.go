package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	dateLayout   = "2006-01-02"
	defaultLimit = 100
)

// respondError maps domain error kinds to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.IsClientError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}

func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := period.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return &t, nil
}

func queryRange(c *gin.Context) (domain.DateRange, error) {
	start, err := queryDate(c, "start_date")
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := queryDate(c, "end_date")
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.DateRange{Start: start, End: end}, nil
}

func queryInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}

func queryInt64(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}

// pagination reads skip and limit, defaulting to 0 and 100.
func pagination(c *gin.Context) (offset, limit int) {
	offset, limit = 0, defaultLimit
	if v, err := strconv.Atoi(c.DefaultQuery("skip", "0")); err == nil && v > 0 {
		offset = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit))); err == nil && v > 0 {
		limit = v
	}
	return offset, limit
}

func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := period.ParseDate(*raw)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be YYYY-MM-DD")
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
