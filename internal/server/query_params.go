package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseSnowflakeID(value string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid_snowflake_id")
	}
	return parsed, nil
}

// pathID reads a snowflake id path parameter. On failure the request is
// aborted with a validation error and ok is false.
func pathID(c *gin.Context, name, field string) (snowflake.ID, bool) {
	id, err := parseSnowflakeID(c.Param(name))
	if err != nil {
		AbortWithError(c, invalidIDError(field))
		return 0, false
	}
	return id, true
}

// pathPeriod reads the :month path parameter and the optional year query.
// A missing year is passed on as zero.
func pathPeriod(c *gin.Context) (int, int, bool) {
	month, err := strconv.Atoi(strings.TrimSpace(c.Param("month")))
	if err != nil {
		AbortWithError(c, invalidIDError("month"))
		return 0, 0, false
	}
	year, err := parseOptionalInt(c.Query("year"))
	if err != nil {
		AbortWithError(c, invalidIDError("year"))
		return 0, 0, false
	}
	if year == nil {
		return month, 0, true
	}
	return month, *year, true
}

func parseOptionalTime(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

// optionalDate parses a body date field, aborting with a validation error
// on malformed input.
func optionalDate(c *gin.Context, field string, value *string) (*time.Time, bool) {
	if value == nil {
		return nil, true
	}
	parsed, err := parseOptionalTime(*value)
	if err != nil {
		AbortWithError(c, invalidIDError(field))
		return nil, false
	}
	return parsed, true
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
