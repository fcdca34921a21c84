package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	electricitydomain "github.com/smallbiznis/roomledger/internal/electricity/domain"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type createReadingRequest struct {
	PropertyID     string   `json:"property_id" binding:"required"`
	RoomNumber     string   `json:"room_number" binding:"required"`
	LastReading    *float64 `json:"last_reading" binding:"omitempty,gte=0"`
	CurrentReading *float64 `json:"current_reading" binding:"required,gte=0"`
	Rate           *float64 `json:"rate" binding:"omitempty,gte=0"`
	ReadingDate    *string  `json:"reading_date"`
}

type bulkReadingRequest struct {
	Entries json.RawMessage `json:"entries" binding:"required"`
}

type updateReadingRequest struct {
	ReadingDate    *string  `json:"reading_date"`
	LastReading    *float64 `json:"last_reading" binding:"omitempty,gte=0"`
	CurrentReading *float64 `json:"current_reading" binding:"omitempty,gte=0"`
	Rate           *float64 `json:"rate" binding:"omitempty,gte=0"`
}

func (r createReadingRequest) toDomain(c *gin.Context) (electricitydomain.CreateReadingRequest, bool) {
	propertyID, err := parseSnowflakeID(r.PropertyID)
	if err != nil {
		AbortWithError(c, invalidIDError("property_id"))
		return electricitydomain.CreateReadingRequest{}, false
	}
	readingDate, ok := optionalDate(c, "reading_date", r.ReadingDate)
	if !ok {
		return electricitydomain.CreateReadingRequest{}, false
	}
	return electricitydomain.CreateReadingRequest{
		PropertyID:     propertyID,
		RoomNumber:     strings.TrimSpace(r.RoomNumber),
		LastReading:    r.LastReading,
		CurrentReading: *r.CurrentReading,
		Rate:           r.Rate,
		ReadingDate:    readingDate,
	}, true
}

// decodeEntries accepts either a single reading object or an array of them.
func decodeEntries(raw json.RawMessage) ([]createReadingRequest, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single createReadingRequest
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, err
		}
		return []createReadingRequest{single}, nil
	}
	var entries []createReadingRequest
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Server) CreateReading(c *gin.Context) {
	var req createReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	create, ok := req.toDomain(c)
	if !ok {
		return
	}

	resp, err := s.electricitySvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) CreateReadingsBulk(c *gin.Context) {
	var req bulkReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	entries, err := decodeEntries(req.Entries)
	if err != nil {
		AbortWithError(c, newValidationError("entries", "invalid_entries", "entries must be an object or an array"))
		return
	}

	creates := make([]electricitydomain.CreateReadingRequest, 0, len(entries))
	for _, entry := range entries {
		if err := binding.Validator.ValidateStruct(entry); err != nil {
			AbortWithError(c, bindError(err))
			return
		}
		create, ok := entry.toDomain(c)
		if !ok {
			return
		}
		creates = append(creates, create)
	}

	resp, err := s.electricitySvc.CreateBulk(c.Request.Context(), creates)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListReadings(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.electricitySvc.List(c.Request.Context(), electricitydomain.ListReadingRequest{Pagination: query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReadingsByRoom(c *gin.Context) {
	roomID, ok := pathID(c, "id", "room_id")
	if !ok {
		return
	}

	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.electricitySvc.ListByRoom(c.Request.Context(), roomID, electricitydomain.ListReadingRequest{Pagination: query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetReadingByID(c *gin.Context) {
	id, ok := pathID(c, "id", "reading_id")
	if !ok {
		return
	}

	resp, err := s.electricitySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateReading(c *gin.Context) {
	id, ok := pathID(c, "id", "reading_id")
	if !ok {
		return
	}

	var req updateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	readingDate, ok := optionalDate(c, "reading_date", req.ReadingDate)
	if !ok {
		return
	}

	resp, err := s.electricitySvc.Update(c.Request.Context(), electricitydomain.UpdateReadingRequest{
		ID:             id,
		ReadingDate:    readingDate,
		LastReading:    req.LastReading,
		CurrentReading: req.CurrentReading,
		Rate:           req.Rate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteReading(c *gin.Context) {
	id, ok := pathID(c, "id", "reading_id")
	if !ok {
		return
	}

	if err := s.electricitySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMonthlyElectricityReport reports readings of property :id for :month.
func (s *Server) GetMonthlyElectricityReport(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}
	month, year, ok := pathPeriod(c)
	if !ok {
		return
	}

	resp, err := s.electricitySvc.MonthlyReport(c.Request.Context(), propertyID, month, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
