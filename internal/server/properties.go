package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type createPropertyRequest struct {
	LandlordID   string `json:"landlord_id" binding:"required"`
	PropertyName string `json:"property_name" binding:"required"`
	Address      string `json:"address" binding:"required"`
	Landmark     string `json:"landmark"`
	City         string `json:"city"`
	State        string `json:"state"`
	IsActive     *bool  `json:"is_active"`
}

type updatePropertyRequest struct {
	PropertyName *string `json:"property_name"`
	Address      *string `json:"address"`
	Landmark     *string `json:"landmark"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	IsActive     *bool   `json:"is_active"`
}

func (s *Server) CreateProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	landlordID, err := parseSnowflakeID(req.LandlordID)
	if err != nil {
		AbortWithError(c, invalidIDError("landlord_id"))
		return
	}

	resp, err := s.propertySvc.Create(c.Request.Context(), propertydomain.CreatePropertyRequest{
		LandlordID:   landlordID,
		PropertyName: strings.TrimSpace(req.PropertyName),
		Address:      strings.TrimSpace(req.Address),
		Landmark:     strings.TrimSpace(req.Landmark),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		IsActive:     req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProperties(c *gin.Context) {
	var query struct {
		pagination.Pagination
		City     string `form:"city"`
		IsActive string `form:"is_active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isActive, err := parseOptionalBool(query.IsActive)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}

	resp, err := s.propertySvc.List(c.Request.Context(), propertydomain.ListPropertyRequest{
		Pagination: query.Pagination,
		City:       strings.TrimSpace(query.City),
		IsActive:   isActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPropertiesByLandlord(c *gin.Context) {
	landlordID, ok := pathID(c, "id", "landlord_id")
	if !ok {
		return
	}

	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.ListByLandlord(c.Request.Context(), landlordID, query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPropertyByID(c *gin.Context) {
	id, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}

	resp, err := s.propertySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProperty(c *gin.Context) {
	id, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}

	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.propertySvc.Update(c.Request.Context(), propertydomain.UpdatePropertyRequest{
		ID:           id,
		PropertyName: trimPtr(req.PropertyName),
		Address:      trimPtr(req.Address),
		Landmark:     trimPtr(req.Landmark),
		City:         trimPtr(req.City),
		State:        trimPtr(req.State),
		IsActive:     req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProperty(c *gin.Context) {
	id, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}

	if err := s.propertySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetMonthlyDetails(c *gin.Context) {
	id, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}
	month, year, ok := pathPeriod(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.MonthlyDetails(c.Request.Context(), id, month, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMonthlyStatement(c *gin.Context) {
	id, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}
	month, year, ok := pathPeriod(c)
	if !ok {
		return
	}

	doc, err := s.reportSvc.Statement(c.Request.Context(), id, month, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("statement-%s-%02d.pdf", id.String(), month)
	if year > 0 {
		filename = fmt.Sprintf("statement-%s-%d-%02d.pdf", id.String(), year, month)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}
