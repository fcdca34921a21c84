package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	landlorddomain "github.com/smallbiznis/roomledger/internal/landlord/domain"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type createLandlordRequest struct {
	Username       string `json:"username" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	MobileNumber   string `json:"mobile_number" binding:"required"`
	Password       string `json:"password" binding:"required"`
	IsSubscription *bool  `json:"is_subscription"`
	IsActive       *bool  `json:"is_active"`
}

type updateLandlordRequest struct {
	Username       *string `json:"username"`
	Email          *string `json:"email" binding:"omitempty,email"`
	MobileNumber   *string `json:"mobile_number"`
	Password       *string `json:"password"`
	IsSubscription *bool   `json:"is_subscription"`
	IsActive       *bool   `json:"is_active"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

func (r loginRequest) identifier() string {
	if email := strings.TrimSpace(r.Email); email != "" {
		return email
	}
	return strings.TrimSpace(r.Username)
}

func (s *Server) CreateLandlord(c *gin.Context) {
	var req createLandlordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.landlordSvc.Create(c.Request.Context(), landlorddomain.CreateLandlordRequest{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.TrimSpace(req.Email),
		MobileNumber:   strings.TrimSpace(req.MobileNumber),
		Password:       req.Password,
		IsSubscription: req.IsSubscription,
		IsActive:       req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) LoginLandlord(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	identifier := req.identifier()
	if identifier == "" {
		AbortWithError(c, newValidationError("email", "required", "email or username is required"))
		return
	}

	resp, err := s.landlordSvc.Login(c.Request.Context(), landlorddomain.LoginRequest{
		Identifier: identifier,
		Password:   req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CurrentLandlord(c *gin.Context) {
	landlordID, ok := c.Get(contextLandlordIDKey)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.landlordSvc.GetByID(c.Request.Context(), landlordID.(snowflake.ID))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !resp.IsActive {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLandlords(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.landlordSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLandlordByID(c *gin.Context) {
	id, ok := pathID(c, "id", "landlord_id")
	if !ok {
		return
	}

	resp, err := s.landlordSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateLandlord(c *gin.Context) {
	id, ok := pathID(c, "id", "landlord_id")
	if !ok {
		return
	}

	var req updateLandlordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.landlordSvc.Update(c.Request.Context(), landlorddomain.UpdateLandlordRequest{
		ID:             id,
		Username:       trimPtr(req.Username),
		Email:          trimPtr(req.Email),
		MobileNumber:   trimPtr(req.MobileNumber),
		Password:       req.Password,
		IsSubscription: req.IsSubscription,
		IsActive:       req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteLandlord(c *gin.Context) {
	id, ok := pathID(c, "id", "landlord_id")
	if !ok {
		return
	}

	if err := s.landlordSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
