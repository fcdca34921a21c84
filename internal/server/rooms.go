package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type createRoomRequest struct {
	PropertyID string   `json:"property_id" binding:"required"`
	RoomNumber string   `json:"room_number" binding:"required"`
	Rate       *float64 `json:"rate" binding:"omitempty,gte=0"`
}

type updateRoomRequest struct {
	RoomNumber *string  `json:"room_number"`
	Rate       *float64 `json:"rate" binding:"omitempty,gte=0"`
}

type listRoomsQuery struct {
	pagination.Pagination
	IsOccupied string `form:"is_occupied"`
}

func (q listRoomsQuery) request(c *gin.Context) (roomdomain.ListRoomRequest, bool) {
	isOccupied, err := parseOptionalBool(q.IsOccupied)
	if err != nil {
		AbortWithError(c, newValidationError("is_occupied", "invalid_is_occupied", "invalid is_occupied"))
		return roomdomain.ListRoomRequest{}, false
	}
	return roomdomain.ListRoomRequest{Pagination: q.Pagination, IsOccupied: isOccupied}, true
}

func (s *Server) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	propertyID, err := parseSnowflakeID(req.PropertyID)
	if err != nil {
		AbortWithError(c, invalidIDError("property_id"))
		return
	}

	resp, err := s.roomSvc.Create(c.Request.Context(), roomdomain.CreateRoomRequest{
		PropertyID: propertyID,
		RoomNumber: strings.TrimSpace(req.RoomNumber),
		Rate:       req.Rate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListRooms(c *gin.Context) {
	var query listRoomsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, ok := query.request(c)
	if !ok {
		return
	}

	resp, err := s.roomSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRoomsByProperty(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}

	var query listRoomsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, ok := query.request(c)
	if !ok {
		return
	}

	resp, err := s.roomSvc.ListByProperty(c.Request.Context(), propertyID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRoomByID(c *gin.Context) {
	id, ok := pathID(c, "id", "room_id")
	if !ok {
		return
	}

	resp, err := s.roomSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateRoom(c *gin.Context) {
	id, ok := pathID(c, "id", "room_id")
	if !ok {
		return
	}

	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.roomSvc.Update(c.Request.Context(), roomdomain.UpdateRoomRequest{
		ID:         id,
		RoomNumber: trimPtr(req.RoomNumber),
		Rate:       req.Rate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRoom(c *gin.Context) {
	id, ok := pathID(c, "id", "room_id")
	if !ok {
		return
	}

	if err := s.roomSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
