package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type createTenantRequest struct {
	PropertyID     string   `json:"property_id" form:"property_id" binding:"required"`
	AssignedRoomID string   `json:"assigned_room_id" form:"assigned_room_id" binding:"required"`
	Name           string   `json:"name" form:"name" binding:"required"`
	Email          string   `json:"email" form:"email" binding:"required,email"`
	MobileNumber   string   `json:"mobile_number" form:"mobile_number" binding:"required"`
	TotalPerson    *int     `json:"total_person" form:"total_person" binding:"omitempty,gte=1"`
	AadharPhoto    string   `json:"aadhar_photo" form:"-"`
	OtherImages    []string `json:"other_images" form:"-"`
	MoveInDate     string   `json:"move_in_date" form:"move_in_date" binding:"required"`
	IsActive       *bool    `json:"is_active" form:"is_active"`
}

type uploadTenantRequest struct {
	createTenantRequest
	AadharPhoto *multipart.FileHeader   `form:"aadhar_photo"`
	OtherImages []*multipart.FileHeader `form:"other_images"`
}

type updateTenantRequest struct {
	Name         *string   `json:"name"`
	Email        *string   `json:"email" binding:"omitempty,email"`
	MobileNumber *string   `json:"mobile_number"`
	TotalPerson  *int      `json:"total_person" binding:"omitempty,gte=1"`
	AadharPhoto  *string   `json:"aadhar_photo"`
	OtherImages  *[]string `json:"other_images"`
	MoveInDate   *string   `json:"move_in_date"`
	IsActive     *bool     `json:"is_active"`
}

type listTenantsQuery struct {
	pagination.Pagination
	Active string `form:"active"`
}

func (q listTenantsQuery) request(c *gin.Context) (tenantdomain.ListTenantRequest, bool) {
	active, err := parseOptionalBool(q.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return tenantdomain.ListTenantRequest{}, false
	}
	return tenantdomain.ListTenantRequest{Pagination: q.Pagination, IsActive: active}, true
}

// toDomain converts the shared create fields, aborting on malformed ids or
// dates.
func (r createTenantRequest) toDomain(c *gin.Context) (tenantdomain.CreateTenantRequest, bool) {
	propertyID, err := parseSnowflakeID(r.PropertyID)
	if err != nil {
		AbortWithError(c, invalidIDError("property_id"))
		return tenantdomain.CreateTenantRequest{}, false
	}
	roomID, err := parseSnowflakeID(r.AssignedRoomID)
	if err != nil {
		AbortWithError(c, invalidIDError("assigned_room_id"))
		return tenantdomain.CreateTenantRequest{}, false
	}
	moveIn, ok := optionalDate(c, "move_in_date", &r.MoveInDate)
	if !ok {
		return tenantdomain.CreateTenantRequest{}, false
	}
	var moveInDate time.Time
	if moveIn != nil {
		moveInDate = *moveIn
	}

	return tenantdomain.CreateTenantRequest{
		PropertyID:     propertyID,
		AssignedRoomID: roomID,
		Name:           strings.TrimSpace(r.Name),
		Email:          strings.TrimSpace(r.Email),
		MobileNumber:   strings.TrimSpace(r.MobileNumber),
		TotalPerson:    r.TotalPerson,
		AadharPhoto:    strings.TrimSpace(r.AadharPhoto),
		OtherImages:    r.OtherImages,
		MoveInDate:     moveInDate,
		IsActive:       r.IsActive,
	}, true
}

func (s *Server) CreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	create, ok := req.toDomain(c)
	if !ok {
		return
	}

	resp, err := s.tenantSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) CreateTenantWithDocuments(c *gin.Context) {
	var req uploadTenantRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	create, ok := req.toDomain(c)
	if !ok {
		return
	}

	var docs tenantdomain.Documents
	if req.AadharPhoto != nil {
		upload := toUpload(req.AadharPhoto)
		docs.AadharPhoto = &upload
	}
	for _, fh := range req.OtherImages {
		docs.OtherImages = append(docs.OtherImages, toUpload(fh))
	}

	resp, err := s.tenantSvc.CreateWithDocuments(c.Request.Context(), create, docs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func toUpload(fh *multipart.FileHeader) tenantdomain.Upload {
	return tenantdomain.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (s *Server) ListTenants(c *gin.Context) {
	var query listTenantsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, ok := query.request(c)
	if !ok {
		return
	}

	resp, err := s.tenantSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTenantsByProperty(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}

	var query listTenantsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, ok := query.request(c)
	if !ok {
		return
	}

	resp, err := s.tenantSvc.ListByProperty(c.Request.Context(), propertyID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTenantByRoom(c *gin.Context) {
	roomID, ok := pathID(c, "id", "room_id")
	if !ok {
		return
	}

	resp, err := s.tenantSvc.GetByRoom(c.Request.Context(), roomID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTenantByID(c *gin.Context) {
	id, ok := pathID(c, "id", "tenant_id")
	if !ok {
		return
	}

	resp, err := s.tenantSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTenant(c *gin.Context) {
	id, ok := pathID(c, "id", "tenant_id")
	if !ok {
		return
	}

	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	moveIn, ok := optionalDate(c, "move_in_date", req.MoveInDate)
	if !ok {
		return
	}

	resp, err := s.tenantSvc.Update(c.Request.Context(), tenantdomain.UpdateTenantRequest{
		ID:           id,
		Name:         trimPtr(req.Name),
		Email:        trimPtr(req.Email),
		MobileNumber: trimPtr(req.MobileNumber),
		TotalPerson:  req.TotalPerson,
		AadharPhoto:  trimPtr(req.AadharPhoto),
		OtherImages:  req.OtherImages,
		MoveInDate:   moveIn,
		IsActive:     req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTenant(c *gin.Context) {
	id, ok := pathID(c, "id", "tenant_id")
	if !ok {
		return
	}

	if err := s.tenantSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
