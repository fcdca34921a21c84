package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/roomledger/internal/payment/domain"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type createPaymentRequest struct {
	TenantID    string   `json:"tenant_id" binding:"required"`
	RoomID      string   `json:"room_id" binding:"required"`
	Month       int      `json:"month" binding:"required"`
	Year        int      `json:"year" binding:"required"`
	Payment     *float64 `json:"payment" binding:"required"`
	PaymentDue  *float64 `json:"payment_due"`
	IsPaid      *bool    `json:"is_paid"`
	PaymentDate *string  `json:"payment_date"`
}

type updatePaymentRequest struct {
	Payment     *float64 `json:"payment"`
	PaymentDue  *float64 `json:"payment_due"`
	IsPaid      *bool    `json:"is_paid"`
	PaymentDate *string  `json:"payment_date"`
}

type listPaymentsQuery struct {
	pagination.Pagination
	IsPaid string `form:"is_paid"`
	Month  string `form:"month"`
	Year   string `form:"year"`
}

func (q listPaymentsQuery) request(c *gin.Context) (paymentdomain.ListPaymentRequest, bool) {
	isPaid, err := parseOptionalBool(q.IsPaid)
	if err != nil {
		AbortWithError(c, newValidationError("is_paid", "invalid_is_paid", "invalid is_paid"))
		return paymentdomain.ListPaymentRequest{}, false
	}
	month, err := parseOptionalInt(q.Month)
	if err != nil {
		AbortWithError(c, paymentdomain.ErrInvalidMonth)
		return paymentdomain.ListPaymentRequest{}, false
	}
	year, err := parseOptionalInt(q.Year)
	if err != nil {
		AbortWithError(c, paymentdomain.ErrInvalidYear)
		return paymentdomain.ListPaymentRequest{}, false
	}
	return paymentdomain.ListPaymentRequest{
		Pagination: q.Pagination,
		IsPaid:     isPaid,
		Month:      month,
		Year:       year,
	}, true
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, invalidIDError("tenant_id"))
		return
	}
	roomID, err := parseSnowflakeID(req.RoomID)
	if err != nil {
		AbortWithError(c, invalidIDError("room_id"))
		return
	}
	paymentDate, ok := optionalDate(c, "payment_date", req.PaymentDate)
	if !ok {
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), paymentdomain.CreatePaymentRequest{
		TenantID:    tenantID,
		RoomID:      roomID,
		Month:       req.Month,
		Year:        req.Year,
		Amount:      *req.Payment,
		PaymentDue:  req.PaymentDue,
		IsPaid:      req.IsPaid,
		PaymentDate: paymentDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	var query listPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, ok := query.request(c)
	if !ok {
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPaymentsByTenant(c *gin.Context) {
	tenantID, ok := pathID(c, "id", "tenant_id")
	if !ok {
		return
	}

	var query listPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, ok := query.request(c)
	if !ok {
		return
	}

	resp, err := s.paymentSvc.ListByTenant(c.Request.Context(), tenantID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPaymentsByRoom(c *gin.Context) {
	roomID, ok := pathID(c, "id", "room_id")
	if !ok {
		return
	}

	var query listPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, ok := query.request(c)
	if !ok {
		return
	}

	resp, err := s.paymentSvc.ListByRoom(c.Request.Context(), roomID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	id, ok := pathID(c, "id", "payment_id")
	if !ok {
		return
	}

	resp, err := s.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePayment(c *gin.Context) {
	id, ok := pathID(c, "id", "payment_id")
	if !ok {
		return
	}

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	paymentDate, ok := optionalDate(c, "payment_date", req.PaymentDate)
	if !ok {
		return
	}

	resp, err := s.paymentSvc.Update(c.Request.Context(), paymentdomain.UpdatePaymentRequest{
		ID:          id,
		Amount:      req.Payment,
		PaymentDue:  req.PaymentDue,
		IsPaid:      req.IsPaid,
		PaymentDate: paymentDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePayment(c *gin.Context) {
	id, ok := pathID(c, "id", "payment_id")
	if !ok {
		return
	}

	if err := s.paymentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMonthlyPaymentReport reports payments of property :id for :month.
func (s *Server) GetMonthlyPaymentReport(c *gin.Context) {
	propertyID, ok := pathID(c, "id", "property_id")
	if !ok {
		return
	}
	month, year, ok := pathPeriod(c)
	if !ok {
		return
	}

	resp, err := s.paymentSvc.MonthlyReport(c.Request.Context(), propertyID, month, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
