package apitest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var vendorStatuses = map[string]bool{
	"preparing": true,
	"ready":     true,
	"completed": true,
	"cancelled": true,
}

func vendorID(c *gin.Context) int64 {
	return c.GetInt64("vendorID")
}

// listVendors lists every vendor for admins and the owned ones otherwise
func (s *Server) listVendors(c *gin.Context) {
	a := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*vendorRow{}
	for _, v := range s.data.vendors {
		if a.role() == "admin" || v.OwnerID == a.ID {
			out = append(out, v)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) vendorOrders(c *gin.Context) {
	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []gin.H{}
	for _, o := range s.data.orders {
		if o.VendorID != id {
			continue
		}
		row := gin.H{
			"id":          o.ID,
			"user_id":     o.UserID,
			"status":      o.Status,
			"total_cents": o.TotalCents,
			"created_at":  o.CreatedAt,
		}
		if a := s.data.accountByID(o.UserID); a != nil {
			row["student_name"] = a.Name
			row["student_phone"] = a.Phone
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !vendorStatuses[req.Status] {
		respondErrors(c, "Invalid status")
		return
	}

	id := vendorID(c)

	s.mu.Lock()
	var found *orderRow
	for _, o := range s.data.orders {
		if o.ID == orderID && o.VendorID == id {
			found = o
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		respondMessage(c, http.StatusNotFound, "Order not found")
		return
	}
	found.Status = req.Status
	found.Reason = req.Reason
	s.mu.Unlock()

	s.Publish(id, map[string]any{
		"type":    "order_status",
		"orderId": orderID,
		"status":  req.Status,
	})

	respondOK(c)
}

type menuRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	ImageURL    *string `json:"image_url"`
	IsAvailable bool    `json:"is_available"`
}

func (r menuRequest) problems() []string {
	var out []string
	if r.Name == "" {
		out = append(out, "Name required")
	}
	if r.PriceCents == nil || *r.PriceCents < 0 {
		out = append(out, "Valid price required")
	}
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Server) listMenu(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.data.menus[vendorID(c)]
	if out == nil {
		out = []*menuRow{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createMenuItem(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if p := req.problems(); len(p) > 0 {
		respondErrors(c, p...)
		return
	}

	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	row := &menuRow{
		ID:          s.data.id(),
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  *req.PriceCents,
		IsAvailable: boolInt(req.IsAvailable),
		ImageURL:    req.ImageURL,
	}
	s.data.menus[id] = append(s.data.menus[id], row)
	c.JSON(http.StatusCreated, row)
}

func (s *Server) updateMenuItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if p := req.problems(); len(p) > 0 {
		respondErrors(c, p...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.data.menus[vendorID(c)] {
		if row.ID == itemID {
			row.Name = req.Name
			row.Description = req.Description
			row.PriceCents = *req.PriceCents
			row.ImageURL = req.ImageURL
			row.IsAvailable = boolInt(req.IsAvailable)
			c.JSON(http.StatusOK, row)
			return
		}
	}
	respondMessage(c, http.StatusNotFound, "Menu item not found")
}

func (s *Server) deleteMenuItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.data.menus[id]
	for i, row := range items {
		if row.ID == itemID {
			s.data.menus[id] = append(items[:i], items[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	respondMessage(c, http.StatusNotFound, "Menu item not found")
}

func (s *Server) vendorStats(c *gin.Context) {
	id := vendorID(c)
	today := now()[:10]

	s.mu.Lock()
	defer s.mu.Unlock()

	var count, gross, completed, todayOrders, todayCents int64
	for _, o := range s.data.orders {
		if o.VendorID != id {
			continue
		}
		count++
		gross += o.TotalCents
		if o.Status == "completed" {
			completed += o.TotalCents
		}
		if len(o.CreatedAt) >= 10 && o.CreatedAt[:10] == today {
			todayOrders++
			todayCents += o.TotalCents
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders_count":    count,
		"gross_cents":     gross,
		"completed_cents": completed,
		"today_orders":    todayOrders,
		"today_cents":     todayCents,
	})
}

func (s *Server) vendorRatings(c *gin.Context) {
	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*ratingRow{}
	for _, r := range s.data.ratings {
		if r.VendorID == id {
			out = append(out, r)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listCategories(c *gin.Context) {
	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*categoryRow{}
	for _, r := range s.data.categories {
		if r.VendorID == id {
			out = append(out, r)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCategory(c *gin.Context) {
	var req struct {
		VendorID int64  `json:"vendorId"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondErrors(c, "name required")
		return
	}

	a := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.data.vendorByID(req.VendorID)
	if v == nil {
		respondMessage(c, http.StatusNotFound, "Vendor not found")
		return
	}
	if a.role() != "admin" && v.OwnerID != a.ID {
		respondMessage(c, http.StatusForbidden, "Not your vendor")
		return
	}

	next := 0
	for _, r := range s.data.categories {
		if r.VendorID == v.ID && r.SortIndex >= next {
			next = r.SortIndex + 1
		}
	}
	row := &categoryRow{ID: s.data.id(), VendorID: v.ID, Name: req.Name, SortIndex: next}
	s.data.categories = append(s.data.categories, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}
