package apitest

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// ownedVendor loads the vendor named in a request body and checks the
// caller may manage it. It responds and returns nil when not.
func (s *Server) ownedVendor(c *gin.Context, id int64) *vendorRow {
	v := s.data.vendorByID(id)
	if v == nil {
		respondMessage(c, http.StatusNotFound, "Vendor not found")
		return nil
	}
	if a := currentAccount(c); a.role() != "admin" && v.OwnerID != a.ID {
		respondMessage(c, http.StatusForbidden, "Not your vendor")
		return nil
	}
	return v
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.profiles[vendorID(c)]
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) saveProfile(c *gin.Context) {
	var req struct {
		VendorID    int64   `json:"vendorId"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
		IsOpen      int     `json:"is_open"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondErrors(c, "Name required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ownedVendor(c, req.VendorID)
	if v == nil {
		return
	}
	v.Name = req.Name
	s.data.profiles[v.ID] = &profileRow{
		ID:          v.ID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsOpen:      req.IsOpen,
	}
	respondOK(c)
}

func (s *Server) getBank(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.banks[vendorID(c)]
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) saveBank(c *gin.Context) {
	var req struct {
		VendorID      int64  `json:"vendorId"`
		BankName      string `json:"bank_name"`
		AccountNumber string `json:"account_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BankName == "" || req.AccountNumber == "" {
		respondErrors(c, "Bank name and account number required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ownedVendor(c, req.VendorID)
	if v == nil {
		return
	}
	s.data.banks[v.ID] = &bankRow{VendorID: v.ID, BankName: req.BankName, AccountNumber: req.AccountNumber}
	respondOK(c)
}

func (s *Server) getHours(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.data.hours[vendorID(c)]
	if out == nil {
		out = []hoursRow{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) saveHours(c *gin.Context) {
	var req struct {
		VendorID int64      `json:"vendorId"`
		Hours    []hoursRow `json:"hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, h := range req.Hours {
		if h.DayOfWeek < 0 || h.DayOfWeek > 6 {
			respondErrors(c, "Invalid day_of_week")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ownedVendor(c, req.VendorID)
	if v == nil {
		return
	}
	s.data.hours[v.ID] = req.Hours
	respondOK(c)
}

func (s *Server) getBranding(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.branding[vendorID(c)]
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) saveBranding(c *gin.Context) {
	var req struct {
		VendorID  int64   `json:"vendorId"`
		LogoURL   *string `json:"logo_url"`
		BannerURL *string `json:"banner_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ownedVendor(c, req.VendorID)
	if v == nil {
		return
	}
	s.data.branding[v.ID] = &brandingRow{VendorID: v.ID, LogoURL: req.LogoURL, BannerURL: req.BannerURL}
	respondOK(c)
}

func (s *Server) listModifierGroups(c *gin.Context) {
	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*modifierGroupRow{}
	for _, g := range s.data.groups {
		if g.VendorID == id {
			out = append(out, g)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createModifierGroup(c *gin.Context) {
	var req struct {
		VendorID int64  `json:"vendorId"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondErrors(c, "name required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ownedVendor(c, req.VendorID)
	if v == nil {
		return
	}
	row := &modifierGroupRow{ID: s.data.id(), VendorID: v.ID, Name: req.Name}
	s.data.groups = append(s.data.groups, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}

func (s *Server) listModifierOptions(c *gin.Context) {
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.data.groupByID(groupID)
	if g == nil {
		respondMessage(c, http.StatusNotFound, "Group not found")
		return
	}
	if s.ownedVendor(c, g.VendorID) == nil {
		return
	}

	out := []*modifierOptionRow{}
	for _, o := range s.data.options {
		if o.GroupID == groupID {
			out = append(out, o)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createModifierOption(c *gin.Context) {
	var req struct {
		GroupID    int64  `json:"groupId"`
		Name       string `json:"name"`
		PriceCents *int64 `json:"price_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.PriceCents == nil || *req.PriceCents < 0 {
		respondErrors(c, "name and price required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.data.groupByID(req.GroupID)
	if g == nil {
		respondMessage(c, http.StatusNotFound, "Group not found")
		return
	}
	if s.ownedVendor(c, g.VendorID) == nil {
		return
	}
	row := &modifierOptionRow{ID: s.data.id(), GroupID: g.ID, Name: req.Name, PriceCents: *req.PriceCents}
	s.data.options = append(s.data.options, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}

func (s *Server) itemModifierGroups(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.menuItem(vendorID(c), itemID) == nil {
		respondMessage(c, http.StatusNotFound, "Menu item not found")
		return
	}

	out := []*modifierGroupRow{}
	for _, id := range s.data.itemGroups[itemID] {
		if g := s.data.groupByID(id); g != nil {
			out = append(out, g)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) assignModifierGroup(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	var req struct {
		GroupID int64 `json:"groupId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.GroupID <= 0 {
		respondErrors(c, "groupId required")
		return
	}

	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.menuItem(id, itemID) == nil {
		respondMessage(c, http.StatusNotFound, "Menu item not found")
		return
	}
	if g := s.data.groupByID(req.GroupID); g == nil || g.VendorID != id {
		respondMessage(c, http.StatusNotFound, "Group not found")
		return
	}
	for _, existing := range s.data.itemGroups[itemID] {
		if existing == req.GroupID {
			respondOK(c)
			return
		}
	}
	s.data.itemGroups[itemID] = append(s.data.itemGroups[itemID], req.GroupID)
	respondOK(c)
}

func (s *Server) unassignModifierGroup(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groups := s.data.itemGroups[itemID]
	for i, id := range groups {
		if id == groupID {
			s.data.itemGroups[itemID] = append(groups[:i], groups[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	respondMessage(c, http.StatusNotFound, "Group not assigned")
}

func (s *Server) setItemCategory(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	var req struct {
		CategoryID *int64 `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.data.menuItem(id, itemID)
	if item == nil {
		respondMessage(c, http.StatusNotFound, "Menu item not found")
		return
	}
	if req.CategoryID != nil && s.category(id, *req.CategoryID) == nil {
		respondMessage(c, http.StatusNotFound, "Category not found")
		return
	}
	item.CategoryID = req.CategoryID
	respondOK(c)
}

func (s *Server) category(vendorID, id int64) *categoryRow {
	for _, r := range s.data.categories {
		if r.ID == id && r.VendorID == vendorID {
			return r
		}
	}
	return nil
}

func (s *Server) reorderCategories(c *gin.Context) {
	var req struct {
		Order []struct {
			ID        int64 `json:"id"`
			SortIndex int   `json:"sort_index"`
		} `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Order) == 0 {
		respondErrors(c, "order required")
		return
	}

	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range req.Order {
		if s.category(id, o.ID) == nil {
			respondMessage(c, http.StatusNotFound, fmt.Sprintf("Category %d not found", o.ID))
			return
		}
	}
	for _, o := range req.Order {
		s.category(id, o.ID).SortIndex = o.SortIndex
	}
	sort.SliceStable(s.data.categories, func(i, j int) bool {
		return s.data.categories[i].SortIndex < s.data.categories[j].SortIndex
	})
	respondOK(c)
}

func (s *Server) deleteCategory(c *gin.Context) {
	catID, ok := paramID(c, "catId")
	if !ok {
		return
	}

	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.data.categories {
		if r.ID == catID && r.VendorID == id {
			s.data.categories = append(s.data.categories[:i], s.data.categories[i+1:]...)
			for _, item := range s.data.menus[id] {
				if item.CategoryID != nil && *item.CategoryID == catID {
					item.CategoryID = nil
				}
			}
			c.Status(http.StatusNoContent)
			return
		}
	}
	respondMessage(c, http.StatusNotFound, "Category not found")
}

// earningsLabel buckets a created_at timestamp by range
func earningsLabel(createdAt, period string) (string, bool) {
	t, err := time.Parse("2006-01-02 15:04:05", createdAt)
	if err != nil {
		return "", false
	}
	switch period {
	case "weekly":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), true
	case "monthly":
		return t.Format("2006-01"), true
	default:
		return t.Format("2006-01-02"), true
	}
}

func (s *Server) vendorEarnings(c *gin.Context) {
	period := c.DefaultQuery("range", "daily")
	switch period {
	case "daily", "weekly", "monthly":
	default:
		respondErrors(c, "Invalid range")
		return
	}

	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := map[string]gin.H{}
	var labels []string
	for _, o := range s.data.orders {
		if o.VendorID != id {
			continue
		}
		label, ok := earningsLabel(o.CreatedAt, period)
		if !ok {
			continue
		}
		row, seen := rows[label]
		if !seen {
			row = gin.H{"label": label, "orders_count": int64(0), "gross_cents": int64(0), "completed_cents": int64(0)}
			rows[label] = row
			labels = append(labels, label)
		}
		row["orders_count"] = row["orders_count"].(int64) + 1
		row["gross_cents"] = row["gross_cents"].(int64) + o.TotalCents
		if o.Status == "completed" {
			row["completed_cents"] = row["completed_cents"].(int64) + o.TotalCents
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(labels)))
	out := make([]gin.H, 0, len(labels))
	for _, l := range labels {
		out = append(out, rows[l])
	}
	c.JSON(http.StatusOK, out)
}

func paymentStatus(orderStatus string) string {
	switch orderStatus {
	case "completed":
		return "paid"
	case "cancelled":
		return "void"
	default:
		return "pending"
	}
}

func (s *Server) vendorTransactions(c *gin.Context) {
	id := vendorID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []gin.H{}
	for _, o := range s.data.orders {
		if o.VendorID != id {
			continue
		}
		out = append(out, gin.H{
			"id":             o.ID,
			"status":         o.Status,
			"total_cents":    o.TotalCents,
			"payment_status": paymentStatus(o.Status),
			"created_at":     o.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) mySupport(c *gin.Context) {
	a := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []gin.H{}
	for _, m := range s.data.support {
		if m.UserID == a.ID {
			out = append(out, gin.H{"id": m.ID, "message": m.Message, "created_at": m.CreatedAt})
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) sendSupport(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		respondErrors(c, "message required")
		return
	}

	a := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	row := &supportRow{
		ID:        s.data.id(),
		UserID:    a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Message:   req.Message,
		CreatedAt: now(),
	}
	s.data.support = append(s.data.support, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}
