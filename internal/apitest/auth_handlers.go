package apitest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/odg-delivery/console/internal/auth"
)

type loginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

type signupRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Password      string `json:"password"`
	AgreedToTerms bool   `json:"agreedToTerms"`
}

type codeRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var missing []string
	if req.EmailOrPhone == "" {
		missing = append(missing, "Email or phone required")
	}
	if req.Password == "" {
		missing = append(missing, "Password required")
	}
	if len(missing) > 0 {
		respondErrors(c, missing...)
		return
	}

	s.mu.Lock()
	a := s.data.accountByLogin(req.EmailOrPhone)
	var copied account
	if a != nil {
		copied = *a
	}
	s.mu.Unlock()

	if a == nil || bcrypt.CompareHashAndPassword(copied.PasswordHash, []byte(req.Password)) != nil {
		respondMessage(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if copied.IsVerified == 0 {
		respondMessage(c, http.StatusForbidden, "Please verify your email first")
		return
	}

	token, err := s.signer.Sign(copied.ID, copied.Email, copied.role())
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"role":       copied.Role,
		"isVerified": copied.IsVerified == 1,
	})
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var missing []string
	if req.Name == "" {
		missing = append(missing, "Name required")
	}
	if req.Email == "" {
		missing = append(missing, "Email required")
	}
	if len(req.Password) < 8 {
		missing = append(missing, "Password too short")
	}
	if !req.AgreedToTerms {
		missing = append(missing, "You must agree to the terms")
	}
	if len(missing) > 0 {
		respondErrors(c, missing...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.accountByLogin(req.Email) != nil {
		respondMessage(c, http.StatusConflict, "Email already registered")
		return
	}

	s.data.accounts = append(s.data.accounts, &account{
		ID:           s.data.id(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Active:       true,
		PasswordHash: hash(req.Password),
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Check your email for a verification code"})
}

func (s *Server) verify(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.data.accountByLogin(req.Email)
	if a == nil || req.Code != VerificationCode {
		respondMessage(c, http.StatusBadRequest, "Invalid or expired code")
		return
	}
	a.IsVerified = 1

	respondOK(c)
}

func (s *Server) requestVerification(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respondErrors(c, "Email required")
		return
	}
	respondOK(c)
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respondErrors(c, "Email required")
		return
	}

	s.mu.Lock()
	s.data.resets[req.Email] = true
	s.mu.Unlock()

	// Unknown addresses get the same answer
	respondOK(c)
}

func (s *Server) resetPassword(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		respondErrors(c, "Password too short")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.data.accountByLogin(req.Email)
	if a == nil || !s.data.resets[req.Email] || req.Code != VerificationCode {
		respondMessage(c, http.StatusBadRequest, "Invalid or expired code")
		return
	}
	a.PasswordHash = hash(req.NewPassword)
	delete(s.data.resets, req.Email)

	respondOK(c)
}

func (s *Server) selectRole(c *gin.Context) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !auth.Role(req.Role).Selectable() {
		respondErrors(c, "Role must be student or rider")
		return
	}

	current := currentAccount(c)

	s.mu.Lock()
	a := s.data.accountByID(current.ID)
	if a.Role != nil {
		s.mu.Unlock()
		respondMessage(c, http.StatusConflict, "Role already selected")
		return
	}
	a.Role = ptr(req.Role)
	id, email, role := a.ID, a.Email, a.role()
	s.mu.Unlock()

	token, err := s.signer.Sign(id, email, role)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": req.Role})
}
