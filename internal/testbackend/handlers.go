package testbackend

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hireboard-dev/hireboard/internal/models"
)

type validationEntry struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// bindJSON decodes and validates the body, answering 422 with a FastAPI
// style validation list on failure
func (b *Backend) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []validationEntry{
			{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"},
		}})
		return false
	}
	if err := b.validator.Struct(v); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []validationEntry{
			{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"},
		}})
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []validationEntry{
			{Loc: []string{"path", name}, Msg: "value is not a valid integer", Type: "type_error.integer"},
		}})
		return 0, false
	}
	return uint(id), true
}

// page applies skip/limit query parameters
func page(c *gin.Context, q *gorm.DB) *gorm.DB {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}
	return q.Offset(skip).Limit(limit)
}

// findOr404 loads one record, answering 404 when it does not exist
func (b *Backend) findOr404(c *gin.Context, dest any, id uint, name string, preload ...string) bool {
	q := b.db
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortDetail(c, http.StatusNotFound, fmt.Sprintf("%s not found", name))
			return false
		}
		b.internalError(c, err)
		return false
	}
	return true
}

func (b *Backend) internalError(c *gin.Context, err error) {
	b.logger.Error().Err(err).Msg("Request failed")
	abortDetail(c, http.StatusInternalServerError, "Internal server error")
}

// Auth

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_superuser"`
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name"`
	Password string `json:"password" validate:"omitempty,min=6"`
	IsAdmin  *bool  `json:"is_superuser"`
}

func (b *Backend) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var user models.User
	err := b.db.Where("username = ?", username).First(&user).Error
	if err != nil || !CheckPassword(user.HashedPassword, password) {
		c.Header("WWW-Authenticate", "Bearer")
		abortDetail(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if !user.IsActive {
		abortDetail(c, http.StatusBadRequest, "Inactive user")
		return
	}

	token, err := b.issuer.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		b.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

func (b *Backend) register(c *gin.Context) {
	var req registerRequest
	if !b.bindJSON(c, &req) {
		return
	}

	// Self-registration never grants admin
	user, ok := b.insertUser(c, req, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (b *Backend) insertUser(c *gin.Context, req registerRequest, isAdmin bool) (*models.User, bool) {
	var count int64
	b.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		abortDetail(c, http.StatusBadRequest, "username already exists")
		return nil, false
	}
	b.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		abortDetail(c, http.StatusBadRequest, "email already exists")
		return nil, false
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		b.internalError(c, err)
		return nil, false
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		IsActive:       true,
		IsAdmin:        isAdmin,
		HashedPassword: hash,
	}
	if err := b.db.Create(user).Error; err != nil {
		b.internalError(c, err)
		return nil, false
	}
	return user, true
}

func (b *Backend) getCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (b *Backend) updateCurrentUser(c *gin.Context) {
	var req updateUserRequest
	if !b.bindJSON(c, &req) {
		return
	}
	// Only admins change roles
	req.IsAdmin = nil

	user := currentUser(c)
	b.applyUserUpdate(c, user, req)
}

func (b *Backend) applyUserUpdate(c *gin.Context, user *models.User, req updateUserRequest) {
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			b.internalError(c, err)
			return
		}
		user.HashedPassword = hash
	}

	if err := b.db.Save(user).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Users (admin)

func (b *Backend) listUsers(c *gin.Context) {
	var users []models.User
	if err := page(c, b.db.Order("id")).Find(&users).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (b *Backend) createUser(c *gin.Context) {
	var req registerRequest
	if !b.bindJSON(c, &req) {
		return
	}

	user, ok := b.insertUser(c, req, req.IsAdmin)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (b *Backend) getUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var user models.User
	if !b.findOr404(c, &user, id, "User") {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (b *Backend) updateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !b.bindJSON(c, &req) {
		return
	}
	var user models.User
	if !b.findOr404(c, &user, id, "User") {
		return
	}
	b.applyUserUpdate(c, &user, req)
}

func (b *Backend) deleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id == currentUser(c).ID {
		abortDetail(c, http.StatusBadRequest, "cannot delete yourself")
		return
	}
	var user models.User
	if !b.findOr404(c, &user, id, "User") {
		return
	}
	if err := b.db.Delete(&user).Error; err != nil {
		b.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
