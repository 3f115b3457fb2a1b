package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/typograph/core/internal/models"
	"github.com/typograph/core/internal/pkg/jwt"
	"github.com/typograph/core/internal/pkg/response"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 7 * 24 * time.Hour

var (
	ErrSignupClosed       = errors.New("signup is closed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages the author accounts surface.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Signup creates the first account. Once any user exists, signup is closed
// and accounts are managed out of band.
func (s *Service) Signup(login, email, password string) (*models.UserModel, error) {
	var count int64
	if err := s.db.Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSignupClosed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.UserModel{Login: login, Email: email, PasswordHash: string(hash)}
	return &user, s.db.Create(&user).Error
}

// Login checks credentials and issues a JWT.
func (s *Service) Login(login, password string) (string, *models.UserModel, error) {
	var user models.UserModel
	if err := s.db.Where("login = ?", login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := jwt.Sign(user.ID, user.Login, tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

type credentialsDTO struct {
	Login    string `json:"login"    binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
}

func (h *Handler) signup(c *gin.Context) {
	var dto credentialsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.svc.Signup(dto.Login, dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, ErrSignupClosed) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, user)
}

func (h *Handler) login(c *gin.Context) {
	var dto credentialsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, user, err := h.svc.Login(dto.Login, dto.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "user": user})
}
