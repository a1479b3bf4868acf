package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khushal-Taskar/Zoom/internal/users"
)

type UserController struct {
	users *users.Service
}

func NewUserController(us *users.Service) *UserController {
	return &UserController{users: us}
}

func (c *UserController) Register(ctx *gin.Context) {
	type request struct {
		Name     string `json:"name"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := c.users.Register(ctx.Request.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrUsernameExists) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"user": user})
}

func (c *UserController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := c.users.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (c *UserController) AddToActivity(ctx *gin.Context) {
	type request struct {
		Token       string `json:"token" binding:"required"`
		MeetingCode string `json:"meeting_code" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := c.users.AddToHistory(ctx.Request.Context(), req.Token, req.MeetingCode); err != nil {
		if errors.Is(err, users.ErrBadToken) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"status": "added"})
}

func (c *UserController) GetAllActivity(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	meetings, err := c.users.History(ctx.Request.Context(), token)
	if err != nil {
		if errors.Is(err, users.ErrBadToken) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"meetings": meetings})
}
