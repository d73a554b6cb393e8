package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/account"
	"classtrack/internal/auth"
)

func registerAuthRoutes(r *gin.Engine, svc *services) {
	r.POST("/v1/auth/login", func(c *gin.Context) {
		var req struct {
			Phone    string `json:"phone" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		principal, err := svc.accounts.Login(c.Request.Context(), req.Phone, req.Password)
		if err != nil {
			if errors.Is(err, account.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid phone or password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		tokens, err := auth.Issue(principal.ID, principal.Name, string(principal.Role),
			svc.cfg.JWTIssuer, svc.cfg.JWTSigningKey, svc.cfg.AccessTTL, svc.cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		_ = svc.accountRepo.SaveRefreshToken(c.Request.Context(), principal.ID, tokens.RefreshToken, tokens.RefreshExp)

		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
			"role":          principal.Role,
			"name":          principal.Name,
			"id":            principal.ID,
		})
	})

	r.POST("/v1/auth/logout", auth.Bearer(svc.cfg.JWTSigningKey, svc.cfg.JWTIssuer), func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.accountRepo.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "logged out"})
	})
}
