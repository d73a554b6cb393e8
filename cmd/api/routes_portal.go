package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/account"
	"classtrack/internal/auth"
)

// registerPortalRoutes exposes the read-only views students and parents
// see. A parent is resolved to their child first, then everything is
// served the same way for both roles.
func registerPortalRoutes(r *gin.Engine, svc *services) {
	me := r.Group("/v1/me",
		auth.Bearer(svc.cfg.JWTSigningKey, svc.cfg.JWTIssuer),
		auth.RequireRole(string(account.RoleStudent), string(account.RoleParent)))

	// portalStudent resolves the student the caller may see. Students
	// see themselves; parents see the child their account is bound to.
	portalStudent := func(c *gin.Context) (account.Student, bool) {
		claims := auth.ClaimsFrom(c)
		ctx := c.Request.Context()
		if claims.Role == string(account.RoleStudent) {
			st, err := svc.accounts.GetStudent(ctx, claims.Subject)
			if err != nil {
				writeErr(c, err)
				return account.Student{}, false
			}
			return st, true
		}
		parent, err := svc.accountRepo.GetParent(ctx, claims.Subject)
		if err != nil {
			writeErr(c, err)
			return account.Student{}, false
		}
		st, err := svc.accountRepo.GetStudentByCode(ctx, parent.StudentCode)
		if err != nil {
			writeErr(c, err)
			return account.Student{}, false
		}
		return st, true
	}

	me.GET("/profile", func(c *gin.Context) {
		st, ok := portalStudent(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, st)
	})

	me.GET("/attendance", func(c *gin.Context) {
		st, ok := portalStudent(c)
		if !ok {
			return
		}
		records, err := svc.attRepo.ListRecords(c.Request.Context(), st.ID, intQuery(c, "limit", 100), intQuery(c, "offset", 0))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	me.GET("/grades", func(c *gin.Context) {
		st, ok := portalStudent(c)
		if !ok {
			return
		}
		grades, err := svc.grades.List(c.Request.Context(), st.ID)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"grades": grades})
	})

	me.GET("/payments", func(c *gin.Context) {
		st, ok := portalStudent(c)
		if !ok {
			return
		}
		payments, err := svc.payments.ListByStudent(c.Request.Context(), st.ID)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": payments})
	})

	me.GET("/videos", func(c *gin.Context) {
		st, ok := portalStudent(c)
		if !ok {
			return
		}
		videos, err := svc.contents.ListVideos(c.Request.Context(), string(st.Grade))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"videos": videos})
	})

	me.GET("/books", func(c *gin.Context) {
		st, ok := portalStudent(c)
		if !ok {
			return
		}
		books, err := svc.contents.ListBooks(c.Request.Context(), string(st.Grade))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": books})
	})
}
