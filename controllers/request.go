package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/auth"
	"github.com/cppla/miniblog/middleware"
	"github.com/cppla/miniblog/repositories"
	"github.com/cppla/miniblog/schemas"
	"github.com/cppla/miniblog/utils"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := repositories.DefaultPageSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= repositories.MaxPageSize {
		pageSize = s
	}
	return page, pageSize
}

// requireParam writes 400 and returns false when the path parameter is blank.
func requireParam(ctx *gin.Context, name, message string) (string, bool) {
	v := strings.TrimSpace(ctx.Param(name))
	if v == "" {
		utils.Error(ctx, http.StatusBadRequest, message)
		return "", false
	}
	return v, true
}

// requireCaller writes 401 and returns false unless the auth middleware
// attached both an identity and its token.
func requireCaller(ctx *gin.Context) (auth.Identity, string, bool) {
	token, ok := middleware.TokenFrom(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Token is missing")
		return auth.Identity{}, "", false
	}
	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Token is missing")
		return auth.Identity{}, "", false
	}
	return identity, token, true
}

// bindBody decodes a JSON body into v. An empty body leaves v untouched so
// validation can report the missing fields.
func bindBody(ctx *gin.Context, v interface{}) bool {
	if err := ctx.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

// writeValidation answers 400 for a *schemas.ValidationError and reports
// whether err was one.
func writeValidation(ctx *gin.Context, err error) bool {
	var verr *schemas.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	utils.ValidationFailed(ctx, verr)
	return true
}
