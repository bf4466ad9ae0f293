package handler

import (
	"net/http"

	"github.com/articleai/articleai-server/internal/httputil"
	"github.com/articleai/articleai-server/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func formatAdmin(admin *model.Admin) map[string]any {
	return map[string]any{
		"adminId":  admin.AdminID,
		"fullName": admin.FullName,
		"email":    admin.Email,
	}
}

func formatUser(user *model.User) map[string]any {
	return map[string]any{
		"id":          user.ID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"credits":     user.Credits,
		"isActive":    user.IsActive,
		"createdAt":   user.CreatedAt,
	}
}
