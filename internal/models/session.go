package models

// Session is the authenticated identity carried by the signed session
// cookie. UserID equals the matched face ID.
type Session struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	IsAdmin  bool   `json:"is_admin"`
}
