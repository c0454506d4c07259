package dto

// LoginForm carries the login credentials. Checking them is the auth
// service's job, so there are no binding tags.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}
