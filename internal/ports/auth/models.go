package auth

// Claims es lo que devuelve el proveedor de identidad para un token válido.
type Claims struct {
	UserID string
	Email  string
	Role   string
}
